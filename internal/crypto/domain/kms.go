package domain

import "context"

// KMSKeeper abstracts a KMS-backed keeper capable of unwrapping key material.
// *secrets.Keeper from gocloud.dev implements this interface.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}
