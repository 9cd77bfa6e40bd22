// Package service provides cryptographic services for hybrid payload encryption.
// Implements AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) and RSA-OAEP key wrapping.
package service

import (
	"crypto/rsa"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// SealWithNonce encrypts plaintext under a caller-provided nonce.
	// Reusing a nonce with the same key breaks AEAD security; the only
	// legitimate caller is the deterministic card storage codec, which owns
	// exactly one fixed nonce per key. Everything else uses Encrypt.
	SealWithNonce(nonce, plaintext, aad []byte) ([]byte, error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// AsymmetricCipher defines the interface for RSA-OAEP key-pair generation and
// key wrapping used in the hybrid encryption key exchange.
type AsymmetricCipher interface {
	// GenerateKeyPair creates a fresh RSA key pair with the fixed modulus size.
	GenerateKeyPair() (*rsa.PrivateKey, error)

	// EncodePublicKey serializes a public key to base64-encoded SPKI (PKIX) form.
	EncodePublicKey(pub *rsa.PublicKey) (string, error)

	// DecodePublicKey parses a base64-encoded SPKI public key.
	DecodePublicKey(encoded string) (*rsa.PublicKey, error)

	// Encrypt wraps data with the public key using OAEP with SHA-256.
	// Production clients encrypt independently; this mirrors their parameters
	// for symmetry and testing.
	Encrypt(data []byte, pub *rsa.PublicKey) ([]byte, error)

	// Decrypt unwraps OAEP ciphertext with the private key. Malformed input,
	// wrong key, and padding failures all collapse into the single generic
	// ErrDecryptionFailed.
	Decrypt(ciphertext []byte, priv *rsa.PrivateKey) ([]byte, error)
}
