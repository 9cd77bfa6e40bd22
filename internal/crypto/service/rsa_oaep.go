package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
)

// RSAOAEPCipher implements the AsymmetricCipher interface using RSA-OAEP
// with SHA-256 for both the hash function and MGF1.
//
// It provides key wrapping for the hybrid encryption key exchange: clients wrap
// a random AES-256 key with a session public key, and the server unwraps it
// with the matching private key. The OAEP parameters match the client
// implementations (SHA-256 hash, SHA-256 MGF1, no label).
//
// Thread safety:
//
//	The cipher is stateless and safe for concurrent use.
type RSAOAEPCipher struct{}

// NewRSAOAEPCipher creates a new RSA-OAEP cipher service.
func NewRSAOAEPCipher() *RSAOAEPCipher {
	return &RSAOAEPCipher{}
}

// GenerateKeyPair creates a fresh 2048-bit RSA key pair.
// The returned key is usable immediately; no persistence occurs.
func (r *RSAOAEPCipher) GenerateKeyPair() (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, cryptoDomain.RSAKeySize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	return key, nil
}

// EncodePublicKey serializes a public key to base64-encoded SPKI (PKIX) form
// for transmission to clients.
func (r *RSAOAEPCipher) EncodePublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to encode public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// DecodePublicKey parses a base64-encoded SPKI public key.
// Used by tests and client-side tooling; the server never receives public keys.
func (r *RSAOAEPCipher) DecodePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key base64: %w", err)
	}

	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("public key is not an RSA key")
	}
	return pub, nil
}

// Encrypt wraps data with the public key using OAEP with SHA-256.
func (r *RSAOAEPCipher) Encrypt(data []byte, pub *rsa.PublicKey) ([]byte, error) {
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt with RSA-OAEP: %w", err)
	}
	return ciphertext, nil
}

// Decrypt unwraps OAEP ciphertext with the private key.
//
// Malformed input, a wrong key, and padding failures are deliberately not
// distinguishable: all collapse into the generic ErrDecryptionFailed so the
// caller cannot be used as a padding oracle.
func (r *RSAOAEPCipher) Decrypt(ciphertext []byte, priv *rsa.PrivateKey) ([]byte, error) {
	plaintext, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	if err != nil {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}
