package service

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// ChaCha20Poly1305Cipher implements the AEAD interface using ChaCha20-Poly1305.
//
// It is the alternative storage algorithm to AES-256-GCM, selected through
// CARD_STORAGE_ALGORITHM for deployments without hardware AES acceleration.
// Key size (32 bytes), nonce size (12 bytes) and tag size (16 bytes) match
// the AES-GCM cipher, so stored ciphertext lengths are identical across the
// two algorithms.
type ChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewChaCha20Poly1305 creates a ChaCha20-Poly1305 cipher for a 32-byte key.
func NewChaCha20Poly1305(key []byte) (*ChaCha20Poly1305Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.New("key must be exactly 32 bytes")
	}

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create ChaCha20-Poly1305 cipher: %w", err)
	}

	return &ChaCha20Poly1305Cipher{aead: aead}, nil
}

// Encrypt encrypts plaintext with optional AAD under a fresh random nonce.
// The nonce is returned alongside the ciphertext (which carries the Poly1305
// tag appended) and must be presented back for decryption.
func (c *ChaCha20Poly1305Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = c.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// SealWithNonce encrypts plaintext under a caller-provided 12-byte nonce.
// See the AEAD interface for the nonce-reuse contract.
func (c *ChaCha20Poly1305Cipher) SealWithNonce(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != c.aead.NonceSize() {
		return nil, fmt.Errorf("nonce must be exactly %d bytes", c.aead.NonceSize())
	}
	return c.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Decrypt decrypts ciphertext with the nonce and AAD used during encryption.
// The Poly1305 tag is verified before any plaintext is returned; tampered
// input fails without partial output.
func (c *ChaCha20Poly1305Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}
