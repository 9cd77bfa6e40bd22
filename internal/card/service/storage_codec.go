// Package service implements the card number codecs: deterministic storage
// encryption and one-time display masking.
package service

import (
	"encoding/base64"
	"fmt"

	cardDomain "github.com/epiccms/cardvault/internal/card/domain"
	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

// StorageCodec encrypts card numbers deterministically for storage.
//
// It uses a fixed installation key with a fixed nonce derived from the key's
// leading bytes, so the same card number always produces the same ciphertext
// and stored values can be matched exactly without ever storing plaintext.
//
// This determinism is the entire point of the codec and also its hazard: the
// codec must never be used for anything except card number storage. Generic
// payload encryption uses the same cipher types but always through Encrypt,
// which generates a fresh random nonce per call.
type StorageCodec struct {
	cipher cryptoService.AEAD
	nonce  []byte
}

// NewStorageCodec creates a deterministic codec for the given installation key.
// The key must be exactly 32 bytes; the nonce is its first 12 bytes. The
// cipher comes from the AEAD manager, so the algorithm switch (AES-256-GCM or
// ChaCha20-Poly1305) lives in one place.
func NewStorageCodec(ciphers cryptoService.AEADManager, key []byte, alg cryptoDomain.Algorithm) (*StorageCodec, error) {
	if len(key) != cryptoDomain.AESKeySize {
		return nil, fmt.Errorf("%w: storage key must be %d bytes", cryptoDomain.ErrConfigurationInvalid, cryptoDomain.AESKeySize)
	}

	cipher, err := ciphers.CreateCipher(key, alg)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, cryptoDomain.NonceSize)
	copy(nonce, key[:cryptoDomain.NonceSize])

	return &StorageCodec{cipher: cipher, nonce: nonce}, nil
}

// EncryptForStorage encrypts a card number into its stable base64 ciphertext.
// Identical inputs always yield identical outputs.
func (s *StorageCodec) EncryptForStorage(cardNumber string) (string, error) {
	if len(cardNumber) < cardDomain.MinCardNumberLength {
		return "", cardDomain.ErrCardNumberTooShort
	}

	ciphertext, err := s.cipher.SealWithNonce(s.nonce, []byte(cardNumber), nil)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptFromStorage inverts EncryptForStorage.
// Tampered ciphertext and wrong-key material both fail with ErrIntegrityFailure.
func (s *StorageCodec) DecryptFromStorage(encrypted string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	plaintext, err := s.cipher.Decrypt(ciphertext, s.nonce, nil)
	if err != nil {
		return "", cryptoDomain.ErrIntegrityFailure
	}
	return string(plaintext), nil
}
