package service

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardDomain "github.com/epiccms/cardvault/internal/card/domain"
	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

func newStorageKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestNewStorageCodec(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		codec, err := NewStorageCodec(cryptoService.NewAEADManager(), newStorageKey(t), cryptoDomain.AESGCM)
		assert.NoError(t, err)
		assert.NotNil(t, codec)
	})

	t.Run("chacha20-poly1305", func(t *testing.T) {
		codec, err := NewStorageCodec(cryptoService.NewAEADManager(), newStorageKey(t), cryptoDomain.ChaCha20)
		assert.NoError(t, err)
		assert.NotNil(t, codec)
	})

	t.Run("invalid key size", func(t *testing.T) {
		codec, err := NewStorageCodec(cryptoService.NewAEADManager(), make([]byte, 16), cryptoDomain.AESGCM)
		assert.ErrorIs(t, err, cryptoDomain.ErrConfigurationInvalid)
		assert.Nil(t, codec)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		codec, err := NewStorageCodec(cryptoService.NewAEADManager(), newStorageKey(t), cryptoDomain.Algorithm("des"))
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedAlgorithm)
		assert.Nil(t, codec)
	})
}

func TestStorageCodec_Determinism(t *testing.T) {
	key := newStorageKey(t)
	codec, err := NewStorageCodec(cryptoService.NewAEADManager(), key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	t.Run("same input always yields the same ciphertext", func(t *testing.T) {
		first, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		second, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("stable across codec instances with the same key", func(t *testing.T) {
		other, err := NewStorageCodec(cryptoService.NewAEADManager(), key, cryptoDomain.AESGCM)
		require.NoError(t, err)

		first, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		second, err := other.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("different inputs yield different ciphertexts", func(t *testing.T) {
		first, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		second, err := codec.EncryptForStorage("4532015112830367")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func TestStorageCodec_ChaCha20Poly1305(t *testing.T) {
	key := newStorageKey(t)
	codec, err := NewStorageCodec(cryptoService.NewAEADManager(), key, cryptoDomain.ChaCha20)
	require.NoError(t, err)

	t.Run("deterministic round trip", func(t *testing.T) {
		first, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		second, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)
		assert.Equal(t, first, second)

		decrypted, err := codec.DecryptFromStorage(first)
		require.NoError(t, err)
		assert.Equal(t, "4532015112830366", decrypted)
	})

	t.Run("ciphertext differs from aes-gcm under the same key", func(t *testing.T) {
		aesCodec, err := NewStorageCodec(cryptoService.NewAEADManager(), key, cryptoDomain.AESGCM)
		require.NoError(t, err)

		chachaOut, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		aesOut, err := aesCodec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)
		assert.NotEqual(t, chachaOut, aesOut)

		_, err = aesCodec.DecryptFromStorage(chachaOut)
		assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityFailure)
	})
}

func TestStorageCodec_RoundTrip(t *testing.T) {
	codec, err := NewStorageCodec(cryptoService.NewAEADManager(), newStorageKey(t), cryptoDomain.AESGCM)
	require.NoError(t, err)

	testCases := []string{
		"4532015112830366",
		"370000000000002",
		"6011000000000012",
		"1234567890", // minimum length
	}

	for _, cardNumber := range testCases {
		t.Run(cardNumber, func(t *testing.T) {
			encrypted, err := codec.EncryptForStorage(cardNumber)
			require.NoError(t, err)

			decrypted, err := codec.DecryptFromStorage(encrypted)
			require.NoError(t, err)
			assert.Equal(t, cardNumber, decrypted)
		})
	}
}

func TestStorageCodec_Errors(t *testing.T) {
	key := newStorageKey(t)
	codec, err := NewStorageCodec(cryptoService.NewAEADManager(), key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	t.Run("card number too short", func(t *testing.T) {
		_, err := codec.EncryptForStorage("123456789")
		assert.ErrorIs(t, err, cardDomain.ErrCardNumberTooShort)
	})

	t.Run("invalid base64", func(t *testing.T) {
		_, err := codec.DecryptFromStorage("not-base64!!!")
		assert.ErrorIs(t, err, cryptoDomain.ErrDecryptionFailed)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		encrypted, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		tampered := []byte(encrypted)
		tampered[0] ^= 1

		_, err = codec.DecryptFromStorage(string(tampered))
		assert.Error(t, err)
	})

	t.Run("wrong key", func(t *testing.T) {
		encrypted, err := codec.EncryptForStorage("4532015112830366")
		require.NoError(t, err)

		other, err := NewStorageCodec(cryptoService.NewAEADManager(), newStorageKey(t), cryptoDomain.AESGCM)
		require.NoError(t, err)

		_, err = other.DecryptFromStorage(encrypted)
		assert.ErrorIs(t, err, cryptoDomain.ErrIntegrityFailure)
	})
}
