package service

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAESGCM(t *testing.T) {
	t.Run("valid 256-bit key", func(t *testing.T) {
		key := make([]byte, 32)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.NoError(t, err)
		assert.NotNil(t, cipher)
	})

	t.Run("invalid key size", func(t *testing.T) {
		key := make([]byte, 16) // AES-128 keys are rejected, only AES-256 is supported
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})

	t.Run("invalid key size - too large", func(t *testing.T) {
		key := make([]byte, 64)
		_, err := rand.Read(key)
		require.NoError(t, err)

		cipher, err := NewAESGCM(key)
		assert.Error(t, err)
		assert.Nil(t, cipher)
	})
}

func TestAESGCMCipher_Encrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	t.Run("encrypt with plaintext and AAD", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		aad := []byte("additional authenticated data")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		assert.NoError(t, err)
		assert.NotNil(t, ciphertext)
		assert.NotNil(t, nonce)
		assert.NotEqual(t, plaintext, ciphertext)
		assert.Equal(t, 12, len(nonce)) // GCM standard nonce size
	})

	t.Run("encrypt without AAD", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		assert.NoError(t, err)
		assert.NotNil(t, ciphertext)
		assert.NotNil(t, nonce)
	})

	t.Run("ciphertext carries a 16-byte tag", func(t *testing.T) {
		plaintext := []byte("tagged")

		ciphertext, _, err := cipher.Encrypt(plaintext, nil)
		assert.NoError(t, err)
		assert.Equal(t, len(plaintext)+16, len(ciphertext))
	})

	t.Run("nonce is unique for each encryption", func(t *testing.T) {
		plaintext := []byte("test")
		aad := []byte("aad")

		_, nonce1, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)

		_, nonce2, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)

		assert.NotEqual(t, nonce1, nonce2)
	})
}

func TestAESGCMCipher_Decrypt(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	t.Run("decrypt successfully", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		aad := []byte("additional authenticated data")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, aad)
		assert.NoError(t, err)
		assert.True(t, bytes.Equal(plaintext, decrypted))
	})

	t.Run("decrypt with wrong key fails", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		otherKey := make([]byte, 32)
		_, err = rand.Read(otherKey)
		require.NoError(t, err)

		otherCipher, err := NewAESGCM(otherKey)
		require.NoError(t, err)

		decrypted, err := otherCipher.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with wrong AAD fails", func(t *testing.T) {
		plaintext := []byte("Hello, World!")
		aad := []byte("correct aad")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, aad)
		require.NoError(t, err)

		decrypted, err := cipher.Decrypt(ciphertext, nonce, []byte("wrong aad"))
		assert.Error(t, err)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with tampered ciphertext fails", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		ciphertext[0] ^= 1

		decrypted, err := cipher.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
		assert.Nil(t, decrypted)
	})

	t.Run("decrypt with tampered tag fails", func(t *testing.T) {
		plaintext := []byte("Hello, World!")

		ciphertext, nonce, err := cipher.Encrypt(plaintext, nil)
		require.NoError(t, err)

		ciphertext[len(ciphertext)-1] ^= 1

		decrypted, err := cipher.Decrypt(ciphertext, nonce, nil)
		assert.Error(t, err)
		assert.Nil(t, decrypted)
	})
}

func TestAESGCMCipher_EncryptDecrypt_Integration(t *testing.T) {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	cipher, err := NewAESGCM(key)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{
			name:      "short message",
			plaintext: []byte("test"),
			aad:       []byte("metadata"),
		},
		{
			name:      "long message",
			plaintext: bytes.Repeat([]byte("a"), 10000),
			aad:       []byte("large data"),
		},
		{
			name:      "message with unicode",
			plaintext: []byte("Hello 世界! 🔐"),
			aad:       []byte("unicode test"),
		},
		{
			name:      "empty plaintext",
			plaintext: []byte(""),
			aad:       nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ciphertext, nonce, err := cipher.Encrypt(tc.plaintext, tc.aad)
			require.NoError(t, err)

			decrypted, err := cipher.Decrypt(ciphertext, nonce, tc.aad)
			require.NoError(t, err)

			assert.True(t, bytes.Equal(tc.plaintext, decrypted))
		})
	}
}
