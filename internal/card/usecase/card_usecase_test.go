package usecase_test

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cardDomain "github.com/epiccms/cardvault/internal/card/domain"
	cardService "github.com/epiccms/cardvault/internal/card/service"
	"github.com/epiccms/cardvault/internal/card/usecase"
	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

const testAdminPassword = "super-secret-admin"

func newTestUseCase(t *testing.T) usecase.CardUseCase {
	t.Helper()

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	storageCodec, err := cardService.NewStorageCodec(cryptoService.NewAEADManager(), key, cryptoDomain.AESGCM)
	require.NoError(t, err)

	hash, err := cardService.HashAdminPassword(testAdminPassword)
	require.NoError(t, err)

	verifier, err := cardService.NewAdminVerifier(hash)
	require.NoError(t, err)

	return usecase.NewCardUseCase(storageCodec, cardService.NewDisplayCodec(), verifier, nil)
}

func TestCardUseCase_Storage(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	t.Run("round trip with valid admin password", func(t *testing.T) {
		encrypted, err := uc.EncryptForStorage(ctx, "4532015112830366")
		require.NoError(t, err)

		decrypted, err := uc.DecryptFromStorage(ctx, encrypted, testAdminPassword)
		require.NoError(t, err)
		assert.Equal(t, "4532015112830366", decrypted)
	})

	t.Run("encryption is deterministic", func(t *testing.T) {
		first, err := uc.EncryptForStorage(ctx, "4532015112830366")
		require.NoError(t, err)

		second, err := uc.EncryptForStorage(ctx, "4532015112830366")
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("wrong admin password is rejected before decryption", func(t *testing.T) {
		encrypted, err := uc.EncryptForStorage(ctx, "4532015112830366")
		require.NoError(t, err)

		decrypted, err := uc.DecryptFromStorage(ctx, encrypted, "wrong")
		assert.ErrorIs(t, err, cardDomain.ErrAdminPasswordInvalid)
		assert.Empty(t, decrypted)

		// Garbage ciphertext fails identically with a wrong password.
		_, err2 := uc.DecryptFromStorage(ctx, "garbage", "wrong")
		assert.ErrorIs(t, err2, cardDomain.ErrAdminPasswordInvalid)
	})
}

func TestCardUseCase_Display(t *testing.T) {
	uc := newTestUseCase(t)
	ctx := context.Background()

	t.Run("mask and reveal round trip", func(t *testing.T) {
		token, oneTimeKey, err := uc.MaskForDisplay(ctx, "4532015112830366")
		require.NoError(t, err)

		revealed, err := uc.RevealFromDisplay(ctx, token, oneTimeKey)
		require.NoError(t, err)
		assert.Equal(t, "4532015112830366", revealed)
	})

	t.Run("short card number is rejected", func(t *testing.T) {
		_, _, err := uc.MaskForDisplay(ctx, "12345")
		assert.ErrorIs(t, err, cardDomain.ErrCardNumberTooShort)
	})
}
