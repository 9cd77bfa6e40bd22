// Package usecase implements the card number business logic and coordinates
// the storage and display codecs.
package usecase

import (
	"context"
	"log/slog"

	cardDomain "github.com/epiccms/cardvault/internal/card/domain"
)

// CardUseCaseImpl implements CardUseCase.
type CardUseCaseImpl struct {
	storageCodec  StorageCodec
	displayCodec  DisplayCodec
	adminVerifier AdminVerifier
	logger        *slog.Logger
}

// NewCardUseCase creates a new CardUseCaseImpl.
func NewCardUseCase(
	storageCodec StorageCodec,
	displayCodec DisplayCodec,
	adminVerifier AdminVerifier,
	logger *slog.Logger,
) *CardUseCaseImpl {
	return &CardUseCaseImpl{
		storageCodec:  storageCodec,
		displayCodec:  displayCodec,
		adminVerifier: adminVerifier,
		logger:        logger,
	}
}

// EncryptForStorage produces the stable storage ciphertext for a card number.
func (uc *CardUseCaseImpl) EncryptForStorage(ctx context.Context, cardNumber string) (string, error) {
	return uc.storageCodec.EncryptForStorage(cardNumber)
}

// DecryptFromStorage recovers a card number after verifying the admin password.
//
// The password check runs before the ciphertext is touched; a caller with the
// wrong password learns nothing about the ciphertext's validity.
func (uc *CardUseCaseImpl) DecryptFromStorage(ctx context.Context, encrypted string, adminPassword string) (string, error) {
	if !uc.adminVerifier.Verify(adminPassword) {
		if uc.logger != nil {
			uc.logger.Warn("storage decryption denied: admin password mismatch")
		}
		return "", cardDomain.ErrAdminPasswordInvalid
	}

	return uc.storageCodec.DecryptFromStorage(encrypted)
}

// MaskForDisplay builds a display token and its one-time key.
func (uc *CardUseCaseImpl) MaskForDisplay(ctx context.Context, cardNumber string) (string, string, error) {
	return uc.displayCodec.MaskForDisplay(cardNumber)
}

// RevealFromDisplay reconstructs the card number from a token and its key.
func (uc *CardUseCaseImpl) RevealFromDisplay(ctx context.Context, token string, oneTimeKey string) (string, error) {
	return uc.displayCodec.RevealFromDisplay(token, oneTimeKey)
}
