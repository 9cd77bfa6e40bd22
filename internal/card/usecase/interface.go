package usecase

import (
	"context"
)

// StorageCodec defines the deterministic storage encryption operations.
type StorageCodec interface {
	EncryptForStorage(cardNumber string) (string, error)
	DecryptFromStorage(encrypted string) (string, error)
}

// DisplayCodec defines the display masking operations.
type DisplayCodec interface {
	MaskForDisplay(cardNumber string) (token string, oneTimeKey string, err error)
	RevealFromDisplay(token string, oneTimeKey string) (string, error)
}

// AdminVerifier checks the admin password required for storage decryption.
type AdminVerifier interface {
	Verify(password string) bool
}

// CardUseCase defines the card number operations exposed to the HTTP layer.
type CardUseCase interface {
	// EncryptForStorage produces the stable storage ciphertext for a card number.
	EncryptForStorage(ctx context.Context, cardNumber string) (string, error)

	// DecryptFromStorage recovers a card number from storage ciphertext.
	// Requires a valid admin password; fails with ErrAdminPasswordInvalid otherwise.
	DecryptFromStorage(ctx context.Context, encrypted string, adminPassword string) (string, error)

	// MaskForDisplay builds a display token and its one-time key.
	MaskForDisplay(ctx context.Context, cardNumber string) (token string, oneTimeKey string, err error)

	// RevealFromDisplay reconstructs the card number from a token and its key.
	RevealFromDisplay(ctx context.Context, token string, oneTimeKey string) (string, error)
}
