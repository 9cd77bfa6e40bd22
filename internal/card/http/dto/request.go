// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	cardDomain "github.com/epiccms/cardvault/internal/card/domain"
	customValidation "github.com/epiccms/cardvault/internal/validation"
)

// StorageEncryptRequest contains the card number to encrypt for storage.
type StorageEncryptRequest struct {
	CardNumber string `json:"cardNumber"`
}

// Validate checks if the storage encrypt request is valid.
func (r *StorageEncryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CardNumber,
			validation.Required,
			customValidation.Digits,
			validation.Length(cardDomain.MinCardNumberLength, 19),
		),
	)
}

// StorageDecryptRequest contains the storage ciphertext and the admin password
// authorizing its decryption.
type StorageDecryptRequest struct {
	Encrypted     string `json:"encrypted"`
	AdminPassword string `json:"adminPassword"`
}

// Validate checks if the storage decrypt request is valid.
func (r *StorageDecryptRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Encrypted,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
		validation.Field(&r.AdminPassword,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// MaskRequest contains the card number to mask for display.
type MaskRequest struct {
	CardNumber string `json:"cardNumber"`
}

// Validate checks if the mask request is valid.
func (r *MaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.CardNumber,
			validation.Required,
			customValidation.Digits,
			validation.Length(cardDomain.MinCardNumberLength, 19),
		),
	)
}

// RevealRequest contains a display token and the one-time key returned with it.
type RevealRequest struct {
	Token      string `json:"token"`
	OneTimeKey string `json:"oneTimeKey"`
}

// Validate checks if the reveal request is valid.
func (r *RevealRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token,
			validation.Required,
			customValidation.NotBlank,
		),
		validation.Field(&r.OneTimeKey,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Base64,
		),
	)
}
