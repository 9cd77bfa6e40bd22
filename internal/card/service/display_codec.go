package service

import (
	"crypto/rand"
	"encoding/base64"

	cardDomain "github.com/epiccms/cardvault/internal/card/domain"
	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

// DisplayCodec produces reversible display tokens for card numbers.
//
// A token keeps the first 6 and last 4 characters in clear and AES-GCM
// encrypts only the middle segment under a one-time key generated per call.
// The key is handed back to the caller and never stored server-side: whoever
// holds the token alone can read exactly what a masked PAN would show.
type DisplayCodec struct{}

// NewDisplayCodec creates a display codec.
func NewDisplayCodec() *DisplayCodec {
	return &DisplayCodec{}
}

// MaskForDisplay builds a display token and its one-time key.
//
// The token layout is: first 6 characters ‖ base64(IV ‖ ciphertext ‖ tag) of
// the middle segment ‖ last 4 characters. The returned key is base64-encoded
// and must be presented back verbatim to reveal the token.
func (d *DisplayCodec) MaskForDisplay(cardNumber string) (token string, oneTimeKey string, err error) {
	if len(cardNumber) < cardDomain.MinCardNumberLength {
		return "", "", cardDomain.ErrCardNumberTooShort
	}

	prefix := cardNumber[:cardDomain.MaskPrefixLength]
	suffix := cardNumber[len(cardNumber)-cardDomain.MaskSuffixLength:]
	middle := cardNumber[cardDomain.MaskPrefixLength : len(cardNumber)-cardDomain.MaskSuffixLength]

	key := make([]byte, cryptoDomain.AESKeySize)
	if _, err := rand.Read(key); err != nil {
		return "", "", err
	}
	defer cryptoDomain.Zero(key)

	aead, err := cryptoService.NewAESGCM(key)
	if err != nil {
		return "", "", err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(middle), nil)
	if err != nil {
		return "", "", err
	}

	blob := make([]byte, 0, len(nonce)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, ciphertext...)

	token = prefix + base64.StdEncoding.EncodeToString(blob) + suffix
	oneTimeKey = base64.StdEncoding.EncodeToString(key)
	return token, oneTimeKey, nil
}

// RevealFromDisplay reconstructs the card number from a display token and the
// exact one-time key returned by MaskForDisplay.
func (d *DisplayCodec) RevealFromDisplay(token string, oneTimeKey string) (string, error) {
	clearLen := cardDomain.MaskPrefixLength + cardDomain.MaskSuffixLength
	if len(token) <= clearLen {
		return "", cardDomain.ErrInvalidDisplayToken
	}

	prefix := token[:cardDomain.MaskPrefixLength]
	suffix := token[len(token)-cardDomain.MaskSuffixLength:]
	encoded := token[cardDomain.MaskPrefixLength : len(token)-cardDomain.MaskSuffixLength]

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", cardDomain.ErrInvalidDisplayToken
	}
	if len(blob) < cryptoDomain.NonceSize+cryptoDomain.TagSize {
		return "", cardDomain.ErrInvalidDisplayToken
	}

	key, err := base64.StdEncoding.DecodeString(oneTimeKey)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}
	defer cryptoDomain.Zero(key)

	aead, err := cryptoService.NewAESGCM(key)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	middle, err := aead.Decrypt(blob[cryptoDomain.NonceSize:], blob[:cryptoDomain.NonceSize], nil)
	if err != nil {
		return "", cryptoDomain.ErrIntegrityFailure
	}

	return prefix + string(middle) + suffix, nil
}
