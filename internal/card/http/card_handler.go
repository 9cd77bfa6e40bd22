// Package http provides HTTP handlers for card number storage encryption and
// display masking operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epiccms/cardvault/internal/card/http/dto"
	cardUseCase "github.com/epiccms/cardvault/internal/card/usecase"
	"github.com/epiccms/cardvault/internal/httputil"
	customValidation "github.com/epiccms/cardvault/internal/validation"
)

// CardHandler handles HTTP requests for card number operations.
type CardHandler struct {
	cardUseCase cardUseCase.CardUseCase // Business logic for storage and display codecs
	logger      *slog.Logger            // Structured logger for request handling and error reporting
}

// NewCardHandler creates a new card handler with required dependencies.
func NewCardHandler(cardUseCase cardUseCase.CardUseCase, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		cardUseCase: cardUseCase,
		logger:      logger,
	}
}

// StorageEncryptHandler encrypts a card number into its stable storage form.
// POST /v1/cardnumbers/storage/encrypt
// Returns 200 OK with {encrypted}.
func (h *CardHandler) StorageEncryptHandler(c *gin.Context) {
	var req dto.StorageEncryptRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	encrypted, err := h.cardUseCase.EncryptForStorage(c.Request.Context(), req.CardNumber)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StorageEncryptResponse{Encrypted: encrypted})
}

// StorageDecryptHandler recovers a card number from storage ciphertext.
// POST /v1/cardnumbers/storage/decrypt - Requires the admin password.
// Returns 200 OK with {cardNumber}.
func (h *CardHandler) StorageDecryptHandler(c *gin.Context) {
	var req dto.StorageDecryptRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cardNumber, err := h.cardUseCase.DecryptFromStorage(c.Request.Context(), req.Encrypted, req.AdminPassword)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.StorageDecryptResponse{CardNumber: cardNumber})
}

// MaskHandler builds a display token and its one-time key for a card number.
// POST /v1/cardnumbers/mask
// Returns 200 OK with {token, oneTimeKey}. The key is not retained server-side.
func (h *CardHandler) MaskHandler(c *gin.Context) {
	var req dto.MaskRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	token, oneTimeKey, err := h.cardUseCase.MaskForDisplay(c.Request.Context(), req.CardNumber)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MaskResponse{Token: token, OneTimeKey: oneTimeKey})
}

// RevealHandler reconstructs a card number from a display token.
// POST /v1/cardnumbers/reveal
// Returns 200 OK with {cardNumber}.
func (h *CardHandler) RevealHandler(c *gin.Context) {
	var req dto.RevealRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	cardNumber, err := h.cardUseCase.RevealFromDisplay(c.Request.Context(), req.Token, req.OneTimeKey)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.RevealResponse{CardNumber: cardNumber})
}
