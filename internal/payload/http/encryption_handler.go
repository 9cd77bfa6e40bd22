package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/epiccms/cardvault/internal/httputil"
	"github.com/epiccms/cardvault/internal/payload/http/dto"
	payloadUseCase "github.com/epiccms/cardvault/internal/payload/usecase"
)

// EncryptionHandler handles HTTP requests for encryption session management.
type EncryptionHandler struct {
	codec  payloadUseCase.PayloadCodec // Business logic for session issuance and envelope crypto
	logger *slog.Logger                // Structured logger for request handling and error reporting
}

// NewEncryptionHandler creates a new encryption handler with required dependencies.
func NewEncryptionHandler(codec payloadUseCase.PayloadCodec, logger *slog.Logger) *EncryptionHandler {
	return &EncryptionHandler{
		codec:  codec,
		logger: logger,
	}
}

// PublicKeyHandler issues a fresh encryption session and returns its public key.
// GET /v1/encryption/public-key
// Returns 200 OK with {sessionId, publicKey, timestamp, ttlSeconds}.
func (h *EncryptionHandler) PublicKeyHandler(c *gin.Context) {
	grant, err := h.codec.IssuePublicKey(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapPublicKeyResponse(grant))
}

// KeyCountHandler reports the number of currently live encryption sessions.
// GET /v1/encryption/key-count
// Returns 200 OK with {activeSessions}.
func (h *EncryptionHandler) KeyCountHandler(c *gin.Context) {
	c.JSON(http.StatusOK, dto.KeyCountResponse{
		ActiveSessions: h.codec.ActiveSessionCount(c.Request.Context()),
	})
}
