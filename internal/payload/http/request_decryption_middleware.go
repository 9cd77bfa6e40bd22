package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	"github.com/epiccms/cardvault/internal/httputil"
	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
	payloadUseCase "github.com/epiccms/cardvault/internal/payload/usecase"
)

// RequestDecryptionMiddleware decrypts envelope-shaped request bodies before
// they reach business handlers.
//
// Bodies that do not parse as a complete envelope pass through unchanged, so
// unencrypted callers keep working. Allow-listed paths and bodiless requests
// are never touched.
//
// On a successful decrypt the plaintext replaces the request body and the
// envelope's session identity is stored in the request context for the
// response encryption middleware.
//
// All cryptographic failures (unknown session, unwrap failure, tag failure)
// produce one uniform rejection; a caller can never tell which check failed.
// Only a schema mismatch in the decrypted plaintext is reported with detail,
// since it carries no cryptographic information.
func RequestDecryptionMiddleware(
	codec payloadUseCase.PayloadCodec,
	skipPaths []string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pathIsSkipped(c.Request.URL.Path, skipPaths) || c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			httputil.HandleBadRequestGin(c, err, logger)
			c.Abort()
			return
		}
		_ = c.Request.Body.Close()

		envelope, ok := payloadDomain.ParseEnvelope(body)
		if !ok {
			// Unencrypted caller: restore the original body unchanged.
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}

		plaintext, err := codec.HybridDecrypt(c.Request.Context(), envelope)
		if err != nil {
			if errors.Is(err, cryptoDomain.ErrDeserializationFailed) {
				httputil.HandleErrorGin(c, err, logger)
				c.Abort()
				return
			}
			rejectEncryptedRequest(c, err, logger)
			return
		}

		correlation := &Correlation{
			SessionID:    envelope.SessionID,
			EncryptedKey: envelope.EncryptedKey,
			KeyEncoding:  envelope.KeyEncoding,
		}
		c.Request = c.Request.WithContext(WithCorrelation(c.Request.Context(), correlation))
		c.Request.Body = io.NopCloser(bytes.NewReader(plaintext))
		c.Request.ContentLength = int64(len(plaintext))
		c.Request.Header.Set("Content-Type", "application/json")

		c.Next()
	}
}

// rejectEncryptedRequest writes the uniform client rejection used for every
// cryptographic failure. The response never varies with the failure cause.
func rejectEncryptedRequest(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("rejected encrypted request",
			slog.String("path", c.Request.URL.Path),
			slog.Any("error", err),
		)
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, httputil.ErrorResponse{
		Error:   "encrypted_request_rejected",
		Message: "unable to process encrypted request",
	})
}

// pathIsSkipped reports whether path matches any allow-listed prefix.
func pathIsSkipped(path string, skipPaths []string) bool {
	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}
