package http

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/epiccms/cardvault/internal/httputil"
	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
	payloadUseCase "github.com/epiccms/cardvault/internal/payload/usecase"
)

// bodyCaptureWriter buffers the response body so it can be replaced with an
// envelope after the handler chain completes. The status code is recorded and
// deferred until the final body is known.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *bodyCaptureWriter) WriteHeader(status int) {
	w.status = status
}

// WriteHeaderNow suppresses gin's eager header flush. Abort paths (including
// panic recovery) flush the status straight to the wire, which would commit
// the real writer's default 200 before the captured status and body are
// written by flushResponse.
func (w *bodyCaptureWriter) WriteHeaderNow() {}

// ResponseEncryptionMiddleware seals outgoing bodies into envelopes for
// callers whose inbound request was encrypted.
//
// The response passes through as plaintext when the inbound request carried no
// envelope, the path is allow-listed, the body is empty or non-JSON (binary
// downloads), or the handler already produced an envelope.
//
// Encryption reuses the session key from the inbound request; nothing new is
// transmitted in the clear. When sealing fails the behavior is configurable:
// fail-open serves the plaintext response and logs the failure, fail-closed
// rejects with an internal error.
//
// Whatever the outcome, the originating session is invalidated once the
// response is produced: one session, one transaction.
func ResponseEncryptionMiddleware(
	codec payloadUseCase.PayloadCodec,
	skipPaths []string,
	failClosed bool,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		writer := &bodyCaptureWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
			status:         http.StatusOK,
		}
		c.Writer = writer

		c.Next()

		c.Writer = writer.ResponseWriter
		body := writer.body.Bytes()

		correlation, encrypted := GetCorrelation(c.Request.Context())
		if encrypted {
			defer codec.InvalidateSession(c.Request.Context(), correlation.SessionID)
		}

		if !encrypted ||
			pathIsSkipped(c.Request.URL.Path, skipPaths) ||
			len(body) == 0 ||
			isBinaryResponse(writer.Header().Get("Content-Type")) ||
			isEnvelopeBody(body) {
			flushResponse(c, writer.status, body)
			return
		}

		envelope, err := codec.HybridEncrypt(
			c.Request.Context(),
			body,
			correlation.SessionID,
			correlation.EncryptedKey,
			correlation.KeyEncoding,
		)
		if err == nil {
			var encoded []byte
			encoded, err = json.Marshal(envelope)
			if err == nil {
				c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
				flushResponse(c, writer.status, encoded)
				return
			}
		}

		if failClosed {
			if logger != nil {
				logger.Error("response encryption failed, rejecting response",
					slog.String("path", c.Request.URL.Path),
					slog.Any("error", err),
				)
			}
			rejection, _ := json.Marshal(httputil.ErrorResponse{
				Error:   "internal_error",
				Message: "An internal error occurred",
			})
			c.Writer.Header().Set("Content-Type", "application/json; charset=utf-8")
			flushResponse(c, http.StatusInternalServerError, rejection)
			return
		}

		// Availability over confidentiality: serve the plaintext response and
		// make noise about it internally.
		if logger != nil {
			logger.Error("response encryption failed, serving plaintext",
				slog.String("path", c.Request.URL.Path),
				slog.Any("error", err),
			)
		}
		flushResponse(c, writer.status, body)
	}
}

// flushResponse writes the deferred status and final body to the real writer.
func flushResponse(c *gin.Context, status int, body []byte) {
	c.Writer.Header().Del("Content-Length")
	c.Writer.WriteHeader(status)
	if len(body) > 0 {
		_, _ = c.Writer.Write(body)
	}
}

// isBinaryResponse reports whether the response content type is outside the
// envelope contract (file downloads, octet streams).
func isBinaryResponse(contentType string) bool {
	if contentType == "" {
		return false
	}
	return !strings.HasPrefix(contentType, "application/json")
}

// isEnvelopeBody reports whether the handler already produced an envelope.
func isEnvelopeBody(body []byte) bool {
	_, ok := payloadDomain.ParseEnvelope(body)
	return ok
}
