// Package http provides the public-key issuance handlers and the request
// decryption / response encryption middleware pair.
package http

import (
	"context"

	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
)

// correlationKey is a context key type for storing the encryption correlation.
type correlationKey struct{}

// Correlation carries the inbound envelope identity from the request
// decryption middleware to the response encryption middleware.
//
// It lives in the per-request context, never in package state, so one caller's
// key material can never bleed into another caller's response. The context is
// discarded with the request on every exit path, including panics.
type Correlation struct {
	SessionID    string
	EncryptedKey string
	KeyEncoding  payloadDomain.KeyEncoding
}

// WithCorrelation stores the encryption correlation in the context.
// Called by the request decryption middleware after a successful decrypt.
func WithCorrelation(ctx context.Context, correlation *Correlation) context.Context {
	return context.WithValue(ctx, correlationKey{}, correlation)
}

// GetCorrelation retrieves the encryption correlation from the context.
// Returns (nil, false) when the inbound request was not encrypted.
func GetCorrelation(ctx context.Context) (*Correlation, bool) {
	correlation, ok := ctx.Value(correlationKey{}).(*Correlation)
	return correlation, ok
}
