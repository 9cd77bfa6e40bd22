// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
)

// PublicKeyResponse is the public-key issuance response.
// The timestamp is serialized as ISO-8601.
type PublicKeyResponse struct {
	SessionID  string    `json:"sessionId"`
	PublicKey  string    `json:"publicKey"` // Base64-encoded SPKI
	Timestamp  time.Time `json:"timestamp"`
	TTLSeconds int       `json:"ttlSeconds"`
}

// MapPublicKeyResponse converts a public-key grant to an API response.
func MapPublicKeyResponse(grant *payloadDomain.PublicKeyGrant) PublicKeyResponse {
	return PublicKeyResponse{
		SessionID:  grant.SessionID,
		PublicKey:  grant.PublicKey,
		Timestamp:  grant.Timestamp,
		TTLSeconds: grant.TTLSeconds,
	}
}

// KeyCountResponse reports how many encryption sessions are currently live.
type KeyCountResponse struct {
	ActiveSessions int `json:"activeSessions"`
}
