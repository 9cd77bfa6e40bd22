package usecase

import (
	"context"
	"crypto/rsa"

	"github.com/epiccms/cardvault/internal/keystore"
	payloadDomain "github.com/epiccms/cardvault/internal/payload/domain"
)

// SessionKeyStore defines the session key operations the codec depends on.
// *keystore.Store satisfies this interface.
type SessionKeyStore interface {
	Generate() (*keystore.Session, error)
	LookupPrivateKey(sessionID string) (*rsa.PrivateKey, error)
	Invalidate(sessionID string)
	ActiveCount() int
}

// PayloadCodec defines the hybrid encryption operations exposed to the HTTP layer.
type PayloadCodec interface {
	// IssuePublicKey creates a fresh session and returns its public-key grant.
	IssuePublicKey(ctx context.Context) (*payloadDomain.PublicKeyGrant, error)

	// ActiveSessionCount reports how many sessions are currently issued.
	ActiveSessionCount(ctx context.Context) int

	// InvalidateSession consumes a session. Idempotent.
	InvalidateSession(ctx context.Context, sessionID string)

	// HybridDecrypt resolves the envelope's session, unwraps the AES key and
	// returns the decrypted plaintext body.
	//
	// Fails with ErrAuthenticationFailed when the session cannot be resolved,
	// ErrDecryptionFailed / ErrIntegrityFailure on crypto failures, and
	// ErrDeserializationFailed when the plaintext is not structured JSON.
	HybridDecrypt(ctx context.Context, envelope *payloadDomain.Envelope) ([]byte, error)

	// HybridEncrypt re-unwraps the wrapped key held by the caller's session and
	// seals plaintext into a response envelope carrying the same sessionId and
	// encryptedKey. No new key material is generated.
	HybridEncrypt(ctx context.Context, plaintext []byte, sessionID string, encryptedKey string, keyEncoding payloadDomain.KeyEncoding) (*payloadDomain.Envelope, error)
}
