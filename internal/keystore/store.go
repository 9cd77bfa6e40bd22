// Package keystore manages ephemeral RSA session keys for the hybrid
// encryption handshake.
//
// Keys live only in process memory, are bounded by a TTL, and are removed
// the first time they are consumed. A background sweeper reclaims keys that
// expire without ever being used.
package keystore

import (
	"context"
	"crypto/rsa"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
)

// KeyPairGenerator produces the RSA key pair backing a session.
type KeyPairGenerator interface {
	GenerateKeyPair() (*rsa.PrivateKey, error)
}

// Session is an issued encryption session: an opaque id bound to a key pair
// with a fixed lifetime.
type Session struct {
	ID        string
	PublicKey *rsa.PublicKey
	IssuedAt  time.Time
	TTL       time.Duration
}

type entry struct {
	privateKey *rsa.PrivateKey
	expiresAt  time.Time
}

// Store holds session private keys in memory.
//
// All methods are safe for concurrent use. Lookup, Invalidate and the sweeper
// all report a key's absence identically; a caller cannot tell "never issued"
// from "expired" from "already consumed".
type Store struct {
	generator     KeyPairGenerator
	ttl           time.Duration
	sweepInterval time.Duration
	logger        *slog.Logger

	mu       sync.Mutex
	sessions map[string]entry
}

// NewStore creates a session key store. ttl bounds how long an issued key may
// remain unused; sweepInterval controls how often expired keys are reclaimed.
func NewStore(generator KeyPairGenerator, ttl, sweepInterval time.Duration, logger *slog.Logger) *Store {
	return &Store{
		generator:     generator,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		logger:        logger,
		sessions:      make(map[string]entry),
	}
}

// Generate creates a fresh session: a new RSA key pair under a new random id.
// The private key never leaves the store.
func (s *Store) Generate() (*Session, error) {
	key, err := s.generator.GenerateKeyPair()
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	now := time.Now()

	s.mu.Lock()
	s.sessions[id.String()] = entry{
		privateKey: key,
		expiresAt:  now.Add(s.ttl),
	}
	s.mu.Unlock()

	return &Session{
		ID:        id.String(),
		PublicKey: &key.PublicKey,
		IssuedAt:  now,
		TTL:       s.ttl,
	}, nil
}

// LookupPrivateKey returns the private key for a live session.
//
// An unknown, expired or already-invalidated id all return
// ErrAuthenticationFailed with no further distinction. Expired entries
// encountered here are deleted immediately rather than waiting for the
// sweeper.
func (s *Store) LookupPrivateKey(sessionID string) (*rsa.PrivateKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	if time.Now().After(e.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, cryptoDomain.ErrAuthenticationFailed
	}
	return e.privateKey, nil
}

// Invalidate removes a session. Invalidating an absent session is a no-op,
// so the call is idempotent and safe on every response path.
func (s *Store) Invalidate(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// ActiveCount reports the number of sessions currently held, including any
// that expired but have not been swept yet.
func (s *Store) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run sweeps expired sessions on a fixed interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting session key sweeper",
			slog.Duration("ttl", s.ttl),
			slog.Duration("interval", s.sweepInterval),
		)
	}

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("stopping session key sweeper")
			}
			return ctx.Err()
		case <-ticker.C:
			removed := s.sweep(time.Now())
			if removed > 0 && s.logger != nil {
				s.logger.Info("swept expired session keys", slog.Int("removed", removed))
			}
		}
	}
}

// sweep removes entries that expired before now. Expired ids are collected
// first and then deleted one per lock acquisition, so request-path lookups
// never wait behind a full-store mutation. Each deletion re-checks expiry
// under the lock; entries consumed in between are simply skipped.
func (s *Store) sweep(now time.Time) int {
	s.mu.Lock()
	var expired []string
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	removed := 0
	for _, id := range expired {
		s.mu.Lock()
		if e, ok := s.sessions[id]; ok && now.After(e.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
		s.mu.Unlock()
	}
	return removed
}
