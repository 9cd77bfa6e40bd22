package keystore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	cryptoDomain "github.com/epiccms/cardvault/internal/crypto/domain"
	cryptoService "github.com/epiccms/cardvault/internal/crypto/service"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	return NewStore(cryptoService.NewRSAOAEPCipher(), ttl, time.Minute, nil)
}

func TestStore_Generate(t *testing.T) {
	store := newTestStore(t, time.Minute)

	t.Run("issues usable session", func(t *testing.T) {
		session, err := store.Generate()
		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.NotNil(t, session.PublicKey)
		assert.Equal(t, time.Minute, session.TTL)

		key, err := store.LookupPrivateKey(session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.PublicKey.N, key.PublicKey.N)
	})

	t.Run("session ids are unique", func(t *testing.T) {
		s1, err := store.Generate()
		require.NoError(t, err)

		s2, err := store.Generate()
		require.NoError(t, err)

		assert.NotEqual(t, s1.ID, s2.ID)
		assert.NotEqual(t, s1.PublicKey.N, s2.PublicKey.N)
	})
}

func TestStore_LookupPrivateKey(t *testing.T) {
	t.Run("unknown session", func(t *testing.T) {
		store := newTestStore(t, time.Minute)

		key, err := store.LookupPrivateKey("does-not-exist")
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
		assert.Nil(t, key)
	})

	t.Run("expired session is rejected and reclaimed", func(t *testing.T) {
		store := newTestStore(t, -time.Second) // already expired on issue

		session, err := store.Generate()
		require.NoError(t, err)
		require.Equal(t, 1, store.ActiveCount())

		key, err := store.LookupPrivateKey(session.ID)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
		assert.Nil(t, key)
		assert.Equal(t, 0, store.ActiveCount())
	})

	t.Run("invalidated session is indistinguishable from unknown", func(t *testing.T) {
		store := newTestStore(t, time.Minute)

		session, err := store.Generate()
		require.NoError(t, err)

		store.Invalidate(session.ID)

		_, errInvalidated := store.LookupPrivateKey(session.ID)
		_, errUnknown := store.LookupPrivateKey("never-issued")
		assert.Equal(t, errUnknown, errInvalidated)
	})
}

func TestStore_Invalidate(t *testing.T) {
	store := newTestStore(t, time.Minute)

	session, err := store.Generate()
	require.NoError(t, err)

	store.Invalidate(session.ID)
	assert.Equal(t, 0, store.ActiveCount())

	// Idempotent on absent sessions.
	store.Invalidate(session.ID)
	store.Invalidate("never-issued")
}

func TestStore_ActiveCount(t *testing.T) {
	store := newTestStore(t, time.Minute)
	assert.Equal(t, 0, store.ActiveCount())

	s1, err := store.Generate()
	require.NoError(t, err)

	_, err = store.Generate()
	require.NoError(t, err)
	assert.Equal(t, 2, store.ActiveCount())

	store.Invalidate(s1.ID)
	assert.Equal(t, 1, store.ActiveCount())
}

func TestStore_Sweep(t *testing.T) {
	store := newTestStore(t, time.Minute)

	_, err := store.Generate()
	require.NoError(t, err)

	_, err = store.Generate()
	require.NoError(t, err)
	require.Equal(t, 2, store.ActiveCount())

	t.Run("live sessions survive", func(t *testing.T) {
		removed := store.sweep(time.Now())
		assert.Equal(t, 0, removed)
		assert.Equal(t, 2, store.ActiveCount())
	})

	t.Run("expired sessions are removed", func(t *testing.T) {
		removed := store.sweep(time.Now().Add(2 * time.Minute))
		assert.Equal(t, 2, removed)
		assert.Equal(t, 0, store.ActiveCount())
	})
}

func TestStore_SweepKeepsLiveSessions(t *testing.T) {
	store := newTestStore(t, time.Minute)

	expired, err := store.Generate()
	require.NoError(t, err)

	live, err := store.Generate()
	require.NoError(t, err)

	// Backdate one entry so the sweep sees a mix of live and expired.
	store.mu.Lock()
	e := store.sessions[expired.ID]
	e.expiresAt = time.Now().Add(-time.Second)
	store.sessions[expired.ID] = e
	store.mu.Unlock()

	removed := store.sweep(time.Now())
	assert.Equal(t, 1, removed)

	_, err = store.LookupPrivateKey(expired.ID)
	assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)

	_, err = store.LookupPrivateKey(live.ID)
	assert.NoError(t, err)
}

func TestStore_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewStore(cryptoService.NewRSAOAEPCipher(), 10*time.Millisecond, 20*time.Millisecond, nil)

	_, err := store.Generate()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- store.Run(ctx)
	}()

	assert.Eventually(t, func() bool {
		return store.ActiveCount() == 0
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := newTestStore(t, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				session, err := store.Generate()
				require.NoError(t, err)

				_, err = store.LookupPrivateKey(session.ID)
				require.NoError(t, err)

				store.Invalidate(session.ID)

				_, err = store.LookupPrivateKey(session.ID)
				require.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
			}
		}()
	}

	// Sweeps interleave with lookups without blocking them wholesale.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 20; j++ {
			store.sweep(time.Now())
		}
	}()
	wg.Wait()

	assert.Equal(t, 0, store.ActiveCount())
}
