package n2f

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// safetyMargin keeps a token from being used when it would expire
// mid-call. A token within the margin of its expiry counts as stale.
const safetyMargin = 60 * time.Second

// TokenState is the process-wide bearer credential. It is replaced
// wholesale on refresh, never partially mutated.
type TokenState struct {
	Token     string
	ExpiresAt time.Time
}

// TokenCache owns the cached credential and its check-then-refresh logic.
// Acquire is safe for concurrent use: the mutex protects the cached state
// and singleflight collapses concurrent refreshes into one upstream call.
type TokenCache struct {
	mu    sync.Mutex
	sf    singleflight.Group
	state *TokenState

	fetch func(ctx context.Context) (TokenState, error)
	now   func() time.Time
}

// NewTokenCache creates a token cache around the given refresh function.
func NewTokenCache(fetch func(ctx context.Context) (TokenState, error)) *TokenCache {
	return &TokenCache{
		fetch: fetch,
		now:   time.Now,
	}
}

// Acquire returns a valid bearer token, refreshing it from the auth
// endpoint only when the cached one is missing or inside the safety
// margin of its expiry.
func (tc *TokenCache) Acquire(ctx context.Context) (string, error) {
	if token, ok := tc.cached(); ok {
		return token, nil
	}

	v, err, _ := tc.sf.Do("auth", func() (any, error) {
		// Re-check after winning the flight; a concurrent caller may have
		// refreshed already.
		if token, ok := tc.cached(); ok {
			return token, nil
		}

		state, err := tc.fetch(ctx)
		if err != nil {
			return "", err
		}

		tc.mu.Lock()
		tc.state = &state
		tc.mu.Unlock()

		return state.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate discards the cached token so the next Acquire refreshes.
func (tc *TokenCache) Invalidate() {
	tc.mu.Lock()
	tc.state = nil
	tc.mu.Unlock()
}

// cached returns the cached token when it is still comfortably valid.
func (tc *TokenCache) cached() (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.state == nil || tc.state.Token == "" {
		return "", false
	}
	if !tc.state.ExpiresAt.Add(-safetyMargin).After(tc.now()) {
		return "", false
	}
	return tc.state.Token, true
}
