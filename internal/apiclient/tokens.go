package apiclient

import (
	"context"
	"sync"
	"time"
)

// Tokens is the credential pair issued by the API plus the last time it was used.
type Tokens struct {
	Access       string    `json:"access"`
	Refresh      string    `json:"refresh"`
	LastActivity time.Time `json:"last_activity"`
}

// Empty reports whether no access token is held.
func (t Tokens) Empty() bool {
	return t.Access == ""
}

// Idle reports whether more than timeout has elapsed since the last activity.
func (t Tokens) Idle(now time.Time, timeout time.Duration) bool {
	if timeout <= 0 || t.LastActivity.IsZero() {
		return false
	}
	return now.Sub(t.LastActivity) > timeout
}

// TokenStore persists credentials for one user agent.
type TokenStore interface {
	Load(ctx context.Context) (Tokens, error)
	Save(ctx context.Context, tokens Tokens) error
	Clear(ctx context.Context) error
}

type tokenStoreKey struct{}

// WithTokenStore attaches the credential store used by Client.Do.
func WithTokenStore(ctx context.Context, store TokenStore) context.Context {
	return context.WithValue(ctx, tokenStoreKey{}, store)
}

// TokenStoreFromContext returns the attached credential store, or nil.
func TokenStoreFromContext(ctx context.Context) TokenStore {
	store, _ := ctx.Value(tokenStoreKey{}).(TokenStore)
	return store
}

// MemoryTokenStore keeps credentials in process memory.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens Tokens
}

// NewMemoryTokenStore seeds a store with tokens.
func NewMemoryTokenStore(tokens Tokens) *MemoryTokenStore {
	return &MemoryTokenStore{tokens: tokens}
}

// Load returns the stored tokens.
func (s *MemoryTokenStore) Load(context.Context) (Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

// Save replaces the stored tokens.
func (s *MemoryTokenStore) Save(_ context.Context, tokens Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = tokens
	return nil
}

// Clear drops the stored tokens.
func (s *MemoryTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = Tokens{}
	return nil
}
