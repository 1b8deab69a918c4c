// Package crudtest provides in-memory stores and request helpers for tests
// of resource handlers.
package crudtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/crud"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

// MemStore is a crud.Store kept in a map.
type MemStore[T crud.Record] struct {
	mu     sync.Mutex
	items  map[int64]T
	nextID int64
	setID  func(*T, int64)
	// Err, when set, is returned by every call.
	Err error
}

// NewMemStore seeds a store. setID assigns ids on Create.
func NewMemStore[T crud.Record](setID func(*T, int64), items ...T) *MemStore[T] {
	s := &MemStore[T]{items: make(map[int64]T), setID: setID}
	for _, item := range items {
		id := item.RecordID()
		if id > s.nextID {
			s.nextID = id
		}
		s.items[id] = item
	}
	return s
}

// List returns the items ordered by id.
func (s *MemStore[T]) List(context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordID() < out[j].RecordID() })
	return out, nil
}

// Get returns apiclient.ErrNotFound for unknown ids.
func (s *MemStore[T]) Get(_ context.Context, id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	item, ok := s.items[id]
	if !ok {
		return zero, apiclient.ErrNotFound
	}
	return item, nil
}

// Create assigns the next id.
func (s *MemStore[T]) Create(_ context.Context, record T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return record, s.Err
	}
	s.nextID++
	s.setID(&record, s.nextID)
	s.items[s.nextID] = record
	return record, nil
}

// Update replaces an existing record.
func (s *MemStore[T]) Update(_ context.Context, id int64, record T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return record, s.Err
	}
	if _, ok := s.items[id]; !ok {
		return record, apiclient.ErrNotFound
	}
	s.setID(&record, id)
	s.items[id] = record
	return record, nil
}

// Delete removes a record.
func (s *MemStore[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.items[id]; !ok {
		return apiclient.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// Item returns a stored record.
func (s *MemStore[T]) Item(id int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	return item, ok
}

// Len counts the stored records.
func (s *MemStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Session returns a signed-in session that is not backed by Redis.
func Session(t *testing.T, username string) *shared.Session {
	t.Helper()
	sm := shared.NewSessionManager(nil, "vivionix_test", time.Hour, false)
	sess, err := sm.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetUsername(username)
	return sess
}

// WithSession attaches sess and a CSRF token to every request.
func WithSession(sess *shared.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.ContextWithSession(r.Context(), sess)
			ctx = shared.ContextWithCSRFToken(ctx, "csrf-test")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
