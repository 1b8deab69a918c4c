package crud

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/vivionix/vivionix-admin/internal/apiclient"
	"github.com/vivionix/vivionix-admin/internal/shared"
)

type vendor struct {
	ID          int64           `json:"id,omitempty" form:"-"`
	Name        string          `json:"name" form:"name" validate:"required,max=100"`
	Email       string          `json:"email" form:"email" validate:"omitempty,email"`
	Active      bool            `json:"active" form:"active"`
	CreditLimit decimal.Decimal `json:"credit_limit" form:"credit_limit" validate:"gte=0"`
	Since       *shared.Date    `json:"since" form:"since"`
	CityID      int64           `json:"city_id" form:"city_id,omitempty"`
}

func (v vendor) RecordID() int64 { return v.ID }

type memStore struct {
	mu        sync.Mutex
	items     map[int64]vendor
	nextID    int64
	listCalls int
	failWith  error
}

func newMemStore(items ...vendor) *memStore {
	s := &memStore{items: make(map[int64]vendor)}
	for _, item := range items {
		if item.ID > s.nextID {
			s.nextID = item.ID
		}
		s.items[item.ID] = item
	}
	return s
}

func (s *memStore) List(context.Context) ([]vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := make([]vendor, 0, len(s.items))
	for _, v := range s.items {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Get(_ context.Context, id int64) (vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[id]
	if !ok {
		return vendor{}, &apiclient.APIError{Status: 404, Message: "Not found."}
	}
	return v, nil
}

func (s *memStore) Create(_ context.Context, v vendor) (vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return vendor{}, s.failWith
	}
	s.nextID++
	v.ID = s.nextID
	s.items[v.ID] = v
	return v, nil
}

func (s *memStore) Update(_ context.Context, id int64, v vendor) (vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return vendor{}, s.failWith
	}
	if _, ok := s.items[id]; !ok {
		return vendor{}, &apiclient.APIError{Status: 404}
	}
	v.ID = id
	s.items[id] = v
	return v, nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.items[id]; !ok {
		return &apiclient.APIError{Status: 404}
	}
	delete(s.items, id)
	return nil
}
