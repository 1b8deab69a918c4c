package crud

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivionix/vivionix-admin/internal/shared"
)

// Store is the persistence surface of a resource. apiclient.Resource satisfies it.
type Store[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, record T) (T, error)
	Update(ctx context.Context, id int64, record T) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Option is one entry of a select input.
type Option struct {
	Value string
	Label string
}

// Lookup loads select options, usually from another resource.
type Lookup func(ctx context.Context) ([]Option, error)

// Options builds a Lookup from a store.
func Options[T Record](store Store[T], label func(T) string) Lookup {
	return func(ctx context.Context) ([]Option, error) {
		items, err := store.List(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Option, 0, len(items))
		for _, item := range items {
			out = append(out, Option{Value: strconv.FormatInt(item.RecordID(), 10), Label: label(item)})
		}
		return out, nil
	}
}

const listCachePrefix = "vivionix:list:"

// CachedStore caches List results in Redis per user. Every successful mutation
// bumps the collection version so stale keys are never read again.
type CachedStore[T any] struct {
	next      Store[T]
	client    *redis.Client
	ttl       time.Duration
	namespace string
	logger    *slog.Logger
}

// NewCachedStore wraps next. A nil client or non-positive ttl disables caching.
func NewCachedStore[T any](next Store[T], client *redis.Client, namespace string, ttl time.Duration, logger *slog.Logger) Store[T] {
	if client == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedStore[T]{next: next, client: client, ttl: ttl, namespace: namespace, logger: logger}
}

// List returns the cached collection or loads and caches it.
func (s *CachedStore[T]) List(ctx context.Context) ([]T, error) {
	key, err := s.key(ctx)
	if err != nil {
		s.logger.Warn("list cache version", slog.String("namespace", s.namespace), slog.Any("error", err))
		return s.next.List(ctx)
	}
	payload, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		var items []T
		if err := json.Unmarshal(payload, &items); err == nil {
			return items, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("list cache read", slog.String("namespace", s.namespace), slog.Any("error", err))
	}
	items, err := s.next.List(ctx)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
			s.logger.Warn("list cache write", slog.String("namespace", s.namespace), slog.Any("error", err))
		}
	}
	return items, nil
}

// Get always reads through so detail pages are fresh.
func (s *CachedStore[T]) Get(ctx context.Context, id int64) (T, error) {
	return s.next.Get(ctx, id)
}

// Create stores a record and invalidates the collection.
func (s *CachedStore[T]) Create(ctx context.Context, record T) (T, error) {
	out, err := s.next.Create(ctx, record)
	if err == nil {
		s.Bump(ctx)
	}
	return out, err
}

// Update stores a record and invalidates the collection.
func (s *CachedStore[T]) Update(ctx context.Context, id int64, record T) (T, error) {
	out, err := s.next.Update(ctx, id, record)
	if err == nil {
		s.Bump(ctx)
	}
	return out, err
}

// Delete removes a record and invalidates the collection.
func (s *CachedStore[T]) Delete(ctx context.Context, id int64) error {
	err := s.next.Delete(ctx, id)
	if err == nil {
		s.Bump(ctx)
	}
	return err
}

// Bump invalidates every cached page of the collection.
func (s *CachedStore[T]) Bump(ctx context.Context) {
	if err := s.client.Incr(context.WithoutCancel(ctx), s.versionKey()).Err(); err != nil {
		s.logger.Warn("list cache bump", slog.String("namespace", s.namespace), slog.Any("error", err))
	}
}

func (s *CachedStore[T]) versionKey() string {
	return listCachePrefix + s.namespace + ":version"
}

func (s *CachedStore[T]) key(ctx context.Context) (string, error) {
	ver, err := s.client.Get(ctx, s.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		ver, err = 0, nil
	}
	if err != nil {
		return "", err
	}
	return listCachePrefix + s.namespace + ":" + cacheUser(ctx) + ":" + strconv.FormatInt(ver, 10), nil
}

func cacheUser(ctx context.Context) string {
	if sess := shared.SessionFromContext(ctx); sess != nil && sess.Username() != "" {
		return sess.Username()
	}
	return "_service"
}
