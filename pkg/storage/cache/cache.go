// Package cache decorates a storage.Store with a two-level event cache:
// an in-process expirable LRU in front of an optional shared Redis.
package cache

import (
	"context"
	"errors"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

const (
	listKey     = "events:list"
	eventPrefix = "event:"
)

// Stats reports cache effectiveness
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Store caches event reads. All other operations pass through.
// Event writes invalidate both levels before returning.
type Store struct {
	storage.Store

	l1     *lru.LRU[string, []*storage.Event]
	redis  *RedisClient
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New wraps backend. redis may be nil for an L1-only cache.
func New(backend storage.Store, config storage.Config, redis *RedisClient) *Store {
	size := config.L1CacheSize
	if size < 1 {
		size = 1
	}

	return &Store{
		Store: backend,
		l1:    lru.NewLRU[string, []*storage.Event](size, nil, config.CacheTTL),
		redis: redis,
	}
}

func cloneEvents(events []*storage.Event) []*storage.Event {
	out := make([]*storage.Event, len(events))
	for i, e := range events {
		c := *e
		out[i] = &c
	}
	return out
}

func (s *Store) lookup(ctx context.Context, key string) ([]*storage.Event, bool) {
	if events, ok := s.l1.Get(key); ok {
		s.hits.Add(1)
		return cloneEvents(events), true
	}

	if s.redis != nil {
		var events []*storage.Event
		if found, err := s.redis.GetJSON(ctx, key, &events); err == nil && found {
			s.l1.Add(key, events)
			s.hits.Add(1)
			return cloneEvents(events), true
		}
	}

	s.misses.Add(1)
	return nil, false
}

func (s *Store) fill(ctx context.Context, key string, events []*storage.Event) {
	cached := cloneEvents(events)
	s.l1.Add(key, cached)
	if s.redis != nil {
		// Best effort; a failed write only costs a future miss
		_ = s.redis.SetJSON(ctx, key, cached)
	}
}

func (s *Store) invalidate(ctx context.Context, id string) {
	s.l1.Remove(listKey)
	s.l1.Remove(eventPrefix + id)
	if s.redis != nil {
		_ = s.redis.Del(ctx, listKey, eventPrefix+id)
	}
}

// GetEvent returns a cached event or loads it from the backend
func (s *Store) GetEvent(ctx context.Context, id string) (*storage.Event, error) {
	key := eventPrefix + id
	if events, ok := s.lookup(ctx, key); ok && len(events) == 1 {
		return events[0], nil
	}

	event, err := s.Store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, key, []*storage.Event{event})
	return event, nil
}

// ListEvents returns the cached listing or loads it from the backend
func (s *Store) ListEvents(ctx context.Context) ([]*storage.Event, error) {
	if events, ok := s.lookup(ctx, listKey); ok {
		return events, nil
	}

	events, err := s.Store.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, listKey, events)
	return events, nil
}

// CreateEvent writes through and drops the cached listing
func (s *Store) CreateEvent(ctx context.Context, event *storage.Event) error {
	if err := s.Store.CreateEvent(ctx, event); err != nil {
		return err
	}
	s.invalidate(ctx, event.ID)
	return nil
}

// UpdateEvent writes through and drops affected entries
func (s *Store) UpdateEvent(ctx context.Context, event *storage.Event) error {
	if err := s.Store.UpdateEvent(ctx, event); err != nil {
		return err
	}
	s.invalidate(ctx, event.ID)
	return nil
}

// DeleteEvent writes through and drops affected entries
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	if err := s.Store.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// HealthCheck checks the backend and Redis
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.Store.HealthCheck(ctx); err != nil {
		return err
	}
	if s.redis != nil {
		return s.redis.Ping(ctx)
	}
	return nil
}

// Close closes Redis and the backend
func (s *Store) Close() error {
	var redisErr error
	if s.redis != nil {
		redisErr = s.redis.Close()
	}
	return errors.Join(s.Store.Close(), redisErr)
}

// Stats returns hit and miss counts
func (s *Store) Stats() Stats {
	return Stats{Hits: s.hits.Load(), Misses: s.misses.Load()}
}
