// Package cache keeps evaluated reports and loaded snapshots in memory.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/superdango/construction-carbon/internal/must"
)

var ErrNotFound = errors.New("cache entry not found")

// DynamicValueFunc is stored instead of a value when the entry must be
// recomputed every time it expires, like the content of a snapshot bucket.
type DynamicValueFunc func(ctx context.Context) (any, error)

type entry struct {
	mu            sync.Mutex
	expiresAt     time.Time
	v             any
	fn            DynamicValueFunc
	cacheDuration time.Duration
}

func (e *entry) isExpired() bool {
	return time.Since(e.expiresAt) > 0
}

func (e *entry) isDynamic() bool {
	return e.fn != nil
}

func (e *entry) refresh(ctx context.Context) error {
	v, err := e.fn(ctx)
	if err != nil {
		return err
	}
	e.v = v
	e.expiresAt = time.Now().Add(e.cacheDuration)
	return nil
}

// Stats counts cache lookups.
type Stats struct {
	Hits   int64
	Misses int64
}

type Memory struct {
	m          *sync.Map
	defaultTTL time.Duration
	hits       atomic.Int64
	misses     atomic.Int64
}

// NewMemory returns an empty cache. Expired entries are evicted in the
// background until ctx is done.
func NewMemory(ctx context.Context, defaultTTL time.Duration) *Memory {
	cache := &Memory{
		m:          new(sync.Map),
		defaultTTL: defaultTTL,
	}

	go cache.expirerer(ctx)

	return cache
}

func (m *Memory) Set(ctx context.Context, k string, v any, ttl ...time.Duration) error {
	defaultTTL := m.defaultTTL
	if len(ttl) > 0 {
		defaultTTL = ttl[0]
	}

	if fn, ok := v.(DynamicValueFunc); ok {
		// store dynamic value as expired to force refresh on the first Get
		m.m.Store(k, &entry{
			expiresAt:     time.Now(),
			fn:            fn,
			cacheDuration: defaultTTL,
		})

		slog.Debug("new dynamic cache entry", "key", k)

		return nil
	}

	m.m.Store(k, &entry{
		expiresAt:     time.Now().Add(defaultTTL),
		v:             v,
		cacheDuration: defaultTTL,
	})

	slog.Debug("new cache entry", "key", k)
	return nil
}

func (m *Memory) GetOrSet(ctx context.Context, key string, valueFunc func(ctx context.Context) (any, error), ttl ...time.Duration) (v any, err error) {
	v, err = m.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			v, err = valueFunc(ctx)
			if err != nil {
				return nil, err
			}

			err = m.Set(ctx, key, v, ttl...)
			if err != nil {
				return nil, err
			}

			return v, nil
		}
		return nil, err
	}

	return v, nil
}

func (m *Memory) Get(ctx context.Context, k string) (v any, err error) {
	v, found := m.m.Load(k)
	if !found {
		m.misses.Add(1)
		return nil, ErrNotFound
	}

	entry, ok := v.(*entry)
	must.Assert(ok, "loaded value is not an entry")

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.isExpired() && !entry.isDynamic() {
		slog.Debug("cache expired", "key", k)
		m.m.CompareAndDelete(k, entry)
		m.misses.Add(1)
		return nil, ErrNotFound
	}

	if entry.isExpired() && entry.isDynamic() {
		m.misses.Add(1)
		if err := entry.refresh(ctx); err != nil {
			return nil, err
		}
		slog.Debug("dynamic entry refreshed", "key", k)
		return entry.v, nil
	}

	m.hits.Add(1)
	return entry.v, nil
}

// Stats returns the lookup counters since the cache creation.
func (m *Memory) Stats() Stats {
	return Stats{
		Hits:   m.hits.Load(),
		Misses: m.misses.Load(),
	}
}

func (m *Memory) expirerer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		m.m.Range(func(k, v any) bool {
			entry, ok := v.(*entry)
			must.Assert(ok, "loaded value is not an entry")

			entry.mu.Lock()
			defer entry.mu.Unlock()

			if entry.isExpired() && !entry.isDynamic() {
				slog.Debug("cache expired", "key", k)
				m.m.CompareAndDelete(k, entry)
			}

			if entry.isExpired() && entry.isDynamic() {
				if err := entry.refresh(ctx); err != nil {
					slog.Warn("failed to refresh dynamic entry", "key", k, "err", err.Error())
				}
				entry.expiresAt = time.Now().Add(entry.cacheDuration)
			}

			return true
		})
	}
}
