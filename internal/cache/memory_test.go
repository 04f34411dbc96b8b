package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	slog.SetLogLoggerLevel(slog.LevelDebug)

	memory := NewMemory(t.Context(), 1*time.Second)
	err := memory.Set(t.Context(), "k1", "v1", 0*time.Second)
	assert.NoError(t, err)

	// should be expired as TTL is 0 second
	_, err = memory.Get(t.Context(), "k1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = memory.Set(t.Context(), "d1", DynamicValueFunc(func(ctx context.Context) (any, error) {
		return "v1", nil
	}))
	assert.NoError(t, err)

	v, err := memory.Get(t.Context(), "d1")
	assert.NoError(t, err)
	assert.Equal(t, "v1", v)

	err = memory.Set(t.Context(), "d2", DynamicValueFunc(func(ctx context.Context) (any, error) {
		return "v1", nil
	}), 0)
	assert.NoError(t, err)

	// even if d2 is expired, value is dynamically refreshed
	v, err = memory.Get(t.Context(), "d2")
	assert.NoError(t, err)
	assert.Equal(t, "v1", v)

	err = memory.Set(t.Context(), "d3", DynamicValueFunc(func(ctx context.Context) (any, error) {
		return nil, fmt.Errorf("expected error")
	}), 0)
	assert.NoError(t, err)

	_, err = memory.Get(t.Context(), "d3")
	assert.Error(t, err)
}

func TestMemoryGetOrSet(t *testing.T) {
	memory := NewMemory(t.Context(), time.Minute)

	var calls atomic.Int32
	compute := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "report", nil
	}

	for range 3 {
		v, err := memory.GetOrSet(t.Context(), "fingerprint", compute)
		require.NoError(t, err)
		assert.Equal(t, "report", v)
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, memory.Stats())

	_, err := memory.GetOrSet(t.Context(), "broken", func(ctx context.Context) (any, error) {
		return nil, fmt.Errorf("evaluation failed")
	})
	assert.EqualError(t, err, "evaluation failed")

	_, err = memory.Get(t.Context(), "broken")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryExpirerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	memory := NewMemory(ctx, time.Millisecond)
	require.NoError(t, memory.Set(ctx, "k", "v"))
	cancel()

	time.Sleep(10 * time.Millisecond)
	_, err := memory.Get(t.Context(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
