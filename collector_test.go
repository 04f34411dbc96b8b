package constructioncarbon

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snapshots []Snapshot
	err       error
}

func (s staticSource) Snapshots(ctx context.Context) ([]Snapshot, error) {
	return s.snapshots, s.err
}

// countingEvaluator reports the quantity of the first line as scope 1.
type countingEvaluator struct {
	calls atomic.Int32
}

func (e *countingEvaluator) Evaluate(snapshot Snapshot) (Report, error) {
	e.calls.Add(1)
	if len(snapshot.Lines) == 0 {
		return Report{}, NewStructuralError("test.Evaluate", "lines", ErrMissingTotals)
	}
	if math.IsNaN(snapshot.Lines[0].Quantity) {
		return Report{}, NewStructuralError("test.Evaluate", "lines[0].quantity", ErrMalformedNumber)
	}
	totals := ScopeTotals{Scope1: KgCO2e(snapshot.Lines[0].Quantity)}
	return Report{SnapshotID: snapshot.ID, Scope: totals, ScopeDisplay: totals.Display()}, nil
}

type mapCache struct {
	mu sync.Mutex
	m  map[string]any
}

func (c *mapCache) GetOrSet(ctx context.Context, key string, valueFunc func(ctx context.Context) (any, error), ttl ...time.Duration) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, found := c.m[key]; found {
		return v, nil
	}
	v, err := valueFunc(ctx)
	if err != nil {
		return nil, err
	}
	c.m[key] = v
	return v, nil
}

func snapshots(n int) []Snapshot {
	result := make([]Snapshot, 0, n)
	for i := range n {
		result = append(result, Snapshot{
			ID:    fmt.Sprintf("site-%02d", i),
			Lines: Lines{{Type: ActivityFuel, Quantity: float64(i + 1), Factor: FactorRef{Category: "fuel", Key: "diesel_stationary"}}},
		})
	}
	return result
}

func TestCollectorReports(t *testing.T) {
	evaluator := new(countingEvaluator)
	broken := Snapshot{ID: "broken"}
	collector := NewCollector(
		WithSource(staticSource{snapshots: snapshots(8)}),
		WithSource(staticSource{snapshots: []Snapshot{broken}}),
		WithEvaluator(evaluator),
	)

	reports, errs, err := collector.Reports(t.Context())
	require.NoError(t, err)
	assert.Len(t, reports, 8)
	require.Len(t, errs, 1)

	snapErr := new(SnapshotErr)
	require.ErrorAs(t, errs[0], &snapErr)
	assert.Equal(t, "broken", snapErr.SnapshotID)
	assert.ErrorIs(t, errs[0], ErrMissingTotals)
	assert.Contains(t, errs[0].Error(), `snapshot "broken"`)

	sum := KgCO2e(0)
	for _, report := range reports {
		sum += report.Scope.Scope1
	}
	assert.Equal(t, KgCO2e(36), sum)
	assert.Equal(t, int32(9), evaluator.calls.Load())
}

func TestCollectorCachesByFingerprint(t *testing.T) {
	evaluator := new(countingEvaluator)
	collector := NewCollector(
		WithSource(staticSource{snapshots: snapshots(3)}),
		WithEvaluator(evaluator),
	)
	collector.SetOpt(WithReportCache(&mapCache{m: make(map[string]any)}))

	for range 3 {
		reports, errs, err := collector.Reports(t.Context())
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Len(t, reports, 3)
	}
	assert.Equal(t, int32(3), evaluator.calls.Load())
}

func TestCollectorUnhashableSnapshot(t *testing.T) {
	evaluator := new(countingEvaluator)
	malformed := snapshots(2)
	malformed[1].Lines[0].Quantity = math.NaN()
	collector := NewCollector(
		WithSource(staticSource{snapshots: malformed}),
		WithEvaluator(evaluator),
		WithReportCache(&mapCache{m: make(map[string]any)}),
	)

	reports, errs, err := collector.Reports(t.Context())
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	require.Len(t, errs, 1)

	snapErr := new(SnapshotErr)
	require.ErrorAs(t, errs[0], &snapErr)
	assert.Equal(t, "site-01", snapErr.SnapshotID)
	structErr := new(StructuralError)
	require.ErrorAs(t, errs[0], &structErr)
	assert.Equal(t, "lines[0].quantity", structErr.Field)
	assert.ErrorIs(t, errs[0], ErrMalformedNumber)
}

func TestCollectorFailures(t *testing.T) {
	_, _, err := NewCollector(WithSource(staticSource{})).Reports(t.Context())
	assert.ErrorContains(t, err, "no evaluator")

	unreachable := errors.New("bucket unreachable")
	_, _, err = NewCollector(
		WithSource(staticSource{snapshots: snapshots(2)}),
		WithSource(staticSource{err: unreachable}),
		WithEvaluator(new(countingEvaluator)),
	).Reports(t.Context())
	assert.ErrorIs(t, err, unreachable)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, _, err = NewCollector(
		WithSource(staticSource{snapshots: snapshots(20)}),
		WithEvaluator(new(countingEvaluator)),
	).Reports(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
