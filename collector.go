package constructioncarbon

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"
)

// SnapshotSource supplies calculation snapshots, from a file, a bucket or a
// generator.
type SnapshotSource interface {
	Snapshots(ctx context.Context) ([]Snapshot, error)
}

// Evaluator computes the report of one snapshot.
type Evaluator interface {
	Evaluate(snapshot Snapshot) (Report, error)
}

// ReportCache keeps reports under the fingerprint of their snapshot.
type ReportCache interface {
	GetOrSet(ctx context.Context, key string, valueFunc func(ctx context.Context) (any, error), ttl ...time.Duration) (any, error)
}

// SnapshotErr is returned when one snapshot cannot be evaluated. It does not
// stop the collection of the other snapshots.
type SnapshotErr struct {
	SnapshotID string
	Err        error
}

func (e *SnapshotErr) Error() string {
	return fmt.Sprintf("snapshot %q: %s", e.SnapshotID, e.Err.Error())
}

func (e *SnapshotErr) Unwrap() error {
	return e.Err
}

type CollectorOptions func(c *Collector)

func WithSource(source SnapshotSource) CollectorOptions {
	return func(c *Collector) {
		c.sources = append(c.sources, source)
	}
}

func WithEvaluator(evaluator Evaluator) CollectorOptions {
	return func(c *Collector) {
		c.evaluator = evaluator
	}
}

func WithReportCache(cache ReportCache) CollectorOptions {
	return func(c *Collector) {
		c.cache = cache
	}
}

// Collector loads snapshots from its sources and evaluates them.
type Collector struct {
	sources   []SnapshotSource
	evaluator Evaluator
	cache     ReportCache
}

func NewCollector(opts ...CollectorOptions) *Collector {
	collector := &Collector{
		sources: make([]SnapshotSource, 0),
	}

	for _, opt := range opts {
		opt(collector)
	}

	return collector
}

func (c *Collector) SetOpt(option CollectorOptions) {
	option(c)
}

// Collect sends one report per snapshot on reports. Snapshot failures are
// sent on errs and the collection goes on. The returned error is reserved for
// sources that cannot be read.
func (c *Collector) Collect(ctx context.Context, reports chan<- *Report, errs chan<- error) error {
	if c.evaluator == nil {
		return fmt.Errorf("collector has no evaluator")
	}

	snapshots := make([]Snapshot, 0)
	for _, source := range c.sources {
		loaded, err := source.Snapshots(ctx)
		if err != nil {
			return fmt.Errorf("failed to load snapshots from %s: %w", reflect.TypeOf(source), err)
		}
		snapshots = append(snapshots, loaded...)
	}

	errg, errgctx := errgroup.WithContext(ctx)
	errg.SetLimit(5)
	for _, snapshot := range snapshots {
		snapshot := snapshot
		errg.Go(func() error {
			report, err := c.report(errgctx, snapshot)
			if err != nil {
				return send(errgctx, errs, error(&SnapshotErr{SnapshotID: snapshot.ID, Err: err}))
			}
			return send(errgctx, reports, report)
		})
	}

	return errg.Wait()
}

// Reports collects every report at once.
func (c *Collector) Reports(ctx context.Context) ([]*Report, []error, error) {
	reportsCh := make(chan *Report)
	errsCh := make(chan error)
	reports := make([]*Report, 0)
	errs := make([]error, 0)

	errg, errgctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		defer close(reportsCh)
		defer close(errsCh)
		return c.Collect(errgctx, reportsCh, errsCh)
	})

	for reportsCh != nil || errsCh != nil {
		select {
		case report, ok := <-reportsCh:
			if !ok {
				reportsCh = nil
				continue
			}
			reports = append(reports, report)
		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			errs = append(errs, err)
		}
	}

	if err := errg.Wait(); err != nil {
		return nil, nil, err
	}

	return reports, errs, nil
}

func (c *Collector) report(ctx context.Context, snapshot Snapshot) (*Report, error) {
	if c.cache == nil {
		report, err := c.evaluator.Evaluate(snapshot)
		if err != nil {
			return nil, err
		}
		return &report, nil
	}

	fingerprint, err := Fingerprint(snapshot)
	if err != nil {
		// the evaluator classifies the malformed input itself
		slog.Debug("evaluating snapshot without cache", "snapshot", snapshot.ID, "err", err.Error())
		report, err := c.evaluator.Evaluate(snapshot)
		if err != nil {
			return nil, err
		}
		return &report, nil
	}

	v, err := c.cache.GetOrSet(ctx, fingerprint, func(ctx context.Context) (any, error) {
		slog.Debug("evaluating snapshot", "snapshot", snapshot.ID, "fingerprint", fingerprint)
		report, err := c.evaluator.Evaluate(snapshot)
		if err != nil {
			return nil, err
		}
		return &report, nil
	})
	if err != nil {
		return nil, err
	}

	report, ok := v.(*Report)
	if !ok {
		return nil, fmt.Errorf("cache entry %s is not a report", fingerprint)
	}
	return report, nil
}

func send[T any](ctx context.Context, ch chan<- T, v T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case ch <- v:
		return nil
	}
}
