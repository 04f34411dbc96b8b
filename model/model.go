// Package model chains the engine components: scope aggregation, lifecycle
// module calculation and aggregation, consistency checks and hotspot
// classification.
package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
	"github.com/superdango/construction-carbon/model/hotspot"
	"github.com/superdango/construction-carbon/model/lifecycle"
	"github.com/superdango/construction-carbon/model/scope"
	"github.com/superdango/construction-carbon/model/validate"
	"golang.org/x/sync/errgroup"
)

// EvaluateLimit bounds the number of snapshots evaluated at once.
const EvaluateLimit = 5

type EngineOptions func(e *Engine)

// WithRegistry replaces the bundled factor tables.
func WithRegistry(registry *factors.Registry) EngineOptions {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithFloorArea sets the floor area used for intensities when a snapshot
// does not declare one.
func WithFloorArea(m2 float64) EngineOptions {
	return func(e *Engine) {
		e.floorArea = m2
	}
}

// WithCategoryThresholds replaces the thresholds of the category view.
func WithCategoryThresholds(thresholds hotspot.Thresholds) EngineOptions {
	return func(e *Engine) {
		e.categories = hotspot.Classifier{Thresholds: thresholds}
	}
}

// WithLogger sets the logger receiving consistency warnings.
func WithLogger(logger *slog.Logger) EngineOptions {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine evaluates calculation snapshots. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	registry   *factors.Registry
	floorArea  float64
	subjects   hotspot.Classifier
	categories hotspot.Classifier
	logger     *slog.Logger
	now        func() time.Time
}

func NewEngine(opts ...EngineOptions) *Engine {
	engine := &Engine{
		subjects:   hotspot.Classifier{Thresholds: hotspot.DefaultThresholds},
		categories: hotspot.Classifier{Thresholds: hotspot.CategoryThresholds},
		logger:     slog.Default(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(engine)
	}

	if engine.registry == nil {
		engine.registry = factors.Default()
	}

	return engine
}

// Registry returns the factor registry of the engine.
func (e *Engine) Registry() *factors.Registry {
	return e.registry
}

// Evaluate computes the report of one snapshot. A structural error aborts the
// evaluation and no report is returned; consistency issues end up in the
// report validation and are logged.
func (e *Engine) Evaluate(snapshot constructioncarbon.Snapshot) (constructioncarbon.Report, error) {
	agg, err := scope.NewAggregator(e.registry).Aggregate(snapshot.Lines)
	if err != nil {
		return constructioncarbon.Report{}, err
	}

	floorArea := snapshot.FloorArea
	if floorArea <= 0 {
		floorArea = e.floorArea
	}

	calculated, err := lifecycle.NewCalculator(e.registry).Calculate(snapshot, floorArea)
	if err != nil {
		return constructioncarbon.Report{}, err
	}

	modules := agg.Modules.Merge(snapshot.Modules, calculated.Modules)
	lifecycleTotals, err := lifecycle.Aggregate(modules, lifecycle.WithFloorArea(floorArea))
	if err != nil {
		return constructioncarbon.Report{}, err
	}

	fingerprint, err := constructioncarbon.Fingerprint(snapshot)
	if err != nil {
		return constructioncarbon.Report{}, err
	}

	validation := validate.Aggregation(agg)
	for _, warning := range calculated.Warnings {
		validation.Warn("%s", warning)
	}
	if snapshot.Declared != nil {
		validation = validation.Merge(e.checkDeclared(snapshot.Declared, agg.Totals))
	}
	validation.Log(e.logger, "snapshot", snapshot.ID)

	total := agg.Totals.Total()
	subjects := e.subjects.Classify(scope.Contributors(agg.Lines, scope.BySubject), total)
	categories := e.categories.Classify(scope.Contributors(agg.Lines, scope.ByCategory), total)

	return constructioncarbon.Report{
		ID:               uuid.New().String(),
		SnapshotID:       snapshot.ID,
		SnapshotName:     snapshot.Name,
		Fingerprint:      fingerprint,
		ComputedAt:       e.now(),
		Scope:            agg.Totals,
		ScopeDisplay:     agg.Totals.Display(),
		Lines:            agg.Lines,
		Modules:          modules,
		Lifecycle:        lifecycleTotals,
		Validation:       validation,
		SubjectHotspots:  subjects,
		CategoryHotspots: categories,
		Summary:          hotspot.Summarize(subjects, total),
	}, nil
}

func (e *Engine) checkDeclared(raw map[string]any, computed constructioncarbon.ScopeTotals) constructioncarbon.ValidationResult {
	declared, err := validate.DecodeTotals(raw)
	if err != nil {
		result := constructioncarbon.Valid()
		result.Fail("%s", err)
		return result
	}

	return validate.Totals(declared).Merge(validate.Recomputed(declared, computed))
}

// EvaluateAll evaluates independent snapshots concurrently. Reports keep the
// order of snapshots. The first structural error cancels the batch.
func (e *Engine) EvaluateAll(ctx context.Context, snapshots []constructioncarbon.Snapshot) ([]constructioncarbon.Report, error) {
	reports := make([]constructioncarbon.Report, len(snapshots))

	errg, errgctx := errgroup.WithContext(ctx)
	errg.SetLimit(EvaluateLimit)
	for i, snapshot := range snapshots {
		i, snapshot := i, snapshot
		errg.Go(func() error {
			if err := errgctx.Err(); err != nil {
				return err
			}

			report, err := e.Evaluate(snapshot)
			if err != nil {
				return fmt.Errorf("failed to evaluate snapshot %q: %w", snapshot.ID, err)
			}
			reports[i] = report
			return nil
		})
	}

	if err := errg.Wait(); err != nil {
		return nil, err
	}

	return reports, nil
}
