package constructioncarbon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ReportCollector produces reports for the metrics handler. *Collector
// implements it.
type ReportCollector interface {
	Collect(ctx context.Context, reports chan<- *Report, errs chan<- error) error
}

// OpenMetricsHandler implements the http.Handler interface
type OpenMetricsHandler struct {
	defaultTimeout time.Duration
	collector      ReportCollector
}

// NewOpenMetricsHandler create a new OpenMetricsHandler
func NewOpenMetricsHandler(collector ReportCollector) *OpenMetricsHandler {
	return &OpenMetricsHandler{
		defaultTimeout: 10 * time.Second,
		collector:      collector,
	}
}

// ServeHTTP implements the http.Handler interface. It evaluates every snapshot
// of the collector and writes the resulting metrics in the http response.
func (handler *OpenMetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reports := make(chan *Report)
	metrics := make(chan *Metric)

	traceAttr := slog.Attr{}
	if traceID := r.Header.Get("X-Cloud-Trace-Context"); traceID != "" {
		traceAttr = slog.String("logging.googleapis.com/trace", traceID)
	}

	errg, errgctx := errgroup.WithContext(r.Context())
	errgctx, cancel := context.WithTimeout(errgctx, handler.defaultTimeout)
	defer cancel()

	errg.Go(func() error {
		defer close(reports)

		errs := make(chan error)
		errCount := make(chan int)
		go func() {
			count := 0
			for err := range errs {
				count++
				snapErr := new(SnapshotErr)
				if errors.As(err, &snapErr) {
					slog.Warn("snapshot evaluation failed", "err", snapErr.Err.Error(), "snapshot", snapErr.SnapshotID)
					continue
				}
				slog.Warn("snapshot evaluation failed", "err", err.Error())
			}
			errCount <- count
		}()

		err := handler.collector.Collect(errgctx, reports, errs)
		close(errs)
		count := <-errCount
		if err != nil {
			return err
		}

		for _, metric := range []*Metric{
			{Name: "collect_duration_ms", Value: float64(time.Since(start).Milliseconds())},
			{Name: "error_count", Value: float64(count)},
		} {
			if err := send(errgctx, metrics, metric); err != nil {
				return err
			}
		}

		return nil
	})

	errg.Go(func() error {
		defer close(metrics)
		for report := range reports {
			for _, metric := range ReportMetrics(report) {
				if err := send(errgctx, metrics, metric); err != nil {
					return err
				}
			}
		}

		return nil
	})

	errg.Go(func() error {
		return writeMetrics(errgctx, w, metrics)
	})

	err := errg.Wait()
	if err != nil {
		slog.Error("failed to collect metrics", "err", err.Error(), traceAttr)
		http.Error(w, err.Error(), 500)
		return
	}

	slog.Info("metrics have been successfully collected", traceAttr, "duration_ms", time.Since(start).Milliseconds())
}

// WriteOpenMetrics writes the metrics of every report on w.
func WriteOpenMetrics(w io.Writer, reports ...*Report) error {
	for _, report := range reports {
		for _, metric := range ReportMetrics(report) {
			if err := writeMetric(w, metric); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReportMetrics flattens a report into metrics, all labelled with the
// snapshot id. Emissions are exposed in tCO2e.
func ReportMetrics(report *Report) []*Metric {
	base := map[string]string{"snapshot": report.SnapshotID}
	metrics := make([]*Metric, 0)

	display := report.ScopeDisplay
	for scope, v := range map[string]TCO2e{
		"scope1":              display.Scope1,
		"scope2":              display.Scope2,
		"scope3":              display.Scope3,
		"scope3_materials":    display.Scope3Materials,
		"scope3_transport":    display.Scope3Transport,
		"scope3_construction": display.Scope3Construction,
		"scope3_commute":      display.Scope3Commute,
		"scope3_waste":        display.Scope3Waste,
		"total":               display.Total,
	} {
		metrics = append(metrics, NewScopeMetric(v).SetLabels(base).AddLabel("scope", scope))
	}

	lifecycle := report.Lifecycle
	for stage, v := range map[string]TCO2e{
		"upfront":       lifecycle.Upfront,
		"use_phase":     lifecycle.UsePhase,
		"end_of_life":   lifecycle.EndOfLife,
		"module_d":      lifecycle.ModuleD,
		"whole_life":    lifecycle.WholeLife,
		"with_benefits": lifecycle.WithBenefits,
		"embodied":      lifecycle.Embodied,
		"operational":   lifecycle.Operational,
	} {
		metrics = append(metrics, NewLifecycleMetric(v).SetLabels(base).AddLabel("stage", stage))
	}

	for _, entry := range report.SubjectHotspots {
		metrics = append(metrics, NewHotspotMetric(entry).SetLabels(base).
			AddLabel("subject", entry.SubjectID).
			AddLabel("severity", entry.Severity.String()))
	}

	metrics = append(metrics,
		(&Metric{Name: "validation_warnings", Value: float64(len(report.Validation.Warnings))}).SetLabels(base),
		(&Metric{Name: "validation_errors", Value: float64(len(report.Validation.Errors))}).SetLabels(base),
	)

	return metrics
}

// writeMetrics write all metrics sent over the channel and write them on the writer.
// Metrics labels are sorted lexicographically before being written.
func writeMetrics(ctx context.Context, w io.Writer, metrics chan *Metric) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case metric, ok := <-metrics:
			if !ok {
				return nil
			}

			if metric == nil {
				slog.Warn("discarding nil metric")
				continue
			}
			if err := writeMetric(w, metric); err != nil {
				return fmt.Errorf("failed to write metric on writer: %w", err)
			}
		}
	}
}

var labelValueEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func writeMetric(w io.Writer, metric *Metric) error {
	metric = metric.SanitizeLabels()

	// sort labels in lexicographical order
	labels := make([]string, 0, len(metric.Labels))
	for labelName, labelValue := range metric.Labels {
		labels = append(labels, fmt.Sprintf(`%s="%s"`, labelName, labelValueEscaper.Replace(labelValue)))
	}
	slices.SortFunc(labels, strings.Compare)

	_, err := fmt.Fprintf(w, "%s{%s} %0.10f\n", metric.Name, strings.Join(labels, ","), metric.Value)
	if err != nil {
		return fmt.Errorf("writing metric %s failed: %w", metric.Name, err)
	}

	return nil
}

// Metric olds the name and value of a measurement in addition to its labels.
type Metric struct {
	Name   string
	Labels map[string]string
	Value  float64
}

func (m *Metric) AddLabel(key, value string) *Metric {
	m.Labels = MergeLabels(
		m.Labels,
		map[string]string{
			key: value,
		},
	)
	return m
}

func (m *Metric) SetLabels(l map[string]string) *Metric {
	m.Labels = maps.Clone(l)
	return m
}

func (m *Metric) SanitizeLabels() *Metric {
	newLabels := make(map[string]string)
	invalidChars := []string{".", "/", "-", ":", ";"}
	for label, value := range m.Labels {
		for _, char := range invalidChars {
			label = strings.ReplaceAll(label, char, "_")
		}
		newLabels[label] = value
	}
	m.Labels = newLabels
	return m
}

// MergeLabels merges label sets, later sets winning. Empty values are
// dropped.
func MergeLabels(labels ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, l := range labels {
		for k, v := range l {
			if v == "" {
				continue
			}
			result[k] = v
		}
	}
	return result
}

func NewScopeMetric(value TCO2e) *Metric {
	return &Metric{
		Name:  "scope_emissions_tco2e",
		Value: float64(value),
	}
}

func NewLifecycleMetric(value TCO2e) *Metric {
	return &Metric{
		Name:  "lifecycle_emissions_tco2e",
		Value: float64(value),
	}
}

func NewHotspotMetric(entry HotspotEntry) *Metric {
	return &Metric{
		Name:  "hotspot_percentage",
		Value: entry.PercentageOfTotal,
	}
}
