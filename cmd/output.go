package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	constructioncarbon "github.com/superdango/construction-carbon"
)

// ReportsCollector collects every report at once.
type ReportsCollector interface {
	Reports(ctx context.Context) ([]*constructioncarbon.Report, []error, error)
}

// run evaluates every snapshot once and writes the reports on w. Snapshots
// that cannot be evaluated are logged and make run fail after the others are
// written.
func run(ctx context.Context, collector ReportsCollector, output string, w io.Writer) error {
	reports, errs, err := collector.Reports(ctx)
	if err != nil {
		return err
	}

	slices.SortFunc(reports, func(a, b *constructioncarbon.Report) int {
		return strings.Compare(a.SnapshotID, b.SnapshotID)
	})

	switch output {
	case "text":
		err = writeText(w, reports)
	case "json":
		err = writeJSON(w, reports)
	case "openmetrics":
		err = constructioncarbon.WriteOpenMetrics(w, reports...)
	default:
		return fmt.Errorf("unsupported output %q", output)
	}
	if err != nil {
		return err
	}

	for _, err := range errs {
		slog.Error("snapshot evaluation failed", "err", err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d snapshot(s) could not be evaluated: %w", len(errs), errors.Join(errs...))
	}

	return nil
}

func writeJSON(w io.Writer, reports []*constructioncarbon.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

func tonnes(v constructioncarbon.TCO2e) string {
	return decimal.NewFromFloat(float64(v)).StringFixed(2)
}

func percent(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

func writeText(w io.Writer, reports []*constructioncarbon.Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	for _, report := range reports {
		title := report.SnapshotID
		if report.SnapshotName != "" {
			title = fmt.Sprintf("%s (%s)", report.SnapshotName, report.SnapshotID)
		}
		fmt.Fprintf(tw, "%s\n", title)

		display := report.ScopeDisplay
		fmt.Fprintf(tw, "  scope 1\t%s\ttCO2e\n", tonnes(display.Scope1))
		fmt.Fprintf(tw, "  scope 2\t%s\ttCO2e\n", tonnes(display.Scope2))
		fmt.Fprintf(tw, "  scope 3\t%s\ttCO2e\n", tonnes(display.Scope3))
		fmt.Fprintf(tw, "  total\t%s\ttCO2e\n", tonnes(display.Total))

		lifecycle := report.Lifecycle
		fmt.Fprintf(tw, "  upfront (A1-A5)\t%s\ttCO2e\n", tonnes(lifecycle.Upfront))
		fmt.Fprintf(tw, "  use phase (B1-B7)\t%s\ttCO2e\n", tonnes(lifecycle.UsePhase))
		fmt.Fprintf(tw, "  end of life (C1-C4)\t%s\ttCO2e\n", tonnes(lifecycle.EndOfLife))
		fmt.Fprintf(tw, "  module D credits\t%s\ttCO2e\n", tonnes(lifecycle.ModuleD))
		fmt.Fprintf(tw, "  whole life (A-C)\t%s\ttCO2e\n", tonnes(lifecycle.WholeLife))
		fmt.Fprintf(tw, "  with benefits (A-D)\t%s\ttCO2e\n", tonnes(lifecycle.WithBenefits))
		if lifecycle.Intensity != nil {
			fmt.Fprintf(tw, "  upfront intensity\t%s\tkgCO2e/m²\n", decimal.NewFromFloat(lifecycle.Intensity.Upfront).StringFixed(1))
		}

		for _, entry := range report.SubjectHotspots {
			if entry.Severity == constructioncarbon.SeverityLow {
				continue
			}
			fmt.Fprintf(tw, "  hotspot %s\t%s\t%s\n", entry.SubjectID, percent(entry.PercentageOfTotal), entry.Severity)
		}

		if !report.Validation.IsValid {
			fmt.Fprintf(tw, "  invalid\t%d error(s)\t\n", len(report.Validation.Errors))
		}
		for _, warning := range report.Validation.Warnings {
			fmt.Fprintf(tw, "  warning\t%s\t\n", warning)
		}
	}

	return tw.Flush()
}

type reportsHandler struct {
	collector ReportsCollector
}

func newReportsHandler(collector ReportsCollector) *reportsHandler {
	return &reportsHandler{collector: collector}
}

func (handler *reportsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reports, errs, err := handler.collector.Reports(r.Context())
	if err != nil {
		slog.Error("failed to collect reports", "err", err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slices.SortFunc(reports, func(a, b *constructioncarbon.Report) int {
		return strings.Compare(a.SnapshotID, b.SnapshotID)
	})

	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(struct {
		Reports []*constructioncarbon.Report `json:"reports"`
		Errors  []string                     `json:"errors"`
	}{
		Reports: reports,
		Errors:  messages,
	})
	if err != nil {
		slog.Error("failed to write reports", "err", err.Error())
	}
}
