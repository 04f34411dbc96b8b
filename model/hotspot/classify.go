// Package hotspot ranks contributors by their share of total emissions.
package hotspot

import (
	"slices"

	constructioncarbon "github.com/superdango/construction-carbon"
)

// Thresholds are the lower bounds, in percent, of each severity tier. Bounds
// are inclusive: a share equal to Critical is critical.
type Thresholds struct {
	Critical float64
	High     float64
	Moderate float64
}

var (
	// DefaultThresholds classify materials.
	DefaultThresholds = Thresholds{Critical: 15, High: 10, Moderate: 5}
	// CategoryThresholds classify whole categories, which naturally hold
	// larger shares.
	CategoryThresholds = Thresholds{Critical: 20, High: 15, Moderate: 10}
)

// Severity returns the tier of a percentage.
func (t Thresholds) Severity(percentage float64) constructioncarbon.Severity {
	switch {
	case percentage >= t.Critical:
		return constructioncarbon.SeverityCritical
	case percentage >= t.High:
		return constructioncarbon.SeverityHigh
	case percentage >= t.Moderate:
		return constructioncarbon.SeverityModerate
	default:
		return constructioncarbon.SeverityLow
	}
}

// Classifier ranks contributors with its thresholds.
type Classifier struct {
	Thresholds Thresholds
}

// Classify ranks entries with the default thresholds.
func Classify(entries []constructioncarbon.Contributor, total constructioncarbon.KgCO2e) []constructioncarbon.HotspotEntry {
	return Classifier{Thresholds: DefaultThresholds}.Classify(entries, total)
}

// Classify returns one hotspot entry per contributor, sorted by descending
// share of total. Entries with the same share keep their input order. A non
// positive total gives every entry a share of zero.
func (c Classifier) Classify(entries []constructioncarbon.Contributor, total constructioncarbon.KgCO2e) []constructioncarbon.HotspotEntry {
	hotspots := make([]constructioncarbon.HotspotEntry, 0, len(entries))

	for _, entry := range entries {
		percentage := 0.0
		if total > 0 {
			percentage = float64(entry.Emissions) / float64(total) * 100
		}

		stage, stageEmissions := dominantStage(entry.Stages)
		hotspots = append(hotspots, constructioncarbon.HotspotEntry{
			SubjectID:         entry.SubjectID,
			Emissions:         entry.Emissions,
			PercentageOfTotal: percentage,
			Severity:          c.Thresholds.Severity(percentage),
			DominantStage:     stage,
			StageEmissions:    stageEmissions,
		})
	}

	slices.SortStableFunc(hotspots, func(a, b constructioncarbon.HotspotEntry) int {
		switch {
		case a.PercentageOfTotal > b.PercentageOfTotal:
			return -1
		case a.PercentageOfTotal < b.PercentageOfTotal:
			return 1
		default:
			return 0
		}
	})

	return hotspots
}

// dominantStage returns the stage with the largest emissions. Ties go to the
// stage declared first.
func dominantStage(stages map[constructioncarbon.Stage]constructioncarbon.KgCO2e) (constructioncarbon.Stage, constructioncarbon.KgCO2e) {
	var (
		dominant constructioncarbon.Stage
		largest  constructioncarbon.KgCO2e
		found    bool
	)

	for _, stage := range constructioncarbon.Stages {
		v, present := stages[stage]
		if !present {
			continue
		}
		if !found || v > largest {
			dominant, largest, found = stage, v, true
		}
	}

	return dominant, largest
}

// Summarize counts entries per severity.
func Summarize(entries []constructioncarbon.HotspotEntry, total constructioncarbon.KgCO2e) constructioncarbon.HotspotSummary {
	summary := constructioncarbon.HotspotSummary{Total: total}
	for _, entry := range entries {
		switch entry.Severity {
		case constructioncarbon.SeverityCritical:
			summary.Critical++
		case constructioncarbon.SeverityHigh:
			summary.High++
		case constructioncarbon.SeverityModerate:
			summary.Moderate++
		default:
			summary.Low++
		}
	}
	return summary
}

// Hotspots keeps the entries worth attention, dropping low severity ones.
func Hotspots(entries []constructioncarbon.HotspotEntry) []constructioncarbon.HotspotEntry {
	return slices.DeleteFunc(slices.Clone(entries), func(entry constructioncarbon.HotspotEntry) bool {
		return entry.Severity == constructioncarbon.SeverityLow
	})
}
