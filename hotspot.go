package constructioncarbon

import "fmt"

// Severity tiers of a hotspot.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityModerate
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityModerate:
		return "moderate"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText reads a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	for _, severity := range []Severity{SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical} {
		if severity.String() == string(text) {
			*s = severity
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Contributor is one material or category competing for a share of total
// emissions.
type Contributor struct {
	SubjectID string           `json:"subject_id"`
	Emissions KgCO2e           `json:"emissions"`
	Stages    map[Stage]KgCO2e `json:"stages,omitempty"`
}

// HotspotEntry ranks a contributor against the total. It is computed for each
// report and never stored as a source of truth.
type HotspotEntry struct {
	SubjectID         string   `json:"subject_id"`
	Emissions         KgCO2e   `json:"emissions"`
	PercentageOfTotal float64  `json:"percentage_of_total"`
	Severity          Severity `json:"severity"`
	DominantStage     Stage    `json:"dominant_stage,omitempty"`
	StageEmissions    KgCO2e   `json:"stage_emissions"`
}

// HotspotSummary counts entries per severity.
type HotspotSummary struct {
	Total    KgCO2e `json:"total"`
	Critical int    `json:"critical"`
	High     int    `json:"high"`
	Moderate int    `json:"moderate"`
	Low      int    `json:"low"`
}
