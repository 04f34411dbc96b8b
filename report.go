package constructioncarbon

import "time"

// LineEmission is the computed emission of one activity line.
type LineEmission struct {
	Line     ActivityLine   `json:"line"`
	Factor   EmissionFactor `json:"factor"`
	Quantity float64        `json:"quantity"`
	Emission KgCO2e         `json:"emission_kg"`
}

// Report is everything the dashboard and document layers need for one
// snapshot. It is disposable: a cached report must be dropped as soon as the
// snapshot changes.
type Report struct {
	ID               string           `json:"id"`
	SnapshotID       string           `json:"snapshot_id"`
	SnapshotName     string           `json:"snapshot_name,omitempty"`
	Fingerprint      string           `json:"fingerprint"`
	ComputedAt       time.Time        `json:"computed_at"`
	Scope            ScopeTotals      `json:"scope"`
	ScopeDisplay     ScopeDisplay     `json:"scope_display"`
	Lines            []LineEmission   `json:"lines"`
	Modules          ModuleFigures    `json:"modules"`
	Lifecycle        LifecycleTotals  `json:"lifecycle"`
	Validation       ValidationResult `json:"validation"`
	SubjectHotspots  []HotspotEntry   `json:"subject_hotspots"`
	CategoryHotspots []HotspotEntry   `json:"category_hotspots"`
	Summary          HotspotSummary   `json:"summary"`
}
