package constructioncarbon

import (
	"slices"
	"strings"
)

// Snapshot is the full set of inputs of one calculation. Totals derived from
// it are a pure function of its content.
type Snapshot struct {
	ID        string  `json:"id" mapstructure:"id"`
	Name      string  `json:"name,omitempty" mapstructure:"name"`
	FloorArea float64 `json:"floor_area_m2,omitempty" mapstructure:"floor_area_m2"`
	Lines     Lines   `json:"lines" mapstructure:"lines"`
	// Modules carries figures computed elsewhere. They add up with the
	// figures of the lines and of the lifecycle inputs below.
	Modules ModuleFigures `json:"modules,omitempty" mapstructure:"modules"`
	// UsePhase, EndOfLife and Benefits are the inputs of the B, C and D
	// module calculations.
	UsePhase  *UsePhaseInputs  `json:"use_phase,omitempty" mapstructure:"use_phase"`
	EndOfLife *EndOfLifeInputs `json:"end_of_life,omitempty" mapstructure:"end_of_life"`
	Benefits  *BenefitInputs   `json:"module_d,omitempty" mapstructure:"module_d"`
	// Declared is a previously stored totals record, as read from storage,
	// to cross check against the recomputed totals.
	Declared map[string]any `json:"declared,omitempty" mapstructure:"declared"`
}

// Lines is a list of activity lines.
type Lines []ActivityLine

// DistinctTypes returns the sorted activity types present in the lines.
func (lines Lines) DistinctTypes() []ActivityType {
	types := make([]ActivityType, 0, len(lines))
	for _, line := range lines {
		types = append(types, line.Type)
	}

	slices.SortFunc(types, func(a, b ActivityType) int { return strings.Compare(string(a), string(b)) })
	return slices.Compact(types)
}

// OfScope returns the lines belonging to scope s.
func (lines Lines) OfScope(s Scope) Lines {
	filtered := make(Lines, 0)
	for _, line := range lines {
		if line.Type.Scope() == s {
			filtered = append(filtered, line)
		}
	}
	return filtered
}
