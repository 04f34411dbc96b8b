package constructioncarbon

// Scope3Breakdown holds the independently tracked Scope 3 subtotals. The
// Scope 3 total is always their sum.
type Scope3Breakdown struct {
	Materials    KgCO2e `json:"materials"`
	Transport    KgCO2e `json:"transport"`
	Construction KgCO2e `json:"construction"`
	Commute      KgCO2e `json:"commute"`
	Waste        KgCO2e `json:"waste"`
}

// Sum returns materials + transport + construction + commute + waste, in that
// order.
func (b Scope3Breakdown) Sum() KgCO2e {
	return b.Materials + b.Transport + b.Construction + b.Commute + b.Waste
}

// Components returns the subtotals in the order Sum adds them.
func (b Scope3Breakdown) Components() []KgCO2e {
	return []KgCO2e{b.Materials, b.Transport, b.Construction, b.Commute, b.Waste}
}

func (b *Scope3Breakdown) add(category Scope3Category, v KgCO2e) {
	switch category {
	case Scope3Materials:
		b.Materials += v
	case Scope3Transport:
		b.Transport += v
	case Scope3Construction:
		b.Construction += v
	case Scope3Commute:
		b.Commute += v
	case Scope3Waste:
		b.Waste += v
	}
}

// ScopeTotals are the scope subtotals of one calculation snapshot, in kgCO2e.
// They are rebuilt from the full set of activity lines on every computation
// and never patched field by field.
type ScopeTotals struct {
	Scope1     KgCO2e                  `json:"scope1"`
	Scope2     KgCO2e                  `json:"scope2"`
	Scope3     Scope3Breakdown         `json:"scope3"`
	ByActivity map[ActivityType]KgCO2e `json:"by_activity,omitempty"`
}

// Accumulate adds v to the subtotal matching the activity type. Unknown types
// are ignored.
func (s *ScopeTotals) Accumulate(t ActivityType, v KgCO2e) {
	switch t.Scope() {
	case Scope1:
		s.Scope1 += v
	case Scope2:
		s.Scope2 += v
	case Scope3:
		s.Scope3.add(t.Scope3Category(), v)
	default:
		return
	}

	if s.ByActivity == nil {
		s.ByActivity = make(map[ActivityType]KgCO2e)
	}
	s.ByActivity[t] += v
}

// Scope3Total is the sum of the Scope 3 breakdown.
func (s ScopeTotals) Scope3Total() KgCO2e {
	return s.Scope3.Sum()
}

// Total is scope1 + scope2 + scope3.
func (s ScopeTotals) Total() KgCO2e {
	return s.Scope1 + s.Scope2 + s.Scope3Total()
}

// ScopeDisplay is the tCO2e projection of ScopeTotals shown to users.
type ScopeDisplay struct {
	Scope1             TCO2e `json:"scope1"`
	Scope2             TCO2e `json:"scope2"`
	Scope3             TCO2e `json:"scope3"`
	Scope3Materials    TCO2e `json:"scope3_materials"`
	Scope3Transport    TCO2e `json:"scope3_transport"`
	Scope3Construction TCO2e `json:"scope3_construction"`
	Scope3Commute      TCO2e `json:"scope3_commute"`
	Scope3Waste        TCO2e `json:"scope3_waste"`
	Total              TCO2e `json:"total"`
}

// Display converts every subtotal to tonnes. This is the only place scope
// totals change unit.
func (s ScopeTotals) Display() ScopeDisplay {
	return ScopeDisplay{
		Scope1:             s.Scope1.Tonnes(),
		Scope2:             s.Scope2.Tonnes(),
		Scope3:             s.Scope3Total().Tonnes(),
		Scope3Materials:    s.Scope3.Materials.Tonnes(),
		Scope3Transport:    s.Scope3.Transport.Tonnes(),
		Scope3Construction: s.Scope3.Construction.Tonnes(),
		Scope3Commute:      s.Scope3.Commute.Tonnes(),
		Scope3Waste:        s.Scope3.Waste.Tonnes(),
		Total:              s.Total().Tonnes(),
	}
}

// LifecycleTotals is the whole life projection of module figures, in tCO2e.
type LifecycleTotals struct {
	Upfront      TCO2e `json:"upfront"`
	UsePhase     TCO2e `json:"use_phase"`
	EndOfLife    TCO2e `json:"end_of_life"`
	ModuleD      TCO2e `json:"module_d"`
	WholeLife    TCO2e `json:"whole_life"`
	WithBenefits TCO2e `json:"with_benefits"`
	// Embodied is A1-A5 + B1-B5 + C1-C4.
	Embodied TCO2e `json:"embodied"`
	// Operational is B6 + B7.
	Operational TCO2e `json:"operational"`
	// Absent lists the stages for which no figure was supplied.
	Absent    []Stage    `json:"absent,omitempty"`
	Intensity *Intensity `json:"intensity,omitempty"`
}

// Intensity expresses lifecycle totals per square metre of floor area.
type Intensity struct {
	FloorArea    float64 `json:"floor_area_m2"`
	Upfront      float64 `json:"upfront_kgco2e_m2"`
	WholeLife    float64 `json:"whole_life_kgco2e_m2"`
	WithBenefits float64 `json:"with_benefits_kgco2e_m2"`
}
