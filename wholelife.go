package constructioncarbon

// AreaItem applies a per square metre factor of a table to an area.
type AreaItem struct {
	Type   string  `json:"type" mapstructure:"type"`
	AreaM2 float64 `json:"area_m2" mapstructure:"area_m2"`
}

// UsePhaseInputs describe the building in use over its study period. They
// produce modules B1 to B7.
type UsePhaseInputs struct {
	// StudyPeriodYears defaults to the 60 years reference study period.
	StudyPeriodYears int `json:"study_period_years,omitempty" mapstructure:"study_period_years"`

	RefrigerantChargeKg float64 `json:"refrigerant_charge_kg,omitempty" mapstructure:"refrigerant_charge_kg"`
	// Refrigerant is a key of the refrigerant table. RefrigerantGWP, when
	// set, takes precedence over it.
	Refrigerant    string  `json:"refrigerant,omitempty" mapstructure:"refrigerant"`
	RefrigerantGWP float64 `json:"refrigerant_gwp,omitempty" mapstructure:"refrigerant_gwp"`

	Maintenance  []AreaItem `json:"maintenance,omitempty" mapstructure:"maintenance"`
	Replacements []AreaItem `json:"replacements,omitempty" mapstructure:"replacements"`
	// Refurbishment is a key of the refurbishment table, applied to the
	// floor area.
	Refurbishment string `json:"refurbishment,omitempty" mapstructure:"refurbishment"`

	AnnualElectricityKWh float64 `json:"annual_electricity_kwh,omitempty" mapstructure:"annual_electricity_kwh"`
	// GridRegion is a key of the electricity table. The national average
	// applies when empty.
	GridRegion       string  `json:"grid_region,omitempty" mapstructure:"grid_region"`
	RenewablePercent float64 `json:"renewable_percent,omitempty" mapstructure:"renewable_percent"`
	AnnualGasGJ      float64 `json:"annual_gas_gj,omitempty" mapstructure:"annual_gas_gj"`
	AnnualWaterKL    float64 `json:"annual_water_kl,omitempty" mapstructure:"annual_water_kl"`
}

// WasteFraction splits the tonnage of one demolition material between
// recycling, incineration and landfill, in percent.
type WasteFraction struct {
	Material            string  `json:"material" mapstructure:"material"`
	Tonnes              float64 `json:"tonnes" mapstructure:"tonnes"`
	RecyclePercent      float64 `json:"recycle_percent" mapstructure:"recycle_percent"`
	IncinerationPercent float64 `json:"incineration_percent" mapstructure:"incineration_percent"`
	LandfillPercent     float64 `json:"landfill_percent" mapstructure:"landfill_percent"`
}

// EndOfLifeInputs describe the demolition of the building. They produce
// modules C1 to C4.
type EndOfLifeInputs struct {
	// DemolitionMethod is a key of the demolition table, selective
	// demolition when empty.
	DemolitionMethod string `json:"demolition_method,omitempty" mapstructure:"demolition_method"`
	// TransportDistanceKm to the processing site defaults to 50 km.
	TransportDistanceKm float64         `json:"transport_distance_km,omitempty" mapstructure:"transport_distance_km"`
	Waste               []WasteFraction `json:"waste,omitempty" mapstructure:"waste"`
}

// MaterialTonnes is a tonnage of one recovered material.
type MaterialTonnes struct {
	Material string  `json:"material" mapstructure:"material"`
	Tonnes   float64 `json:"tonnes" mapstructure:"tonnes"`
}

// ReuseItem is a tonnage of material reused as is. ReusePercent defaults to
// 100.
type ReuseItem struct {
	Material     string  `json:"material" mapstructure:"material"`
	Tonnes       float64 `json:"tonnes" mapstructure:"tonnes"`
	ReusePercent float64 `json:"reuse_percent,omitempty" mapstructure:"reuse_percent"`
}

// BenefitInputs describe what leaves the system boundary for a second life.
// They produce the module D credits, which are negative.
type BenefitInputs struct {
	Recycling      []MaterialTonnes `json:"recycling,omitempty" mapstructure:"recycling"`
	Reuse          []ReuseItem      `json:"reuse,omitempty" mapstructure:"reuse"`
	EnergyRecovery []MaterialTonnes `json:"energy_recovery,omitempty" mapstructure:"energy_recovery"`
}
