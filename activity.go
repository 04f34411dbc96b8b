package constructioncarbon

import (
	"fmt"
	"slices"
	"strings"
)

// Scope of the GHG Protocol an activity belongs to.
type Scope int

const (
	Scope1 Scope = iota + 1
	Scope2
	Scope3
)

func (s Scope) String() string {
	switch s {
	case Scope1, Scope2, Scope3:
		return fmt.Sprintf("scope%d", int(s))
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// Scope3Category is one of the independently tracked Scope 3 subtotals.
type Scope3Category string

const (
	Scope3Materials    Scope3Category = "materials"
	Scope3Transport    Scope3Category = "transport"
	Scope3Construction Scope3Category = "construction"
	Scope3Commute      Scope3Category = "commute"
	Scope3Waste        Scope3Category = "waste"
)

// ActivityType fixes the scope, the Scope 3 subcategory and the default
// lifecycle module of an activity line.
type ActivityType string

const (
	ActivityFuel     ActivityType = "fuel"
	ActivityVehicle  ActivityType = "vehicle"
	ActivityFugitive ActivityType = "fugitive"

	ActivityElectricity ActivityType = "electricity"
	ActivityHeating     ActivityType = "heating"
	ActivitySteam       ActivityType = "steam"

	ActivityMaterial      ActivityType = "material"
	ActivitySequestration ActivityType = "sequestration"
	ActivityTransport     ActivityType = "transport"
	ActivityConstruction  ActivityType = "construction"
	ActivityCommute       ActivityType = "commute"
	ActivityWaste         ActivityType = "waste"
)

type activityClass struct {
	scope    Scope
	category Scope3Category
	module   Module
	credit   bool
}

var activityClasses = map[ActivityType]activityClass{
	ActivityFuel:          {scope: Scope1, module: ModuleA5},
	ActivityVehicle:       {scope: Scope1, module: ModuleA5},
	ActivityFugitive:      {scope: Scope1, module: ModuleA5},
	ActivityElectricity:   {scope: Scope2, module: ModuleA5},
	ActivityHeating:       {scope: Scope2, module: ModuleA5},
	ActivitySteam:         {scope: Scope2, module: ModuleA5},
	ActivityMaterial:      {scope: Scope3, category: Scope3Materials, module: ModuleA1A3},
	ActivitySequestration: {scope: Scope3, category: Scope3Materials, module: ModuleA1A3, credit: true},
	ActivityTransport:     {scope: Scope3, category: Scope3Transport, module: ModuleA4},
	ActivityConstruction:  {scope: Scope3, category: Scope3Construction, module: ModuleA5},
	ActivityCommute:       {scope: Scope3, category: Scope3Commute, module: ModuleA5},
	ActivityWaste:         {scope: Scope3, category: Scope3Waste, module: ModuleA5},
}

// ActivityTypes lists every known activity type, sorted.
func ActivityTypes() []ActivityType {
	types := make([]ActivityType, 0, len(activityClasses))
	for t := range activityClasses {
		types = append(types, t)
	}
	slices.SortFunc(types, func(a, b ActivityType) int { return strings.Compare(string(a), string(b)) })
	return types
}

// Known reports whether the activity type has a scope assignment.
func (t ActivityType) Known() bool {
	_, found := activityClasses[t]
	return found
}

// Scope returns the GHG scope of the activity, or 0 when the type is unknown.
func (t ActivityType) Scope() Scope {
	return activityClasses[t].scope
}

// Scope3Category returns the Scope 3 subcategory. It is empty for Scope 1 and
// Scope 2 activities.
func (t ActivityType) Scope3Category() Scope3Category {
	return activityClasses[t].category
}

// DefaultModule is the EN 15978 module a line is reported under when it does
// not carry one.
func (t ActivityType) DefaultModule() Module {
	return activityClasses[t].module
}

// AllowsNegative reports whether a negative quantity is valid for the type.
// Only carbon storage (sequestration) lines may be negative.
func (t ActivityType) AllowsNegative() bool {
	return activityClasses[t].credit
}

// FactorRef points to an entry of the factor registry.
type FactorRef struct {
	Category string `json:"category" mapstructure:"category"`
	Key      string `json:"key" mapstructure:"key"`
}

func (ref FactorRef) String() string {
	return ref.Category + "/" + ref.Key
}

// ParseFactorRef reads a reference written as category/key.
func ParseFactorRef(s string) (FactorRef, error) {
	category, key, found := strings.Cut(s, "/")
	if !found || category == "" || key == "" {
		return FactorRef{}, fmt.Errorf("%w: %q is not a category/key reference", ErrFactorNotFound, s)
	}
	return FactorRef{Category: category, Key: key}, nil
}

// EmissionFactor converts a quantity of activity into kgCO2e.
type EmissionFactor struct {
	Category string  `json:"category"`
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Factor   float64 `json:"factor"`
	Source   string  `json:"source,omitempty"`
	// Credit entries (recycled metal, timber carbon storage) may carry a
	// negative factor.
	Credit bool `json:"credit,omitempty"`
}

// Ref returns the reference resolving to this factor.
func (f EmissionFactor) Ref() FactorRef {
	return FactorRef{Category: f.Category, Key: f.Key}
}

// ActivityLine is one raw input supplied by forms, BOQ import or
// reconciliation, already matched to a factor.
type ActivityLine struct {
	ID       string       `json:"id,omitempty" mapstructure:"id"`
	Type     ActivityType `json:"type" mapstructure:"type"`
	Subject  string       `json:"subject,omitempty" mapstructure:"subject"`
	Quantity float64      `json:"quantity" mapstructure:"quantity"`
	Unit     string       `json:"unit,omitempty" mapstructure:"unit"`
	Factor   FactorRef    `json:"factor" mapstructure:"factor"`
	// Module overrides the default module of the activity type.
	Module Module `json:"module,omitempty" mapstructure:"module"`
	// ReportedKg is a previously cached per line total. It is checked against
	// quantity × factor to catch stale values.
	ReportedKg *float64 `json:"reported_kg,omitempty" mapstructure:"reported_kg"`
}

// SubjectID returns the hotspot grouping key of the line.
func (line ActivityLine) SubjectID() string {
	if line.Subject != "" {
		return line.Subject
	}
	return line.Factor.Key
}

// EffectiveModule returns the module the line is reported under.
func (line ActivityLine) EffectiveModule() Module {
	if line.Module != "" {
		return line.Module
	}
	return line.Type.DefaultModule()
}
