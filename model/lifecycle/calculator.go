package lifecycle

import (
	"fmt"
	"math"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
)

const (
	// DefaultStudyPeriodYears is the reference study period of the use phase.
	DefaultStudyPeriodYears = 60
	// DefaultFloorAreaM2 stands in for an unknown floor area in area based
	// modules.
	DefaultFloorAreaM2 = 1000.0
	// DefaultRefrigerantGWP applies when neither a refrigerant nor a GWP is
	// given.
	DefaultRefrigerantGWP = 1430.0
	// AnnualLeakageRate is the share of the refrigerant charge lost per year.
	AnnualLeakageRate = 0.05
	// RepairShareOfMaintenance estimates B3 from B2.
	RepairShareOfMaintenance = 0.2
	// DefaultDemolitionMethod applies when no method is given.
	DefaultDemolitionMethod = "selective"
	// DefaultTransportDistanceKm is the distance to the processing site.
	DefaultTransportDistanceKm = 50.0
	// ReuseCreditMultiplier rewards reuse over recycling, reprocessing being
	// avoided.
	ReuseCreditMultiplier = 1.2

	// GridAverageKey is the electricity factor used without a grid region.
	GridAverageKey = "national_average"
	// DisposalTransportKey is the freight factor of waste transport.
	DisposalTransportKey = "disposal_truck"
	// MixedWasteKey stands in for waste materials missing from the tables.
	MixedWasteKey = "mixed_waste"
)

// MaintenanceIntervals are the years between two occurrences of each
// maintenance activity.
var MaintenanceIntervals = map[string]int{
	"painting_interior":  7,
	"painting_exterior":  10,
	"carpet_replacement": 10,
	"hvac_maintenance":   1,
	"roof_maintenance":   15,
	"facade_cleaning":    2,
	"general_repairs":    1,
}

// ReplacementLifespans are the service lives, in years, of replaceable
// components.
var ReplacementLifespans = map[string]int{
	"hvac_system":   20,
	"roofing":       25,
	"flooring":      15,
	"facade_panels": 30,
	"windows":       30,
	"lifts":         25,
	"electrical":    25,
	"plumbing":      30,
}

// Lookup finds factors by category and key. *factors.Registry implements it.
type Lookup interface {
	Lookup(category, key string) (constructioncarbon.EmissionFactor, error)
}

// Result holds computed module figures and the assumptions made on the way.
type Result struct {
	Modules  constructioncarbon.ModuleFigures
	Warnings []string
}

func newResult() Result {
	return Result{
		Modules:  make(constructioncarbon.ModuleFigures),
		Warnings: make([]string, 0),
	}
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Result) merge(other Result) {
	for m, v := range other.Modules {
		r.Modules.Add(m, v)
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// Calculator computes the B, C and D modules from lifecycle inputs.
type Calculator struct {
	lookup Lookup
}

// NewCalculator returns a calculator reading its factors from lookup.
func NewCalculator(lookup Lookup) *Calculator {
	return &Calculator{lookup: lookup}
}

// Calculate runs every calculation the snapshot has inputs for. floorArea is
// used by area based modules; DefaultFloorAreaM2 applies when it is not
// positive. Invalid inputs abort with a *constructioncarbon.StructuralError.
func (c *Calculator) Calculate(snapshot constructioncarbon.Snapshot, floorArea float64) (Result, error) {
	result := newResult()

	if snapshot.UsePhase != nil {
		usePhase, err := c.UsePhase(*snapshot.UsePhase, floorArea)
		if err != nil {
			return Result{}, err
		}
		result.merge(usePhase)
	}

	if snapshot.EndOfLife != nil {
		endOfLife, err := c.EndOfLife(*snapshot.EndOfLife, floorArea)
		if err != nil {
			return Result{}, err
		}
		result.merge(endOfLife)
	}

	if snapshot.Benefits != nil {
		benefits, err := c.Benefits(*snapshot.Benefits)
		if err != nil {
			return Result{}, err
		}
		result.merge(benefits)
	}

	return result, nil
}

func (c *Calculator) factor(op, field, category, key string) (float64, error) {
	factor, err := c.lookup.Lookup(category, key)
	if err != nil {
		return 0, constructioncarbon.NewStructuralError(op, field, err)
	}
	return factor.Factor, nil
}

// effectiveArea returns floorArea, or the default area with a warning.
func effectiveArea(result *Result, floorArea float64, module constructioncarbon.Module) float64 {
	if floorArea > 0 {
		return floorArea
	}
	result.warn("%s: floor area unknown, %.0f m² assumed", module, DefaultFloorAreaM2)
	return DefaultFloorAreaM2
}

// quantity rejects non finite and negative inputs.
func quantity(op, field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return constructioncarbon.NewStructuralError(op, field,
			fmt.Errorf("%w: %v", constructioncarbon.ErrMalformedNumber, v))
	}
	return nil
}

// percentage rejects values outside 0 to 100.
func percentage(op, field string, v float64) error {
	if err := quantity(op, field, v); err != nil {
		return err
	}
	if v > 100 {
		return constructioncarbon.NewStructuralError(op, field,
			fmt.Errorf("%w: %v%% is above 100%%", constructioncarbon.ErrMalformedNumber, v))
	}
	return nil
}

// knownOr returns key when category holds it, fallback otherwise.
func (c *Calculator) knownOr(category, key, fallback string) (string, bool) {
	if _, err := c.lookup.Lookup(category, key); err == nil {
		return key, true
	}
	return fallback, false
}

var _ Lookup = (*factors.Registry)(nil)
