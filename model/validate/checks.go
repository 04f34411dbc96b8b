// Package validate cross checks computed and stored emissions. Every check is
// independent and returns a ValidationResult; results are merged by the
// caller. Only structurally unusable input produces errors, everything else
// is a warning.
package validate

import (
	"math"
	"slices"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

const (
	// RelativeTolerance bounds the gap between a stored value and its display.
	RelativeTolerance = 0.01
	// AbsoluteToleranceKg bounds the gap between a sum and its declared total.
	AbsoluteToleranceKg = 1.0
	// MagnitudeThresholdKg is the implausibility threshold of a single value,
	// one million tonnes.
	MagnitudeThresholdKg = 1e9
)

// Domain groups activity inputs sharing a set of standard units.
type Domain string

const (
	DomainMaterials   Domain = "materials"
	DomainFuel        Domain = "fuel"
	DomainElectricity Domain = "electricity"
	DomainTransport   Domain = "transport"
)

// StandardUnits lists the units expected in each domain.
var StandardUnits = map[Domain][]string{
	DomainMaterials:   {"kg", "m³", "m²", "m", "unit", "tonne", "t"},
	DomainFuel:        {"L", "kL", "GJ", "m³"},
	DomainElectricity: {"kWh", "MWh", "GJ"},
	DomainTransport:   {"km", "tonne-km", "t-km"},
}

// quantityLimits are the quantities above which an input is unusual for a
// construction project.
var quantityLimits = map[Domain]float64{
	DomainFuel:        1e6,
	DomainElectricity: 1e7,
}

// DomainOf returns the unit domain of an activity type.
func DomainOf(t constructioncarbon.ActivityType) (Domain, bool) {
	switch t {
	case constructioncarbon.ActivityMaterial, constructioncarbon.ActivitySequestration:
		return DomainMaterials, true
	case constructioncarbon.ActivityFuel:
		return DomainFuel, true
	case constructioncarbon.ActivityElectricity:
		return DomainElectricity, true
	case constructioncarbon.ActivityTransport:
		return DomainTransport, true
	default:
		return "", false
	}
}

// UnitConsistency checks that a stored kgCO2e value and its displayed tCO2e
// value agree under the canonical conversion factor.
func UnitConsistency(field string, stored constructioncarbon.KgCO2e, displayed constructioncarbon.TCO2e) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	expected := float64(stored.Tonnes())
	if !scalar.EqualWithinAbs(expected, float64(displayed), RelativeTolerance*math.Max(expected, 1)) {
		result.Warn("%s: potential unit mismatch, stored %.2f kgCO2e displayed as %.4f tCO2e (expected %.4f tCO2e)",
			field, float64(stored), float64(displayed), expected)
	}

	return result
}

// SumConsistency checks that components add up to the declared total within
// one kilogram.
func SumConsistency(field string, components []constructioncarbon.KgCO2e, declared constructioncarbon.KgCO2e) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	values := make([]float64, len(components))
	for i, c := range components {
		values[i] = float64(c)
	}
	sum := floats.Sum(values)

	if !scalar.EqualWithinAbs(sum, float64(declared), AbsoluteToleranceKg) {
		result.Warn("%s mismatch: sum of components (%.2f) doesn't match stored total (%.2f)", field, sum, float64(declared))
	}

	return result
}

// Magnitude flags values above one million tonnes, which usually means a
// quantity was entered in the wrong unit.
func Magnitude(field string, v constructioncarbon.KgCO2e) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	if float64(v) > MagnitudeThresholdKg {
		result.Warn("%s: unusually large value (%.0f kgCO2e), verify this is correct", field, float64(v))
	}

	return result
}

// PerLineArithmetic checks a reported line emission against quantity × factor.
func PerLineArithmetic(field string, quantity, factor float64, reported constructioncarbon.KgCO2e) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	expected := quantity * factor
	if !scalar.EqualWithinAbs(expected, float64(reported), AbsoluteToleranceKg) {
		result.Warn("%s: emission calculation mismatch, expected %.2f kgCO2e, reported %.2f kgCO2e",
			field, expected, float64(reported))
	}

	return result
}

// UnitWhitelist flags units outside the standard units of the domain. Unit
// spellings are compared in their canonical form. Domains without a list
// accept every unit.
func UnitWhitelist(field, unit string, domain Domain) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	standard, found := StandardUnits[domain]
	if !found || unit == "" {
		return result
	}

	canonical := factors.CanonicalUnit(unit)
	if !slices.ContainsFunc(standard, func(u string) bool { return factors.CanonicalUnit(u) == canonical }) {
		result.Warn("%s: non-standard unit %q", field, unit)
	}

	return result
}

// QuantityRange flags fuel and electricity quantities that are unusually high
// for a construction project.
func QuantityRange(field string, domain Domain, quantity float64, unit string) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	limit, found := quantityLimits[domain]
	if found && quantity > limit {
		result.Warn("%s: unusually high quantity (%g %s)", field, quantity, unit)
	}

	return result
}
