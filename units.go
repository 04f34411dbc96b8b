package constructioncarbon

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// KgPerTonne is the canonical conversion factor between the storage unit
// (kgCO2e) and the display unit (tCO2e).
const KgPerTonne = 1000

// EmissionUnit names a unit of carbon dioxide equivalent mass.
type EmissionUnit string

const (
	UnitKgCO2e EmissionUnit = "kgCO2e"
	UnitTCO2e  EmissionUnit = "tCO2e"
)

// KgCO2e is a mass of CO2 equivalent in kilograms. Every value computed by the
// engine is stored in this unit.
type KgCO2e float64

// Tonnes converts the value to the display unit. It must be called once, when
// the value leaves the engine.
func (k KgCO2e) Tonnes() TCO2e {
	return TCO2e(float64(k) / KgPerTonne)
}

// TCO2e is a mass of CO2 equivalent in tonnes, used for display only.
type TCO2e float64

// Kg converts a displayed value back to the storage unit.
func (t TCO2e) Kg() KgCO2e {
	return KgCO2e(float64(t) * KgPerTonne)
}

// Convert moves v between kgCO2e and tCO2e. Converting to the same unit returns
// v untouched.
func Convert(v float64, from, to EmissionUnit) (float64, error) {
	if !from.valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, from)
	}
	if !to.valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, to)
	}

	switch {
	case from == to:
		return v, nil
	case from == UnitKgCO2e:
		return float64(KgCO2e(v).Tonnes()), nil
	default:
		return float64(TCO2e(v).Kg()), nil
	}
}

func (u EmissionUnit) valid() bool {
	return u == UnitKgCO2e || u == UnitTCO2e
}

// SumKg adds values in the storage unit.
func SumKg(values ...KgCO2e) KgCO2e {
	raw := make([]float64, len(values))
	for i, v := range values {
		raw[i] = float64(v)
	}
	return KgCO2e(floats.Sum(raw))
}
