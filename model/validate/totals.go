package validate

import (
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
	constructioncarbon "github.com/superdango/construction-carbon"
)

// DeclaredTotals is a totals record as previously stored, in kgCO2e. A nil
// field was not present in the record.
type DeclaredTotals struct {
	Scope1             *float64 `mapstructure:"scope1"`
	Scope2             *float64 `mapstructure:"scope2"`
	Scope3Materials    *float64 `mapstructure:"scope3_materials"`
	Scope3Transport    *float64 `mapstructure:"scope3_transport"`
	Scope3Construction *float64 `mapstructure:"scope3_construction"`
	Scope3Commute      *float64 `mapstructure:"scope3_commute"`
	Scope3Waste        *float64 `mapstructure:"scope3_waste"`
	Total              *float64 `mapstructure:"total"`
}

// DecodeTotals reads a loosely typed totals record. Numbers written as strings
// are accepted; a record that cannot be read at all is a structural error.
func DecodeTotals(raw map[string]any) (DeclaredTotals, error) {
	declared := DeclaredTotals{}
	if raw == nil {
		return declared, constructioncarbon.NewStructuralError("validate.DecodeTotals", "declared", constructioncarbon.ErrMissingTotals)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &declared,
	})
	if err != nil {
		return declared, fmt.Errorf("failed to create totals decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return declared, constructioncarbon.NewStructuralError("validate.DecodeTotals", "declared",
			fmt.Errorf("%w: %s", constructioncarbon.ErrMalformedNumber, err))
	}

	for field, v := range declared.fields() {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return declared, constructioncarbon.NewStructuralError("validate.DecodeTotals", "declared."+field,
				fmt.Errorf("%w: %v", constructioncarbon.ErrMalformedNumber, *v))
		}
	}

	return declared, nil
}

func (d DeclaredTotals) fields() map[string]*float64 {
	return map[string]*float64{
		"scope1":              d.Scope1,
		"scope2":              d.Scope2,
		"scope3_materials":    d.Scope3Materials,
		"scope3_transport":    d.Scope3Transport,
		"scope3_construction": d.Scope3Construction,
		"scope3_commute":      d.Scope3Commute,
		"scope3_waste":        d.Scope3Waste,
		"total":               d.Total,
	}
}

func (d DeclaredTotals) components() []constructioncarbon.KgCO2e {
	components := make([]constructioncarbon.KgCO2e, 0, 7)
	for _, v := range []*float64{
		d.Scope1, d.Scope2,
		d.Scope3Materials, d.Scope3Transport, d.Scope3Construction, d.Scope3Commute, d.Scope3Waste,
	} {
		if v != nil {
			components = append(components, constructioncarbon.KgCO2e(*v))
		}
	}
	return components
}

// Totals checks that the scopes of a stored record add up to its total and
// that the total is plausible. A record without a total is unusable.
func Totals(declared DeclaredTotals) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	if declared.Total == nil {
		result.Fail("declared totals: %s", constructioncarbon.ErrMissingTotals)
		return result
	}

	total := constructioncarbon.KgCO2e(*declared.Total)
	result = result.Merge(SumConsistency("Total", declared.components(), total))

	if float64(total) > MagnitudeThresholdKg {
		result.Warn("Total emissions (%.0f tCO2e) seem unusually high, please verify calculations", float64(total.Tonnes()))
	}

	return result
}

// Recomputed compares every field of a stored record with the totals computed
// from the current activity lines. A difference means the stored record is
// stale.
func Recomputed(declared DeclaredTotals, computed constructioncarbon.ScopeTotals) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()

	pairs := []struct {
		field    string
		declared *float64
		computed constructioncarbon.KgCO2e
	}{
		{"scope1", declared.Scope1, computed.Scope1},
		{"scope2", declared.Scope2, computed.Scope2},
		{"scope3_materials", declared.Scope3Materials, computed.Scope3.Materials},
		{"scope3_transport", declared.Scope3Transport, computed.Scope3.Transport},
		{"scope3_construction", declared.Scope3Construction, computed.Scope3.Construction},
		{"scope3_commute", declared.Scope3Commute, computed.Scope3.Commute},
		{"scope3_waste", declared.Scope3Waste, computed.Scope3.Waste},
		{"total", declared.Total, computed.Total()},
	}

	for _, pair := range pairs {
		if pair.declared == nil {
			continue
		}
		check := SumConsistency("Stored "+pair.field, []constructioncarbon.KgCO2e{pair.computed}, constructioncarbon.KgCO2e(*pair.declared))
		result = result.Merge(check)
	}

	return result
}
