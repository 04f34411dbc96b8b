package validate

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
	"github.com/superdango/construction-carbon/model/scope"
)

func ptr(v float64) *float64 {
	return &v
}

func hasWarning(result constructioncarbon.ValidationResult, substr string) bool {
	for _, warning := range result.Warnings {
		if strings.Contains(warning, substr) {
			return true
		}
	}
	return false
}

func TestUnitConsistency(t *testing.T) {
	tests := []struct {
		stored    constructioncarbon.KgCO2e
		displayed constructioncarbon.TCO2e
		warns     bool
	}{
		{stored: 1000, displayed: 1},
		{stored: 1000, displayed: 100, warns: true},
		{stored: 1000, displayed: 1000, warns: true},
		{stored: 67170927.66, displayed: 67170.92766},
		{stored: 0, displayed: 0},
		{stored: 500, displayed: 0.505},
		{stored: 100000, displayed: 102, warns: true},
	}

	for _, tt := range tests {
		result := UnitConsistency("test", tt.stored, tt.displayed)
		assert.True(t, result.IsValid)
		assert.Equal(t, tt.warns, result.HasWarnings(), "%v kg displayed as %v t", tt.stored, tt.displayed)
		if tt.warns {
			assert.Contains(t, result.Warnings[0], "mismatch")
		}
	}
}

func TestSumConsistency(t *testing.T) {
	components := []constructioncarbon.KgCO2e{1000, 500, 5000, 500}

	result := SumConsistency("Total", components, 7000)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)

	result = SumConsistency("Total", components, 7000.9)
	assert.Empty(t, result.Warnings)

	result = SumConsistency("Total", components, 10000)
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "mismatch")

	assert.Empty(t, SumConsistency("Total", nil, 0).Warnings)
}

func TestTotals(t *testing.T) {
	declared, err := DecodeTotals(map[string]any{
		"scope1":           1000,
		"scope2":           500.0,
		"scope3_materials": "5000",
		"scope3_transport": 500,
		"total":            7000,
	})
	require.NoError(t, err)
	assert.Nil(t, declared.Scope3Waste)

	result := Totals(declared)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Errors)

	declared.Total = ptr(10000)
	result = Totals(declared)
	assert.True(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "mismatch")

	result = Totals(DeclaredTotals{Scope1: ptr(1)})
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)

	result = Totals(DeclaredTotals{Scope1: ptr(2e9), Total: ptr(2e9)})
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "unusually high")
}

func TestDecodeTotalsErrors(t *testing.T) {
	_, err := DecodeTotals(nil)
	assert.ErrorIs(t, err, constructioncarbon.ErrMissingTotals)

	_, err = DecodeTotals(map[string]any{"total": "seven"})
	assert.ErrorIs(t, err, constructioncarbon.ErrMalformedNumber)

	for _, raw := range []map[string]any{
		{"total": math.NaN()},
		{"total": 10, "scope1": math.Inf(1)},
		{"total": "NaN"},
	} {
		_, err = DecodeTotals(raw)
		structErr := new(constructioncarbon.StructuralError)
		require.ErrorAs(t, err, &structErr, "%v", raw)
		assert.ErrorIs(t, err, constructioncarbon.ErrMalformedNumber)
	}
}

func TestRecomputed(t *testing.T) {
	computed := constructioncarbon.ScopeTotals{Scope1: 1000, Scope2: 500}
	computed.Scope3.Materials = 5000

	result := Recomputed(DeclaredTotals{Scope1: ptr(1000), Total: ptr(6500)}, computed)
	assert.Empty(t, result.Warnings)

	result = Recomputed(DeclaredTotals{Scope1: ptr(900), Scope3Materials: ptr(5000), Total: ptr(6400)}, computed)
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Stored scope1 mismatch")
	assert.Contains(t, result.Warnings[1], "Stored total mismatch")
}

func TestMagnitude(t *testing.T) {
	assert.Empty(t, Magnitude("line", 1e9).Warnings)

	result := Magnitude("line", 2e9)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "large")

	consistent := UnitConsistency("line", 2e9, 2e6)
	assert.Empty(t, consistent.Warnings)
}

func TestPerLineArithmetic(t *testing.T) {
	assert.Empty(t, PerLineArithmetic("line", 100, 249, 24900).Warnings)
	assert.Empty(t, PerLineArithmetic("line", 100, 249, 24900.5).Warnings)

	result := PerLineArithmetic("line", 120, 249, 24900)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "mismatch")
}

func TestUnitWhitelist(t *testing.T) {
	tests := []struct {
		unit   string
		domain Domain
		warns  bool
	}{
		{unit: "kg", domain: DomainMaterials},
		{unit: "m3", domain: DomainMaterials},
		{unit: "tonne", domain: DomainMaterials},
		{unit: "gallons", domain: DomainMaterials, warns: true},
		{unit: "kWh", domain: DomainFuel, warns: true},
		{unit: "kL", domain: DomainFuel},
		{unit: "MWh", domain: DomainElectricity},
		{unit: "tonne-km", domain: DomainTransport},
		{unit: "miles", domain: DomainTransport, warns: true},
		{unit: "anything", domain: "other"},
		{unit: "", domain: DomainFuel},
	}

	for _, tt := range tests {
		result := UnitWhitelist("field", tt.unit, tt.domain)
		assert.Equal(t, tt.warns, result.HasWarnings(), "%s in %s", tt.unit, tt.domain)
		if tt.warns {
			assert.Contains(t, result.Warnings[0], "non-standard")
		}
	}
}

func TestQuantityRange(t *testing.T) {
	assert.Empty(t, QuantityRange("fuel", DomainFuel, 1e6, "L").Warnings)
	assert.Len(t, QuantityRange("fuel", DomainFuel, 1e6+1, "L").Warnings, 1)
	assert.Empty(t, QuantityRange("power", DomainElectricity, 5e6, "kWh").Warnings)
	assert.Len(t, QuantityRange("power", DomainElectricity, 2e7, "kWh").Warnings, 1)
	assert.Empty(t, QuantityRange("steel", DomainMaterials, 1e12, "t").Warnings)
}

func TestAggregation(t *testing.T) {
	registry, err := factors.New(factors.Table{
		Category: "unit",
		Factors: []constructioncarbon.EmissionFactor{
			{Key: "one", Name: "One kilogram", Unit: "kg", Factor: 1},
		},
	})
	require.NoError(t, err)
	aggregator := scope.NewAggregator(registry)
	one := constructioncarbon.FactorRef{Category: "unit", Key: "one"}

	agg, err := aggregator.Aggregate([]constructioncarbon.ActivityLine{
		{ID: "slab", Type: constructioncarbon.ActivityMaterial, Quantity: 100, Unit: "kg", Factor: one, ReportedKg: ptr(100)},
		{ID: "site", Type: constructioncarbon.ActivityElectricity, Quantity: 50, Factor: one},
	})
	require.NoError(t, err)

	result := Aggregation(agg)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)

	agg, err = aggregator.Aggregate([]constructioncarbon.ActivityLine{
		{ID: "huge", Type: constructioncarbon.ActivityMaterial, Quantity: 2e9, Factor: one},
		{ID: "stale", Type: constructioncarbon.ActivityMaterial, Quantity: 10, Unit: "kg", Factor: one, ReportedKg: ptr(50)},
		{ID: "odd", Type: constructioncarbon.ActivityFuel, Quantity: 5, Unit: "gallons", Factor: one},
	})
	require.NoError(t, err)

	result = Aggregation(agg)
	assert.True(t, result.IsValid)

	assert.True(t, hasWarning(result, "Line 1 (huge): unusually large"))
	assert.True(t, hasWarning(result, "Line 2 (stale): emission calculation mismatch"))
	assert.True(t, hasWarning(result, `Line 3 (odd): non-standard unit "gallons"`))
	assert.True(t, hasWarning(result, "not compatible"))
	assert.True(t, hasWarning(result, "Total: unusually large"))
}

func TestAggregationCategoryMagnitude(t *testing.T) {
	registry, err := factors.New(factors.Table{
		Category: "unit",
		Factors: []constructioncarbon.EmissionFactor{
			{Key: "one", Name: "One kilogram", Unit: "kg", Factor: 1},
		},
	})
	require.NoError(t, err)
	one := constructioncarbon.FactorRef{Category: "unit", Key: "one"}

	agg, err := scope.NewAggregator(registry).Aggregate([]constructioncarbon.ActivityLine{
		{ID: "slab-a", Type: constructioncarbon.ActivityMaterial, Quantity: 6e8, Unit: "kg", Factor: one},
		{ID: "slab-b", Type: constructioncarbon.ActivityMaterial, Quantity: 6e8, Unit: "kg", Factor: one},
		{ID: "generator", Type: constructioncarbon.ActivityFuel, Quantity: 10, Unit: "L", Factor: one},
	})
	require.NoError(t, err)

	result := Aggregation(agg)
	assert.True(t, result.IsValid)
	assert.False(t, hasWarning(result, "Line 1 (slab-a): unusually large"))
	assert.True(t, hasWarning(result, "Scope 3 materials: unusually large"))
	assert.False(t, hasWarning(result, "Scope 1: unusually large"))
	assert.True(t, hasWarning(result, "Total: unusually large"))
}
