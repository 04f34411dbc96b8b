package lifecycle

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
)

func containsWarning(warnings []string, substr string) bool {
	for _, warning := range warnings {
		if strings.Contains(warning, substr) {
			return true
		}
	}
	return false
}

func TestUsePhase(t *testing.T) {
	calculator := NewCalculator(factors.Default())

	result, err := calculator.UsePhase(constructioncarbon.UsePhaseInputs{
		StudyPeriodYears:    60,
		RefrigerantChargeKg: 10,
		Maintenance: []constructioncarbon.AreaItem{
			{Type: "painting_interior", AreaM2: 100},
			{Type: "hvac_maintenance", AreaM2: 50},
		},
		Replacements: []constructioncarbon.AreaItem{
			{Type: "hvac_system", AreaM2: 100},
			{Type: "windows", AreaM2: 200},
		},
		Refurbishment:        "minor",
		AnnualElectricityKWh: 10000,
		GridRegion:           "NSW",
		RenewablePercent:     50,
		AnnualGasGJ:          100,
		AnnualWaterKL:        500,
	}, 2000)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	modules := result.Modules
	assert.InDelta(t, 42900, float64(modules[constructioncarbon.ModuleB1]), 1e-6)
	// 8 interior repaints and 60 hvac services
	assert.InDelta(t, 5600, float64(modules[constructioncarbon.ModuleB2]), 1e-6)
	assert.InDelta(t, 1120, float64(modules[constructioncarbon.ModuleB3]), 1e-6)
	// 2 hvac replacements, 1 window replacement
	assert.InDelta(t, 28000, float64(modules[constructioncarbon.ModuleB4]), 1e-6)
	assert.InDelta(t, 300000, float64(modules[constructioncarbon.ModuleB5]), 1e-6)
	assert.InDelta(t, (10000*0.66*0.5+100*51.5)*60, float64(modules[constructioncarbon.ModuleB6]), 1e-6)
	assert.InDelta(t, 36000, float64(modules[constructioncarbon.ModuleB7]), 1e-6)
}

func TestUsePhaseDefaults(t *testing.T) {
	calculator := NewCalculator(factors.Default())

	result, err := calculator.UsePhase(constructioncarbon.UsePhaseInputs{
		RefrigerantChargeKg:  2,
		Refurbishment:        "major",
		AnnualElectricityKWh: 1000,
	}, 0)
	require.NoError(t, err)

	modules := result.Modules
	assert.InDelta(t, 2*DefaultRefrigerantGWP*AnnualLeakageRate*DefaultStudyPeriodYears, float64(modules[constructioncarbon.ModuleB1]), 1e-6)
	assert.InDelta(t, 350*DefaultFloorAreaM2, float64(modules[constructioncarbon.ModuleB5]), 1e-6)
	assert.InDelta(t, 1000*0.72*DefaultStudyPeriodYears, float64(modules[constructioncarbon.ModuleB6]), 1e-6)
	assert.True(t, containsWarning(result.Warnings, "B5: floor area unknown"))

	result, err = calculator.UsePhase(constructioncarbon.UsePhaseInputs{
		StudyPeriodYears:    10,
		RefrigerantChargeKg: 1,
		Refrigerant:         "r32",
		Replacements:        []constructioncarbon.AreaItem{{Type: "flooring", AreaM2: 10}},
	}, 100)
	require.NoError(t, err)
	assert.InDelta(t, 675*0.05*10, float64(result.Modules[constructioncarbon.ModuleB1]), 1e-6)
	// a 15 years floor is never replaced within 10 years
	assert.Zero(t, result.Modules[constructioncarbon.ModuleB4])
}

func TestUsePhaseErrors(t *testing.T) {
	calculator := NewCalculator(factors.Default())

	tests := []struct {
		in       constructioncarbon.UsePhaseInputs
		field    string
		expected error
	}{
		{
			in:       constructioncarbon.UsePhaseInputs{AnnualWaterKL: math.NaN()},
			field:    "annual_water_kl",
			expected: constructioncarbon.ErrMalformedNumber,
		},
		{
			in:       constructioncarbon.UsePhaseInputs{RenewablePercent: 120},
			field:    "renewable_percent",
			expected: constructioncarbon.ErrMalformedNumber,
		},
		{
			in:       constructioncarbon.UsePhaseInputs{StudyPeriodYears: -1},
			field:    "study_period_years",
			expected: constructioncarbon.ErrMalformedNumber,
		},
		{
			in:       constructioncarbon.UsePhaseInputs{Maintenance: []constructioncarbon.AreaItem{{Type: "painting", AreaM2: 10}}},
			field:    "maintenance[0].type",
			expected: constructioncarbon.ErrFactorNotFound,
		},
		{
			in:       constructioncarbon.UsePhaseInputs{Replacements: []constructioncarbon.AreaItem{{Type: "lifts", AreaM2: -5}}},
			field:    "replacements[0].area_m2",
			expected: constructioncarbon.ErrMalformedNumber,
		},
		{
			in:       constructioncarbon.UsePhaseInputs{AnnualElectricityKWh: 10, GridRegion: "NZ"},
			field:    "grid_region",
			expected: constructioncarbon.ErrFactorNotFound,
		},
	}

	for _, tt := range tests {
		_, err := calculator.UsePhase(tt.in, 100)
		structErr := new(constructioncarbon.StructuralError)
		require.ErrorAs(t, err, &structErr, tt.field)
		assert.Equal(t, tt.field, structErr.Field)
		assert.ErrorIs(t, err, tt.expected, tt.field)
	}
}

func TestUsePhaseMissingSchedule(t *testing.T) {
	registry, err := factors.New(factors.Table{
		Category: factors.CategoryMaintenance,
		Unit:     "m²",
		Factors: []constructioncarbon.EmissionFactor{
			{Key: "gutter_cleaning", Name: "Gutter cleaning", Unit: "m²", Factor: 0.1},
		},
	})
	require.NoError(t, err)

	_, err = NewCalculator(registry).UsePhase(constructioncarbon.UsePhaseInputs{
		Maintenance: []constructioncarbon.AreaItem{{Type: "gutter_cleaning", AreaM2: 10}},
	}, 100)
	assert.ErrorIs(t, err, constructioncarbon.ErrInvalidFactor)
	assert.ErrorContains(t, err, "no maintenance interval")
}

func TestEndOfLife(t *testing.T) {
	calculator := NewCalculator(factors.Default())

	result, err := calculator.EndOfLife(constructioncarbon.EndOfLifeInputs{
		Waste: []constructioncarbon.WasteFraction{
			{Material: "concrete", Tonnes: 100, RecyclePercent: 80, LandfillPercent: 20},
			{Material: "steel", Tonnes: 10, RecyclePercent: 95, LandfillPercent: 5},
			{Material: "carpet", Tonnes: 2, LandfillPercent: 100},
		},
	}, 0)
	require.NoError(t, err)

	modules := result.Modules
	assert.InDelta(t, 35*DefaultFloorAreaM2, float64(modules[constructioncarbon.ModuleC1]), 1e-6)
	assert.InDelta(t, 112*50*0.089, float64(modules[constructioncarbon.ModuleC2]), 1e-6)
	assert.InDelta(t, 5475, float64(modules[constructioncarbon.ModuleC3]), 1e-6)
	assert.InDelta(t, 205, float64(modules[constructioncarbon.ModuleC4]), 1e-6)

	assert.True(t, containsWarning(result.Warnings, "C1: floor area unknown"))
	assert.True(t, containsWarning(result.Warnings, `no processing factors for "carpet"`))
	assert.Len(t, result.Warnings, 2)

	result, err = calculator.EndOfLife(constructioncarbon.EndOfLifeInputs{
		DemolitionMethod:    "implosion",
		TransportDistanceKm: 10,
		Waste: []constructioncarbon.WasteFraction{
			{Material: "timber", Tonnes: 10, RecyclePercent: 40, IncinerationPercent: 20, LandfillPercent: 30},
		},
	}, 500)
	require.NoError(t, err)
	assert.InDelta(t, 15*500, float64(result.Modules[constructioncarbon.ModuleC1]), 1e-6)
	assert.InDelta(t, 10*10*0.089, float64(result.Modules[constructioncarbon.ModuleC2]), 1e-6)
	assert.InDelta(t, 4*20+2*80, float64(result.Modules[constructioncarbon.ModuleC3]), 1e-6)
	assert.InDelta(t, 3*50, float64(result.Modules[constructioncarbon.ModuleC4]), 1e-6)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "timber fractions add up to 90.0%")

	_, err = calculator.EndOfLife(constructioncarbon.EndOfLifeInputs{DemolitionMethod: "dynamite"}, 100)
	assert.ErrorIs(t, err, constructioncarbon.ErrFactorNotFound)

	_, err = calculator.EndOfLife(constructioncarbon.EndOfLifeInputs{
		Waste: []constructioncarbon.WasteFraction{{Material: "glass", Tonnes: 1, RecyclePercent: 150}},
	}, 100)
	assert.ErrorIs(t, err, constructioncarbon.ErrMalformedNumber)
}

func TestBenefits(t *testing.T) {
	calculator := NewCalculator(factors.Default())

	result, err := calculator.Benefits(constructioncarbon.BenefitInputs{
		Recycling: []constructioncarbon.MaterialTonnes{
			{Material: "steel", Tonnes: 10},
			{Material: "rubber", Tonnes: 5},
		},
		Reuse: []constructioncarbon.ReuseItem{
			{Material: "timber", Tonnes: 2},
			{Material: "brick", Tonnes: 10, ReusePercent: 50},
		},
		EnergyRecovery: []constructioncarbon.MaterialTonnes{
			{Material: "plastics", Tonnes: 3},
			{Material: "paper", Tonnes: 1},
		},
	})
	require.NoError(t, err)

	modules := result.Modules
	assert.InDelta(t, -18500, float64(modules[constructioncarbon.ModuleDRecycling]), 1e-6)
	assert.InDelta(t, -3180, float64(modules[constructioncarbon.ModuleDReuse]), 1e-6)
	assert.InDelta(t, -2600, float64(modules[constructioncarbon.ModuleDEnergyRecovery]), 1e-6)
	assert.True(t, containsWarning(result.Warnings, `no recycling credit for "rubber"`))
	assert.True(t, containsWarning(result.Warnings, `no energy recovery credit for "paper"`))

	for _, v := range modules {
		assert.LessOrEqual(t, float64(v), 0.0)
	}

	_, err = calculator.Benefits(constructioncarbon.BenefitInputs{
		Reuse: []constructioncarbon.ReuseItem{{Material: "steel", Tonnes: math.Inf(1)}},
	})
	assert.ErrorIs(t, err, constructioncarbon.ErrMalformedNumber)
}

func TestCalculateFeedsAggregate(t *testing.T) {
	calculator := NewCalculator(factors.Default())

	snapshot := constructioncarbon.Snapshot{
		ID:        "site",
		UsePhase:  &constructioncarbon.UsePhaseInputs{StudyPeriodYears: 50, AnnualWaterKL: 100},
		EndOfLife: &constructioncarbon.EndOfLifeInputs{DemolitionMethod: "conventional"},
		Benefits:  &constructioncarbon.BenefitInputs{Recycling: []constructioncarbon.MaterialTonnes{{Material: "aluminium", Tonnes: 1}}},
	}

	result, err := calculator.Calculate(snapshot, 400)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)
	assert.InDelta(t, 6000, float64(result.Modules[constructioncarbon.ModuleB7]), 1e-6)
	assert.InDelta(t, 10000, float64(result.Modules[constructioncarbon.ModuleC1]), 1e-6)
	assert.InDelta(t, -8700, float64(result.Modules[constructioncarbon.ModuleDRecycling]), 1e-6)

	figures := constructioncarbon.ModuleFigures{constructioncarbon.ModuleA1A3: 20000}.Merge(result.Modules)
	totals, err := Aggregate(figures)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, float64(totals.UsePhase), 1e-9)
	assert.InDelta(t, 10.0, float64(totals.EndOfLife), 1e-9)
	assert.InDelta(t, 8.7, float64(totals.ModuleD), 1e-9)
	assert.InDelta(t, 36.0, float64(totals.WholeLife), 1e-9)
	assert.InDelta(t, 27.3, float64(totals.WithBenefits), 1e-9)
	assert.NotContains(t, totals.Absent, constructioncarbon.Stage("B7"))
	assert.Contains(t, totals.Absent, constructioncarbon.StageTransport)

	empty, err := calculator.Calculate(constructioncarbon.Snapshot{ID: "lines-only"}, 400)
	require.NoError(t, err)
	assert.Empty(t, empty.Modules)

	snapshot.EndOfLife.DemolitionMethod = "dynamite"
	_, err = calculator.Calculate(snapshot, 400)
	structErr := new(constructioncarbon.StructuralError)
	require.ErrorAs(t, err, &structErr)
	assert.Equal(t, "lifecycle.EndOfLife", structErr.Op)
}
