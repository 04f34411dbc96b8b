package constructioncarbon_test

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	constructioncarbon "github.com/superdango/construction-carbon"
)

func TestConvert(t *testing.T) {
	v, err := constructioncarbon.Convert(9100, constructioncarbon.UnitKgCO2e, constructioncarbon.UnitTCO2e)
	require.NoError(t, err)
	assert.Equal(t, 9.1, v)

	v, err = constructioncarbon.Convert(9.1, constructioncarbon.UnitTCO2e, constructioncarbon.UnitKgCO2e)
	require.NoError(t, err)
	assert.InDelta(t, 9100.0, v, 1e-9)

	v, err = constructioncarbon.Convert(42, constructioncarbon.UnitTCO2e, constructioncarbon.UnitTCO2e)
	require.NoError(t, err)
	assert.Equal(t, 42.0, v)

	_, err = constructioncarbon.Convert(1, "gCO2e", constructioncarbon.UnitTCO2e)
	assert.ErrorIs(t, err, constructioncarbon.ErrUnknownUnit)
}

func TestConversionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500
	properties := gopter.NewProperties(parameters)

	properties.Property("kg to t to kg round trips", prop.ForAll(
		func(v float64) bool {
			tonnes, err := constructioncarbon.Convert(v, constructioncarbon.UnitKgCO2e, constructioncarbon.UnitTCO2e)
			if err != nil {
				return false
			}
			back, err := constructioncarbon.Convert(tonnes, constructioncarbon.UnitTCO2e, constructioncarbon.UnitKgCO2e)
			if err != nil {
				return false
			}
			return math.Abs(back-v) <= 1e-4
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("converting twice never returns the input", prop.ForAll(
		func(v float64) bool {
			if v == 0 {
				return true
			}
			once, _ := constructioncarbon.Convert(v, constructioncarbon.UnitKgCO2e, constructioncarbon.UnitTCO2e)
			twice, _ := constructioncarbon.Convert(once, constructioncarbon.UnitKgCO2e, constructioncarbon.UnitTCO2e)
			return twice != v
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.TestingRun(t)
}

func TestKgTonnes(t *testing.T) {
	assert.Equal(t, constructioncarbon.TCO2e(1), constructioncarbon.KgCO2e(1000).Tonnes())
	assert.Equal(t, constructioncarbon.TCO2e(6.1), constructioncarbon.KgCO2e(6100).Tonnes())
	assert.Equal(t, constructioncarbon.KgCO2e(2000), constructioncarbon.TCO2e(2).Kg())
	assert.Equal(t, constructioncarbon.KgCO2e(0), constructioncarbon.SumKg())
	assert.Equal(t, constructioncarbon.KgCO2e(6100), constructioncarbon.SumKg(5000, 800, 300))
	assert.Equal(t, constructioncarbon.KgCO2e(-1500), constructioncarbon.SumKg(-1850, 350))
}
