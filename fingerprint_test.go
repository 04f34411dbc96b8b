package constructioncarbon_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	constructioncarbon "github.com/superdango/construction-carbon"
)

func TestFingerprint(t *testing.T) {
	snapshot := func(declared map[string]any) constructioncarbon.Snapshot {
		return constructioncarbon.Snapshot{
			ID: "site",
			Lines: constructioncarbon.Lines{
				{Type: constructioncarbon.ActivityMaterial, Quantity: 10, Factor: constructioncarbon.FactorRef{Category: "concrete", Key: "c_32"}},
			},
			Declared: declared,
		}
	}

	a, err := constructioncarbon.Fingerprint(snapshot(map[string]any{"total": 1.0, "scope1": 2}))
	require.NoError(t, err)
	b, err := constructioncarbon.Fingerprint(snapshot(map[string]any{"scope1": 2.0, "total": 1}))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := constructioncarbon.Fingerprint(snapshot(map[string]any{"scope1": 2.0, "total": 3}))
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	broken := snapshot(nil)
	broken.Lines[0].Quantity = math.NaN()
	_, err = constructioncarbon.Fingerprint(broken)
	structErr := new(constructioncarbon.StructuralError)
	require.ErrorAs(t, err, &structErr)
	assert.ErrorIs(t, err, constructioncarbon.ErrMalformedNumber)
	assert.Equal(t, "site", structErr.Field)
}

func TestFingerprintNonFiniteDeclared(t *testing.T) {
	declared := map[string]any{
		"total":  math.NaN(),
		"scope3": map[string]any{"waste": math.Inf(-1)},
	}
	snapshot := constructioncarbon.Snapshot{ID: "site", Declared: declared}

	nan, err := constructioncarbon.Fingerprint(snapshot)
	require.NoError(t, err)
	assert.Len(t, nan, 64)
	assert.True(t, math.IsNaN(declared["total"].(float64)))

	snapshot.Declared = map[string]any{"total": math.Inf(1), "scope3": map[string]any{"waste": math.Inf(-1)}}
	inf, err := constructioncarbon.Fingerprint(snapshot)
	require.NoError(t, err)
	assert.NotEqual(t, nan, inf)
}
