package constructioncarbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleStage(t *testing.T) {
	testCases := map[Module]Stage{
		ModuleA1:              StageProduct,
		ModuleA1A3:            StageProduct,
		ModuleA4:              StageTransport,
		ModuleA5:              StageConstruction,
		ModuleB6:              Stage("B6"),
		ModuleC4:              Stage("C4"),
		ModuleDRecycling:      StageD,
		ModuleDEnergyRecovery: StageD,
	}

	for module, stage := range testCases {
		assert.Equal(t, stage, module.Stage(), module)
		assert.Contains(t, Stages, module.Stage())
	}

	assert.True(t, ModuleB7.Known())
	assert.False(t, Module("E1").Known())
}

func TestModuleFigures(t *testing.T) {
	figures := ModuleFigures{ModuleA1A3: 5000, ModuleA5: 800, ModuleDRecycling: -1500}
	figures.Add(ModuleA4, 200)
	figures.Add(ModuleA4, 100)

	assert.Equal(t, KgCO2e(300), figures[ModuleA4])
	_, found := figures[ModuleB6]
	assert.False(t, found)

	assert.Equal(t, KgCO2e(6100), figures.Sum(UpfrontModules...))
	assert.Equal(t, KgCO2e(-1500), figures.Sum(BenefitModules...))
	assert.Equal(t, KgCO2e(1500), figures.SumMagnitude(BenefitModules...))

	merged := figures.Merge(ModuleFigures{ModuleA5: 200, ModuleB6: 12000})
	assert.Equal(t, KgCO2e(1000), merged[ModuleA5])
	assert.Equal(t, KgCO2e(800), figures[ModuleA5])

	assert.Equal(t, map[Stage]KgCO2e{
		StageProduct:      5000,
		StageTransport:    300,
		StageConstruction: 800,
		StageD:            -1500,
	}, figures.ByStage())
}
