package constructioncarbon

import (
	"math"
	"slices"
)

// Module is an EN 15978 lifecycle module.
type Module string

const (
	ModuleA1 Module = "A1"
	ModuleA2 Module = "A2"
	ModuleA3 Module = "A3"
	// ModuleA1A3 is the product stage declared as one figure, as most EPDs do.
	ModuleA1A3 Module = "A1-A3"
	ModuleA4   Module = "A4"
	ModuleA5   Module = "A5"

	ModuleB1 Module = "B1"
	ModuleB2 Module = "B2"
	ModuleB3 Module = "B3"
	ModuleB4 Module = "B4"
	ModuleB5 Module = "B5"
	ModuleB6 Module = "B6"
	ModuleB7 Module = "B7"

	ModuleC1 Module = "C1"
	ModuleC2 Module = "C2"
	ModuleC3 Module = "C3"
	ModuleC4 Module = "C4"

	ModuleDRecycling      Module = "D.recycling"
	ModuleDReuse          Module = "D.reuse"
	ModuleDEnergyRecovery Module = "D.energy_recovery"
)

// Modules in declaration order.
var Modules = []Module{
	ModuleA1, ModuleA2, ModuleA3, ModuleA1A3, ModuleA4, ModuleA5,
	ModuleB1, ModuleB2, ModuleB3, ModuleB4, ModuleB5, ModuleB6, ModuleB7,
	ModuleC1, ModuleC2, ModuleC3, ModuleC4,
	ModuleDRecycling, ModuleDReuse, ModuleDEnergyRecovery,
}

var (
	UpfrontModules   = []Module{ModuleA1, ModuleA2, ModuleA3, ModuleA1A3, ModuleA4, ModuleA5}
	UsePhaseModules  = []Module{ModuleB1, ModuleB2, ModuleB3, ModuleB4, ModuleB5, ModuleB6, ModuleB7}
	EndOfLifeModules = []Module{ModuleC1, ModuleC2, ModuleC3, ModuleC4}
	BenefitModules   = []Module{ModuleDRecycling, ModuleDReuse, ModuleDEnergyRecovery}
)

// Known reports whether m is a declared module.
func (m Module) Known() bool {
	return slices.Contains(Modules, m)
}

// Stage returns the reporting stage of the module. A1, A2 and A3 collapse into
// the product stage, the D components into D.
func (m Module) Stage() Stage {
	switch m {
	case ModuleA1, ModuleA2, ModuleA3, ModuleA1A3:
		return StageProduct
	case ModuleDRecycling, ModuleDReuse, ModuleDEnergyRecovery:
		return StageD
	default:
		return Stage(m)
	}
}

// Stage is a lifecycle stage as shown in hotspot analysis.
type Stage string

const (
	StageProduct      Stage = "A1-A3"
	StageTransport    Stage = "A4"
	StageConstruction Stage = "A5"
	StageD            Stage = "D"
)

// Stages in declaration order. Ties between stages resolve to the earliest one.
var Stages = []Stage{
	StageProduct, StageTransport, StageConstruction,
	"B1", "B2", "B3", "B4", "B5", "B6", "B7",
	"C1", "C2", "C3", "C4",
	StageD,
}

// ModuleFigures carries emissions per module in kgCO2e. A module missing from
// the map is absent: it contributes zero and is reported as such, it is never
// an error.
type ModuleFigures map[Module]KgCO2e

// Add accumulates v into module m.
func (figures ModuleFigures) Add(m Module, v KgCO2e) {
	figures[m] += v
}

// Sum adds the figures of the given modules, absent modules being zero.
func (figures ModuleFigures) Sum(modules ...Module) KgCO2e {
	values := make([]KgCO2e, 0, len(modules))
	for _, m := range modules {
		values = append(values, figures[m])
	}
	return SumKg(values...)
}

// SumMagnitude adds the absolute value of each figure.
func (figures ModuleFigures) SumMagnitude(modules ...Module) KgCO2e {
	values := make([]KgCO2e, 0, len(modules))
	for _, m := range modules {
		values = append(values, KgCO2e(math.Abs(float64(figures[m]))))
	}
	return SumKg(values...)
}

// Merge returns a new set of figures adding every figure of others.
func (figures ModuleFigures) Merge(others ...ModuleFigures) ModuleFigures {
	merged := make(ModuleFigures, len(figures))
	for m, v := range figures {
		merged[m] = v
	}
	for _, other := range others {
		for m, v := range other {
			merged[m] += v
		}
	}
	return merged
}

// ByStage regroups module figures into stages.
func (figures ModuleFigures) ByStage() map[Stage]KgCO2e {
	stages := make(map[Stage]KgCO2e)
	for m, v := range figures {
		stages[m.Stage()] += v
	}
	return stages
}
