// Package lifecycle projects module figures onto EN 15978 whole life totals.
package lifecycle

import (
	"fmt"
	"math"

	constructioncarbon "github.com/superdango/construction-carbon"
)

const op = "lifecycle.Aggregate"

type settings struct {
	floorArea float64
}

// Option configures an aggregation.
type Option func(s *settings)

// WithFloorArea adds intensities per square metre to the totals. A non
// positive area is ignored.
func WithFloorArea(m2 float64) Option {
	return func(s *settings) {
		s.floorArea = m2
	}
}

// Aggregate computes lifecycle totals from module figures. Module D is
// reported as a magnitude and subtracted from the whole life total. Every sum
// is made in kgCO2e and converted to tonnes once.
func Aggregate(figures constructioncarbon.ModuleFigures, opts ...Option) (constructioncarbon.LifecycleTotals, error) {
	if figures == nil {
		return constructioncarbon.LifecycleTotals{}, constructioncarbon.NewStructuralError(op, "modules", constructioncarbon.ErrMissingTotals)
	}

	for module, v := range figures {
		if !module.Known() {
			return constructioncarbon.LifecycleTotals{}, constructioncarbon.NewStructuralError(op, "modules."+string(module),
				fmt.Errorf("%w: %q", constructioncarbon.ErrUnknownModule, module))
		}
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return constructioncarbon.LifecycleTotals{}, constructioncarbon.NewStructuralError(op, "modules."+string(module),
				fmt.Errorf("%w: %v", constructioncarbon.ErrMalformedNumber, v))
		}
	}

	s := settings{}
	for _, opt := range opts {
		opt(&s)
	}

	upfront := figures.Sum(constructioncarbon.UpfrontModules...)
	usePhase := figures.Sum(constructioncarbon.UsePhaseModules...)
	endOfLife := figures.Sum(constructioncarbon.EndOfLifeModules...)
	moduleD := figures.SumMagnitude(constructioncarbon.BenefitModules...)
	wholeLife := upfront + usePhase + endOfLife
	withBenefits := wholeLife - moduleD
	operational := figures.Sum(constructioncarbon.ModuleB6, constructioncarbon.ModuleB7)
	embodied := upfront + figures.Sum(constructioncarbon.ModuleB1, constructioncarbon.ModuleB2,
		constructioncarbon.ModuleB3, constructioncarbon.ModuleB4, constructioncarbon.ModuleB5) + endOfLife

	totals := constructioncarbon.LifecycleTotals{
		Upfront:      upfront.Tonnes(),
		UsePhase:     usePhase.Tonnes(),
		EndOfLife:    endOfLife.Tonnes(),
		ModuleD:      moduleD.Tonnes(),
		WholeLife:    wholeLife.Tonnes(),
		WithBenefits: withBenefits.Tonnes(),
		Embodied:     embodied.Tonnes(),
		Operational:  operational.Tonnes(),
		Absent:       absent(figures),
	}

	if s.floorArea > 0 {
		totals.Intensity = &constructioncarbon.Intensity{
			FloorArea:    s.floorArea,
			Upfront:      float64(upfront) / s.floorArea,
			WholeLife:    float64(wholeLife) / s.floorArea,
			WithBenefits: float64(withBenefits) / s.floorArea,
		}
	}

	return totals, nil
}

// absent returns the stages no module figure maps to, in declaration order.
func absent(figures constructioncarbon.ModuleFigures) []constructioncarbon.Stage {
	present := make(map[constructioncarbon.Stage]bool, len(figures))
	for module := range figures {
		present[module.Stage()] = true
	}

	stages := make([]constructioncarbon.Stage, 0)
	for _, stage := range constructioncarbon.Stages {
		if !present[stage] {
			stages = append(stages, stage)
		}
	}
	return stages
}
