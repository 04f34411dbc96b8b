package lifecycle

import (
	"fmt"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
	"gonum.org/v1/gonum/floats/scalar"
)

// fractionTolerance bounds the gap between the sum of waste fractions and
// 100%.
const fractionTolerance = 0.5

// EndOfLife computes modules C1 to C4:
//
//	C1 floor area × demolition factor
//	C2 total waste tonnes × distance × disposal truck factor
//	C3 recycled and incinerated tonnes × their processing factors
//	C4 landfilled tonnes × landfill factor
//
// Materials missing from the processing tables are processed as mixed waste.
func (c *Calculator) EndOfLife(in constructioncarbon.EndOfLifeInputs, floorArea float64) (Result, error) {
	const op = "lifecycle.EndOfLife"
	result := newResult()

	method := in.DemolitionMethod
	if method == "" {
		method = DefaultDemolitionMethod
	}
	demolition, err := c.factor(op, "demolition_method", factors.CategoryDemolition, method)
	if err != nil {
		return Result{}, err
	}
	c1 := effectiveArea(&result, floorArea, constructioncarbon.ModuleC1) * demolition

	if err := quantity(op, "transport_distance_km", in.TransportDistanceKm); err != nil {
		return Result{}, err
	}
	distance := in.TransportDistanceKm
	if distance == 0 {
		distance = DefaultTransportDistanceKm
	}

	totalTonnes, c3, c4 := 0.0, 0.0, 0.0
	for i, fraction := range in.Waste {
		field := fmt.Sprintf("waste[%d]", i)
		if err := quantity(op, field+".tonnes", fraction.Tonnes); err != nil {
			return Result{}, err
		}
		for _, share := range []struct {
			field string
			v     float64
		}{
			{".recycle_percent", fraction.RecyclePercent},
			{".incineration_percent", fraction.IncinerationPercent},
			{".landfill_percent", fraction.LandfillPercent},
		} {
			if err := percentage(op, field+share.field, share.v); err != nil {
				return Result{}, err
			}
		}

		shares := fraction.RecyclePercent + fraction.IncinerationPercent + fraction.LandfillPercent
		if fraction.Tonnes > 0 && !scalar.EqualWithinAbs(shares, 100, fractionTolerance) {
			result.warn("C3/C4: %s fractions add up to %.1f%%, not 100%%", fraction.Material, shares)
		}

		material, known := c.knownOr(factors.CategoryWasteLandfill, fraction.Material, MixedWasteKey)
		if !known {
			result.warn("C3/C4: no processing factors for %q, processed as %s", fraction.Material, MixedWasteKey)
		}

		landfill, err := c.factor(op, field+".material", factors.CategoryWasteLandfill, material)
		if err != nil {
			return Result{}, err
		}
		recycling, err := c.factor(op, field+".material", factors.CategoryWasteRecycling, material)
		if err != nil {
			return Result{}, err
		}
		incineration, err := c.factor(op, field+".material", factors.CategoryWasteIncineration, material)
		if err != nil {
			return Result{}, err
		}

		totalTonnes += fraction.Tonnes
		c3 += fraction.Tonnes * fraction.RecyclePercent / 100 * recycling
		c3 += fraction.Tonnes * fraction.IncinerationPercent / 100 * incineration
		c4 += fraction.Tonnes * fraction.LandfillPercent / 100 * landfill
	}

	c2 := 0.0
	if totalTonnes > 0 {
		truck, err := c.factor(op, "transport_distance_km", factors.CategoryFreight, DisposalTransportKey)
		if err != nil {
			return Result{}, err
		}
		c2 = totalTonnes * distance * truck
	}

	result.Modules[constructioncarbon.ModuleC1] = constructioncarbon.KgCO2e(c1)
	result.Modules[constructioncarbon.ModuleC2] = constructioncarbon.KgCO2e(c2)
	result.Modules[constructioncarbon.ModuleC3] = constructioncarbon.KgCO2e(c3)
	result.Modules[constructioncarbon.ModuleC4] = constructioncarbon.KgCO2e(c4)

	return result, nil
}
