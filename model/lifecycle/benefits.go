package lifecycle

import (
	"fmt"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
)

// Benefits computes the module D credits. Every figure is negative or zero.
//
//	recycling        tonnes × recycling credit
//	reuse            tonnes × recycling credit × 1.2 × reuse share
//	energy recovery  tonnes × energy recovery credit
//
// A material without recycling credit earns nothing. Energy recovery of an
// unknown material is credited as mixed waste.
func (c *Calculator) Benefits(in constructioncarbon.BenefitInputs) (Result, error) {
	const op = "lifecycle.Benefits"
	result := newResult()

	recycling := 0.0
	for i, item := range in.Recycling {
		credit, err := c.recyclingCredit(&result, op, fmt.Sprintf("recycling[%d]", i), item.Material, item.Tonnes)
		if err != nil {
			return Result{}, err
		}
		recycling += item.Tonnes * credit
	}

	reuse := 0.0
	for i, item := range in.Reuse {
		field := fmt.Sprintf("reuse[%d]", i)
		if err := percentage(op, field+".reuse_percent", item.ReusePercent); err != nil {
			return Result{}, err
		}
		share := item.ReusePercent
		if share == 0 {
			share = 100
		}

		credit, err := c.recyclingCredit(&result, op, field, item.Material, item.Tonnes)
		if err != nil {
			return Result{}, err
		}
		reuse += item.Tonnes * credit * ReuseCreditMultiplier * share / 100
	}

	energy := 0.0
	for i, item := range in.EnergyRecovery {
		field := fmt.Sprintf("energy_recovery[%d]", i)
		if err := quantity(op, field+".tonnes", item.Tonnes); err != nil {
			return Result{}, err
		}

		material, known := c.knownOr(factors.CategoryEnergyRecoveryCredit, item.Material, MixedWasteKey)
		if !known {
			result.warn("D: no energy recovery credit for %q, credited as %s", item.Material, MixedWasteKey)
		}
		credit, err := c.factor(op, field+".material", factors.CategoryEnergyRecoveryCredit, material)
		if err != nil {
			return Result{}, err
		}
		energy += item.Tonnes * credit
	}

	result.Modules[constructioncarbon.ModuleDRecycling] = constructioncarbon.KgCO2e(recycling)
	result.Modules[constructioncarbon.ModuleDReuse] = constructioncarbon.KgCO2e(reuse)
	result.Modules[constructioncarbon.ModuleDEnergyRecovery] = constructioncarbon.KgCO2e(energy)

	return result, nil
}

func (c *Calculator) recyclingCredit(result *Result, op, field, material string, tonnes float64) (float64, error) {
	if err := quantity(op, field+".tonnes", tonnes); err != nil {
		return 0, err
	}

	if _, known := c.knownOr(factors.CategoryRecyclingCredit, material, ""); !known {
		result.warn("D: no recycling credit for %q, no benefit counted", material)
		return 0, nil
	}
	return c.factor(op, field+".material", factors.CategoryRecyclingCredit, material)
}
