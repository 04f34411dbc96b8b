package lifecycle

import (
	"fmt"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
)

// UsePhase computes modules B1 to B7 over the study period:
//
//	B1 refrigerant charge × GWP × 5% leakage × years
//	B2 area × factor × occurrences of each maintenance activity
//	B3 20% of B2
//	B4 area × factor × replacements after the initial installation
//	B5 floor area × refurbishment factor
//	B6 (kWh × grid factor × non renewable share + GJ × gas factor) × years
//	B7 kL × water factor × years
func (c *Calculator) UsePhase(in constructioncarbon.UsePhaseInputs, floorArea float64) (Result, error) {
	const op = "lifecycle.UsePhase"
	result := newResult()

	years := in.StudyPeriodYears
	if years < 0 {
		return Result{}, constructioncarbon.NewStructuralError(op, "study_period_years",
			fmt.Errorf("%w: %d", constructioncarbon.ErrMalformedNumber, years))
	}
	if years == 0 {
		years = DefaultStudyPeriodYears
	}

	for _, input := range []struct {
		field string
		v     float64
	}{
		{"refrigerant_charge_kg", in.RefrigerantChargeKg},
		{"refrigerant_gwp", in.RefrigerantGWP},
		{"annual_electricity_kwh", in.AnnualElectricityKWh},
		{"annual_gas_gj", in.AnnualGasGJ},
		{"annual_water_kl", in.AnnualWaterKL},
	} {
		if err := quantity(op, input.field, input.v); err != nil {
			return Result{}, err
		}
	}
	if err := percentage(op, "renewable_percent", in.RenewablePercent); err != nil {
		return Result{}, err
	}

	b1, err := c.refrigerantLeakage(op, in, years)
	if err != nil {
		return Result{}, err
	}

	b2 := 0.0
	for i, item := range in.Maintenance {
		field := fmt.Sprintf("maintenance[%d]", i)
		if err := quantity(op, field+".area_m2", item.AreaM2); err != nil {
			return Result{}, err
		}
		factor, err := c.factor(op, field+".type", factors.CategoryMaintenance, item.Type)
		if err != nil {
			return Result{}, err
		}
		interval, found := MaintenanceIntervals[item.Type]
		if !found || interval <= 0 {
			return Result{}, constructioncarbon.NewStructuralError(op, field+".type",
				fmt.Errorf("%w: no maintenance interval for %q", constructioncarbon.ErrInvalidFactor, item.Type))
		}
		b2 += item.AreaM2 * factor * float64(years/interval)
	}

	b4 := 0.0
	for i, item := range in.Replacements {
		field := fmt.Sprintf("replacements[%d]", i)
		if err := quantity(op, field+".area_m2", item.AreaM2); err != nil {
			return Result{}, err
		}
		factor, err := c.factor(op, field+".type", factors.CategoryReplacement, item.Type)
		if err != nil {
			return Result{}, err
		}
		lifespan, found := ReplacementLifespans[item.Type]
		if !found || lifespan <= 0 {
			return Result{}, constructioncarbon.NewStructuralError(op, field+".type",
				fmt.Errorf("%w: no service life for %q", constructioncarbon.ErrInvalidFactor, item.Type))
		}
		b4 += item.AreaM2 * factor * float64(max(0, years/lifespan-1))
	}

	b5 := 0.0
	if in.Refurbishment != "" && in.Refurbishment != "none" {
		factor, err := c.factor(op, "refurbishment", factors.CategoryRefurbishment, in.Refurbishment)
		if err != nil {
			return Result{}, err
		}
		b5 = effectiveArea(&result, floorArea, constructioncarbon.ModuleB5) * factor
	}

	b6, err := c.operationalEnergy(op, in, years)
	if err != nil {
		return Result{}, err
	}

	b7 := 0.0
	if in.AnnualWaterKL > 0 {
		factor, err := c.factor(op, "annual_water_kl", factors.CategoryWater, "mains_supply")
		if err != nil {
			return Result{}, err
		}
		b7 = in.AnnualWaterKL * factor * float64(years)
	}

	result.Modules[constructioncarbon.ModuleB1] = constructioncarbon.KgCO2e(b1)
	result.Modules[constructioncarbon.ModuleB2] = constructioncarbon.KgCO2e(b2)
	result.Modules[constructioncarbon.ModuleB3] = constructioncarbon.KgCO2e(b2 * RepairShareOfMaintenance)
	result.Modules[constructioncarbon.ModuleB4] = constructioncarbon.KgCO2e(b4)
	result.Modules[constructioncarbon.ModuleB5] = constructioncarbon.KgCO2e(b5)
	result.Modules[constructioncarbon.ModuleB6] = constructioncarbon.KgCO2e(b6)
	result.Modules[constructioncarbon.ModuleB7] = constructioncarbon.KgCO2e(b7)

	return result, nil
}

func (c *Calculator) refrigerantLeakage(op string, in constructioncarbon.UsePhaseInputs, years int) (float64, error) {
	if in.RefrigerantChargeKg == 0 {
		return 0, nil
	}

	gwp := in.RefrigerantGWP
	switch {
	case gwp > 0:
	case in.Refrigerant != "":
		factor, err := c.factor(op, "refrigerant", factors.CategoryRefrigerant, in.Refrigerant)
		if err != nil {
			return 0, err
		}
		gwp = factor
	default:
		gwp = DefaultRefrigerantGWP
	}

	return in.RefrigerantChargeKg * gwp * AnnualLeakageRate * float64(years), nil
}

func (c *Calculator) operationalEnergy(op string, in constructioncarbon.UsePhaseInputs, years int) (float64, error) {
	annual := 0.0

	if in.AnnualElectricityKWh > 0 {
		region := in.GridRegion
		if region == "" {
			region = GridAverageKey
		}
		grid, err := c.factor(op, "grid_region", factors.CategoryElectricity, region)
		if err != nil {
			return 0, err
		}
		annual += in.AnnualElectricityKWh * grid * (1 - in.RenewablePercent/100)
	}

	if in.AnnualGasGJ > 0 {
		gas, err := c.factor(op, "annual_gas_gj", factors.CategoryFuel, "natural_gas")
		if err != nil {
			return 0, err
		}
		annual += in.AnnualGasGJ * gas
	}

	return annual * float64(years), nil
}
