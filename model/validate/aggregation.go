package validate

import (
	"fmt"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/scope"
)

// Aggregation runs every check on the outcome of a scope aggregation: the
// aggregator warnings, per line units, ranges, arithmetic and magnitudes,
// the magnitude of every scope category, and the consistency of the
// subtotals with their display in tonnes.
func Aggregation(agg scope.Aggregation) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()
	for _, warning := range agg.Warnings {
		result.Warn("%s", warning)
	}

	for i, emission := range agg.Lines {
		result = result.Merge(Line(i, emission))
	}

	totals := agg.Totals
	display := totals.Display()
	result = result.Merge(
		UnitConsistency("Scope 1", totals.Scope1, display.Scope1),
		UnitConsistency("Scope 2", totals.Scope2, display.Scope2),
		UnitConsistency("Scope 3", totals.Scope3Total(), display.Scope3),
		UnitConsistency("Total", totals.Total(), display.Total),
		SumConsistency("Scope 3", totals.Scope3.Components(), totals.Scope3Total()),
		SumConsistency("Total", []constructioncarbon.KgCO2e{totals.Scope1, totals.Scope2, totals.Scope3Total()}, totals.Total()),
		Magnitude("Scope 1", totals.Scope1),
		Magnitude("Scope 2", totals.Scope2),
		Magnitude("Scope 3 materials", totals.Scope3.Materials),
		Magnitude("Scope 3 transport", totals.Scope3.Transport),
		Magnitude("Scope 3 construction", totals.Scope3.Construction),
		Magnitude("Scope 3 commute", totals.Scope3.Commute),
		Magnitude("Scope 3 waste", totals.Scope3.Waste),
		Magnitude("Total", totals.Total()),
	)

	return result
}

// Line runs the per line checks on a computed line.
func Line(i int, emission constructioncarbon.LineEmission) constructioncarbon.ValidationResult {
	result := constructioncarbon.Valid()
	line := emission.Line
	field := describe(i, line)

	if domain, found := DomainOf(line.Type); found {
		result = result.Merge(
			UnitWhitelist(field, line.Unit, domain),
			QuantityRange(field, domain, line.Quantity, line.Unit),
		)
	}

	if line.ReportedKg != nil {
		result = result.Merge(PerLineArithmetic(field, emission.Quantity, emission.Factor.Factor, constructioncarbon.KgCO2e(*line.ReportedKg)))
	}

	return result.Merge(Magnitude(field, emission.Emission))
}

func describe(i int, line constructioncarbon.ActivityLine) string {
	if line.ID != "" {
		return fmt.Sprintf("Line %d (%s)", i+1, line.ID)
	}
	return fmt.Sprintf("Line %d (%s)", i+1, line.SubjectID())
}
