// Package scope turns activity lines into Scope 1, 2 and 3 totals.
package scope

import (
	"fmt"
	"math"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/model/factors"
)

const op = "scope.Aggregate"

// Resolver resolves factor references. *factors.Registry implements it.
type Resolver interface {
	Resolve(ref constructioncarbon.FactorRef) (constructioncarbon.EmissionFactor, error)
}

// Aggregation is the outcome of aggregating one set of activity lines.
type Aggregation struct {
	Totals  constructioncarbon.ScopeTotals
	Lines   []constructioncarbon.LineEmission
	Modules constructioncarbon.ModuleFigures
	// Warnings are non blocking issues found while aggregating.
	Warnings []string
}

// Aggregator computes scope totals with the factors of its resolver.
type Aggregator struct {
	resolver Resolver
}

// NewAggregator returns an aggregator resolving factors with resolver.
func NewAggregator(resolver Resolver) *Aggregator {
	return &Aggregator{resolver: resolver}
}

// Aggregate recomputes every total from lines. A line that cannot be computed
// (unknown type or module, malformed quantity, unresolved factor) aborts the
// aggregation with a *constructioncarbon.StructuralError.
func (a *Aggregator) Aggregate(lines []constructioncarbon.ActivityLine) (Aggregation, error) {
	aggregation := Aggregation{
		Totals:   constructioncarbon.ScopeTotals{ByActivity: make(map[constructioncarbon.ActivityType]constructioncarbon.KgCO2e)},
		Lines:    make([]constructioncarbon.LineEmission, 0, len(lines)),
		Modules:  make(constructioncarbon.ModuleFigures),
		Warnings: make([]string, 0),
	}

	for i, line := range lines {
		emission, warnings, err := a.computeLine(i, line)
		if err != nil {
			return Aggregation{}, err
		}

		aggregation.Warnings = append(aggregation.Warnings, warnings...)
		aggregation.Totals.Accumulate(line.Type, emission.Emission)
		aggregation.Modules.Add(line.EffectiveModule(), emission.Emission)
		aggregation.Lines = append(aggregation.Lines, emission)
	}

	return aggregation, nil
}

func (a *Aggregator) computeLine(i int, line constructioncarbon.ActivityLine) (constructioncarbon.LineEmission, []string, error) {
	field := fmt.Sprintf("lines[%d]", i)
	warnings := make([]string, 0)

	if !line.Type.Known() {
		return constructioncarbon.LineEmission{}, nil, constructioncarbon.NewStructuralError(op, field+".type",
			fmt.Errorf("%w: %q", constructioncarbon.ErrUnknownActivity, line.Type))
	}
	if line.Module != "" && !line.Module.Known() {
		return constructioncarbon.LineEmission{}, nil, constructioncarbon.NewStructuralError(op, field+".module",
			fmt.Errorf("%w: %q", constructioncarbon.ErrUnknownModule, line.Module))
	}
	if math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) {
		return constructioncarbon.LineEmission{}, nil, constructioncarbon.NewStructuralError(op, field+".quantity",
			fmt.Errorf("%w: %v", constructioncarbon.ErrMalformedNumber, line.Quantity))
	}

	factor, err := a.resolver.Resolve(line.Factor)
	if err != nil {
		return constructioncarbon.LineEmission{}, nil, constructioncarbon.NewStructuralError(op, field+".factor", err)
	}

	quantity := line.Quantity
	if line.Unit != "" && !factors.SameUnit(line.Unit, factor.Unit) {
		normalized, ok := factors.NormalizeQuantity(line.Quantity, line.Unit, factor.Unit)
		if ok {
			quantity = normalized
		} else {
			warnings = append(warnings, fmt.Sprintf(
				"%s: unit %q is not compatible with the %s factor unit %q, quantity used as declared",
				describe(i, line), line.Unit, factor.Ref(), factor.Unit))
		}
	}

	if quantity < 0 && !line.Type.AllowsNegative() {
		warnings = append(warnings, fmt.Sprintf(
			"%s: negative quantity (%g) may indicate a data entry error", describe(i, line), line.Quantity))
	}

	return constructioncarbon.LineEmission{
		Line:     line,
		Factor:   factor,
		Quantity: quantity,
		Emission: constructioncarbon.KgCO2e(quantity * factor.Factor),
	}, warnings, nil
}

func describe(i int, line constructioncarbon.ActivityLine) string {
	if line.ID != "" {
		return fmt.Sprintf("Line %d (%s)", i+1, line.ID)
	}
	return fmt.Sprintf("Line %d (%s)", i+1, line.SubjectID())
}
