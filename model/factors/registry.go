// Package factors holds the emission factor reference tables. A Registry is
// built once at startup, validated, and only read afterwards: it is safe for
// concurrent use without locking.
package factors

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	constructioncarbon "github.com/superdango/construction-carbon"
)

// Table groups the factors of one category. When Unit is set every factor of
// the table is declared in that unit.
type Table struct {
	Category string
	Label    string
	Unit     string
	Factors  []constructioncarbon.EmissionFactor
}

// Registry resolves factor references.
type Registry struct {
	order   []string
	tables  map[string]Table
	factors map[constructioncarbon.FactorRef]constructioncarbon.EmissionFactor
	keys    map[string][]string
}

// New validates the tables and builds a registry from them. Any invalid factor
// fails the whole construction.
func New(tables ...Table) (*Registry, error) {
	registry := &Registry{
		order:   make([]string, 0, len(tables)),
		tables:  make(map[string]Table, len(tables)),
		factors: make(map[constructioncarbon.FactorRef]constructioncarbon.EmissionFactor),
		keys:    make(map[string][]string, len(tables)),
	}

	for _, table := range tables {
		if table.Category == "" {
			return nil, invalid("", "table has no category")
		}
		if _, found := registry.tables[table.Category]; found {
			return nil, invalid(table.Category, "duplicate table")
		}

		factors := make([]constructioncarbon.EmissionFactor, 0, len(table.Factors))
		for _, factor := range table.Factors {
			if factor.Category == "" {
				factor.Category = table.Category
			}
			if err := check(table, factor); err != nil {
				return nil, err
			}
			if _, found := registry.factors[factor.Ref()]; found {
				return nil, invalid(factor.Ref().String(), "duplicate key")
			}
			registry.factors[factor.Ref()] = factor
			registry.keys[table.Category] = append(registry.keys[table.Category], factor.Key)
			factors = append(factors, factor)
		}

		table.Factors = factors
		registry.tables[table.Category] = table
		registry.order = append(registry.order, table.Category)
	}

	return registry, nil
}

func check(table Table, factor constructioncarbon.EmissionFactor) error {
	ref := factor.Ref().String()
	switch {
	case factor.Category != table.Category:
		return invalid(ref, fmt.Sprintf("declared in table %q", table.Category))
	case factor.Key == "":
		return invalid(ref, "empty key")
	case strings.TrimSpace(factor.Name) == "":
		return invalid(ref, "empty name")
	case strings.TrimSpace(factor.Unit) == "":
		return invalid(ref, "empty unit")
	case math.IsNaN(factor.Factor) || math.IsInf(factor.Factor, 0):
		return invalid(ref, "factor is not a finite number")
	case factor.Factor < 0 && !factor.Credit:
		return invalid(ref, "negative factor on a non credit entry")
	case table.Unit != "" && !SameUnit(table.Unit, factor.Unit):
		return invalid(ref, fmt.Sprintf("unit %q differs from category unit %q", factor.Unit, table.Unit))
	}
	return nil
}

func invalid(field, reason string) error {
	return constructioncarbon.NewStructuralError("factors.New", field,
		fmt.Errorf("%w: %s", constructioncarbon.ErrInvalidFactor, reason))
}

// Lookup returns the factor registered under category and key.
func (r *Registry) Lookup(category, key string) (constructioncarbon.EmissionFactor, error) {
	factor, found := r.factors[constructioncarbon.FactorRef{Category: category, Key: key}]
	if found {
		return factor, nil
	}

	ref := category + "/" + key
	if _, found := r.tables[category]; !found {
		return constructioncarbon.EmissionFactor{}, fmt.Errorf("%w: unknown category %q%s",
			constructioncarbon.ErrFactorNotFound, category, didYouMean(category, r.order))
	}

	return constructioncarbon.EmissionFactor{}, fmt.Errorf("%w: %s%s",
		constructioncarbon.ErrFactorNotFound, ref, didYouMean(key, r.keys[category]))
}

// Resolve looks up a factor reference.
func (r *Registry) Resolve(ref constructioncarbon.FactorRef) (constructioncarbon.EmissionFactor, error) {
	return r.Lookup(ref.Category, ref.Key)
}

// Table returns the table of a category.
func (r *Registry) Table(category string) (Table, bool) {
	table, found := r.tables[category]
	if !found {
		return Table{}, false
	}
	table.Factors = slices.Clone(table.Factors)
	return table, true
}

// Categories returns the categories in registration order.
func (r *Registry) Categories() []string {
	return slices.Clone(r.order)
}

// Len returns the number of registered factors.
func (r *Registry) Len() int {
	return len(r.factors)
}

// Suggest returns up to three known keys of category close to key.
func (r *Registry) Suggest(category, key string) []string {
	return suggestions(key, r.keys[category])
}

func didYouMean(s string, candidates []string) string {
	closest := suggestions(s, candidates)
	if len(closest) == 0 {
		return ""
	}
	return fmt.Sprintf(" (did you mean %s?)", strings.Join(closest, ", "))
}

// suggestions ranks candidates containing s as a subsequence first, then falls
// back to the nearest edit distance.
func suggestions(s string, candidates []string) []string {
	const limit = 3
	if s == "" || len(candidates) == 0 {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(s, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		closest := make([]string, 0, limit)
		for _, rank := range ranks[:min(limit, len(ranks))] {
			closest = append(closest, rank.Target)
		}
		return closest
	}

	type scored struct {
		target   string
		distance int
	}
	scores := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		distance := fuzzy.LevenshteinDistance(strings.ToLower(s), strings.ToLower(candidate))
		if distance <= max(2, len(s)/2) {
			scores = append(scores, scored{target: candidate, distance: distance})
		}
	}
	slices.SortStableFunc(scores, func(a, b scored) int { return a.distance - b.distance })

	closest := make([]string, 0, limit)
	for _, score := range scores[:min(limit, len(scores))] {
		closest = append(closest, score.target)
	}
	return closest
}
