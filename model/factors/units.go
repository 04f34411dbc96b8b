package factors

import "strings"

type unitDef struct {
	canonical string
	dimension string
	// scale converts one unit to the base unit of its dimension.
	scale float64
}

const kWhPerGJ = 277.778

var units = map[string]unitDef{
	"l":      {canonical: "L", dimension: "liquid", scale: 1},
	"litre":  {canonical: "L", dimension: "liquid", scale: 1},
	"litres": {canonical: "L", dimension: "liquid", scale: 1},
	"liter":  {canonical: "L", dimension: "liquid", scale: 1},
	"liters": {canonical: "L", dimension: "liquid", scale: 1},
	"kl":     {canonical: "kL", dimension: "liquid", scale: 1000},

	"kg":     {canonical: "kg", dimension: "mass", scale: 1},
	"t":      {canonical: "t", dimension: "mass", scale: 1000},
	"tonne":  {canonical: "t", dimension: "mass", scale: 1000},
	"tonnes": {canonical: "t", dimension: "mass", scale: 1000},

	"m³":           {canonical: "m³", dimension: "volume", scale: 1},
	"m3":           {canonical: "m³", dimension: "volume", scale: 1},
	"cubic metres": {canonical: "m³", dimension: "volume", scale: 1},
	"m²":           {canonical: "m²", dimension: "area", scale: 1},
	"m2":           {canonical: "m²", dimension: "area", scale: 1},
	"sqm":          {canonical: "m²", dimension: "area", scale: 1},
	"m":            {canonical: "m", dimension: "linear", scale: 1},

	"km":       {canonical: "km", dimension: "distance", scale: 1},
	"total km": {canonical: "km", dimension: "distance", scale: 1},

	"t-km":     {canonical: "t-km", dimension: "freight", scale: 1},
	"tkm":      {canonical: "t-km", dimension: "freight", scale: 1},
	"tonne-km": {canonical: "t-km", dimension: "freight", scale: 1},

	"kwh": {canonical: "kWh", dimension: "energy", scale: 1},
	"mwh": {canonical: "MWh", dimension: "energy", scale: 1000},
	"gj":  {canonical: "GJ", dimension: "energy", scale: kWhPerGJ},

	"h":     {canonical: "hours", dimension: "duration", scale: 1},
	"hr":    {canonical: "hours", dimension: "duration", scale: 1},
	"hours": {canonical: "hours", dimension: "duration", scale: 1},
	"days":  {canonical: "days", dimension: "days", scale: 1},
	"day":   {canonical: "days", dimension: "days", scale: 1},

	"unit":  {canonical: "unit", dimension: "count", scale: 1},
	"units": {canonical: "unit", dimension: "count", scale: 1},
	"each":  {canonical: "unit", dimension: "count", scale: 1},
}

func lookupUnit(unit string) (unitDef, bool) {
	def, found := units[strings.ToLower(strings.TrimSpace(unit))]
	return def, found
}

// CanonicalUnit returns the canonical spelling of unit, or unit itself when it
// is not known.
func CanonicalUnit(unit string) string {
	if def, found := lookupUnit(unit); found {
		return def.canonical
	}
	return unit
}

// SameUnit reports whether a and b spell the same unit.
func SameUnit(a, b string) bool {
	return CanonicalUnit(a) == CanonicalUnit(b)
}

// NormalizeQuantity expresses quantity, given in unit from, in unit to. It
// reports false when the units are unknown or measure different things.
func NormalizeQuantity(quantity float64, from, to string) (float64, bool) {
	if SameUnit(from, to) {
		return quantity, true
	}

	fromDef, found := lookupUnit(from)
	if !found {
		return 0, false
	}
	toDef, found := lookupUnit(to)
	if !found || fromDef.dimension != toDef.dimension {
		return 0, false
	}

	return quantity * fromDef.scale / toDef.scale, true
}
