package factors

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	constructioncarbon "github.com/superdango/construction-carbon"
	"github.com/superdango/construction-carbon/internal/must"
)

//go:embed data/factors.csv
var factorsCSV []byte

// Category names of the bundled tables.
const (
	CategoryConcrete      = "concrete"
	CategorySteel         = "steel"
	CategoryMasonry       = "masonry"
	CategoryFlooring      = "flooring"
	CategoryDoorsWindows  = "doors_windows"
	CategoryTimber        = "timber"
	CategoryTimberStorage = "timber_storage"
	CategoryFuel          = "fuel"
	CategoryVehicle       = "vehicle"
	CategoryRefrigerant   = "refrigerant"
	CategoryElectricity   = "electricity"
	CategoryHeating       = "heating"
	CategorySteam         = "steam"
	CategoryFreight       = "freight"
	CategoryCommute       = "commute"
	CategoryWaste         = "waste"
	CategoryEquipment     = "equipment"
	CategoryInstallation  = "installation"
	CategoryFacilities    = "facilities"

	CategoryMaintenance          = "maintenance"
	CategoryReplacement          = "replacement"
	CategoryRefurbishment        = "refurbishment"
	CategoryDemolition           = "demolition"
	CategoryWasteLandfill        = "waste_landfill"
	CategoryWasteRecycling       = "waste_recycling"
	CategoryWasteIncineration    = "waste_incineration"
	CategoryRecyclingCredit      = "recycling_credit"
	CategoryEnergyRecoveryCredit = "energy_recovery_credit"
	CategoryWater                = "water"
)

type tableHeader struct {
	label string
	unit  string
}

// Material categories declare a shared unit. The others mix units.
var tableHeaders = map[string]tableHeader{
	CategoryConcrete:      {label: "Concrete (In-Situ)", unit: "m³"},
	CategorySteel:         {label: "Steel & Framing", unit: "t"},
	CategoryMasonry:       {label: "Walls & Linings", unit: "m²"},
	CategoryFlooring:      {label: "Flooring", unit: "m²"},
	CategoryDoorsWindows:  {label: "Windows & Doors", unit: "m²"},
	CategoryTimber:        {label: "Timber & Wood", unit: "m³"},
	CategoryTimberStorage: {label: "Timber Carbon Storage", unit: "m³"},
	CategoryFuel:          {label: "Fuel Combustion"},
	CategoryVehicle:       {label: "Company Vehicles", unit: "km"},
	CategoryRefrigerant:   {label: "Refrigerants (Fugitive)", unit: "kg"},
	CategoryElectricity:   {label: "Grid Electricity by State", unit: "kWh"},
	CategoryHeating:       {label: "Purchased Heating & Cooling", unit: "kWh"},
	CategorySteam:         {label: "Purchased Steam", unit: "GJ"},
	CategoryFreight:       {label: "Freight Transport (A4)"},
	CategoryCommute:       {label: "Employee Commute", unit: "km"},
	CategoryWaste:         {label: "Waste", unit: "kg"},
	CategoryEquipment:     {label: "Site Equipment & Generators (A5)", unit: "hours"},
	CategoryInstallation:  {label: "Installation Activities (A5)"},
	CategoryFacilities:    {label: "Site Facilities (A5)"},

	CategoryMaintenance:          {label: "Maintenance per Occurrence (B2)", unit: "m²"},
	CategoryReplacement:          {label: "Component Replacement (B4)", unit: "m²"},
	CategoryRefurbishment:        {label: "Refurbishment Scenarios (B5)", unit: "m²"},
	CategoryDemolition:           {label: "Demolition Methods (C1)", unit: "m²"},
	CategoryWasteLandfill:        {label: "Landfill Disposal (C4)", unit: "t"},
	CategoryWasteRecycling:       {label: "Recycling Processing (C3)", unit: "t"},
	CategoryWasteIncineration:    {label: "Incineration Processing (C3)", unit: "t"},
	CategoryRecyclingCredit:      {label: "Recycling Credits (D)", unit: "t"},
	CategoryEnergyRecoveryCredit: {label: "Energy Recovery Credits (D)", unit: "t"},
	CategoryWater:                {label: "Operational Water (B7)", unit: "kL"},
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the registry of the bundled tables. The process exits if
// the bundled data is invalid.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		tables, err := ParseCSV(bytes.NewReader(factorsCSV))
		must.NoError(err)

		registry, err := New(tables...)
		must.NoError(err)

		defaultRegistry = registry
	})
	return defaultRegistry
}

// ParseCSV reads factor tables with the columns
// category,key,name,unit,factor,source,credit. Tables keep the order of their
// first appearance.
func ParseCSV(r io.Reader) ([]Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 7

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read factors header: %w", err)
	}

	tables := make([]Table, 0)
	index := make(map[string]int)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read factors: %w", err)
		}

		factor, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, constructioncarbon.NewStructuralError("factors.ParseCSV", record[0]+"/"+record[1],
				fmt.Errorf("%w: %s", constructioncarbon.ErrMalformedNumber, err))
		}
		credit, err := strconv.ParseBool(record[6])
		if err != nil {
			return nil, fmt.Errorf("invalid credit flag for %s/%s: %w", record[0], record[1], err)
		}

		i, found := index[record[0]]
		if !found {
			header := tableHeaders[record[0]]
			tables = append(tables, Table{Category: record[0], Label: header.label, Unit: header.unit})
			i = len(tables) - 1
			index[record[0]] = i
		}

		tables[i].Factors = append(tables[i].Factors, constructioncarbon.EmissionFactor{
			Category: record[0],
			Key:      record[1],
			Name:     record[2],
			Unit:     record[3],
			Factor:   factor,
			Source:   record[5],
			Credit:   credit,
		})
	}

	return tables, nil
}
