// Package demo generates calculation snapshots of fictional construction
// sites whose site activity follows the working hours.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	constructioncarbon "github.com/superdango/construction-carbon"
)

// Site describes a fictional project. Daily quantities are scaled by the
// activity of the current hour.
type Site struct {
	ID        string
	Name      string
	FloorArea float64
	Region    string
	Concrete  float64
	Rebar     float64
	Diesel    float64
	Commute   float64
	Waste     float64
}

// DefaultSites are served when no site is configured.
var DefaultSites = []Site{
	{ID: "demo-tower", Name: "Demo Tower", FloorArea: 12000, Region: "NSW", Concrete: 420, Rebar: 38, Diesel: 900, Commute: 4200, Waste: 6000},
	{ID: "demo-school", Name: "Demo School", FloorArea: 3500, Region: "VIC", Concrete: 110, Rebar: 9, Diesel: 250, Commute: 1300, Waste: 1800},
	{ID: "demo-warehouse", Name: "Demo Warehouse", FloorArea: 8000, Region: "QLD", Concrete: 260, Rebar: 14, Diesel: 400, Commute: 900, Waste: 2500},
}

// Source implements the snapshot source interface with generated sites.
type Source struct {
	sites []Site
	now   func() time.Time
	noise func() int
}

// NewSource returns a demo source over sites, or DefaultSites when none is
// given.
func NewSource(sites ...Site) *Source {
	if len(sites) == 0 {
		sites = DefaultSites
	}
	return &Source{
		sites: sites,
		now:   time.Now,
		noise: func() int { return rand.Intn(10) },
	}
}

func (source *Source) Close() error {
	return nil
}

func (source *Source) Snapshots(ctx context.Context) ([]constructioncarbon.Snapshot, error) {
	now := source.now()
	snapshots := make([]constructioncarbon.Snapshot, 0, len(source.sites))
	for _, site := range source.sites {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		activity := float64(siteActivityInstant(now.Hour(), now.Minute(), source.noise())) / 100
		snapshots = append(snapshots, site.snapshot(activity))
	}
	return snapshots, nil
}

func (site Site) snapshot(activity float64) constructioncarbon.Snapshot {
	line := func(id string, t constructioncarbon.ActivityType, quantity float64, unit, category, key string) constructioncarbon.ActivityLine {
		return constructioncarbon.ActivityLine{
			ID:       fmt.Sprintf("%s-%s", site.ID, id),
			Type:     t,
			Quantity: quantity,
			Unit:     unit,
			Factor:   constructioncarbon.FactorRef{Category: category, Key: key},
		}
	}

	return constructioncarbon.Snapshot{
		ID:        site.ID,
		Name:      site.Name,
		FloorArea: site.FloorArea,
		Lines: constructioncarbon.Lines{
			line("concrete", constructioncarbon.ActivityMaterial, site.Concrete, "m³", "concrete", "c_32"),
			line("rebar", constructioncarbon.ActivityMaterial, site.Rebar, "t", "steel", "s_rebar"),
			line("generator", constructioncarbon.ActivityFuel, site.Diesel*activity, "L", "fuel", "diesel_stationary"),
			line("grid", constructioncarbon.ActivityElectricity, site.FloorArea*activity, "kWh", "electricity", site.Region),
			line("crew", constructioncarbon.ActivityCommute, site.Commute*activity, "km", "commute", "car_petrol"),
			line("skips", constructioncarbon.ActivityWaste, site.Waste*activity, "kg", "waste", "construction_mixed"),
		},
	}
}

// siteActivityInstant returns the site activity, in percent of the peak
// crew, interpolated between hours. rand adds up to rand percent of noise.
func siteActivityInstant(hour, minute, rand int) int {
	hourlyActivity := map[int]int{
		0:  5,
		1:  5,
		2:  5,
		3:  5,
		4:  5,
		5:  10,
		6:  40,
		7:  80,
		8:  100,
		9:  100,
		10: 100,
		11: 90,
		12: 60,
		13: 90,
		14: 100,
		15: 100,
		16: 80,
		17: 40,
		18: 20,
		19: 10,
		20: 5,
		21: 5,
		22: 5,
		23: 5,
	}

	current := hourlyActivity[hour%24]
	next := hourlyActivity[(hour+1)%24]
	noise := rand * current / 100

	return current + (next-current)*minute/60 + noise
}
