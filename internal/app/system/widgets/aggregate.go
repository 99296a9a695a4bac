package widgets

import (
	"math"
	"sort"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/domain/models"
)

// Source is one energy source in the mix breakdowns.
type Source string

const (
	Coal       Source = "coal"
	Oil        Source = "oil"
	Gas        Source = "gas"
	Nuclear    Source = "nuclear"
	Hydro      Source = "hydro"
	Renewables Source = "renewables"
)

// Sources lists the mix sources in stacking order, fossil first.
var Sources = []Source{Coal, Oil, Gas, Nuclear, Hydro, Renewables}

var sourceLabels = map[Source]string{
	Coal:       "Coal",
	Oil:        "Oil",
	Gas:        "Gas",
	Nuclear:    "Nuclear",
	Hydro:      "Hydro",
	Renewables: "Other renewables",
}

var sourceColors = map[Source]string{
	Coal:       "#4d4d4d",
	Oil:        "#8c564b",
	Gas:        "#ff7f0e",
	Nuclear:    "#9467bd",
	Hydro:      "#1f77b4",
	Renewables: "#2ca02c",
}

// Label returns the display name of s.
func (s Source) Label() string { return sourceLabels[s] }

// Color returns the fixed chart color of s.
func (s Source) Color() string { return sourceColors[s] }

// PerCapita returns the kWh-per-person value of s in rec.
func PerCapita(rec models.EnergyRecord, s Source) float64 {
	switch s {
	case Coal:
		return rec.CoalConsPerCapita
	case Oil:
		return rec.OilEnergyPerCapita
	case Gas:
		return rec.GasEnergyPerCapita
	case Nuclear:
		return rec.NuclearPerCapita()
	case Hydro:
		return rec.HydroElecPerCapita
	case Renewables:
		return rec.RenewablesEnergyPerCapita
	}
	return 0
}

// Mix is an amount per source.
type Mix map[Source]float64

// Total sums every source.
func (m Mix) Total() float64 {
	var t float64
	for _, s := range Sources {
		t += m[s]
	}
	return t
}

// WorldMix sums per-capita × population over every nation in year and
// returns TWh per source. Aggregate rows are skipped so regions are not
// counted twice.
func WorldMix(ds *dataset.Dataset, year int) Mix {
	m := make(Mix, len(Sources))
	for _, rec := range ds.ForYear(year) {
		if ds.IsAggregate(rec.Country) || rec.Population <= 0 {
			continue
		}
		for _, s := range Sources {
			m[s] += PerCapita(rec, s) * rec.Population / 1e9
		}
	}
	return m
}

// TopConsumers returns up to n nations of year ordered by primary energy
// consumption, largest first.
func TopConsumers(ds *dataset.Dataset, year, n int) []models.EnergyRecord {
	var recs []models.EnergyRecord
	for _, rec := range ds.ForYear(year) {
		if ds.IsAggregate(rec.Country) || rec.PrimaryEnergyConsumption <= 0 {
			continue
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PrimaryEnergyConsumption > recs[j].PrimaryEnergyConsumption
	})
	if len(recs) > n {
		recs = recs[:n]
	}
	return recs
}

// round keeps chart payloads small.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// bubbleSize maps population to a symbol size between 6 and 60 pixels.
func bubbleSize(population, maxPopulation float64) int {
	if population <= 0 || maxPopulation <= 0 {
		return 6
	}
	size := 6 + 54*math.Sqrt(population/maxPopulation)
	return int(math.Round(size))
}

// missing is the ECharts placeholder for an absent data point.
const missing = "-"
