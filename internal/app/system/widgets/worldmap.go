package widgets

import (
	"fmt"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// mapNames translates dataset country names to the names used by the
// ECharts world map where the two differ.
var mapNames = map[string]string{
	"Bosnia and Herzegovina":       "Bosnia and Herz.",
	"Central African Republic":     "Central African Rep.",
	"Cote d'Ivoire":                "Côte d'Ivoire",
	"Czechia":                      "Czech Rep.",
	"Democratic Republic of Congo": "Dem. Rep. Congo",
	"Dominican Republic":           "Dominican Rep.",
	"Equatorial Guinea":            "Eq. Guinea",
	"Laos":                         "Lao PDR",
	"North Korea":                  "Dem. Rep. Korea",
	"Solomon Islands":              "Solomon Is.",
	"South Korea":                  "Korea",
	"South Sudan":                  "S. Sudan",
	"Western Sahara":               "W. Sahara",
}

func mapName(country string) string {
	if n, ok := mapNames[country]; ok {
		return n
	}
	return country
}

// NewWorldMap shows energy use per person for every nation in the
// selected year.
func NewWorldMap(ds *dataset.Dataset, o Options) Widget {
	return newBase("world-map", "Energy use per person", ds, o, buildWorldMap)
}

func buildWorldMap(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)

	var data []opts.MapData
	var maxValue float64
	for _, rec := range ds.ForYear(year) {
		if ds.IsAggregate(rec.Country) {
			continue
		}
		v := rec.EnergyPerCapita()
		if v <= 0 {
			continue
		}
		if v > maxValue {
			maxValue = v
		}
		data = append(data, opts.MapData{Name: mapName(rec.Country), Value: round(v, 0)})
	}

	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{
			Title:    "Energy use per person",
			Subtitle: fmt.Sprintf("%d, kWh per person", year),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(round(maxValue, 0)),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#f7fbff", "#6baed6", "#08306b"},
			},
		}),
	)
	m.AddSeries("Energy per person", data)
	return m, nil
}
