package widgets

import (
	"fmt"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// point is one bubble before it is sized.
type point struct {
	country string
	x, y    float64
	pop     float64
}

func bubbles(ds *dataset.Dataset, year int, xy func(models.EnergyRecord) (float64, float64, bool)) ([]point, float64) {
	var pts []point
	var maxPop float64
	for _, rec := range ds.ForYear(year) {
		if ds.IsAggregate(rec.Country) {
			continue
		}
		x, y, ok := xy(rec)
		if !ok {
			continue
		}
		pts = append(pts, point{country: rec.Country, x: x, y: y, pop: rec.Population})
		if rec.Population > maxPop {
			maxPop = rec.Population
		}
	}
	return pts, maxPop
}

func newBubbleChart(init opts.Initialization, title, subtitle, xName, yName string, pts []point, maxPop float64) *charts.Scatter {
	data := make([]opts.ScatterData, len(pts))
	for i, p := range pts {
		data[i] = opts.ScatterData{
			Name:       p.country,
			Value:      []interface{}{round(p.x, 2), round(p.y, 2), p.pop},
			SymbolSize: bubbleSize(p.pop, maxPop),
		}
	}

	sc := charts.NewScatter()
	sc.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: xName, Type: "log"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yName, Type: "log"}),
	)
	sc.AddSeries("Countries", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#3182bd", Opacity: opts.Float(0.7)}),
	)
	return sc
}

// NewGDPEnergy plots GDP per person against energy use per person, one
// bubble per nation sized by population.
func NewGDPEnergy(ds *dataset.Dataset, o Options) Widget {
	return newBase("gdp-energy", "Wealth and energy use", ds, o, buildGDPEnergy)
}

func buildGDPEnergy(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)
	pts, maxPop := bubbles(ds, year, func(rec models.EnergyRecord) (float64, float64, bool) {
		x, y := rec.GDPPerCapita(), rec.EnergyPerCapita()
		return x, y, x > 0 && y > 0
	})
	return newBubbleChart(init,
		"Wealth and energy use",
		fmt.Sprintf("%d, bubble size is population", year),
		"GDP per person", "kWh per person",
		pts, maxPop), nil
}

// NewRenewablesShare plots fossil against renewable consumption, one
// bubble per nation sized by population.
func NewRenewablesShare(ds *dataset.Dataset, o Options) Widget {
	return newBase("renewables-share", "Renewables vs fossil fuels", ds, o, buildRenewablesShare)
}

func buildRenewablesShare(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)
	pts, maxPop := bubbles(ds, year, func(rec models.EnergyRecord) (float64, float64, bool) {
		x, y := rec.FossilFuelConsumption, rec.RenewablesConsumption
		return x, y, x > 0 && y > 0
	})
	return newBubbleChart(init,
		"Renewables vs fossil fuels",
		fmt.Sprintf("%d, TWh, bubble size is population", year),
		"Fossil fuels (TWh)", "Renewables (TWh)",
		pts, maxPop), nil
}
