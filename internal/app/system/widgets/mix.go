package widgets

import (
	"fmt"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// NewEnergyMix stacks the per-capita mix of the tracked countries for the
// selected year.
func NewEnergyMix(ds *dataset.Dataset, o Options) Widget {
	tracked := o.Tracked
	return newBase("energy-mix", "Energy mix by country", ds, o,
		func(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
			return buildEnergyMix(ds, tracked, sel, init)
		})
}

func buildEnergyMix(ds *dataset.Dataset, tracked []string, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)

	var countries []string
	for _, c := range tracked {
		if _, ok := ds.Lookup(c, year); ok {
			countries = append(countries, c)
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{
			Title:    "Energy mix by country",
			Subtitle: fmt.Sprintf("%d, kWh per person", year),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh", Type: "value"}),
	)
	bar.SetXAxis(countries)

	for _, s := range Sources {
		data := make([]opts.BarData, len(countries))
		for i, c := range countries {
			rec, _ := ds.Lookup(c, year)
			data[i] = opts.BarData{Value: round(PerCapita(rec, s), 1)}
		}
		bar.AddSeries(s.Label(), data,
			charts.WithBarChartOpts(opts.BarChart{Stack: "mix"}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color()}),
		)
	}
	return bar, nil
}

// NewGlobalMix shows the share of each source in world consumption for
// the selected year.
func NewGlobalMix(ds *dataset.Dataset, o Options) Widget {
	return newBase("global-mix", "Global energy mix", ds, o, buildGlobalMix)
}

func buildGlobalMix(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)
	mix := WorldMix(ds, year)

	data := make([]opts.PieData, 0, len(Sources))
	for _, s := range Sources {
		data = append(data, opts.PieData{
			Name:      s.Label(),
			Value:     round(mix[s], 1),
			ItemStyle: &opts.ItemStyle{Color: s.Color()},
		})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{
			Title:    "Global energy mix",
			Subtitle: fmt.Sprintf("%d, %.0f TWh", year, mix.Total()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)
	pie.AddSeries("Global mix", data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"35%", "65%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {d}%"}),
	)
	return pie, nil
}

// NewEnergyIntensity compares kWh used per unit of GDP across the tracked
// countries for the selected year.
func NewEnergyIntensity(ds *dataset.Dataset, o Options) Widget {
	tracked := o.Tracked
	return newBase("energy-intensity", "Energy intensity of the economy", ds, o,
		func(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
			return buildEnergyIntensity(ds, tracked, sel, init)
		})
}

func buildEnergyIntensity(ds *dataset.Dataset, tracked []string, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)

	var countries []string
	var data []opts.BarData
	for _, c := range tracked {
		rec, ok := ds.Lookup(c, year)
		if !ok {
			continue
		}
		v := rec.EnergyIntensity()
		if v <= 0 {
			continue
		}
		countries = append(countries, c)
		data = append(data, opts.BarData{Value: round(v, 3)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{
			Title:    "Energy intensity of the economy",
			Subtitle: fmt.Sprintf("%d, kWh per unit of GDP", year),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh / $", Type: "value"}),
	)
	bar.SetXAxis(countries)
	bar.AddSeries("Energy intensity", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#17becf"}),
	)
	return bar, nil
}
