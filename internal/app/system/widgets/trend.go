package widgets

import (
	"fmt"
	"strconv"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

func yearLabels(years []int) []string {
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}

// lineStyle returns the series options for mode. stack groups series
// into stacked areas; empty keeps area series overlapping.
func lineStyle(mode models.ViewMode, stack string) []charts.SeriesOpts {
	if mode == models.ViewArea {
		return []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true), Stack: stack}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.3)}),
		}
	}
	return []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	}
}

func selectedYearMarker(year int) charts.SeriesOpts {
	return charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
		Name:  "Selected year",
		XAxis: strconv.Itoa(year),
	})
}

func newTimeSeries(init opts.Initialization, title, subtitle, unit string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year", Type: "category"}),
		charts.WithYAxisOpts(opts.YAxis{Name: unit, Type: "value"}),
	)
	return line
}

// NewConsumptionTrend plots primary energy consumption of the tracked
// countries across every year.
func NewConsumptionTrend(ds *dataset.Dataset, o Options) Widget {
	tracked := o.Tracked
	return newBase("consumption-trend", "Primary energy consumption", ds, o,
		func(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
			return buildConsumptionTrend(ds, tracked, sel, init)
		})
}

func buildConsumptionTrend(ds *dataset.Dataset, tracked []string, sel Selection, init opts.Initialization) (Chart, error) {
	line := newTimeSeries(init, "Primary energy consumption", "Tracked countries", "TWh")
	line.SetXAxis(yearLabels(ds.Years()))

	for i, s := range consumptionSeries(ds, tracked) {
		so := lineStyle(sel.ViewMode, "")
		if i == 0 {
			so = append(so, selectedYearMarker(ds.ClampYear(sel.Year)))
		}
		line.AddSeries(s.Label, lineData(s.Points), so...)
	}
	return line, nil
}

// NewGlobalMixTrend stacks world totals per source across every year.
func NewGlobalMixTrend(ds *dataset.Dataset, o Options) Widget {
	return newBase("global-mix-trend", "Global energy mix over time", ds, o, buildGlobalMixTrend)
}

func buildGlobalMixTrend(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	line := newTimeSeries(init, "Global energy mix over time", "Sum of national per-capita use × population", "TWh")
	line.SetXAxis(yearLabels(ds.Years()))

	for i, s := range globalMixSeries(ds) {
		so := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Stack: "total"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.6)}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}),
		}
		if i == 0 {
			so = append(so, selectedYearMarker(ds.ClampYear(sel.Year)))
		}
		line.AddSeries(s.Label, lineData(s.Points), so...)
	}
	return line, nil
}

// NewCountryMix plots the per-capita mix of the selected country across
// every year.
func NewCountryMix(ds *dataset.Dataset, o Options) Widget {
	return newBase("country-mix", "Energy mix per person", ds, o, buildCountryMix)
}

func buildCountryMix(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	country := sel.Country
	if country == "" {
		country = models.DefaultCountry
	}
	series := countryMixSeries(ds, country)

	var years []int
	if len(series) > 0 {
		for _, p := range series[0].Points {
			years = append(years, p.Year)
		}
	}

	line := newTimeSeries(init, "Energy mix per person", fmt.Sprintf("%s, kWh per person", country), "kWh")
	line.SetXAxis(yearLabels(years))

	for i, s := range series {
		so := append(lineStyle(sel.ViewMode, "mix"), charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		if i == 0 && len(years) > 0 {
			so = append(so, selectedYearMarker(ds.ClampYear(sel.Year)))
		}
		line.AddSeries(s.Label, lineData(s.Points), so...)
	}
	return line, nil
}
