package widgets

import (
	"fmt"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// TopN is how many countries the ranking shows.
const TopN = 10

// NewTopConsumers ranks the largest national consumers of primary energy
// in the selected year.
func NewTopConsumers(ds *dataset.Dataset, o Options) Widget {
	return newBase("top-consumers", "Largest energy consumers", ds, o, buildTopConsumers)
}

func buildTopConsumers(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error) {
	year := ds.NearestYear(sel.Year)
	top := TopConsumers(ds, year, TopN)

	// Category axes draw bottom-up, so the largest goes last.
	names := make([]string, len(top))
	data := make([]opts.BarData, len(top))
	for i, rec := range top {
		j := len(top) - 1 - i
		names[j] = rec.Country
		data[j] = opts.BarData{Value: round(rec.PrimaryEnergyConsumption, 1)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{
			Title:    "Largest energy consumers",
			Subtitle: fmt.Sprintf("%d, TWh", year),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "TWh", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category"}),
	)
	bar.SetXAxis(names)
	bar.AddSeries("Primary energy", data,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#d62728"}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "right"}),
	)
	bar.XYReversal()
	return bar, nil
}
