package widgets

import (
	"errors"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ErrNotTimeSeries is returned by TimeSeries for a widget that does not
// plot values over years.
var ErrNotTimeSeries = errors.New("widget is not a time series")

// Point is one year of a series. Missing points have no value in the data.
type Point struct {
	Year    int
	Value   float64
	Missing bool
}

// Series is one named line of a time-series widget.
type Series struct {
	Label  string
	Color  string // empty means the chart default
	Unit   string
	Points []Point
}

// TimeSeriesNames lists the widgets TimeSeries accepts.
var TimeSeriesNames = []string{"consumption-trend", "global-mix-trend", "country-mix"}

// IsTimeSeries reports whether name is one of TimeSeriesNames.
func IsTimeSeries(name string) bool {
	for _, n := range TimeSeriesNames {
		if n == name {
			return true
		}
	}
	return false
}

// TimeSeries returns the series widget name plots for sel. The echarts
// builders and the PNG export both draw from it.
func TimeSeries(ds *dataset.Dataset, name string, sel Selection, o Options) ([]Series, error) {
	switch name {
	case "consumption-trend":
		tracked := o.Tracked
		if len(tracked) == 0 {
			tracked = DefaultTracked
		}
		return consumptionSeries(ds, tracked), nil
	case "global-mix-trend":
		return globalMixSeries(ds), nil
	case "country-mix":
		return countryMixSeries(ds, sel.Country), nil
	}
	return nil, ErrNotTimeSeries
}

func consumptionSeries(ds *dataset.Dataset, tracked []string) []Series {
	years := ds.Years()
	var out []Series
	for _, country := range tracked {
		if !ds.HasCountry(country) {
			continue
		}
		s := Series{Label: country, Unit: "TWh", Points: make([]Point, len(years))}
		for i, y := range years {
			s.Points[i] = Point{Year: y, Missing: true}
			if rec, ok := ds.Lookup(country, y); ok && rec.PrimaryEnergyConsumption > 0 {
				s.Points[i] = Point{Year: y, Value: round(rec.PrimaryEnergyConsumption, 1)}
			}
		}
		out = append(out, s)
	}
	return out
}

func globalMixSeries(ds *dataset.Dataset) []Series {
	years := ds.Years()
	totals := make([]Mix, len(years))
	for i, y := range years {
		totals[i] = WorldMix(ds, y)
	}

	out := make([]Series, len(Sources))
	for i, src := range Sources {
		s := Series{Label: src.Label(), Color: src.Color(), Unit: "TWh", Points: make([]Point, len(years))}
		for j, y := range years {
			s.Points[j] = Point{Year: y, Value: round(totals[j][src], 1)}
		}
		out[i] = s
	}
	return out
}

func countryMixSeries(ds *dataset.Dataset, country string) []Series {
	if country == "" {
		country = models.DefaultCountry
	}
	recs := ds.ForCountry(country)

	out := make([]Series, len(Sources))
	for i, src := range Sources {
		s := Series{Label: src.Label(), Color: src.Color(), Unit: "kWh", Points: make([]Point, len(recs))}
		for j, rec := range recs {
			s.Points[j] = Point{Year: rec.Year, Value: round(PerCapita(rec, src), 1)}
		}
		out[i] = s
	}
	return out
}

// lineData converts points to echarts values, using the placeholder for
// missing points.
func lineData(points []Point) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, p := range points {
		if p.Missing {
			data[i] = opts.LineData{Value: missing}
			continue
		}
		data[i] = opts.LineData{Value: p.Value}
	}
	return data
}
