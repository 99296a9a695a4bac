package dashboard

import (
	"fmt"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/domain/models"
)

// Placeholders shown on a KPI card when data is missing.
const (
	NoValue  = "--"
	NoChange = "n/a"
)

// KPI is one headline card: the current value and its change from the
// previous year.
type KPI struct {
	Key    string   `json:"key"`
	Label  string   `json:"label"`
	Value  string   `json:"value"`
	Change string   `json:"change"`
	Raw    *float64 `json:"raw,omitempty"`
	Pct    *float64 `json:"pct,omitempty"`
}

type metric struct {
	key    string
	label  string
	get    func(models.EnergyRecord) float64
	format func(float64) string
}

var metrics = []metric{
	{
		key:    "primary_energy_consumption",
		label:  "Primary energy",
		get:    func(r models.EnergyRecord) float64 { return r.PrimaryEnergyConsumption },
		format: formatTWh,
	},
	{
		key:    "fossil_fuel_consumption",
		label:  "Fossil fuels",
		get:    func(r models.EnergyRecord) float64 { return r.FossilFuelConsumption },
		format: formatTWh,
	},
	{
		key:    "renewables_consumption",
		label:  "Renewables",
		get:    func(r models.EnergyRecord) float64 { return r.RenewablesConsumption },
		format: formatTWh,
	},
	{
		key:    "gdp",
		label:  "GDP",
		get:    func(r models.EnergyRecord) float64 { return r.GDP },
		format: formatMoney,
	},
}

// ComputeKPIs builds the four headline cards for country in year, comparing
// against year-1.
func ComputeKPIs(ds *dataset.Dataset, country string, year int) []KPI {
	cur, hasCur := ds.Lookup(country, year)
	prev, hasPrev := ds.Lookup(country, year-1)

	out := make([]KPI, 0, len(metrics))
	for _, m := range metrics {
		k := KPI{Key: m.key, Label: m.label, Value: NoValue, Change: NoChange}
		if hasCur {
			v := m.get(cur)
			k.Value = m.format(v)
			k.Raw = &v
			if hasPrev {
				if pct, ok := PercentChange(v, m.get(prev)); ok {
					k.Change = FormatChange(pct)
					k.Pct = &pct
				}
			}
		}
		out = append(out, k)
	}
	return out
}

// PercentChange returns (cur-prev)/prev*100. ok is false when prev is zero.
func PercentChange(cur, prev float64) (pct float64, ok bool) {
	if prev == 0 {
		return 0, false
	}
	return (cur - prev) / prev * 100, true
}

// FormatChange renders a signed percentage with one decimal, e.g. "+10.0%".
func FormatChange(pct float64) string {
	return fmt.Sprintf("%+.1f%%", pct)
}

func formatTWh(v float64) string {
	return fmt.Sprintf("%.1f TWh", v)
}

func formatMoney(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	}
	return fmt.Sprintf("$%.0f", v)
}
