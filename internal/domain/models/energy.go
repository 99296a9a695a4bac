// internal/domain/models/energy.go
package models

import "strings"

// DefaultCountry is the aggregate pseudo-country selected when nothing else is.
const DefaultCountry = "World"

// EnergyRecord is one (country, year) row of the energy dataset.
// Consumption totals are in TWh; per-capita fields are kWh per person.
// Missing or malformed numeric cells load as zero.
type EnergyRecord struct {
	Country    string  `json:"country"`
	IsoCode    string  `json:"iso_code,omitempty"` // empty for regional aggregates
	Year       int     `json:"year"`
	GDP        float64 `json:"gdp"`
	Population float64 `json:"population"`

	PrimaryEnergyConsumption float64 `json:"primary_energy_consumption"`

	CoalConsPerCapita         float64 `json:"coal_cons_per_capita"`
	GasEnergyPerCapita        float64 `json:"gas_energy_per_capita"`
	HydroElecPerCapita        float64 `json:"hydro_elec_per_capita"`
	LowCarbonEnergyPerCapita  float64 `json:"low_carbon_energy_per_capita"`
	OilEnergyPerCapita        float64 `json:"oil_energy_per_capita"`
	RenewablesEnergyPerCapita float64 `json:"renewables_energy_per_capita"`

	RenewablesConsumption float64 `json:"renewables_consumption"`
	FossilFuelConsumption float64 `json:"fossil_fuel_consumption"`
}

// NuclearPerCapita derives nuclear energy per capita from the low-carbon
// total. Inconsistent source rows can make the difference negative, so it
// is floored at zero.
func (r EnergyRecord) NuclearPerCapita() float64 {
	n := r.LowCarbonEnergyPerCapita - r.RenewablesEnergyPerCapita - r.HydroElecPerCapita
	if n < 0 {
		return 0
	}
	return n
}

// EnergyPerCapita returns primary energy in kWh per person, or 0 when
// population is unknown.
func (r EnergyRecord) EnergyPerCapita() float64 {
	if r.Population <= 0 {
		return 0
	}
	return r.PrimaryEnergyConsumption * 1e9 / r.Population
}

// GDPPerCapita returns GDP per person, or 0 when either input is unknown.
func (r EnergyRecord) GDPPerCapita() float64 {
	if r.Population <= 0 || r.GDP <= 0 {
		return 0
	}
	return r.GDP / r.Population
}

// EnergyIntensity returns kWh of primary energy per unit of GDP.
func (r EnergyRecord) EnergyIntensity() float64 {
	if r.GDP <= 0 {
		return 0
	}
	return r.PrimaryEnergyConsumption * 1e9 / r.GDP
}

// ViewMode selects how time-series widgets draw their series.
type ViewMode string

const (
	ViewLines ViewMode = "lines"
	ViewArea  ViewMode = "area"
)

// ParseViewMode returns the view mode named by s, or false when s names none.
func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case ViewLines:
		return ViewLines, true
	case ViewArea:
		return ViewArea, true
	}
	return "", false
}

// DashboardState is the shared selection every widget renders from.
type DashboardState struct {
	Year     int      `json:"year"`
	Country  string   `json:"country"`
	ViewMode ViewMode `json:"view_mode"`
	Playing  bool     `json:"playing"`
}
