package testutil

import (
	"strings"
	"testing"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
)

// FixtureCSV is a small energy table covering two nations and the World
// aggregate for 2019 and 2020.
const FixtureCSV = `country,iso_code,year,gdp,population,primary_energy_consumption,coal_cons_per_capita,gas_energy_per_capita,hydro_elec_per_capita,low_carbon_energy_per_capita,oil_energy_per_capita,renewables_energy_per_capita,renewables_consumption,fossil_fuel_consumption
World,OWID_WRL,2019,1.3e14,7.7e9,160000,5000,5000,600,3000,7000,1700,13000,130000
World,OWID_WRL,2020,1.3e14,7.8e9,155000,4900,5000,610,3100,6500,1800,14000,125000
United States,USA,2019,1.8e13,3.3e8,26000,12000,25000,800,12000,33000,3300,2900,21000
United States,USA,2020,1.7e13,3.3e8,24500,10000,25000,820,12300,30000,3500,3100,19500
China,CHN,2019,2.0e13,1.4e9,39000,19000,2200,2400,3900,4600,3100,6500,33000
China,CHN,2020,2.1e13,1.4e9,40000,19500,2400,2500,4200,4700,3400,7100,33500
`

// Dataset parses FixtureCSV and fails the test on error.
func Dataset(t testing.TB) *dataset.Dataset {
	t.Helper()
	d, err := dataset.Parse(strings.NewReader(FixtureCSV), dataset.FormatCSV)
	if err != nil {
		t.Fatalf("parse fixture dataset: %v", err)
	}
	return d
}
