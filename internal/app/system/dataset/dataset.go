// Package dataset holds the parsed energy table and the lookups the
// dashboard widgets slice it with. A Dataset is immutable after New and
// is shared read-only between viewers.
package dataset

import (
	"errors"
	"sort"
	"strings"

	"github.com/dalemusser/strataenergy/internal/domain/models"
)

// ErrEmpty is returned when a source yields no usable rows.
var ErrEmpty = errors.New("dataset has no usable rows")

type key struct {
	country string
	year    int
}

// Dataset is the in-memory energy table plus its derived indexes.
type Dataset struct {
	records   []models.EnergyRecord
	index     map[key]int
	byYear    map[int][]int
	byCountry map[string][]int
	countries []string
	nations   []string
	aggregate map[string]bool
	years     []int
	minYear   int
	maxYear   int
}

// regionNames are aggregate rows recognised by name when the source has
// no iso_code column.
var regionNames = map[string]bool{
	"World":                         true,
	"Africa":                        true,
	"Asia":                          true,
	"Europe":                        true,
	"North America":                 true,
	"South America":                 true,
	"Oceania":                       true,
	"European Union (27)":           true,
	"High-income countries":         true,
	"Low-income countries":          true,
	"Lower-middle-income countries": true,
	"Upper-middle-income countries": true,
	"Non-OECD (EI)":                 true,
	"OECD (EI)":                     true,
}

// aggregateSuffixes mark regional totals from a named upstream source,
// such as "Asia Pacific (EI)". Nations disambiguated with other
// parentheses, such as "Micronesia (country)", are not aggregates.
var aggregateSuffixes = []string{"(EI)", "(EIA)", "(Ember)", "(Shift)", "(27)"}

func isAggregateName(country string) bool {
	if regionNames[country] {
		return true
	}
	for _, suffix := range aggregateSuffixes {
		if strings.HasSuffix(country, " "+suffix) {
			return true
		}
	}
	return false
}

// New indexes records. A later row for the same (country, year) replaces
// an earlier one.
func New(records []models.EnergyRecord) (*Dataset, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	d := &Dataset{
		index:     make(map[key]int, len(records)),
		byYear:    make(map[int][]int),
		byCountry: make(map[string][]int),
	}

	for _, rec := range records {
		k := key{rec.Country, rec.Year}
		if i, ok := d.index[k]; ok {
			d.records[i] = rec
			continue
		}
		d.index[k] = len(d.records)
		d.records = append(d.records, rec)
	}

	for i, rec := range d.records {
		d.byYear[rec.Year] = append(d.byYear[rec.Year], i)
		d.byCountry[rec.Country] = append(d.byCountry[rec.Country], i)
	}

	for c, idx := range d.byCountry {
		sort.Slice(idx, func(a, b int) bool {
			return d.records[idx[a]].Year < d.records[idx[b]].Year
		})
		d.countries = append(d.countries, c)
	}
	sort.Strings(d.countries)

	d.aggregate = classifyAggregates(d.records)
	for _, c := range d.countries {
		if !d.aggregate[c] {
			d.nations = append(d.nations, c)
		}
	}

	for y, idx := range d.byYear {
		sort.Slice(idx, func(a, b int) bool {
			return d.records[idx[a]].Country < d.records[idx[b]].Country
		})
		d.years = append(d.years, y)
	}
	sort.Ints(d.years)

	d.minYear = d.years[0]
	d.maxYear = d.years[len(d.years)-1]
	return d, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// MinYear returns the earliest year present.
func (d *Dataset) MinYear() int { return d.minYear }

// MaxYear returns the latest year present.
func (d *Dataset) MaxYear() int { return d.maxYear }

// Countries returns the sorted distinct country names. The slice is a copy.
func (d *Dataset) Countries() []string {
	out := make([]string, len(d.countries))
	copy(out, d.countries)
	return out
}

// Years returns the sorted distinct years. The slice is a copy.
func (d *Dataset) Years() []int {
	out := make([]int, len(d.years))
	copy(out, d.years)
	return out
}

// Nations returns the sorted countries that are not regional or global
// aggregates. The slice is a copy.
func (d *Dataset) Nations() []string {
	out := make([]string, len(d.nations))
	copy(out, d.nations)
	return out
}

// IsAggregate reports whether country names a region or the world total
// rather than a single nation.
func (d *Dataset) IsAggregate(country string) bool {
	return d.aggregate[country]
}

func classifyAggregates(records []models.EnergyRecord) map[string]bool {
	hasISO := false
	for _, r := range records {
		if r.IsoCode != "" {
			hasISO = true
			break
		}
	}

	out := make(map[string]bool)
	for _, r := range records {
		if hasISO {
			iso := r.IsoCode
			if iso == "" || strings.HasPrefix(iso, "OWID_") {
				out[r.Country] = true
			}
			continue
		}
		if isAggregateName(r.Country) {
			out[r.Country] = true
		}
	}
	return out
}

// HasCountry reports whether any record names country.
func (d *Dataset) HasCountry(country string) bool {
	_, ok := d.byCountry[country]
	return ok
}

// Lookup returns the record for (country, year).
func (d *Dataset) Lookup(country string, year int) (models.EnergyRecord, bool) {
	i, ok := d.index[key{country, year}]
	if !ok {
		return models.EnergyRecord{}, false
	}
	return d.records[i], true
}

// ForYear returns every record of year, ordered by country.
func (d *Dataset) ForYear(year int) []models.EnergyRecord {
	return d.collect(d.byYear[year])
}

// ForCountry returns every record of country, ordered by year.
func (d *Dataset) ForCountry(country string) []models.EnergyRecord {
	return d.collect(d.byCountry[country])
}

// Records returns a copy of all records in load order.
func (d *Dataset) Records() []models.EnergyRecord {
	out := make([]models.EnergyRecord, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Dataset) collect(idx []int) []models.EnergyRecord {
	out := make([]models.EnergyRecord, 0, len(idx))
	for _, i := range idx {
		out = append(out, d.records[i])
	}
	return out
}

// ClampYear bounds year to [MinYear, MaxYear].
func (d *Dataset) ClampYear(year int) int {
	if year < d.minYear {
		return d.minYear
	}
	if year > d.maxYear {
		return d.maxYear
	}
	return year
}

// NearestYear returns the year present in the data closest to year.
// Ties go to the earlier year.
func (d *Dataset) NearestYear(year int) int {
	i := sort.SearchInts(d.years, year)
	switch {
	case i < len(d.years) && d.years[i] == year:
		return year
	case i == 0:
		return d.years[0]
	case i == len(d.years):
		return d.years[len(d.years)-1]
	}
	lo, hi := d.years[i-1], d.years[i]
	if year-lo <= hi-year {
		return lo
	}
	return hi
}
