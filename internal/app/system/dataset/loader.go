package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/xuri/excelize/v2"
)

// Format identifies the encoding of a dataset file.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatFromPath picks the format from the file extension. Anything that
// is not a spreadsheet is read as CSV.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	}
	return FormatCSV
}

// Source opens dataset files by path.
type Source interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, path string) (io.ReadCloser, error)

// Open calls f.
func (f SourceFunc) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return f(ctx, path)
}

// Load opens path from src and parses it.
func Load(ctx context.Context, src Source, path string) (*Dataset, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %q: %w", path, err)
	}
	defer rc.Close()

	d, err := Parse(rc, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("parse dataset %q: %w", path, err)
	}
	return d, nil
}

// Parse reads a dataset in the given format.
func Parse(r io.Reader, format Format) (*Dataset, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		rows, err = readCSV(r)
	}
	if err != nil {
		return nil, err
	}
	return New(recordsFromRows(rows))
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) && len(rows) > 0 {
				// Skip the malformed line and keep reading.
				continue
			}
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmpty
	}
	return f.GetRows(sheet)
}

// column setters keyed by normalized header name.
var columns = map[string]func(*models.EnergyRecord, float64){
	"gdp":                          func(r *models.EnergyRecord, v float64) { r.GDP = v },
	"population":                   func(r *models.EnergyRecord, v float64) { r.Population = v },
	"primary_energy_consumption":   func(r *models.EnergyRecord, v float64) { r.PrimaryEnergyConsumption = v },
	"coal_cons_per_capita":         func(r *models.EnergyRecord, v float64) { r.CoalConsPerCapita = v },
	"gas_energy_per_capita":        func(r *models.EnergyRecord, v float64) { r.GasEnergyPerCapita = v },
	"hydro_elec_per_capita":        func(r *models.EnergyRecord, v float64) { r.HydroElecPerCapita = v },
	"low_carbon_energy_per_capita": func(r *models.EnergyRecord, v float64) { r.LowCarbonEnergyPerCapita = v },
	"oil_energy_per_capita":        func(r *models.EnergyRecord, v float64) { r.OilEnergyPerCapita = v },
	"renewables_energy_per_capita": func(r *models.EnergyRecord, v float64) { r.RenewablesEnergyPerCapita = v },
	"renewables_consumption":       func(r *models.EnergyRecord, v float64) { r.RenewablesConsumption = v },
	"fossil_fuel_consumption":      func(r *models.EnergyRecord, v float64) { r.FossilFuelConsumption = v },
}

// recordsFromRows maps a header row plus data rows to records. Rows with
// an empty country or a non-numeric year are dropped; any other cell that
// does not parse as a number reads as zero.
func recordsFromRows(rows [][]string) []models.EnergyRecord {
	if len(rows) < 2 {
		return nil
	}

	countryCol, yearCol, isoCol := -1, -1, -1
	setters := make(map[int]func(*models.EnergyRecord, float64))
	for i, h := range rows[0] {
		name := normalizeHeader(h)
		switch name {
		case "country":
			countryCol = i
		case "year":
			yearCol = i
		case "iso_code":
			isoCol = i
		default:
			if set, ok := columns[name]; ok {
				setters[i] = set
			}
		}
	}
	if countryCol < 0 || yearCol < 0 {
		return nil
	}

	out := make([]models.EnergyRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		country := strings.TrimSpace(cell(row, countryCol))
		if country == "" {
			continue
		}
		year, ok := parseYear(cell(row, yearCol))
		if !ok {
			continue
		}
		rec := models.EnergyRecord{
			Country: country,
			IsoCode: strings.TrimSpace(cell(row, isoCol)),
			Year:    year,
		}
		for i, set := range setters {
			set(&rec, parseNumber(cell(row, i)))
		}
		out = append(out, rec)
	}
	return out
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	// Spreadsheets sometimes store years as "1990.0".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
