package dataset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sampleCSV = `country,year,gdp,population,primary_energy_consumption,coal_cons_per_capita,gas_energy_per_capita,hydro_elec_per_capita,low_carbon_energy_per_capita,oil_energy_per_capita,renewables_energy_per_capita,renewables_consumption,fossil_fuel_consumption
World,1990,1000,5000000000,100,10,20,5,30,40,15,12,80
World,1991,1100,5100000000,110,11,21,5,31,41,16,13,85
Norway,1990,100,4000000,2,1,2,20,40,3,25,1.5,0.4
Norway,1992,120,4100000,2.4,1,2,21,30,3,26,1.6,0.5
,1990,1,1,1,1,1,1,1,1,1,1,1
Chile,n/a,1,1,1,1,1,1,1,1,1,1,1
Chile,1991,abc,19000000,,,,,,,,,
`

func mustParse(t *testing.T, src string) *Dataset {
	t.Helper()
	d, err := Parse(strings.NewReader(src), FormatCSV)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return d
}

func TestParse_CSV(t *testing.T) {
	d := mustParse(t, sampleCSV)

	if d.Len() != 5 {
		t.Errorf("Len() = %d, want 5", d.Len())
	}
	if d.MinYear() != 1990 || d.MaxYear() != 1992 {
		t.Errorf("year bounds = [%d, %d], want [1990, 1992]", d.MinYear(), d.MaxYear())
	}

	want := []string{"Chile", "Norway", "World"}
	got := d.Countries()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Countries() = %v, want %v", got, want)
	}

	rec, ok := d.Lookup("World", 1991)
	if !ok {
		t.Fatal("Lookup(World, 1991) not found")
	}
	if rec.PrimaryEnergyConsumption != 110 || rec.FossilFuelConsumption != 85 {
		t.Errorf("Lookup(World, 1991) = %+v", rec)
	}
}

func TestParse_MalformedNumericsReadAsZero(t *testing.T) {
	d := mustParse(t, sampleCSV)

	rec, ok := d.Lookup("Chile", 1991)
	if !ok {
		t.Fatal("Lookup(Chile, 1991) not found")
	}
	if rec.GDP != 0 {
		t.Errorf("GDP = %v, want 0", rec.GDP)
	}
	if rec.PrimaryEnergyConsumption != 0 {
		t.Errorf("PrimaryEnergyConsumption = %v, want 0", rec.PrimaryEnergyConsumption)
	}
	if rec.Population != 19000000 {
		t.Errorf("Population = %v, want 19000000", rec.Population)
	}
}

func TestParse_Empty(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"no input", ""},
		{"header only", "country,year,gdp\n"},
		{"no usable rows", "country,year\n,1990\nX,abc\n"},
		{"missing year column", "country,gdp\nWorld,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), FormatCSV)
			if !errors.Is(err, ErrEmpty) {
				t.Errorf("Parse() error = %v, want ErrEmpty", err)
			}
		})
	}
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	rows := [][]any{
		{"country", "year", "primary_energy_consumption", "population"},
		{"World", 2000, 120.5, 6e9},
		{"World", 2001, 125.0, 6.1e9},
	}
	for r, row := range rows {
		for c, v := range row {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				t.Fatalf("SetCellValue: %v", err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	d, err := Parse(&buf, FormatXLSX)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	rec, ok := d.Lookup("World", 2000)
	if !ok {
		t.Fatal("Lookup(World, 2000) not found")
	}
	if rec.PrimaryEnergyConsumption != 120.5 {
		t.Errorf("PrimaryEnergyConsumption = %v, want 120.5", rec.PrimaryEnergyConsumption)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"data/energy.csv":  FormatCSV,
		"data/energy.XLSX": FormatXLSX,
		"energy.txt":       FormatCSV,
		"energy":           FormatCSV,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestClampYear(t *testing.T) {
	d := mustParse(t, sampleCSV)

	tests := []struct{ in, want int }{
		{1980, 1990},
		{1990, 1990},
		{1991, 1991},
		{2050, 1992},
	}
	for _, tt := range tests {
		if got := d.ClampYear(tt.in); got != tt.want {
			t.Errorf("ClampYear(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNearestYear(t *testing.T) {
	recs := mustParse(t, "country,year\nA,1990\nA,1994\nA,2000\n")

	tests := []struct{ in, want int }{
		{1900, 1990},
		{1990, 1990},
		{1991, 1990},
		{1992, 1990}, // tie goes to the earlier year
		{1993, 1994},
		{1998, 2000},
		{2100, 2000},
	}
	for _, tt := range tests {
		if got := recs.NearestYear(tt.in); got != tt.want {
			t.Errorf("NearestYear(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestForYearAndForCountry(t *testing.T) {
	d := mustParse(t, sampleCSV)

	y := d.ForYear(1990)
	if len(y) != 2 || y[0].Country != "Norway" || y[1].Country != "World" {
		t.Errorf("ForYear(1990) = %+v", y)
	}

	c := d.ForCountry("Norway")
	if len(c) != 2 || c[0].Year != 1990 || c[1].Year != 1992 {
		t.Errorf("ForCountry(Norway) = %+v", c)
	}

	if got := d.ForCountry("Atlantis"); len(got) != 0 {
		t.Errorf("ForCountry(Atlantis) = %+v, want empty", got)
	}
}

func TestNew_LaterDuplicateWins(t *testing.T) {
	d := mustParse(t, "country,year,gdp\nA,2000,1\nA,2000,2\n")
	if d.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", d.Len())
	}
	rec, _ := d.Lookup("A", 2000)
	if rec.GDP != 2 {
		t.Errorf("GDP = %v, want 2", rec.GDP)
	}
}

func TestLoad_SourceError(t *testing.T) {
	boom := errors.New("boom")
	src := SourceFunc(func(context.Context, string) (io.ReadCloser, error) {
		return nil, boom
	})
	if _, err := Load(context.Background(), src, "energy.csv"); !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want wrapped boom", err)
	}
}

func TestHolder_SetNotifies(t *testing.T) {
	h := NewHolder(nil)
	if h.Get() != nil {
		t.Fatal("Get() on empty holder should be nil")
	}

	var seen []*Dataset
	h.OnChange(func(d *Dataset) { seen = append(seen, d) })

	d := mustParse(t, sampleCSV)
	h.Set(d)
	h.Set(nil)

	if h.Get() != d {
		t.Error("Get() did not return the stored dataset")
	}
	if len(seen) != 1 || seen[0] != d {
		t.Errorf("listener calls = %d, want 1", len(seen))
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "energy.csv")
	if err := os.WriteFile(path, []byte("country,year\nA,2000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHolder(nil)
	if err := h.Reload(ctx, FileSource, path); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	reloaded := make(chan *Dataset, 1)
	h.OnChange(func(d *Dataset) {
		select {
		case reloaded <- d:
		default:
		}
	})

	w, err := Watch(ctx, path, h, zap.NewNop())
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("country,year\nA,2000\nA,2005\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case d := <-reloaded:
		if d.MaxYear() != 2005 {
			t.Errorf("MaxYear() after reload = %d, want 2005", d.MaxYear())
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dataset was not reloaded after write")
	}
}

func TestAggregates(t *testing.T) {
	t.Run("by name", func(t *testing.T) {
		d := mustParse(t, sampleCSV)
		if !d.IsAggregate("World") {
			t.Error("World should be an aggregate")
		}
		if d.IsAggregate("Norway") {
			t.Error("Norway should not be an aggregate")
		}
		if got := strings.Join(d.Nations(), ","); got != "Chile,Norway" {
			t.Errorf("Nations() = %q, want %q", got, "Chile,Norway")
		}
	})

	t.Run("by iso code", func(t *testing.T) {
		d := mustParse(t, "country,iso_code,year\nWorld,OWID_WRL,2000\nAsia,,2000\nJapan,JPN,2000\n")
		if !d.IsAggregate("World") || !d.IsAggregate("Asia") {
			t.Error("OWID_ and blank iso codes should be aggregates")
		}
		if got := strings.Join(d.Nations(), ","); got != "Japan" {
			t.Errorf("Nations() = %q, want %q", got, "Japan")
		}
	})

	t.Run("parenthesised names without iso code", func(t *testing.T) {
		d := mustParse(t, "country,year\n"+
			"Asia Pacific (EI),2000\n"+
			"Africa (EIA),2000\n"+
			"Europe (Ember),2000\n"+
			"CIS (Shift),2000\n"+
			"European Union (27),2000\n"+
			"Micronesia (country),2000\n"+
			"Congo (Brazzaville),2000\n")
		tests := []struct {
			country string
			want    bool
		}{
			{"Asia Pacific (EI)", true},
			{"Africa (EIA)", true},
			{"Europe (Ember)", true},
			{"CIS (Shift)", true},
			{"European Union (27)", true},
			{"Micronesia (country)", false},
			{"Congo (Brazzaville)", false},
		}
		for _, tt := range tests {
			if got := d.IsAggregate(tt.country); got != tt.want {
				t.Errorf("IsAggregate(%q) = %v, want %v", tt.country, got, tt.want)
			}
		}
		if got := strings.Join(d.Nations(), ","); got != "Congo (Brazzaville),Micronesia (country)" {
			t.Errorf("Nations() = %q", got)
		}
	})
}
