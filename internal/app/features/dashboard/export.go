// internal/app/features/dashboard/export.go
package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"net/http"
	"strconv"
	"strings"

	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/strataenergy/internal/app/system/timeouts"
	"github.com/dalemusser/strataenergy/internal/app/system/widgets"
	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	kpiSheet        = "KPIs"
)

var recordHeaders = []string{
	"Country", "ISO code", "Year", "Population", "GDP",
	"Primary energy (TWh)", "Energy per capita (kWh)",
	"Coal (kWh/person)", "Oil (kWh/person)", "Gas (kWh/person)",
	"Nuclear (kWh/person)", "Hydro (kWh/person)", "Other renewables (kWh/person)",
	"Fossil fuels (TWh)", "Renewables (TWh)",
}

// ExportXLSX handles GET /dashboard/export.xlsx: every row of the
// selected year plus a sheet with the KPI cards.
func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	snap := c.Snapshot()
	ds := c.Dataset()

	f, err := buildWorkbook(ds, snap)
	if err != nil {
		h.errLog.JSONInternal(w, r, "failed to build workbook", err)
		return
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		h.errLog.JSONInternal(w, r, "failed to write workbook", err)
		return
	}

	year := ds.NearestYear(snap.State.Year)
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="energy-%d.xlsx"`, year))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Debug("xlsx export write failed", zap.Error(err))
	}
}

// buildWorkbook lays out the year slice and the KPI cards of snap.
func buildWorkbook(ds *dataset.Dataset, snap sysdash.Snapshot) (*excelize.File, error) {
	year := ds.NearestYear(snap.State.Year)
	sheet := fmt.Sprintf("Energy %d", year)

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range recordHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, 18)
	}

	for i, rec := range ds.ForYear(year) {
		values := []interface{}{
			rec.Country, rec.IsoCode, rec.Year, rec.Population, rec.GDP,
			rec.PrimaryEnergyConsumption, rec.EnergyPerCapita(),
		}
		for _, s := range widgets.Sources {
			values = append(values, widgets.PerCapita(rec, s))
		}
		values = append(values, rec.FossilFuelConsumption, rec.RenewablesConsumption)

		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if _, err := f.NewSheet(kpiSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("add KPI sheet: %w", err)
	}
	f.SetCellValue(kpiSheet, "A1", "Country")
	f.SetCellValue(kpiSheet, "B1", snap.State.Country)
	f.SetCellValue(kpiSheet, "A2", "Year")
	f.SetCellValue(kpiSheet, "B2", snap.State.Year)
	for i, header := range []string{"Metric", "Value", "Change from previous year"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(kpiSheet, cell, header)
	}
	f.SetColWidth(kpiSheet, "A", "C", 26)
	for i, k := range snap.KPIs {
		row := i + 5
		f.SetCellValue(kpiSheet, fmt.Sprintf("A%d", row), k.Label)
		f.SetCellValue(kpiSheet, fmt.Sprintf("B%d", row), k.Value)
		f.SetCellValue(kpiSheet, fmt.Sprintf("C%d", row), k.Change)
	}

	return f, nil
}

// ExportPNG handles GET /dashboard/export/{name}.png for the time-series
// widgets.
func (h *Handler) ExportPNG(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !widgets.IsTimeSeries(name) {
		jsonutil.NotFound(w, "no PNG export for this chart")
		return
	}
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	state := c.State()
	ds := c.Dataset()
	sel := widgets.Selection{Year: state.Year, Country: state.Country, ViewMode: state.ViewMode}

	cc, err := c.Chart(name)
	if err != nil {
		h.errLog.JSONInternal(w, r, "failed to load chart", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Export())
	defer cancel()

	type result struct {
		buf *bytes.Buffer
		err error
	}
	out := make(chan result, 1)
	go func() {
		buf, err := renderPNG(ds, name, cc.Title, sel, h.widgetOpts)
		out <- result{buf, err}
	}()

	var res result
	select {
	case res = <-out:
	case <-ctx.Done():
		h.errLog.LogWithFields(r, "png export timed out", ctx.Err(), zap.String("chart", name))
		jsonutil.ServiceUnavailable(w, "export timed out")
		return
	}
	if res.err != nil {
		h.errLog.JSONInternal(w, r, "failed to render chart", res.err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="%s-%d.png"`, name, state.Year))
	w.Header().Set("Content-Length", strconv.Itoa(res.buf.Len()))
	if _, err := res.buf.WriteTo(w); err != nil {
		h.logger.Debug("png export write failed", zap.Error(err))
	}
}

// renderPNG draws the series of a time-series widget with a dashed marker
// at the selected year.
func renderPNG(ds *dataset.Dataset, name, title string, sel widgets.Selection, o widgets.Options) (*bytes.Buffer, error) {
	series, err := widgets.TimeSeries(ds, name, sel, o)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = title
	if name == "country-mix" && sel.Country != "" {
		p.Title.Text = fmt.Sprintf("%s: %s", title, sel.Country)
	}
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Year"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	selected := ds.ClampYear(sel.Year)
	maxY := 0.0
	for i, s := range series {
		if p.Y.Label.Text == "" {
			p.Y.Label.Text = s.Unit
		}
		var pts, current plotter.XYs
		for _, pt := range s.Points {
			if pt.Missing {
				continue
			}
			xy := plotter.XY{X: float64(pt.Year), Y: pt.Value}
			pts = append(pts, xy)
			if pt.Year == selected {
				current = append(current, xy)
			}
			if pt.Value > maxY {
				maxY = pt.Value
			}
		}
		if len(pts) == 0 {
			continue
		}
		col := seriesColor(s.Color, i)
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", s.Label, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = col
		p.Add(line)
		p.Legend.Add(s.Label, line)

		if len(current) > 0 {
			dot, err := plotter.NewScatter(current)
			if err != nil {
				return nil, fmt.Errorf("series %s: %w", s.Label, err)
			}
			dot.GlyphStyle.Color = col
			dot.GlyphStyle.Radius = vg.Points(3)
			dot.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(dot)
		}
	}

	if maxY > 0 {
		year := float64(selected)
		marker, err := plotter.NewLine(plotter.XYs{{X: year, Y: 0}, {X: year, Y: maxY}})
		if err != nil {
			return nil, fmt.Errorf("year marker: %w", err)
		}
		marker.LineStyle.Color = color.RGBA{R: 200, G: 40, B: 40, A: 255}
		marker.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(marker)
	}

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	return &buf, nil
}

// seriesColor parses a "#rrggbb" color, falling back to the plotutil
// palette.
func seriesColor(hex string, i int) color.Color {
	if c, err := parseHex(hex); err == nil {
		return c
	}
	return plotutil.Color(i)
}

var errBadColor = errors.New("bad color")

func parseHex(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.RGBA{}, errBadColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, errBadColor
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
