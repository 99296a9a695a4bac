package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	errorsfeature "github.com/dalemusser/strataenergy/internal/app/features/errors"
	viewstore "github.com/dalemusser/strataenergy/internal/app/store/views"
	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/widgets"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/dalemusser/strataenergy/internal/testutil"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, ds *dataset.Dataset, views *viewstore.Store) (*Handler, *sysdash.Registry) {
	t.Helper()
	logger := zap.NewNop()
	reg := sysdash.NewRegistry(dataset.NewHolder(ds), sysdash.Options{Logger: logger})
	t.Cleanup(reg.Close)
	h := NewHandler(reg, views, widgets.Options{}, errorsfeature.NewErrorLogger(logger), logger)
	return h, reg
}

func serve(h *Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *testutil.ResponseRecorder) sysdash.Snapshot {
	t.Helper()
	var snap sysdash.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v; body = %s", err, rec.Body.String())
	}
	return snap
}

func TestRoutes_RequireViewer(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	rec := serve(h, testutil.NewRequest(http.MethodGet, "/state"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeState(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	rec := serve(h, testutil.NewViewerRequest(http.MethodGet, "/state", testutil.NewViewer()))
	rec.AssertStatus(t, http.StatusOK)

	snap := decodeSnapshot(t, rec)
	if snap.State.Year != 2020 {
		t.Errorf("year = %d, want 2020 (latest)", snap.State.Year)
	}
	if snap.State.Country != models.DefaultCountry {
		t.Errorf("country = %q, want %q", snap.State.Country, models.DefaultCountry)
	}
	if len(snap.Charts) != len(widgets.Names) {
		t.Errorf("charts = %d, want %d", len(snap.Charts), len(widgets.Names))
	}
	if len(snap.KPIs) != 4 {
		t.Errorf("kpis = %d, want 4", len(snap.KPIs))
	}
}

func TestServeState_ViewersAreIndependent(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	a, b := testutil.NewViewer(), testutil.NewViewer()

	serve(h, testutil.NewViewerFormRequest("/year", "year=2019", a)).AssertStatus(t, http.StatusOK)

	snapA := decodeSnapshot(t, serve(h, testutil.NewViewerRequest(http.MethodGet, "/state", a)))
	snapB := decodeSnapshot(t, serve(h, testutil.NewViewerRequest(http.MethodGet, "/state", b)))
	if snapA.State.Year != 2019 || snapB.State.Year != 2020 {
		t.Errorf("years = %d, %d; want 2019, 2020", snapA.State.Year, snapB.State.Year)
	}
}

func TestServe_NoDataset(t *testing.T) {
	h, _ := newTestHandler(t, nil, nil)
	req := testutil.NewViewerRequest(http.MethodGet, "/state", testutil.NewViewer())
	req.Header.Set("Accept", "application/json")

	rec := serve(h, req)
	rec.AssertStatus(t, http.StatusServiceUnavailable)
	rec.AssertContains(t, "dataset unavailable")
}

func TestHandleYear(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		json     bool
		wantCode int
		wantYear int
	}{
		{"in range", "year=2019", false, http.StatusOK, 2019},
		{"before data clamps", "year=1990", false, http.StatusOK, 2019},
		{"after data clamps", "year=2050", false, http.StatusOK, 2020},
		{"json body", `{"year":2019}`, true, http.StatusOK, 2019},
		{"not a number", "year=abc", false, http.StatusBadRequest, 0},
		{"implausible", "year=99999", false, http.StatusBadRequest, 0},
		{"unknown json field", `{"yr":2019}`, true, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, testutil.Dataset(t), nil)
			req := testutil.NewViewerFormRequest("/year", tt.body, testutil.NewViewer())
			if tt.json {
				req.Header.Set("Content-Type", "application/json")
			}
			rec := serve(h, req)
			rec.AssertStatus(t, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				return
			}
			if got := decodeSnapshot(t, rec).State.Year; got != tt.wantYear {
				t.Errorf("year = %d, want %d", got, tt.wantYear)
			}
		})
	}
}

func TestHandleCountry(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	v := testutil.NewViewer()

	rec := serve(h, testutil.NewViewerFormRequest("/country", "country=++China+", v))
	rec.AssertStatus(t, http.StatusOK)
	if got := decodeSnapshot(t, rec).State.Country; got != "China" {
		t.Errorf("country = %q, want China", got)
	}

	rec = serve(h, testutil.NewViewerFormRequest("/country", "country=Atlantis", v))
	rec.AssertStatus(t, http.StatusOK)
	if got := decodeSnapshot(t, rec).State.Country; got != models.DefaultCountry {
		t.Errorf("unknown country = %q, want %q", got, models.DefaultCountry)
	}

	serve(h, testutil.NewViewerFormRequest("/country", "country=", v)).AssertStatus(t, http.StatusBadRequest)
}

func TestHandleMode(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	v := testutil.NewViewer()

	rec := serve(h, testutil.NewViewerFormRequest("/mode", "mode=AREA", v))
	rec.AssertStatus(t, http.StatusOK)
	if got := decodeSnapshot(t, rec).State.ViewMode; got != models.ViewArea {
		t.Errorf("mode = %q, want area", got)
	}

	rec = serve(h, testutil.NewViewerFormRequest("/mode", "mode=bars", v))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "View mode must be one of: lines, area.")

	snap := decodeSnapshot(t, serve(h, testutil.NewViewerRequest(http.MethodGet, "/state", v)))
	if snap.State.ViewMode != models.ViewArea {
		t.Errorf("mode after invalid request = %q, want area", snap.State.ViewMode)
	}
}

func TestHandlePlay(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	v := testutil.NewViewer()

	rec := serve(h, testutil.NewViewerFormRequest("/play", "", v))
	rec.AssertStatus(t, http.StatusOK)
	if !decodeSnapshot(t, rec).State.Playing {
		t.Error("toggle should start the animation")
	}

	rec = serve(h, testutil.NewViewerFormRequest("/play", "playing=false", v))
	rec.AssertStatus(t, http.StatusOK)
	if decodeSnapshot(t, rec).State.Playing {
		t.Error("playing=false should stop the animation")
	}

	serve(h, testutil.NewViewerFormRequest("/play", "playing=maybe", v)).AssertStatus(t, http.StatusBadRequest)
}

func TestHandleResize(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	v := testutil.NewViewer()

	rec := serve(h, testutil.NewViewerFormRequest("/resize", "widget=top-consumers&width=640px&height=400px", v))
	rec.AssertStatus(t, http.StatusOK)
	for _, cc := range decodeSnapshot(t, rec).Charts {
		if cc.Name == "top-consumers" && (cc.Width != "640px" || cc.Height != "400px") {
			t.Errorf("top-consumers size = %s x %s, want 640px x 400px", cc.Width, cc.Height)
		}
	}

	rec = serve(h, testutil.NewViewerFormRequest("/resize", "width=100%25&height=300px", v))
	rec.AssertStatus(t, http.StatusOK)
	for _, cc := range decodeSnapshot(t, rec).Charts {
		if cc.Width != "100%" || cc.Height != "300px" {
			t.Errorf("%s size = %s x %s, want 100%% x 300px", cc.Name, cc.Width, cc.Height)
		}
	}

	tests := []struct {
		name     string
		form     string
		wantCode int
	}{
		{"unknown chart", "widget=nope&width=1px&height=1px", http.StatusNotFound},
		{"missing size", "widget=top-consumers", http.StatusBadRequest},
		{"not a length", "width=big&height=300px", http.StatusBadRequest},
		{"style injection", "width=1px%3Bcolor%3Ared&height=300px", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serve(h, testutil.NewViewerFormRequest("/resize", tt.form, v)).AssertStatus(t, tt.wantCode)
		})
	}
}

func TestServeChart(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	v := testutil.NewViewer()

	rec := serve(h, testutil.NewViewerRequest(http.MethodGet, "/charts/global-mix", v))
	rec.AssertStatus(t, http.StatusOK)
	var cc sysdash.ChartConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &cc); err != nil {
		t.Fatal(err)
	}
	if cc.Name != "global-mix" || len(cc.Option) == 0 || cc.Height != widgets.DefaultHeight {
		t.Errorf("chart = %+v", cc)
	}

	serve(h, testutil.NewViewerRequest(http.MethodGet, "/charts/nope", v)).AssertStatus(t, http.StatusNotFound)
}

func TestServePage(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)

	rec := serve(h, testutil.NewViewerRequestWithCSRF(http.MethodGet, "/", testutil.NewViewer()))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `id="chart-world-map"`)
	rec.AssertContains(t, `/dashboard/export/country-mix.png`)
	rec.AssertContains(t, `/assets/js/dashboard.js`)
	rec.AssertContains(t, `echarts.min.js`)
	rec.AssertContains(t, `<option value="China"`)
	if strings.Contains(rec.Body.String(), `href="/dashboard/views"`) {
		t.Error("saved views link should be hidden when views are disabled")
	}
}

func TestExportXLSX(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	rec := serve(h, testutil.NewViewerRequest(http.MethodGet, "/export.xlsx", testutil.NewViewer()))
	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Energy 2020")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("rows = %d, want header + 3", len(rows))
	}
	if rows[0][0] != "Country" {
		t.Errorf("first header = %q", rows[0][0])
	}

	kpis, err := f.GetRows(kpiSheet)
	if err != nil {
		t.Fatalf("GetRows(KPIs): %v", err)
	}
	if kpis[0][1] != models.DefaultCountry {
		t.Errorf("KPI country = %q", kpis[0][1])
	}
	if kpis[4][0] != "Primary energy" {
		t.Errorf("first KPI = %q", kpis[4][0])
	}
}

func TestExportPNG(t *testing.T) {
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)
	v := testutil.NewViewer()

	rec := serve(h, testutil.NewViewerRequest(http.MethodGet, "/export/country-mix.png", v))
	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}

	serve(h, testutil.NewViewerRequest(http.MethodGet, "/export/world-map.png", v)).AssertStatus(t, http.StatusNotFound)
}

func TestParseHex(t *testing.T) {
	c, err := parseHex("#1f77b4")
	if err != nil {
		t.Fatal(err)
	}
	if c.R != 0x1f || c.G != 0x77 || c.B != 0xb4 || c.A != 255 {
		t.Errorf("parseHex = %+v", c)
	}
	for _, bad := range []string{"", "#fff", "#zzzzzz"} {
		if _, err := parseHex(bad); err == nil {
			t.Errorf("parseHex(%q) should fail", bad)
		}
	}
}

func TestViews_DisabledWithoutDatabase(t *testing.T) {
	testutil.MustBootTemplates(t)
	h, _ := newTestHandler(t, testutil.Dataset(t), nil)

	serve(h, testutil.NewViewerRequestWithCSRF(http.MethodGet, "/views", testutil.NewViewer())).
		AssertStatus(t, http.StatusNotFound)
}
