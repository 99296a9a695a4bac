// Package energyapi serves the loaded energy dataset and headline KPIs as
// JSON for scripts and other services.
//
// Endpoints (protected with an API key):
//   - GET /api/v1/kpis?country=&year=  - the four KPI cards for one selection
//   - GET /api/v1/records?country=&year= - raw rows filtered by country, year or both
//
// Neither endpoint touches a viewer's dashboard state.
package energyapi

import (
	"net/http"
	"strconv"
	"strings"

	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/strataenergy/internal/app/system/normalize"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"go.uber.org/zap"
)

// MaxRecords caps the rows returned by one /records call.
const MaxRecords = 5000

// Handler handles the data API requests.
type Handler struct {
	holder *dataset.Holder
	logger *zap.Logger
}

// NewHandler creates a new energyapi handler.
func NewHandler(holder *dataset.Holder, logger *zap.Logger) *Handler {
	return &Handler{
		holder: holder,
		logger: logger,
	}
}

// KPIResponse is the body of GET /kpis.
type KPIResponse struct {
	Country string        `json:"country"`
	Year    int           `json:"year"`
	KPIs    []sysdash.KPI `json:"kpis"`
}

// RecordsResponse is the body of GET /records.
type RecordsResponse struct {
	Count     int                   `json:"count"`
	Truncated bool                  `json:"truncated,omitempty"`
	Records   []models.EnergyRecord `json:"records"`
}

// KPIs handles GET /kpis. country defaults to World and year to the
// latest year in the data; other years snap to the nearest one present.
//
// Response (200 OK):
//
//	{
//	    "country": "World",
//	    "year": 2022,
//	    "kpis": [{"key": "primary_energy_consumption", "value": "...", "change": "+1.2%"}, ...]
//	}
func (h *Handler) KPIs(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	country := normalize.Country(q.Get("country"))
	if country == "" {
		country = models.DefaultCountry
	}
	if !ds.HasCountry(country) {
		jsonutil.NotFound(w, "unknown country")
		return
	}

	year := ds.MaxYear()
	if raw := normalize.QueryParam(q.Get("year")); raw != "" {
		y, err := parseYear(raw)
		if err != nil {
			jsonutil.BadRequest(w, "year must be a number")
			return
		}
		year = ds.NearestYear(y)
	}

	jsonutil.OK(w, KPIResponse{
		Country: country,
		Year:    year,
		KPIs:    sysdash.ComputeKPIs(ds, country, year),
	})
}

// Records handles GET /records. At least one of country or year is
// required so a single call never dumps the whole table.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.dataset(w)
	if !ok {
		return
	}

	q := r.URL.Query()
	country := normalize.Country(q.Get("country"))
	rawYear := normalize.QueryParam(q.Get("year"))
	if country == "" && rawYear == "" {
		jsonutil.BadRequest(w, "country or year is required")
		return
	}

	var recs []models.EnergyRecord
	switch {
	case rawYear != "":
		y, err := parseYear(rawYear)
		if err != nil {
			jsonutil.BadRequest(w, "year must be a number")
			return
		}
		if country != "" {
			if rec, found := ds.Lookup(country, y); found {
				recs = []models.EnergyRecord{rec}
			}
		} else {
			recs = ds.ForYear(y)
		}
	default:
		recs = ds.ForCountry(country)
	}

	resp := RecordsResponse{Records: recs}
	if len(resp.Records) > MaxRecords {
		resp.Records = resp.Records[:MaxRecords]
		resp.Truncated = true
	}
	if resp.Records == nil {
		resp.Records = []models.EnergyRecord{}
	}
	resp.Count = len(resp.Records)

	h.logger.Debug("api records",
		zap.String("country", country),
		zap.String("year", rawYear),
		zap.Int("count", resp.Count),
	)
	jsonutil.OK(w, resp)
}

func (h *Handler) dataset(w http.ResponseWriter) (*dataset.Dataset, bool) {
	ds := h.holder.Get()
	if ds == nil {
		jsonutil.ServiceUnavailable(w, "dataset unavailable")
		return nil, false
	}
	return ds, true
}

func parseYear(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
