package energyapi

import (
	"net/http"

	"github.com/dalemusser/strataenergy/internal/app/system/apicors"
	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Routes returns a router with the data API endpoints.
//
// When mounted at /api/v1:
//   - GET /api/v1/kpis
//   - GET /api/v1/records
//
// Authentication is via API key (Bearer token in Authorization header).
// CORS allows any origin unless allowedOrigins is set.
func Routes(h *Handler, apiKey string, allowedOrigins []string, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(apicors.Middleware(allowedOrigins...))
	r.Use(auth.APIKeyAuth(apiKey, logger))

	r.Get("/kpis", h.KPIs)
	r.Get("/records", h.Records)

	return r
}
