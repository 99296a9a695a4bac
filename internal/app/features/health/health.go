// internal/app/features/health/health.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/tasks"
	"github.com/dalemusser/strataenergy/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// JobLister reports background job status. *tasks.Runner satisfies it.
type JobLister interface {
	Status() []tasks.JobStatus
}

// Handler provides health check endpoints.
type Handler struct {
	holder      *dataset.Holder
	mongoClient *mongo.Client // nil when saved views are disabled
	jobs        JobLister     // may be nil
	logger      *zap.Logger
}

// NewHandler creates a new health check Handler. mongoClient and jobs may
// be nil.
func NewHandler(holder *dataset.Holder, mongoClient *mongo.Client, jobs JobLister, logger *zap.Logger) *Handler {
	return &Handler{
		holder:      holder,
		mongoClient: mongoClient,
		jobs:        jobs,
		logger:      logger,
	}
}

// DatasetInfo describes the loaded dataset.
type DatasetInfo struct {
	Records   int `json:"records"`
	Countries int `json:"countries"`
	MinYear   int `json:"min_year"`
	MaxYear   int `json:"max_year"`
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
	Dataset  *DatasetInfo      `json:"dataset,omitempty"`
	Jobs     []tasks.JobStatus `json:"jobs,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /ready and /livez endpoints directly on the root router.
// This is the standard convention for Kubernetes probes:
//   - /ready (or /readyz) - readiness probe
//   - /livez - liveness probe
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// Check reports the dataset, the database when one is configured, and
// the background jobs.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	if ds := h.holder.Get(); ds != nil {
		resp.Services["dataset"] = "ok"
		resp.Dataset = &DatasetInfo{
			Records:   ds.Len(),
			Countries: len(ds.Countries()),
			MinYear:   ds.MinYear(),
			MaxYear:   ds.MaxYear(),
		}
	} else {
		resp.Status = "degraded"
		resp.Services["dataset"] = "unavailable"
	}

	if h.mongoClient != nil {
		if err := h.ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Services["mongodb"] = "unavailable"
			h.logger.Warn("health check: mongodb ping failed", zap.Error(err))
		} else {
			resp.Services["mongodb"] = "ok"
		}
	}

	if h.jobs != nil {
		resp.Jobs = h.jobs.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

// Ready reports whether the dashboard can serve charts: a dataset is
// loaded and the database, if configured, answers.
// Used by Kubernetes readiness probes.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.holder.Get() == nil {
		h.logger.Warn("readiness check failed: dataset not loaded")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	if h.mongoClient != nil {
		if err := h.ping(r.Context()); err != nil {
			h.logger.Warn("readiness check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready"}`))
			return
		}
	}

	w.Write([]byte(`{"status":"ready"}`))
}

// Live checks if the service is alive.
// Used by Kubernetes liveness probes.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}

func (h *Handler) ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	return h.mongoClient.Ping(ctx, readpref.Primary())
}
