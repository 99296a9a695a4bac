// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	dashboardfeature "github.com/dalemusser/strataenergy/internal/app/features/dashboard"
	energyapifeature "github.com/dalemusser/strataenergy/internal/app/features/energyapi"
	errorsfeature "github.com/dalemusser/strataenergy/internal/app/features/errors"
	healthfeature "github.com/dalemusser/strataenergy/internal/app/features/health"
	homefeature "github.com/dalemusser/strataenergy/internal/app/features/home"
	appresources "github.com/dalemusser/strataenergy/internal/app/resources"
	viewstore "github.com/dalemusser/strataenergy/internal/app/store/views"
	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// requestTimeout bounds every request except the live stream.
const requestTimeout = 30 * time.Second

// streamPath is the long-lived websocket endpoint.
const streamPath = "/dashboard/stream"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Route groups:
//   - Dashboard UI: viewer cookie + CSRF + restrictive CORS
//   - /api/v1: API key auth + no CSRF + permissive CORS
//   - Health probes: no auth
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(timeoutExcept(requestTimeout, streamPath))
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	csrfOpts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("strataenergy_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			if errorsfeature.WantsJSON(req) {
				jsonutil.Forbidden(w, "CSRF token invalid or missing")
				return
			}
			http.Error(w, "CSRF token invalid or missing", http.StatusForbidden)
		})),
	}
	// In dev mode, trust localhost origins for CSRF validation.
	if !secure {
		csrfOpts = append(csrfOpts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.SessionDomain != "" {
		csrfOpts = append(csrfOpts, csrf.Domain(appCfg.SessionDomain))
	}
	csrfProtect := csrf.Protect([]byte(appCfg.CSRFKey), csrfOpts...)
	r.Use(skipAPI(csrfProtect))

	// ─────────────────────────────────────────────────────────────────────────────
	// Routes
	// ─────────────────────────────────────────────────────────────────────────────

	healthHandler := healthfeature.NewHandler(deps.Dataset, deps.MongoClient, taskRunner, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	// /assets/* serves embedded assets (bundled into the binary)
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))

	// Data API (API key auth, no viewer cookie)
	apiHandler := energyapifeature.NewHandler(deps.Dataset, logger)
	r.Mount("/api/v1", energyapifeature.Routes(apiHandler, appCfg.APIKey, appCfg.APIAllowedOrigins, logger))

	// Viewer-facing pages
	r.Group(func(r chi.Router) {
		r.Use(sessionMgr.LoadViewer)

		homeHandler := homefeature.NewHandler(logger)
		r.Get("/", homeHandler.Index)

		var views *viewstore.Store
		if deps.MongoDatabase != nil {
			views = viewstore.New(deps.MongoDatabase)
		}
		dashboardHandler := dashboardfeature.NewHandler(registry, views, widgetOptions(appCfg), errLog, logger)
		r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))
	})

	// 404 catch-all for unmatched routes
	r.NotFound(errorsHandler.NotFound)

	return r, nil
}

// timeoutExcept applies chi's Timeout middleware to every path except
// the listed long-lived ones.
func timeoutExcept(d time.Duration, paths ...string) func(http.Handler) http.Handler {
	timeout := chimw.Timeout(d)
	return func(next http.Handler) http.Handler {
		limited := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			for _, p := range paths {
				if req.URL.Path == p {
					next.ServeHTTP(w, req)
					return
				}
			}
			limited.ServeHTTP(w, req)
		})
	}
}

// skipAPI wraps the CSRF middleware so API key routes bypass it.
func skipAPI(csrfProtect func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		protected := csrfProtect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			protected.ServeHTTP(w, req)
		})
	}
}
