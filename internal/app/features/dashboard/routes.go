// internal/app/features/dashboard/routes.go
package dashboard

import (
	"net/http"

	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a chi.Router with the dashboard routes mounted. The
// router expects the viewer cookie middleware to run first.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.RequireViewer)

	r.Get("/", h.ServePage)
	r.Get("/state", h.ServeState)
	r.Get("/charts/{name}", h.ServeChart)

	r.Post("/year", h.HandleYear)
	r.Post("/country", h.HandleCountry)
	r.Post("/mode", h.HandleMode)
	r.Post("/play", h.HandlePlay)
	r.Post("/resize", h.HandleResize)

	r.Get("/stream", h.ServeStream)

	r.Get("/export.xlsx", h.ExportXLSX)
	r.Get("/export/{name:[a-z-]+}.png", h.ExportPNG)

	r.Route("/views", func(r chi.Router) {
		r.Get("/", h.ServeViews)
		r.Post("/", h.HandleSaveView)
		r.Post("/{id}/apply", h.HandleApplyView)
		r.Post("/{id}/delete", h.HandleDeleteView)
	})
	return r
}
