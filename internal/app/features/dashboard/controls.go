// internal/app/features/dashboard/controls.go
package dashboard

import (
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/inputval"
	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/strataenergy/internal/app/system/normalize"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ServeState handles GET /dashboard/state.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	h.reply(w, c.Snapshot())
}

// ServeChart handles GET /dashboard/charts/{name}.
func (h *Handler) ServeChart(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	cc, err := c.Chart(chi.URLParam(r, "name"))
	if errors.Is(err, sysdash.ErrUnknownWidget) {
		jsonutil.NotFound(w, "unknown chart")
		return
	}
	if err != nil {
		h.errLog.JSONInternal(w, r, "failed to build chart", err)
		return
	}
	jsonutil.OK(w, cc)
}

// HandleYear handles POST /dashboard/year. Years outside the data are
// clamped to the nearest bound.
func (h *Handler) HandleYear(w http.ResponseWriter, r *http.Request) {
	var in yearInput
	if isJSON(r) {
		if err := jsonutil.Decode(r, &in); err != nil {
			jsonutil.BadRequest(w, "invalid JSON body")
			return
		}
	} else {
		y, err := strconv.Atoi(strings.TrimSpace(r.FormValue("year")))
		if err != nil {
			jsonutil.BadRequest(w, "Year must be a number.")
			return
		}
		in.Year = y
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	h.reply(w, c.SetYear(in.Year))
}

// HandleCountry handles POST /dashboard/country. Unknown countries select
// the default aggregate.
func (h *Handler) HandleCountry(w http.ResponseWriter, r *http.Request) {
	var in countryInput
	if isJSON(r) {
		if err := jsonutil.Decode(r, &in); err != nil {
			jsonutil.BadRequest(w, "invalid JSON body")
			return
		}
	} else {
		in.Country = r.FormValue("country")
	}
	in.Country = normalize.Country(in.Country)
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	snap := c.SetCountry(in.Country)
	if snap.State.Country != in.Country {
		h.logger.Debug("unknown country, using default",
			zap.String("requested", in.Country),
			zap.String("selected", snap.State.Country))
	}
	h.reply(w, snap)
}

// HandleMode handles POST /dashboard/mode.
func (h *Handler) HandleMode(w http.ResponseWriter, r *http.Request) {
	var in modeInput
	if isJSON(r) {
		if err := jsonutil.Decode(r, &in); err != nil {
			jsonutil.BadRequest(w, "invalid JSON body")
			return
		}
	} else {
		in.Mode = r.FormValue("mode")
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}
	mode, _ := normalize.ViewMode(in.Mode)

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	snap, err := c.SetViewMode(mode)
	if err != nil {
		jsonutil.BadRequest(w, err.Error())
		return
	}
	h.reply(w, snap)
}

// HandlePlay handles POST /dashboard/play. A "playing" value of true or
// false sets the animation; without one the animation is toggled.
func (h *Handler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	raw := strings.TrimSpace(r.FormValue("playing"))
	if raw == "" {
		h.reply(w, c.ToggleAnimation())
		return
	}
	playing, err := strconv.ParseBool(raw)
	if err != nil {
		jsonutil.BadRequest(w, "Playing must be true or false.")
		return
	}
	h.reply(w, c.SetPlaying(playing))
}

// HandleResize handles POST /dashboard/resize.
func (h *Handler) HandleResize(w http.ResponseWriter, r *http.Request) {
	var in resizeInput
	if isJSON(r) {
		if err := jsonutil.Decode(r, &in); err != nil {
			jsonutil.BadRequest(w, "invalid JSON body")
			return
		}
	} else {
		in.Widget = strings.TrimSpace(r.FormValue("widget"))
		in.Width = strings.TrimSpace(r.FormValue("width"))
		in.Height = strings.TrimSpace(r.FormValue("height"))
	}
	if res := inputval.Validate(in); res.HasErrors() {
		jsonutil.BadRequest(w, res.First())
		return
	}

	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	snap, err := c.Resize(in.Widget, in.Width, in.Height)
	if errors.Is(err, sysdash.ErrUnknownWidget) {
		jsonutil.NotFound(w, "unknown chart")
		return
	}
	if errors.Is(err, sysdash.ErrInvalidSize) {
		jsonutil.BadRequest(w, "Width and height must be CSS lengths such as 360px or 100%.")
		return
	}
	if err != nil {
		h.errLog.JSONInternal(w, r, "failed to resize chart", err)
		return
	}
	h.logger.Debug("chart resized",
		zap.String("viewer", auth.ViewerID(r)),
		zap.String("widget", in.Widget),
		zap.String("width", in.Width),
		zap.String("height", in.Height))
	h.reply(w, snap)
}

// applySelection moves c to a saved selection.
func applySelection(c *sysdash.Coordinator, year int, country string, mode models.ViewMode) sysdash.Snapshot {
	c.SetCountry(country)
	if _, err := c.SetViewMode(mode); err != nil {
		_, _ = c.SetViewMode(models.ViewLines)
	}
	return c.SetYear(year)
}

func isJSON(r *http.Request) bool {
	ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && ct == "application/json"
}
