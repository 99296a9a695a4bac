// internal/app/features/dashboard/views.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	errorsfeature "github.com/dalemusser/strataenergy/internal/app/features/errors"
	viewstore "github.com/dalemusser/strataenergy/internal/app/store/views"
	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/dalemusser/strataenergy/internal/app/system/htmlsanitize"
	"github.com/dalemusser/strataenergy/internal/app/system/inputval"
	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/strataenergy/internal/app/system/timeouts"
	"github.com/dalemusser/strataenergy/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeViews handles GET /dashboard/views.
func (h *Handler) ServeViews(w http.ResponseWriter, r *http.Request) {
	if h.views == nil {
		h.errs.NotFound(w, r)
		return
	}
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	vm := h.viewsVM(r, c.State().Year, c.State().Country, string(c.State().ViewMode))
	if !h.loadViews(w, r, &vm) {
		return
	}
	templates.Render(w, r, "dashboard/views", vm)
}

// HandleSaveView handles POST /dashboard/views. The viewer's current
// selection is stored under the posted name. JSON callers get 201 with the
// saved view instead of a redirect.
func (h *Handler) HandleSaveView(w http.ResponseWriter, r *http.Request) {
	wantsJSON := errorsfeature.WantsJSON(r)
	if h.views == nil {
		h.errs.NotFound(w, r)
		return
	}
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}
	state := c.State()

	in := saveViewInput{
		Name: htmlsanitize.ViewName(r.FormValue("name")),
		Note: htmlsanitize.Sanitize(r.FormValue("note")),
	}
	vm := h.viewsVM(r, state.Year, state.Country, string(state.ViewMode))
	vm.Name = in.Name
	vm.Note = in.Note

	if res := inputval.Validate(in); res.HasErrors() {
		if wantsJSON {
			jsonutil.ValidationError(w, res.Fields())
			return
		}
		vm.Error = res.First()
		h.renderViewsError(w, r, vm, http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	view, err := h.views.Create(ctx, viewstore.CreateInput{
		ViewerID: auth.ViewerID(r),
		Name:     in.Name,
		Note:     in.Note,
		Year:     state.Year,
		Country:  state.Country,
		ViewMode: state.ViewMode,
	})
	switch {
	case errors.Is(err, viewstore.ErrDuplicateName):
		h.viewConflict(w, r, vm, wantsJSON, "You already have a view with this name.")
		return
	case errors.Is(err, viewstore.ErrLimitReached):
		h.viewConflict(w, r, vm, wantsJSON, "You have reached the limit of saved views. Delete one to save another.")
		return
	case err != nil && wantsJSON:
		h.errLog.JSONInternal(w, r, "failed to save view", err)
		return
	case err != nil:
		h.errLog.Log(r, "failed to save view", err)
		h.errs.InternalError(w, r)
		return
	}

	h.logger.Info("view saved",
		zap.String("viewer", auth.ViewerID(r)),
		zap.Int("year", state.Year),
		zap.String("country", state.Country))
	if wantsJSON {
		jsonutil.Created(w, view)
		return
	}
	http.Redirect(w, r, "/dashboard/views", http.StatusSeeOther)
}

func (h *Handler) viewConflict(w http.ResponseWriter, r *http.Request, vm ViewsVM, wantsJSON bool, msg string) {
	if wantsJSON {
		jsonutil.Conflict(w, msg)
		return
	}
	vm.Error = msg
	h.renderViewsError(w, r, vm, http.StatusConflict)
}

// HandleApplyView handles POST /dashboard/views/{id}/apply.
func (h *Handler) HandleApplyView(w http.ResponseWriter, r *http.Request) {
	if h.views == nil {
		h.errs.NotFound(w, r)
		return
	}
	id, ok := h.viewID(w, r)
	if !ok {
		return
	}
	c, ok := h.coordinator(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	viewerID := auth.ViewerID(r)
	v, err := h.views.Get(ctx, id, viewerID)
	if errors.Is(err, viewstore.ErrNotFound) {
		h.errs.NotFound(w, r)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to load view", err)
		h.errs.InternalError(w, r)
		return
	}

	applySelection(c, v.Year, v.Country, v.ViewMode)
	if err := h.views.Touch(ctx, id, viewerID); err != nil {
		h.logger.Warn("failed to touch saved view", zap.Error(err))
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleDeleteView handles POST /dashboard/views/{id}/delete.
func (h *Handler) HandleDeleteView(w http.ResponseWriter, r *http.Request) {
	if h.views == nil {
		h.errs.NotFound(w, r)
		return
	}
	id, ok := h.viewID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.views.Delete(ctx, id, auth.ViewerID(r))
	if errors.Is(err, viewstore.ErrNotFound) {
		h.errs.NotFound(w, r)
		return
	}
	if err != nil {
		h.errLog.Log(r, "failed to delete view", err)
		h.errs.InternalError(w, r)
		return
	}
	if errorsfeature.WantsJSON(r) {
		jsonutil.NoContent(w)
		return
	}
	http.Redirect(w, r, "/dashboard/views", http.StatusSeeOther)
}

func (h *Handler) viewID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	in := viewIDInput{ID: chi.URLParam(r, "id")}
	if res := inputval.Validate(in); res.HasErrors() {
		h.errs.NotFound(w, r)
		return primitive.NilObjectID, false
	}
	id, _ := primitive.ObjectIDFromHex(in.ID)
	return id, true
}

func (h *Handler) viewsVM(r *http.Request, year int, country, mode string) ViewsVM {
	return ViewsVM{
		BaseVM:   viewdata.NewWithBack(r, "Saved views", "/dashboard"),
		Year:     year,
		Country:  country,
		ViewMode: mode,
	}
}

// loadViews fills vm.Views or writes an error page.
func (h *Handler) loadViews(w http.ResponseWriter, r *http.Request, vm *ViewsVM) bool {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	views, err := h.views.ListForViewer(ctx, auth.ViewerID(r), viewstore.MaxPerViewer, 1)
	if err != nil {
		h.errLog.Log(r, "failed to list views", err)
		h.errs.InternalError(w, r)
		return false
	}
	vm.Views = make([]ViewRowVM, len(views))
	for i, v := range views {
		vm.Views[i] = ViewRowVM{
			ID:        v.ID.Hex(),
			Name:      v.Name,
			Note:      htmlsanitize.SanitizeToHTML(v.Note),
			Year:      v.Year,
			Country:   v.Country,
			ViewMode:  string(v.ViewMode),
			UpdatedAt: v.UpdatedAt,
		}
	}
	return true
}

func (h *Handler) renderViewsError(w http.ResponseWriter, r *http.Request, vm ViewsVM, status int) {
	if !h.loadViews(w, r, &vm) {
		return
	}
	w.WriteHeader(status)
	templates.Render(w, r, "dashboard/views", vm)
}
