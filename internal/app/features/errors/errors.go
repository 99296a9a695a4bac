// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"strings"

	"github.com/dalemusser/strataenergy/internal/app/system/jsonutil"
	"github.com/dalemusser/strataenergy/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ErrorLogger wraps the zap logger for handler error logging.
type ErrorLogger struct {
	logger *zap.Logger
}

// NewErrorLogger creates a new ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{logger: logger}
}

// Log logs an error with the given message and error.
func (e *ErrorLogger) Log(r *http.Request, msg string, err error) {
	e.logger.Error(msg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
}

// LogWithFields logs an error with additional fields.
func (e *ErrorLogger) LogWithFields(r *http.Request, msg string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	}, fields...)
	e.logger.Error(msg, allFields...)
}

// JSONInternal logs err and replies with a generic JSON 500. The error
// text is not sent to the client.
func (e *ErrorLogger) JSONInternal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	e.Log(r, msg, err)
	jsonutil.InternalError(w, msg)
}

// Handler renders error pages.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// WantsJSON reports whether the client expects a JSON error body rather
// than an HTML page.
func WantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		jsonutil.NotFound(w, "not found")
		return
	}
	vm := viewdata.New(r)
	vm.Title = "Not Found"

	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "errors/not_found", vm)
}

// InternalError renders the 500 page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		jsonutil.InternalError(w, "internal server error")
		return
	}
	vm := viewdata.New(r)
	vm.Title = "Server Error"

	w.WriteHeader(http.StatusInternalServerError)
	templates.Render(w, r, "errors/internal", vm)
}

// Unavailable renders the 503 page shown while no dataset is loaded.
func (h *Handler) Unavailable(w http.ResponseWriter, r *http.Request) {
	if WantsJSON(r) {
		jsonutil.ServiceUnavailable(w, "dataset unavailable")
		return
	}
	vm := viewdata.New(r)
	vm.Title = "Dataset Unavailable"

	w.WriteHeader(http.StatusServiceUnavailable)
	templates.Render(w, r, "errors/unavailable", vm)
}
