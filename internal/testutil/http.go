package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/google/uuid"
)

// TestViewer represents a dashboard viewer for testing HTTP handlers.
type TestViewer struct {
	ID string
}

// NewViewer returns a TestViewer with a fresh id.
func NewViewer() TestViewer {
	return TestViewer{ID: uuid.NewString()}
}

// WithViewer adds a viewer to the request context for testing handlers.
// This bypasses the viewer cookie middleware and injects the viewer directly.
func WithViewer(r *http.Request, v TestViewer) *http.Request {
	return auth.WithTestViewer(r, &auth.Viewer{
		ID:        v.ID,
		CreatedAt: time.Now().UTC(),
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewViewerRequest creates an HTTP request with a viewer in context.
func NewViewerRequest(method, target string, v TestViewer) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return WithViewer(req, v)
}

// NewViewerFormRequest creates a form-encoded POST with a viewer in context.
func NewViewerFormRequest(target, form string, v TestViewer) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return WithViewer(req, v)
}

// ResponseRecorder wraps httptest.ResponseRecorder with helper methods.
type ResponseRecorder struct {
	*httptest.ResponseRecorder
}

// NewRecorder creates a new ResponseRecorder.
func NewRecorder() *ResponseRecorder {
	return &ResponseRecorder{httptest.NewRecorder()}
}

// AssertStatus checks the response status code.
func (r *ResponseRecorder) AssertStatus(t interface{ Errorf(string, ...any) }, expected int) {
	if r.Code != expected {
		t.Errorf("status code: got %d, want %d", r.Code, expected)
	}
}

// AssertRedirect checks for a redirect to the expected location.
func (r *ResponseRecorder) AssertRedirect(t interface{ Errorf(string, ...any) }, expectedLocation string) {
	if r.Code != http.StatusSeeOther && r.Code != http.StatusFound && r.Code != http.StatusMovedPermanently {
		t.Errorf("expected redirect status, got %d", r.Code)
	}
	location := r.Header().Get("Location")
	if location != expectedLocation {
		t.Errorf("redirect location: got %q, want %q", location, expectedLocation)
	}
}

// AssertContains checks if the response body contains the expected string.
func (r *ResponseRecorder) AssertContains(t interface{ Errorf(string, ...any) }, expected string) {
	body := r.Body.String()
	if !strings.Contains(body, expected) {
		t.Errorf("response body does not contain %q", expected)
	}
}
