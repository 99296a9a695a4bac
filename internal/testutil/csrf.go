package testutil

import (
	"context"
	"net/http"
)

// csrfTokenKey matches the key used by gorilla/csrf internally.
// This allows us to inject a mock token for testing.
const csrfTokenKey = "gorilla.csrf.Token"

// WithCSRFToken adds a mock CSRF token to the request context.
// This prevents empty tokens when handlers call csrf.Token(r) or render
// templates that embed csrf.TemplateField.
//
// Usage:
//
//	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
//	req = testutil.WithCSRFToken(req)
//	handler.ServeHTTP(rec, req)
func WithCSRFToken(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenKey, "test-csrf-token-12345")
	return r.WithContext(ctx)
}

// NewViewerRequestWithCSRF creates an HTTP request with both a viewer
// and CSRF token in context. This is the recommended way to create requests
// for testing handlers that render forms.
func NewViewerRequestWithCSRF(method, target string, v TestViewer) *http.Request {
	req := NewViewerRequest(method, target, v)
	return WithCSRFToken(req)
}
