package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		key      string
		header   string
		wantCode int
	}{
		{"valid key", "k1", "Bearer k1", http.StatusOK},
		{"scheme is case insensitive", "k1", "bearer k1", http.StatusOK},
		{"wrong key", "k1", "Bearer k2", http.StatusUnauthorized},
		{"missing header", "k1", "", http.StatusUnauthorized},
		{"basic scheme", "k1", "Basic k1", http.StatusUnauthorized},
		{"no key configured", "", "Bearer anything", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := APIKeyAuth(tt.key, zap.NewNop())(ok)
			req := httptest.NewRequest("GET", "/api/v1/kpis", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusUnauthorized {
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
			}
		})
	}
}
