package home

import (
	"net/http"
	"testing"

	"github.com/dalemusser/strataenergy/internal/testutil"
	"go.uber.org/zap"
)

func TestIndex_RedirectsToDashboard(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"plain", "/", "/dashboard"},
		{"drops query", "/?country=China", "/dashboard"},
	}

	h := NewHandler(zap.NewNop())
	router := Routes(h)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, tt.target))

			rec.AssertStatus(t, http.StatusSeeOther)
			rec.AssertRedirect(t, tt.want)
		})
	}
}
