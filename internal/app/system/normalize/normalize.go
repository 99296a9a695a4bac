// Package normalize provides helper functions for consistent string normalization
// of request input. Use these helpers instead of scattered strings.ToLower
// and strings.TrimSpace calls to ensure consistent behavior.
package normalize

import (
	"strings"

	"github.com/dalemusser/strataenergy/internal/domain/models"
)

// Country trims a country name and collapses inner runs of whitespace.
// Case is kept; dataset country names are case sensitive.
func Country(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ViewMode lowercases and trims a view mode. The second result is false
// for anything other than lines or area.
func ViewMode(s string) (models.ViewMode, bool) {
	return models.ParseViewMode(strings.ToLower(strings.TrimSpace(s)))
}

// Name normalizes a name by trimming whitespace.
// Use text.Fold() for case-insensitive comparison keys.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam normalizes a query parameter by trimming whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
