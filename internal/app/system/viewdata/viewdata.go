// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"sync"

	"github.com/dalemusser/strataenergy/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is shown in the page header when none is configured.
const DefaultSiteName = "Strata Energy"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type dashboardVM struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	vm := dashboardVM{BaseVM: viewdata.New(r)}
//	vm.Title = "Dashboard"
type BaseVM struct {
	SiteName string

	// Viewer context (from the viewer cookie middleware)
	ViewerID string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// Security
	CSRFToken string // CSRF token for forms (use in hidden input field)

	// SavedViews is true when saved views are backed by a database.
	SavedViews bool
}

var (
	mu         sync.RWMutex
	siteName   = DefaultSiteName
	savedViews bool
)

// Init sets the site name and whether saved views are enabled.
// Call this once at startup from bootstrap.
func Init(name string, viewsEnabled bool) {
	mu.Lock()
	defer mu.Unlock()
	if name != "" {
		siteName = name
	}
	savedViews = viewsEnabled
}

// New creates a BaseVM for the request.
func New(r *http.Request) BaseVM {
	mu.RLock()
	defer mu.RUnlock()
	return BaseVM{
		SiteName:    siteName,
		ViewerID:    auth.ViewerID(r),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		SavedViews:  savedViews,
	}
}

// NewWithBack is New plus a back link resolved from the request or
// backDefault.
func NewWithBack(r *http.Request, title, backDefault string) BaseVM {
	vm := New(r)
	vm.Title = title
	vm.BackURL = httpnav.ResolveBackURL(r, backDefault)
	return vm
}
