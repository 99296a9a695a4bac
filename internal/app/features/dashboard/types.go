// internal/app/features/dashboard/types.go
package dashboard

import (
	"html/template"
	"time"

	sysdash "github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/viewdata"
)

// PageVM is the view model for the dashboard page.
type PageVM struct {
	viewdata.BaseVM

	Year     int
	MinYear  int
	MaxYear  int
	Country  string
	ViewMode string
	Playing  bool

	Countries []string
	KPIs      []sysdash.KPI
	Charts    []ChartPanelVM

	EChartsJS  string
	WorldMapJS string
}

// ChartPanelVM is one chart container on the page.
type ChartPanelVM struct {
	Name  string
	Title string
	Wide  bool
	PNG   bool // a PNG snapshot can be exported
}

// ViewsVM is the view model for the saved views page.
type ViewsVM struct {
	viewdata.BaseVM

	Views []ViewRowVM
	Error string

	// Current selection, offered as the defaults for a new view.
	Year     int
	Country  string
	ViewMode string

	// Form values kept after a failed save.
	Name string
	Note string
}

// ViewRowVM is one saved view in the list.
type ViewRowVM struct {
	ID        string
	Name      string
	Note      template.HTML
	Year      int
	Country   string
	ViewMode  string
	UpdatedAt time.Time
}

// yearInput is the body of POST /dashboard/year.
type yearInput struct {
	Year int `json:"year" validate:"year" label:"Year"`
}

// countryInput is the body of POST /dashboard/country.
type countryInput struct {
	Country string `json:"country" validate:"required,max=80" label:"Country"`
}

// modeInput is the body of POST /dashboard/mode.
type modeInput struct {
	Mode string `json:"mode" validate:"required,viewmode" label:"View mode"`
}

// resizeInput is the body of POST /dashboard/resize. An empty widget
// resizes every chart.
type resizeInput struct {
	Widget string `json:"widget" validate:"max=40" label:"Widget"`
	Width  string `json:"width" validate:"required,max=16" label:"Width"`
	Height string `json:"height" validate:"required,max=16" label:"Height"`
}

// saveViewInput is the form posted to /dashboard/views.
type saveViewInput struct {
	Name string `json:"name" validate:"required,max=80" label:"Name"`
	Note string `json:"note" validate:"max=2000" label:"Note"`
}

// viewIDInput validates the {id} URL parameter.
type viewIDInput struct {
	ID string `json:"id" validate:"required,objectid" label:"View"`
}
