// Package widgets turns slices of the energy dataset into go-echarts chart
// configurations. Every widget is a pure function of (dataset, selection):
// Update rebuilds the chart from scratch, so calling it twice with the same
// selection yields the same configuration.
package widgets

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

// Default canvas size for a widget that has never been resized.
const (
	DefaultWidth  = "100%"
	DefaultHeight = "360px"
)

// ErrNotUpdated is returned by Config before the first successful Update.
var ErrNotUpdated = errors.New("widget has not been updated")

var sizePattern = regexp.MustCompile(`^[0-9]{1,5}(\.[0-9]{1,2})?(px|%|vh|vw|em|rem)$`)

// ValidSize reports whether s is a CSS length a chart container accepts,
// such as "360px" or "100%".
func ValidSize(s string) bool {
	return sizePattern.MatchString(s)
}

// Selection is the slice of dashboard state a widget renders from.
type Selection struct {
	Year     int
	Country  string
	ViewMode models.ViewMode
}

// Chart is the subset of a go-echarts chart the dashboard needs.
type Chart interface {
	render.Renderer
	Validate()
	JSON() map[string]interface{}
}

// Widget is one chart on the dashboard.
type Widget interface {
	Name() string
	Title() string
	Update(sel Selection) error
	Resize(width, height string)
	Size() (width, height string)
	Chart() Chart
	// Config returns the encoded echarts option from the last Update. The
	// bytes are never modified afterwards.
	Config() (json.RawMessage, error)
}

// Options carries construction-time inputs shared by several widgets.
type Options struct {
	// Tracked is the fixed country list used by comparison widgets.
	Tracked []string
	// AssetsHost overrides the go-echarts asset host.
	AssetsHost string
}

// DefaultTracked is used when no tracked country list is configured.
var DefaultTracked = []string{
	"United States",
	"China",
	"India",
	"Germany",
	"Brazil",
	"Japan",
	"Russia",
}

type buildFunc func(ds *dataset.Dataset, sel Selection, init opts.Initialization) (Chart, error)

// base implements Widget around a build function.
type base struct {
	name  string
	title string
	ds    *dataset.Dataset
	build buildFunc

	width      string
	height     string
	assetsHost string

	chart  Chart
	config json.RawMessage
}

func newBase(name, title string, ds *dataset.Dataset, o Options, build buildFunc) *base {
	return &base{
		name:       name,
		title:      title,
		ds:         ds,
		build:      build,
		width:      DefaultWidth,
		height:     DefaultHeight,
		assetsHost: o.AssetsHost,
	}
}

func (b *base) Name() string  { return b.name }
func (b *base) Title() string { return b.title }
func (b *base) Chart() Chart  { return b.chart }

// Update rebuilds the chart and encodes its option. Validate mutates the
// chart, so it runs here and never on the read path.
func (b *base) Update(sel Selection) error {
	c, err := b.build(b.ds, sel, b.initialization())
	if err != nil {
		return fmt.Errorf("%s: %w", b.name, err)
	}
	c.Validate()
	raw, err := json.Marshal(c.JSON())
	if err != nil {
		return fmt.Errorf("%s: encode option: %w", b.name, err)
	}
	b.chart = c
	b.config = raw
	return nil
}

// Resize records the canvas size. The echarts option carries no size, so
// the chart is not rebuilt; the next Update uses the size for its
// Initialization.
func (b *base) Resize(width, height string) {
	if width != "" {
		b.width = width
	}
	if height != "" {
		b.height = height
	}
}

func (b *base) Size() (width, height string) { return b.width, b.height }

func (b *base) Config() (json.RawMessage, error) {
	if b.config == nil {
		return nil, ErrNotUpdated
	}
	return b.config, nil
}

func (b *base) initialization() opts.Initialization {
	return opts.Initialization{
		Width:      b.width,
		Height:     b.height,
		ChartID:    b.name,
		PageTitle:  b.title,
		AssetsHost: b.assetsHost,
	}
}

// Names lists every widget name in dashboard order.
var Names = []string{
	"world-map",
	"consumption-trend",
	"energy-mix",
	"gdp-energy",
	"global-mix",
	"renewables-share",
	"global-mix-trend",
	"top-consumers",
	"country-mix",
	"energy-intensity",
}

// All builds the full widget set for ds in dashboard order.
func All(ds *dataset.Dataset, o Options) []Widget {
	if len(o.Tracked) == 0 {
		o.Tracked = DefaultTracked
	}
	return []Widget{
		NewWorldMap(ds, o),
		NewConsumptionTrend(ds, o),
		NewEnergyMix(ds, o),
		NewGDPEnergy(ds, o),
		NewGlobalMix(ds, o),
		NewRenewablesShare(ds, o),
		NewGlobalMixTrend(ds, o),
		NewTopConsumers(ds, o),
		NewCountryMix(ds, o),
		NewEnergyIntensity(ds, o),
	}
}
