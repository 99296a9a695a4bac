// Package dashboard holds the per-viewer dashboard state and fans every
// state change out to the chart widgets.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/widgets"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultInterval is how often the animation advances the year.
const DefaultInterval = 800 * time.Millisecond

var (
	// ErrNoDataset is returned when the dashboard is built without data.
	ErrNoDataset = errors.New("dataset unavailable")
	// ErrUnknownWidget is returned for a widget name that is not registered.
	ErrUnknownWidget = errors.New("unknown widget")
	// ErrInvalidViewMode is returned for a view mode other than lines or area.
	ErrInvalidViewMode = errors.New("invalid view mode")
	// ErrInvalidSize is returned by Resize for a width or height that is not
	// a CSS length.
	ErrInvalidSize = errors.New("invalid chart size")
)

// Options configures a Coordinator.
type Options struct {
	// DefaultCountry is selected initially and whenever an unknown country
	// is requested.
	DefaultCountry string
	// Interval is the animation tick. Zero means DefaultInterval.
	Interval time.Duration
	// Widgets is passed to every widget constructor.
	Widgets widgets.Options
	Logger  *zap.Logger
}

// ChartConfig is one widget's declarative chart option plus the size of
// the container it is drawn in.
type ChartConfig struct {
	Name   string          `json:"name"`
	Title  string          `json:"title"`
	Width  string          `json:"width"`
	Height string          `json:"height"`
	Option json.RawMessage `json:"option,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Snapshot is everything a client needs to draw the dashboard.
type Snapshot struct {
	State   models.DashboardState `json:"state"`
	MinYear int                   `json:"min_year"`
	MaxYear int                   `json:"max_year"`
	KPIs    []KPI                 `json:"kpis"`
	Charts  []ChartConfig         `json:"charts"`
}

// Coordinator owns one viewer's dashboard. All methods are safe for
// concurrent use; HTTP handlers and the animation goroutine share it.
type Coordinator struct {
	mu sync.Mutex

	logger         *zap.Logger
	ds             *dataset.Dataset
	defaultCountry string
	interval       time.Duration
	widgetOpts     widgets.Options

	state   models.DashboardState
	kpis    []KPI
	order   []widgets.Widget
	byName  map[string]widgets.Widget
	stopAni context.CancelFunc

	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

// New builds a coordinator over ds with the full widget set registered.
// The initial year is the latest year in the data.
func New(ds *dataset.Dataset, o Options) (*Coordinator, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	logger := o.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	def := o.DefaultCountry
	if def == "" {
		def = models.DefaultCountry
	}
	interval := o.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	c := &Coordinator{
		logger:         logger,
		ds:             ds,
		defaultCountry: def,
		interval:       interval,
		widgetOpts:     o.Widgets,
		byName:         make(map[string]widgets.Widget),
		subs:           make(map[int]chan Snapshot),
		state: models.DashboardState{
			Year:     ds.MaxYear(),
			Country:  def,
			ViewMode: models.ViewLines,
		},
	}
	for _, w := range widgets.All(ds, o.Widgets) {
		c.register(w)
	}
	c.refresh()
	return c, nil
}

// Register adds w after the existing widgets and brings it up to date.
// A widget with the same name replaces the earlier one in place.
func (c *Coordinator) Register(w widgets.Widget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.register(w)
	c.updateWidget(w, c.selection())
	c.publish()
}

func (c *Coordinator) register(w widgets.Widget) {
	if _, ok := c.byName[w.Name()]; ok {
		for i, old := range c.order {
			if old.Name() == w.Name() {
				c.order[i] = w
			}
		}
	} else {
		c.order = append(c.order, w)
	}
	c.byName[w.Name()] = w
}

// Widgets returns the registered widgets in registration order.
func (c *Coordinator) Widgets() []widgets.Widget {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]widgets.Widget, len(c.order))
	copy(out, c.order)
	return out
}

// State returns the current state.
func (c *Coordinator) State() models.DashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dataset returns the dataset the widgets currently render from.
func (c *Coordinator) Dataset() *dataset.Dataset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ds
}

// KPIs returns the cards computed at the last state change.
func (c *Coordinator) KPIs() []KPI {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]KPI(nil), c.kpis...)
}

// UpdateKPIs recomputes the cards for the current country and year without
// touching the widgets.
func (c *Coordinator) UpdateKPIs() []KPI {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kpis = ComputeKPIs(c.ds, c.state.Country, c.state.Year)
	return append([]KPI(nil), c.kpis...)
}

// SetYear clamps year to the data range and updates every widget.
func (c *Coordinator) SetYear(year int) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Year = c.ds.ClampYear(year)
	return c.refresh()
}

// SetCountry selects country, falling back to the default when the data
// has no such country.
func (c *Coordinator) SetCountry(country string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Country = c.resolveCountry(country)
	return c.refresh()
}

func (c *Coordinator) resolveCountry(country string) string {
	if country != "" && c.ds.HasCountry(country) {
		return country
	}
	return c.defaultCountry
}

// SetViewMode switches the time-series widgets between lines and stacked
// areas.
func (c *Coordinator) SetViewMode(mode models.ViewMode) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode != models.ViewLines && mode != models.ViewArea {
		return c.snapshot(), fmt.Errorf("%w: %q", ErrInvalidViewMode, mode)
	}
	c.state.ViewMode = mode
	return c.refresh(), nil
}

// Step advances the year by one, wrapping from the last year back to the
// first.
func (c *Coordinator) Step() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step()
}

func (c *Coordinator) step() Snapshot {
	next := c.state.Year + 1
	if next > c.ds.MaxYear() {
		next = c.ds.MinYear()
	}
	c.state.Year = next
	return c.refresh()
}

// ToggleAnimation starts the animation when stopped and stops it when
// running.
func (c *Coordinator) ToggleAnimation() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPlaying(!c.state.Playing)
	return c.publish()
}

// SetPlaying starts or stops the animation.
func (c *Coordinator) SetPlaying(playing bool) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if playing != c.state.Playing {
		c.setPlaying(playing)
	}
	return c.publish()
}

func (c *Coordinator) setPlaying(playing bool) {
	if c.stopAni != nil {
		c.stopAni()
		c.stopAni = nil
	}
	c.state.Playing = playing && !c.closed
	if c.state.Playing {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopAni = cancel
		go c.animate(ctx, c.interval)
	}
}

// Resize changes the canvas of the named widget, or of every widget
// when name is empty. An empty width or height keeps the current one.
// Chart data is left as it is.
func (c *Coordinator) Resize(name, width, height string) (Snapshot, error) {
	for _, v := range []string{width, height} {
		if v != "" && !widgets.ValidSize(v) {
			return c.Snapshot(), fmt.Errorf("%w: %q", ErrInvalidSize, v)
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		for _, w := range c.order {
			w.Resize(width, height)
		}
		return c.publish(), nil
	}
	w, ok := c.byName[name]
	if !ok {
		return c.snapshot(), fmt.Errorf("%w: %q", ErrUnknownWidget, name)
	}
	w.Resize(width, height)
	return c.publish(), nil
}

// SetDataset swaps in a reloaded dataset. Widgets are rebuilt over the
// new data, keeping their sizes, and the state is re-clamped.
func (c *Coordinator) SetDataset(ds *dataset.Dataset) {
	if ds == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ds = ds
	fresh := widgets.All(ds, c.widgetOpts)
	for _, w := range fresh {
		if old, ok := c.byName[w.Name()]; ok {
			w.Resize(old.Size())
		}
		c.register(w)
	}
	c.state.Year = ds.ClampYear(c.state.Year)
	c.state.Country = c.resolveCountry(c.state.Country)
	c.refresh()
}

// Chart returns the current config of one widget.
func (c *Coordinator) Chart(name string) (ChartConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.byName[name]
	if !ok {
		return ChartConfig{}, fmt.Errorf("%w: %q", ErrUnknownWidget, name)
	}
	return c.chartConfig(w), nil
}

// Snapshot returns the current state, KPIs and every chart config.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Subscribe returns a channel that receives a snapshot after every state
// change. Slow receivers only see the latest snapshot. Call cancel to
// unsubscribe.
func (c *Coordinator) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if s, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(s)
			}
		})
	}
}

// Close stops the animation and closes every subscription.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.stopAni != nil {
		c.stopAni()
		c.stopAni = nil
	}
	c.state.Playing = false
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Coordinator) selection() widgets.Selection {
	return widgets.Selection{
		Year:     c.state.Year,
		Country:  c.state.Country,
		ViewMode: c.state.ViewMode,
	}
}

// refresh updates every widget in registration order, recomputes the
// KPIs and notifies subscribers. Callers hold c.mu.
func (c *Coordinator) refresh() Snapshot {
	sel := c.selection()
	for _, w := range c.order {
		c.updateWidget(w, sel)
	}
	c.kpis = ComputeKPIs(c.ds, c.state.Country, c.state.Year)
	return c.publish()
}

// updateWidget keeps one failing widget from taking the others down.
func (c *Coordinator) updateWidget(w widgets.Widget, sel widgets.Selection) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("widget update panicked",
				zap.String("widget", w.Name()),
				zap.Any("panic", r))
		}
	}()
	if err := w.Update(sel); err != nil {
		c.logger.Warn("widget update failed",
			zap.String("widget", w.Name()),
			zap.Int("year", sel.Year),
			zap.String("country", sel.Country),
			zap.Error(err))
	}
}

func (c *Coordinator) chartConfig(w widgets.Widget) (cc ChartConfig) {
	cc = ChartConfig{Name: w.Name(), Title: w.Title()}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("widget config panicked",
				zap.String("widget", w.Name()),
				zap.Any("panic", r))
			cc.Option = nil
			cc.Error = "chart unavailable"
		}
	}()
	cc.Width, cc.Height = w.Size()
	opt, err := w.Config()
	if err != nil {
		cc.Error = err.Error()
		return cc
	}
	cc.Option = opt
	return cc
}

func (c *Coordinator) snapshot() Snapshot {
	charts := make([]ChartConfig, 0, len(c.order))
	for _, w := range c.order {
		charts = append(charts, c.chartConfig(w))
	}
	return Snapshot{
		State:   c.state,
		MinYear: c.ds.MinYear(),
		MaxYear: c.ds.MaxYear(),
		KPIs:    append([]KPI(nil), c.kpis...),
		Charts:  charts,
	}
}

// publish builds a snapshot and offers it to every subscriber, replacing
// any snapshot the subscriber has not read yet.
func (c *Coordinator) publish() Snapshot {
	snap := c.snapshot()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	return snap
}
