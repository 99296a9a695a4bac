package dashboard

import (
	"sync"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"go.uber.org/zap"
)

type viewer struct {
	c        *Coordinator
	lastSeen time.Time
}

// Registry keeps one Coordinator per viewer. Coordinators follow dataset
// reloads published by the holder.
type Registry struct {
	holder *dataset.Holder
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	viewers map[string]*viewer
}

// NewRegistry returns a registry that builds coordinators from the
// holder's current dataset.
func NewRegistry(holder *dataset.Holder, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		holder:  holder,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		viewers: make(map[string]*viewer),
	}
	holder.OnChange(r.setDataset)
	return r
}

// Get returns the coordinator for viewerID, creating it on first use.
func (r *Registry) Get(viewerID string) (*Coordinator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.viewers[viewerID]; ok {
		v.lastSeen = r.now()
		return v.c, nil
	}

	c, err := New(r.holder.Get(), r.opts)
	if err != nil {
		return nil, err
	}
	r.viewers[viewerID] = &viewer{c: c, lastSeen: r.now()}
	r.logger.Debug("dashboard created", zap.String("viewer", viewerID))
	return c, nil
}

// Len returns the number of live coordinators.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.viewers)
}

// Touch marks viewerID as active without creating a coordinator.
func (r *Registry) Touch(viewerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.viewers[viewerID]; ok {
		v.lastSeen = r.now()
	}
}

// EvictIdle closes and forgets coordinators not used within maxIdle.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Coordinator
	for id, v := range r.viewers {
		if v.lastSeen.After(cutoff) {
			continue
		}
		stale = append(stale, v.c)
		delete(r.viewers, id)
	}
	r.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// Close closes every coordinator.
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Coordinator, 0, len(r.viewers))
	for id, v := range r.viewers {
		all = append(all, v.c)
		delete(r.viewers, id)
	}
	r.mu.Unlock()

	for _, c := range all {
		c.Close()
	}
}

func (r *Registry) setDataset(ds *dataset.Dataset) {
	r.mu.Lock()
	all := make([]*Coordinator, 0, len(r.viewers))
	for _, v := range r.viewers {
		all = append(all, v.c)
	}
	r.mu.Unlock()

	for _, c := range all {
		c.SetDataset(ds)
	}
	r.logger.Info("dashboards refreshed after dataset reload",
		zap.Int("viewers", len(all)),
		zap.Int("min_year", ds.MinYear()),
		zap.Int("max_year", ds.MaxYear()))
}
