package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// FileSource opens dataset files from the local filesystem.
var FileSource = SourceFunc(func(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
})

// Holder publishes the current dataset. Readers always see a complete
// Dataset; a reload swaps the pointer and then notifies listeners.
type Holder struct {
	cur atomic.Pointer[Dataset]

	mu        sync.Mutex
	listeners []func(*Dataset)
}

// NewHolder returns a Holder serving d. d may be nil when the initial
// load failed.
func NewHolder(d *Dataset) *Holder {
	h := &Holder{}
	if d != nil {
		h.cur.Store(d)
	}
	return h
}

// Get returns the current dataset or nil.
func (h *Holder) Get() *Dataset {
	return h.cur.Load()
}

// Set replaces the current dataset and runs every listener in
// registration order.
func (h *Holder) Set(d *Dataset) {
	if d == nil {
		return
	}
	h.cur.Store(d)

	h.mu.Lock()
	ls := make([]func(*Dataset), len(h.listeners))
	copy(ls, h.listeners)
	h.mu.Unlock()

	for _, fn := range ls {
		fn(d)
	}
}

// OnChange registers fn to run after every Set.
func (h *Holder) OnChange(fn func(*Dataset)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

// Reload loads path from src into h. On failure the previous dataset
// stays in place.
func (h *Holder) Reload(ctx context.Context, src Source, path string) error {
	d, err := Load(ctx, src, path)
	if err != nil {
		return err
	}
	h.Set(d)
	return nil
}

// Watcher reloads a local dataset file into a Holder whenever it changes.
type Watcher struct {
	fsw      *fsnotify.Watcher
	path     string
	holder   *Holder
	logger   *zap.Logger
	debounce time.Duration
	done     chan struct{}
}

// Watch starts watching path. The parent directory is watched so that
// editors that replace the file by rename are still seen. The watcher
// stops when ctx is cancelled or Close is called.
func Watch(ctx context.Context, path string, holder *Holder, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed creating file watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsw.Close()
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %q: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		fsw:      fsw,
		path:     abs,
		holder:   holder,
		logger:   logger,
		debounce: 250 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			start := time.Now()
			if err := w.holder.Reload(ctx, FileSource, w.path); err != nil {
				w.logger.Warn("dataset reload failed; keeping previous data",
					zap.String("path", w.path),
					zap.Error(err))
				continue
			}
			d := w.holder.Get()
			w.logger.Info("dataset reloaded",
				zap.String("path", w.path),
				zap.Int("records", d.Len()),
				zap.Int("min_year", d.MinYear()),
				zap.Int("max_year", d.MaxYear()),
				zap.Duration("took", time.Since(start)))
		}
	}
}
