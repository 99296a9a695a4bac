// internal/app/system/tasks/jobs.go
package tasks

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/system/dashboard"
	"github.com/dalemusser/strataenergy/internal/app/system/dataset"
	"github.com/dalemusser/strataenergy/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ViewerCleanupJob creates a job that closes the dashboards of viewers
// that have not made a request for longer than idle.
func ViewerCleanupJob(reg *dashboard.Registry, idle time.Duration, logger *zap.Logger) Job {
	interval := idle / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	return Job{
		Name:     "viewer-cleanup",
		Interval: interval,
		Run: func(ctx context.Context) error {
			if n := reg.EvictIdle(idle); n > 0 {
				logger.Info("evicted idle viewers",
					zap.Int("evicted", n),
					zap.Int("active", reg.Len()),
					zap.Duration("idle", idle))
			}
			return nil
		},
	}
}

// DatasetReloadJob creates a job that re-reads the dataset from src and
// swaps it into holder when the content changed. It backs up the file
// watcher for sources that cannot be watched, such as S3.
func DatasetReloadJob(holder *dataset.Holder, src dataset.Source, path string, interval time.Duration, logger *zap.Logger) Job {
	var (
		mu   sync.Mutex
		last [sha256.Size]byte
	)
	return Job{
		Name:     "dataset-reload",
		Interval: interval,
		Run: func(ctx context.Context) error {
			rc, err := src.Open(ctx, path)
			if err != nil {
				return fmt.Errorf("open dataset %q: %w", path, err)
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("read dataset %q: %w", path, err)
			}

			sum := sha256.Sum256(raw)
			mu.Lock()
			defer mu.Unlock()
			if sum == last {
				return nil
			}
			// The first run only records the checksum of what bootstrap
			// already loaded.
			first := last == [sha256.Size]byte{}
			last = sum
			if first && holder.Get() != nil {
				return nil
			}

			d, err := dataset.Parse(bytes.NewReader(raw), dataset.FormatFromPath(path))
			if err != nil {
				return fmt.Errorf("parse dataset %q: %w", path, err)
			}
			holder.Set(d)
			logger.Info("dataset reloaded",
				zap.String("path", path),
				zap.Int("records", d.Len()),
				zap.Int("min_year", d.MinYear()),
				zap.Int("max_year", d.MaxYear()))
			return nil
		},
	}
}

// StaleViewCleanupJob creates a job that removes saved views nobody can
// reach anymore. A view belongs to a viewer cookie, so once a view is
// older than the cookie lifetime its owner is gone.
func StaleViewCleanupJob(db *mongo.Database, maxAge time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "stale-view-cleanup",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			coll := db.Collection(indexes.SavedViewsCollection)
			result, err := coll.DeleteMany(ctx, bson.M{
				"updated_at": bson.M{"$lt": time.Now().Add(-maxAge)},
			})
			if err != nil {
				return err
			}
			if result.DeletedCount > 0 {
				logger.Info("cleaned up stale saved views",
					zap.Int64("deleted", result.DeletedCount),
					zap.Duration("max_age", maxAge))
			}
			return nil
		},
	}
}
