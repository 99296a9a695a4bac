// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// SavedViewsCollection is the collection saved dashboard views live in.
const SavedViewsCollection = "saved_views"

// SavedViewModels returns the indexes the saved view store relies on.
func SavedViewModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Unique (case-folded) name per viewer
		{
			Keys:    bson.D{{Key: "viewer_id", Value: 1}, {Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_viewer_name_ci"),
		},
		// A viewer's views, most recently changed first
		{
			Keys:    bson.D{{Key: "viewer_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_viewer_updated"),
		},
		// Stale view cleanup scans by age alone
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetName("idx_updated"),
		},
	}
}

/*
EnsureAll is called from EnsureSchema when saved views are enabled. It is
idempotent: indexes whose keys and uniqueness already match are kept, and
ones whose uniqueness changed are dropped and rebuilt.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := ensureIndexSet(ctx, db.Collection(SavedViewsCollection), SavedViewModels(), logger); err != nil {
		return fmt.Errorf("%s: %w", SavedViewsCollection, err)
	}
	return nil
}

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bySig := make(map[string]existingIndex)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			return nil, err
		}
		bySig[keySig(idx.Key)] = idx
	}
	return bySig, cur.Err()
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet lists as an error on some
		// servers; every index is then simply created.
		logger.Debug("list indexes failed", zap.String("collection", coll.Name()), zap.Error(err))
		existing = map[string]existingIndex{}
	}

	var errs []error
	for _, m := range models {
		name := ""
		unique := false
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique != nil && *m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		fields := []zap.Field{
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
		}

		if ex, ok := existing[sig]; ok {
			if ex.Unique == unique {
				logger.Debug("index up to date", fields...)
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Errorf("%s: drop %s: %w", name, ex.Name, err))
				continue
			}
			logger.Info("dropped index with stale options", append(fields, zap.String("dropped", ex.Name))...)
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if unique && isDuplicateKeyErr(err) {
				err = fmt.Errorf("cannot create unique index (duplicates present): %w", err)
			}
			logger.Warn("index ensure failed", append(fields, zap.Error(err))...)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		logger.Info("index ensured", append(fields, zap.Duration("took", time.Since(start)))...)
	}
	return errors.Join(errs...)
}
