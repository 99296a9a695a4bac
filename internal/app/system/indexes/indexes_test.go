package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/strataenergy/internal/app/system/indexes"
	"github.com/dalemusser/strataenergy/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// uniqueByName lists the collection's indexes as name -> unique.
func uniqueByName(ctx context.Context, t *testing.T, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var specs []struct {
		Name   string `bson:"name"`
		Unique bool   `bson:"unique"`
	}
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	out := make(map[string]bool, len(specs))
	for _, s := range specs {
		out[s.Name] = s.Unique
	}
	return out
}

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// SetupTestDB already ran EnsureAll once.
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}

	got := uniqueByName(ctx, t, db.Collection(indexes.SavedViewsCollection))
	for _, m := range indexes.SavedViewModels() {
		name := *m.Options.Name
		unique, ok := got[name]
		if !ok {
			t.Errorf("index %s missing", name)
			continue
		}
		wantUnique := m.Options.Unique != nil && *m.Options.Unique
		if unique != wantUnique {
			t.Errorf("index %s unique = %v, want %v", name, unique, wantUnique)
		}
	}
}

func TestEnsureAll_RebuildsWhenUniquenessChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coll := db.Collection(indexes.SavedViewsCollection)
	if _, err := coll.Indexes().DropOne(ctx, "uniq_viewer_name_ci"); err != nil {
		t.Fatalf("DropOne() error = %v", err)
	}
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "viewer_id", Value: 1}, {Key: "name_ci", Value: 1}},
	}); err != nil {
		t.Fatalf("CreateOne() error = %v", err)
	}

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll() error = %v", err)
	}

	got := uniqueByName(ctx, t, coll)
	if !got["uniq_viewer_name_ci"] {
		t.Errorf("uniq_viewer_name_ci should exist and be unique, got %v", got)
	}
	if _, ok := got["viewer_id_1_name_ci_1"]; ok {
		t.Error("non-unique viewer/name index should have been dropped")
	}
}
