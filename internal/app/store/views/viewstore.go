// internal/app/store/views/viewstore.go
package viewstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/strataenergy/internal/app/store/storeutil"
	"github.com/dalemusser/strataenergy/internal/app/system/indexes"
	"github.com/dalemusser/strataenergy/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MaxPerViewer caps how many views one viewer can keep.
const MaxPerViewer = 50

var (
	// ErrNotFound is returned when a saved view is not found.
	ErrNotFound = errors.New("saved view not found")
	// ErrDuplicateName is returned when the viewer already has a view with the same name.
	ErrDuplicateName = errors.New("a view with this name already exists")
	// ErrLimitReached is returned when the viewer already has MaxPerViewer views.
	ErrLimitReached = errors.New("saved view limit reached")
)

// Store provides saved view persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new saved view store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.SavedViewsCollection)}
}

// CreateInput holds the fields for creating a new saved view. Name and
// Note are expected to be sanitized already.
type CreateInput struct {
	ViewerID string
	Name     string
	Note     string
	Year     int
	Country  string
	ViewMode models.ViewMode
}

// Create stores a new view for the viewer.
func (s *Store) Create(ctx context.Context, input CreateInput) (models.SavedView, error) {
	n, err := s.CountForViewer(ctx, input.ViewerID)
	if err != nil {
		return models.SavedView{}, err
	}
	if n >= MaxPerViewer {
		return models.SavedView{}, ErrLimitReached
	}

	now := time.Now().UTC()
	v := models.SavedView{
		ID:        primitive.NewObjectID(),
		ViewerID:  input.ViewerID,
		Name:      input.Name,
		NameCI:    text.Fold(input.Name),
		Note:      input.Note,
		Year:      input.Year,
		Country:   input.Country,
		ViewMode:  input.ViewMode,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.c.InsertOne(ctx, v); err != nil {
		if isDuplicateKeyError(err) {
			return models.SavedView{}, ErrDuplicateName
		}
		return models.SavedView{}, err
	}
	return v, nil
}

// isDuplicateKeyError checks if the error is a duplicate key error.
func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// Get returns one of the viewer's views. Views owned by someone else
// read as ErrNotFound.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID, viewerID string) (*models.SavedView, error) {
	var v models.SavedView
	err := s.c.FindOne(ctx, bson.M{"_id": id, "viewer_id": viewerID}).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListForViewer returns one page of the viewer's views, most recently
// updated first. page is 1-based.
func (s *Store) ListForViewer(ctx context.Context, viewerID string, limit, page int64) ([]models.SavedView, error) {
	opts := storeutil.Paginate(limit, page, bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "name_ci", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"viewer_id": viewerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var views []models.SavedView
	if err := cur.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// Touch bumps a view's updated_at so that recently applied views list first.
func (s *Store) Touch(ctx context.Context, id primitive.ObjectID, viewerID string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "viewer_id": viewerID},
		bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a view. Only the owning viewer can delete it.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, viewerID string) error {
	result, err := s.c.DeleteOne(ctx, bson.M{
		"_id":       id,
		"viewer_id": viewerID,
	})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForViewer deletes every view of a viewer.
func (s *Store) DeleteAllForViewer(ctx context.Context, viewerID string) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{"viewer_id": viewerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// CountForViewer returns the number of views a viewer has saved.
func (s *Store) CountForViewer(ctx context.Context, viewerID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"viewer_id": viewerID})
}
