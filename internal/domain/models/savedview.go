// internal/domain/models/savedview.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedView is a named dashboard selection a viewer can re-apply later.
type SavedView struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ViewerID string             `bson:"viewer_id" json:"-"` // viewer cookie id
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"-"`                     // folded name for uniqueness
	Note     string             `bson:"note,omitempty" json:"note,omitempty"` // sanitized HTML

	Year     int      `bson:"year" json:"year"`
	Country  string   `bson:"country" json:"country"`
	ViewMode ViewMode `bson:"view_mode" json:"view_mode"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
