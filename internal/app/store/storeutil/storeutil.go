// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page size bounds for list queries.
const (
	DefaultPageSize int64 = 20
	MaxPageSize     int64 = 100
)

// Paginate returns find options for a 1-based page of at most limit
// documents (clamped to MaxPageSize) in sort order.
func Paginate(limit, page int64, sort bson.D) *options.FindOptions {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	opts := options.Find().SetLimit(limit).SetSkip((page - 1) * limit)
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	return opts
}
