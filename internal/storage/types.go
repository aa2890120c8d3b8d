// Package storage defines the document store abstraction. The store is the
// single source of truth; every other backend holds disposable copies.
package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookstand/pkg/model"
)

// DocumentStore is the authoritative persistence surface consumed by the
// catalog services and the aggregation engine.
//
// Errors follow the model taxonomy: absent ids map to model.ErrNotFound,
// everything else the backend reports maps to model.ErrStoreUnavailable.
type DocumentStore interface {
	// Insert stores a new document and returns its generated id.
	Insert(ctx context.Context, collection string, doc any) (string, error)

	// GetByID decodes the document with the given id into out.
	GetByID(ctx context.Context, collection string, id string, out any) error

	// Find decodes all documents matching q into out (a pointer to a slice).
	Find(ctx context.Context, collection string, q model.Query, out any) error

	// Count returns the number of documents matching the query's filters.
	Count(ctx context.Context, collection string, q model.Query) (int64, error)

	// UpdateByID applies a partial field replacement to one document.
	UpdateByID(ctx context.Context, collection string, id string, set map[string]any) error

	// IncrementField atomically adds delta to a numeric field.
	IncrementField(ctx context.Context, collection string, id string, field string, delta int64) error

	// DeleteByID removes one document.
	DeleteByID(ctx context.Context, collection string, id string) error

	// Aggregate runs a join/group pipeline and returns the raw result rows.
	Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline) ([]bson.M, error)

	// Ping verifies the connection to the backend.
	Ping(ctx context.Context) error

	// Close closes the connection to the backend.
	Close(ctx context.Context) error
}
