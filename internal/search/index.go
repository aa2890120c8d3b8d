// Package search keeps the search index eventually consistent with store
// writes and serves free-text queries, falling back to the store when the
// index is down.
package search

import (
	"context"
	"encoding/json"
	"errors"
)

// Hit is one matching document returned by the index.
type Hit struct {
	ID     string          `json:"id"`
	Source json.RawMessage `json:"source"`
}

// Result is the shared shape of index and store-fallback searches.
type Result struct {
	Hits  []Hit `json:"hits"`
	Total int64 `json:"total"`
}

// ErrIndexUnavailable reports that the index backend cannot serve calls.
// It never crosses the mirror boundary; the mirror absorbs it.
var ErrIndexUnavailable = errors.New("search index unavailable")

// Index abstracts the search engine.
type Index interface {
	// Index stores or replaces a document.
	Index(ctx context.Context, collection string, id string, doc any) error

	// Update applies a partial document, creating it if absent.
	Update(ctx context.Context, collection string, id string, doc any) error

	// Delete removes a document. Deleting an absent id is not an error.
	Delete(ctx context.Context, collection string, id string) error

	// Search runs a multi-field match query with index-side paging.
	Search(ctx context.Context, collection string, query string, from int, size int) (*Result, error)

	// Probe checks cluster health within the caller's deadline.
	Probe(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// NoOp is an Index for deployments without a search backend. Its probe
// always fails, so the mirror serves every query from the store.
type NoOp struct{}

var _ Index = NoOp{}

func (NoOp) Index(context.Context, string, string, any) error  { return nil }
func (NoOp) Update(context.Context, string, string, any) error { return nil }
func (NoOp) Delete(context.Context, string, string) error      { return nil }
func (NoOp) Search(context.Context, string, string, int, int) (*Result, error) {
	return nil, ErrIndexUnavailable
}
func (NoOp) Probe(context.Context) error { return ErrIndexUnavailable }
func (NoOp) Close() error                { return nil }
