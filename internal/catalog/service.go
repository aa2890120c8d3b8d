// Package catalog is the service layer over the document store: CRUD per
// entity kind, review upvoting, text search and the ranked aggregations.
// It owns the write discipline: validate, write the store, invalidate the
// cache, mirror to search and publish a change event, in that order.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookstand/internal/aggregate"
	"bookstand/internal/cache"
	"bookstand/internal/events"
	"bookstand/internal/events/memory"
	"bookstand/internal/health"
	"bookstand/internal/search"
	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// Deps carries the service's collaborators. Store and Health are required;
// nil accelerants degrade to no-ops so a bare deployment still works.
type Deps struct {
	Store  storage.DocumentStore
	Cache  cache.Cache
	Index  search.Index
	Health *health.Monitor
	Bus    events.Bus
	Logger *slog.Logger

	// CacheTTL overrides the fixed entry lifetime; zero keeps the default.
	CacheTTL time.Duration
}

// Service is the catalog's exposed surface.
type Service struct {
	Authors *AuthorService
	Books   *BookService
	Reviews *ReviewService
	Sales   *SaleService

	mirror *search.Mirror
	engine *aggregate.Engine
}

// SearchFields lists, per searchable collection, the fields the text
// search covers. Collections absent here never touch the search backend.
func SearchFields() map[string][]string {
	return map[string][]string{
		model.CollectionAuthors: {"name", "description"},
		model.CollectionBooks:   {"name", "summary"},
	}
}

// New wires the service from its dependencies.
func New(deps Deps) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Cache == nil {
		deps.Cache = cache.NoOp{}
	}
	if deps.Index == nil {
		deps.Index = search.NoOp{}
	}
	if deps.Bus == nil {
		deps.Bus = memory.New()
	}

	mirror := search.NewMirror(deps.Index, deps.Store, deps.Health, SearchFields(), deps.Logger)
	s := &Service{
		mirror: mirror,
		engine: aggregate.New(deps.Store, deps.Logger),
	}
	s.Authors = &AuthorService{res: newResource[model.Author](model.CollectionAuthors, deps, mirror)}
	s.Books = &BookService{
		res:   newResource[model.Book](model.CollectionBooks, deps, mirror),
		store: deps.Store,
	}
	s.Reviews = &ReviewService{
		res:   newResource[model.Review](model.CollectionReviews, deps, mirror),
		store: deps.Store,
	}
	s.Sales = &SaleService{
		res:   newResource[model.Sale](model.CollectionSales, deps, mirror),
		store: deps.Store,
	}
	return s
}

// Search runs a text query over one searchable collection.
func (s *Service) Search(ctx context.Context, collection string, query string, page, pageSize int) (*search.SearchResult, error) {
	if _, ok := SearchFields()[collection]; !ok {
		return nil, model.Invalid("collection", fmt.Sprintf("%s is not searchable", collection))
	}
	return s.mirror.Search(ctx, collection, query, page, pageSize)
}

// TopRatedBooks returns books ranked by average review score.
func (s *Service) TopRatedBooks(ctx context.Context, limit int) ([]aggregate.RatedBook, error) {
	return s.engine.TopRatedBooks(ctx, limit)
}

// TopSellingBooks returns books ranked by summed ledger sales.
func (s *Service) TopSellingBooks(ctx context.Context, limit int) ([]aggregate.SellingBook, error) {
	return s.engine.TopSellingBooks(ctx, limit)
}

// requireRef rejects an input referencing a document that does not exist.
// Store failures during the check surface as-is.
func requireRef(ctx context.Context, store storage.DocumentStore, collection, field, id string) error {
	var probe struct {
		ID string `bson:"_id"`
	}
	err := store.GetByID(ctx, collection, id, &probe)
	if errors.Is(err, model.ErrNotFound) {
		return model.Invalid(field, fmt.Sprintf("no %s with id %s", strings.TrimSuffix(collection, "s"), id))
	}
	return err
}
