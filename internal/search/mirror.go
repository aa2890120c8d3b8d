package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"bookstand/internal/health"
	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// SearchResult is the paged response shape shared by the index path and the
// store-fallback path; callers cannot tell which one served the request.
type SearchResult struct {
	Hits       []Hit `json:"hits"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int64 `json:"totalPages"`
}

const defaultPageSize = 10

// Mirror propagates store writes into the search index, best-effort, and
// serves free-text queries from whichever backend is usable. The store has
// already committed by the time any mirror method runs, so nothing here may
// fail the enclosing operation.
type Mirror struct {
	index  Index
	store  storage.DocumentStore
	health *health.Monitor
	fields map[string][]string
	logger *slog.Logger
}

// NewMirror wires the index into the health monitor as the probe for the
// search backend. fields maps each searchable collection to the document
// fields covered by queries; collections absent from the map are not
// mirrored at all.
func NewMirror(index Index, store storage.DocumentStore, mon *health.Monitor, fields map[string][]string, logger *slog.Logger) *Mirror {
	mon.SetProber(health.Search, index)
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{
		index:  index,
		store:  store,
		health: mon,
		fields: fields,
		logger: logger.With("component", "search-mirror"),
	}
}

// OnCreate mirrors a freshly created entity into the index.
func (m *Mirror) OnCreate(ctx context.Context, collection string, id string, doc any) {
	m.mutate(ctx, collection, id, func() error {
		return m.index.Index(ctx, collection, id, doc)
	})
}

// OnUpdate mirrors an update. The full post-write document is indexed so a
// previously missed create is healed by the upsert.
func (m *Mirror) OnUpdate(ctx context.Context, collection string, id string, doc any) {
	m.mutate(ctx, collection, id, func() error {
		return m.index.Update(ctx, collection, id, doc)
	})
}

// OnDelete removes an entity from the index.
func (m *Mirror) OnDelete(ctx context.Context, collection string, id string) {
	m.mutate(ctx, collection, id, func() error {
		return m.index.Delete(ctx, collection, id)
	})
}

// mutate runs one index mutation under the availability gate. Failures are
// logged and absorbed: the store is authoritative and stays ahead of the
// index until the next successful write or a reindex.
func (m *Mirror) mutate(ctx context.Context, collection string, id string, op func() error) {
	if _, searchable := m.fields[collection]; !searchable {
		return
	}
	if !m.health.Usable(ctx, health.Search) {
		return
	}
	if err := op(); err != nil {
		m.logger.Warn("index mutation failed, store stays ahead of index",
			"collection", collection, "id", id, "error", err)
	}
}

// Search serves a free-text query from the index when it is usable and from
// the store otherwise. Totals may differ between backends (match semantics
// vs substring semantics); the shape never does.
func (m *Mirror) Search(ctx context.Context, collection string, query string, page int, pageSize int) (*SearchResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	result := &SearchResult{Page: page, PageSize: pageSize}

	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return result, nil
	}

	if m.health.Usable(ctx, health.Search) {
		res, err := m.index.Search(ctx, collection, query, (page-1)*pageSize, pageSize)
		if err == nil {
			result.Hits = res.Hits
			result.Total = res.Total
			result.TotalPages = totalPages(res.Total, pageSize)
			return result, nil
		}
		m.logger.Warn("index query failed, falling back to store",
			"collection", collection, "error", err)
	}

	return m.fallback(ctx, collection, tokens, result)
}

// fallback is the store path: one case-insensitive substring pattern per
// token, matched against any searchable field (logical OR).
func (m *Mirror) fallback(ctx context.Context, collection string, tokens []string, result *SearchResult) (*SearchResult, error) {
	q := model.Query{
		Filters: m.tokenFilters(collection, tokens),
		Mode:    model.MatchAny,
		Skip:    int64((result.Page - 1) * result.PageSize),
		Limit:   int64(result.PageSize),
	}

	var rows []bson.M
	if err := m.store.Find(ctx, collection, q, &rows); err != nil {
		return nil, err
	}

	total, err := m.store.Count(ctx, collection, model.Query{Filters: q.Filters, Mode: q.Mode})
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		id, _ := row["_id"].(string)
		src, err := json.Marshal(row)
		if err != nil {
			m.logger.Warn("skipping unencodable document", "collection", collection, "id", id, "error", err)
			continue
		}
		result.Hits = append(result.Hits, Hit{ID: id, Source: src})
	}
	result.Total = total
	result.TotalPages = totalPages(total, result.PageSize)
	return result, nil
}

func (m *Mirror) tokenFilters(collection string, tokens []string) model.Filters {
	var filters model.Filters
	for _, field := range m.fields[collection] {
		for _, token := range tokens {
			filters = append(filters, model.Filter{
				Field: field,
				Op:    model.OpRegex,
				Value: regexp.QuoteMeta(token),
			})
		}
	}
	return filters
}

func totalPages(total int64, pageSize int) int64 {
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
