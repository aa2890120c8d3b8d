// Package aggregate computes the ranked cross-collection views (top-rated
// and top-selling books). Results are derived at request time from the
// store's join primitive; the cache is deliberately bypassed and nothing is
// materialized.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

const (
	DefaultTopRatedLimit   = 10
	DefaultTopSellingLimit = 50

	// topFiveWindow is the publication-year ranking window checked per book.
	topFiveWindow = 5
)

// RatedBook is one entry of the top-rated ranking.
type RatedBook struct {
	Book               model.Book    `json:"book"`
	AverageScore       float64       `json:"averageScore"`
	ReviewCount        int           `json:"reviewCount"`
	HighestRatedReview *model.Review `json:"highestRatedReview,omitempty"`
	LowestRatedReview  *model.Review `json:"lowestRatedReview,omitempty"`
}

// SellingBook is one entry of the top-selling ranking. TotalSales is summed
// from the Sale ledger; the denormalized counter on Book is never consulted.
type SellingBook struct {
	Book                       model.Book `json:"book"`
	TotalSales                 int64      `json:"totalSales"`
	AuthorTotalSales           int64      `json:"authorTotalSales"`
	InTopFiveOnPublicationYear bool       `json:"inTopFiveOnPublicationYear"`
}

type bookWithReviews struct {
	model.Book `bson:",inline"`
	Reviews    []model.Review `bson:"reviews"`
}

type bookWithSales struct {
	model.Book `bson:",inline"`
	Ledger     []model.Sale `bson:"ledger"`
}

// Engine runs the ranked aggregations against the document store.
type Engine struct {
	store  storage.DocumentStore
	logger *slog.Logger
}

// New creates an aggregation engine.
func New(store storage.DocumentStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, logger: logger.With("component", "aggregate")}
}

// TopRatedBooks joins every book with its reviews and ranks by average
// score, breaking ties by review count so corroborated ratings beat a
// single outlier. Books without reviews sort last.
func (e *Engine) TopRatedBooks(ctx context.Context, limit int) ([]RatedBook, error) {
	if limit <= 0 {
		limit = DefaultTopRatedLimit
	}

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         model.CollectionReviews,
			"localField":   "_id",
			"foreignField": "book",
			"as":           "reviews",
		}}},
	}

	rows, err := e.store.Aggregate(ctx, model.CollectionBooks, pipeline)
	if err != nil {
		return nil, err
	}
	joined, err := decodeRows[bookWithReviews](rows)
	if err != nil {
		return nil, err
	}

	return rankTopRated(joined, limit), nil
}

// TopSellingBooks joins every book with its sale ledger and ranks by summed
// units. Each result also carries the author's ledger total across all
// their books and whether the book ranked top five for its publication
// year.
func (e *Engine) TopSellingBooks(ctx context.Context, limit int) ([]SellingBook, error) {
	if limit <= 0 {
		limit = DefaultTopSellingLimit
	}

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         model.CollectionSales,
			"localField":   "_id",
			"foreignField": "book",
			"as":           "ledger",
		}}},
	}

	rows, err := e.store.Aggregate(ctx, model.CollectionBooks, pipeline)
	if err != nil {
		return nil, err
	}
	joined, err := decodeRows[bookWithSales](rows)
	if err != nil {
		return nil, err
	}

	ranked, authorTotals := rankTopSelling(joined, limit)

	// The publication-year window is a fresh sub-aggregation, not derived
	// from the outer ranking: a book outside the overall top can still own
	// its year, and vice versa.
	topFiveByYear := make(map[int]map[string]bool)
	for i := range ranked {
		year := ranked[i].Book.PublicationDate.Year()
		ids, ok := topFiveByYear[year]
		if !ok {
			var err error
			ids, err = e.topSellersForYear(ctx, year)
			if err != nil {
				return nil, err
			}
			topFiveByYear[year] = ids
		}
		ranked[i].InTopFiveOnPublicationYear = ids[ranked[i].Book.ID]
		ranked[i].AuthorTotalSales = authorTotals[ranked[i].Book.AuthorID]
	}

	return ranked, nil
}

// topSellersForYear returns the ids of the top five books by summed sales,
// restricted to ledger entries of the given calendar year.
func (e *Engine) topSellersForYear(ctx context.Context, year int) (map[string]bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"year": year}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$book",
			"total": bson.M{"$sum": "$sales"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total", Value: -1}}}},
		{{Key: "$limit", Value: topFiveWindow}},
	}

	rows, err := e.store.Aggregate(ctx, model.CollectionSales, pipeline)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool, len(rows))
	for _, row := range rows {
		id, ok := row["_id"].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected group key %v in sales aggregation", row["_id"])
		}
		ids[id] = true
	}
	return ids, nil
}

func decodeRows[T any](rows []bson.M) ([]T, error) {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		raw, err := bson.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("encoding aggregation row: %w", err)
		}
		var v T
		if err := bson.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding aggregation row: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
