package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstand/pkg/model"
)

func TestRankTopRatedAveragesAndAttachedReviews(t *testing.T) {
	t.Parallel()
	rows := []bookWithReviews{
		{
			Book: model.Book{ID: "b1", Name: "The Corroborated"},
			Reviews: []model.Review{
				{ID: "r1", Score: 5, Upvotes: 1},
				{ID: "r2", Score: 5, Upvotes: 9},
				{ID: "r3", Score: 3, Upvotes: 2},
			},
		},
	}

	ranked := rankTopRated(rows, 1)
	require.Len(t, ranked, 1)

	got := ranked[0]
	assert.InDelta(t, 4.33, got.AverageScore, 0.01)
	assert.Equal(t, 3, got.ReviewCount)
	require.NotNil(t, got.HighestRatedReview)
	assert.Equal(t, "r2", got.HighestRatedReview.ID, "upvotes break the score tie")
	require.NotNil(t, got.LowestRatedReview)
	assert.Equal(t, "r3", got.LowestRatedReview.ID)
}

func TestRankTopRatedTieBreaksOnReviewCount(t *testing.T) {
	t.Parallel()
	rows := []bookWithReviews{
		{
			Book:    model.Book{ID: "outlier"},
			Reviews: []model.Review{{Score: 5}},
		},
		{
			Book:    model.Book{ID: "corroborated"},
			Reviews: []model.Review{{Score: 5}, {Score: 5}, {Score: 5}},
		},
	}

	ranked := rankTopRated(rows, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "corroborated", ranked[0].Book.ID)
	assert.Equal(t, "outlier", ranked[1].Book.ID)
}

func TestRankTopRatedUnreviewedBooksSortLast(t *testing.T) {
	t.Parallel()
	rows := []bookWithReviews{
		{Book: model.Book{ID: "silent"}},
		{Book: model.Book{ID: "poor"}, Reviews: []model.Review{{Score: 1}}},
	}

	ranked := rankTopRated(rows, 10)
	require.Len(t, ranked, 2)
	assert.Equal(t, "poor", ranked[0].Book.ID, "a bad rating still beats no rating")
	assert.Equal(t, "silent", ranked[1].Book.ID)
	assert.Nil(t, ranked[1].HighestRatedReview)
}

func TestRankTopRatedTruncates(t *testing.T) {
	t.Parallel()
	rows := []bookWithReviews{
		{Book: model.Book{ID: "a"}, Reviews: []model.Review{{Score: 5}}},
		{Book: model.Book{ID: "b"}, Reviews: []model.Review{{Score: 4}}},
		{Book: model.Book{ID: "c"}, Reviews: []model.Review{{Score: 3}}},
	}

	ranked := rankTopRated(rows, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Book.ID)
}

func TestRankTopSellingSumsLedgerAndAuthorTotals(t *testing.T) {
	t.Parallel()
	rows := []bookWithSales{
		{
			// The denormalized counter disagrees with the ledger on purpose;
			// only the ledger counts.
			Book:   model.Book{ID: "b1", AuthorID: "a1", TotalSales: 9999},
			Ledger: []model.Sale{{Sales: 100}, {Sales: 50}, {Sales: 10}},
		},
		{
			Book:   model.Book{ID: "b2", AuthorID: "a1"},
			Ledger: []model.Sale{{Sales: 40}},
		},
		{
			Book:   model.Book{ID: "b3", AuthorID: "a2"},
			Ledger: []model.Sale{{Sales: 500}},
		},
	}

	ranked, authorTotals := rankTopSelling(rows, 2)
	require.Len(t, ranked, 2)
	assert.Equal(t, "b3", ranked[0].Book.ID)
	assert.Equal(t, int64(500), ranked[0].TotalSales)
	assert.Equal(t, "b1", ranked[1].Book.ID)
	assert.Equal(t, int64(160), ranked[1].TotalSales)

	// b2 fell outside the ranking but still counts toward its author.
	assert.Equal(t, int64(200), authorTotals["a1"])
	assert.Equal(t, int64(500), authorTotals["a2"])
}
