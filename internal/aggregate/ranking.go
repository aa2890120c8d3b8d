package aggregate

import (
	"sort"

	"bookstand/pkg/model"
)

// rankTopRated orders joined rows by (averageScore desc, reviewCount desc)
// and truncates. Zero-review books have no average and sort behind every
// rated book.
func rankTopRated(rows []bookWithReviews, limit int) []RatedBook {
	rated := make([]RatedBook, 0, len(rows))
	for _, row := range rows {
		rb := RatedBook{Book: row.Book, ReviewCount: len(row.Reviews)}
		if len(row.Reviews) > 0 {
			var sum int
			for _, rev := range row.Reviews {
				sum += rev.Score
			}
			rb.AverageScore = float64(sum) / float64(len(row.Reviews))
			rb.HighestRatedReview = pickReview(row.Reviews, true)
			rb.LowestRatedReview = pickReview(row.Reviews, false)
		}
		rated = append(rated, rb)
	}

	sort.SliceStable(rated, func(i, j int) bool {
		a, b := rated[i], rated[j]
		if (a.ReviewCount == 0) != (b.ReviewCount == 0) {
			return b.ReviewCount == 0
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		return a.ReviewCount > b.ReviewCount
	})

	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated
}

// pickReview selects the highest- or lowest-scored review, preferring more
// upvotes on equal score.
func pickReview(reviews []model.Review, highest bool) *model.Review {
	best := reviews[0]
	for _, r := range reviews[1:] {
		better := r.Score > best.Score
		if !highest {
			better = r.Score < best.Score
		}
		if better || (r.Score == best.Score && r.Upvotes > best.Upvotes) {
			best = r
		}
	}
	picked := best
	return &picked
}

// rankTopSelling sums each book's ledger, orders by total desc and
// truncates. Author totals are computed over the full joined set before
// truncation, so an author's other books count even when they fall outside
// the ranking.
func rankTopSelling(rows []bookWithSales, limit int) ([]SellingBook, map[string]int64) {
	authorTotals := make(map[string]int64)
	ranked := make([]SellingBook, 0, len(rows))
	for _, row := range rows {
		var total int64
		for _, sale := range row.Ledger {
			total += sale.Sales
		}
		authorTotals[row.Book.AuthorID] += total
		ranked = append(ranked, SellingBook{Book: row.Book, TotalSales: total})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalSales > ranked[j].TotalSales
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, authorTotals
}
