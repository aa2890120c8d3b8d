package catalog

import (
	"context"
	"time"

	"bookstand/internal/events"
	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// ReviewService manages Review documents. Upvotes only ever change through
// Upvote; the create and update inputs carry no upvote field at all.
type ReviewService struct {
	res   *resource[model.Review]
	store storage.DocumentStore
}

func (s *ReviewService) Get(ctx context.Context, id string) (model.Review, error) {
	return s.res.get(ctx, id)
}

func (s *ReviewService) List(ctx context.Context) ([]model.Review, error) {
	return s.res.list(ctx)
}

func (s *ReviewService) Create(ctx context.Context, in model.CreateReview) (model.Review, error) {
	if err := checkInput(in); err != nil {
		return model.Review{}, err
	}
	if err := requireRef(ctx, s.store, model.CollectionBooks, "bookId", in.BookID); err != nil {
		return model.Review{}, err
	}
	now := time.Now().UTC()
	return s.res.create(ctx, model.Review{
		BookID:    in.BookID,
		Body:      in.Body,
		Score:     in.Score,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

func (s *ReviewService) Update(ctx context.Context, id string, in model.UpdateReview) (model.Review, error) {
	if err := checkInput(in); err != nil {
		return model.Review{}, err
	}
	if in.BookID != nil {
		if err := requireRef(ctx, s.store, model.CollectionBooks, "bookId", *in.BookID); err != nil {
			return model.Review{}, err
		}
	}
	set := map[string]any{}
	put(set, "book", in.BookID)
	put(set, "review", in.Body)
	put(set, "score", in.Score)
	return s.res.update(ctx, id, set)
}

// Upvote atomically increments the review's upvote counter and returns the
// fresh document.
func (s *ReviewService) Upvote(ctx context.Context, id string) (model.Review, error) {
	err := s.res.cached.Write(ctx, id, func(ctx context.Context) error {
		return s.store.IncrementField(ctx, model.CollectionReviews, id, "upvotes", 1)
	})
	if err != nil {
		return model.Review{}, err
	}
	updated, err := s.res.get(ctx, id)
	if err != nil {
		return model.Review{}, err
	}
	s.res.publish(ctx, events.TypeUpdated, id)
	return updated, nil
}

func (s *ReviewService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}
