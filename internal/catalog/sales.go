package catalog

import (
	"context"

	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// SaleService manages the yearly sales ledger feeding the aggregation
// engine. Several entries may exist per (book, year); they are summed.
type SaleService struct {
	res   *resource[model.Sale]
	store storage.DocumentStore
}

func (s *SaleService) Get(ctx context.Context, id string) (model.Sale, error) {
	return s.res.get(ctx, id)
}

func (s *SaleService) List(ctx context.Context) ([]model.Sale, error) {
	return s.res.list(ctx)
}

func (s *SaleService) Create(ctx context.Context, in model.CreateSale) (model.Sale, error) {
	if err := checkInput(in); err != nil {
		return model.Sale{}, err
	}
	if err := requireRef(ctx, s.store, model.CollectionBooks, "bookId", in.BookID); err != nil {
		return model.Sale{}, err
	}
	return s.res.create(ctx, model.Sale{
		BookID: in.BookID,
		Year:   in.Year,
		Sales:  in.Sales,
	})
}

func (s *SaleService) Update(ctx context.Context, id string, in model.UpdateSale) (model.Sale, error) {
	if err := checkInput(in); err != nil {
		return model.Sale{}, err
	}
	if in.BookID != nil {
		if err := requireRef(ctx, s.store, model.CollectionBooks, "bookId", *in.BookID); err != nil {
			return model.Sale{}, err
		}
	}
	set := map[string]any{}
	put(set, "book", in.BookID)
	put(set, "year", in.Year)
	put(set, "sales", in.Sales)
	return s.res.update(ctx, id, set)
}

func (s *SaleService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}
