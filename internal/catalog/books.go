package catalog

import (
	"context"
	"time"

	"bookstand/internal/storage"
	"bookstand/pkg/model"
)

// BookService manages Book documents. Every write referencing an author
// checks the author exists first.
type BookService struct {
	res   *resource[model.Book]
	store storage.DocumentStore
}

func (s *BookService) Get(ctx context.Context, id string) (model.Book, error) {
	return s.res.get(ctx, id)
}

func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	return s.res.list(ctx)
}

func (s *BookService) Create(ctx context.Context, in model.CreateBook) (model.Book, error) {
	if err := checkInput(in); err != nil {
		return model.Book{}, err
	}
	if err := requireRef(ctx, s.store, model.CollectionAuthors, "authorId", in.AuthorID); err != nil {
		return model.Book{}, err
	}
	now := time.Now().UTC()
	return s.res.create(ctx, model.Book{
		Name:            in.Name,
		Summary:         in.Summary,
		PublicationDate: in.PublicationDate,
		TotalSales:      in.TotalSales,
		AuthorID:        in.AuthorID,
		CoverImage:      in.CoverImage,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (s *BookService) Update(ctx context.Context, id string, in model.UpdateBook) (model.Book, error) {
	if err := checkInput(in); err != nil {
		return model.Book{}, err
	}
	if in.AuthorID != nil {
		if err := requireRef(ctx, s.store, model.CollectionAuthors, "authorId", *in.AuthorID); err != nil {
			return model.Book{}, err
		}
	}
	set := map[string]any{}
	put(set, "name", in.Name)
	put(set, "summary", in.Summary)
	put(set, "publication_date", in.PublicationDate)
	put(set, "total_sales", in.TotalSales)
	put(set, "author", in.AuthorID)
	put(set, "cover_image", in.CoverImage)
	return s.res.update(ctx, id, set)
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}
