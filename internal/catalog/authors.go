package catalog

import (
	"context"
	"time"

	"bookstand/pkg/model"
)

// AuthorService manages Author documents.
type AuthorService struct {
	res *resource[model.Author]
}

func (s *AuthorService) Get(ctx context.Context, id string) (model.Author, error) {
	return s.res.get(ctx, id)
}

func (s *AuthorService) List(ctx context.Context) ([]model.Author, error) {
	return s.res.list(ctx)
}

func (s *AuthorService) Create(ctx context.Context, in model.CreateAuthor) (model.Author, error) {
	if err := checkInput(in); err != nil {
		return model.Author{}, err
	}
	now := time.Now().UTC()
	return s.res.create(ctx, model.Author{
		Name:            in.Name,
		DateOfBirth:     in.DateOfBirth,
		CountryOfOrigin: in.CountryOfOrigin,
		Description:     in.Description,
		ProfileImage:    in.ProfileImage,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

func (s *AuthorService) Update(ctx context.Context, id string, in model.UpdateAuthor) (model.Author, error) {
	if err := checkInput(in); err != nil {
		return model.Author{}, err
	}
	set := map[string]any{}
	put(set, "name", in.Name)
	put(set, "date_of_birth", in.DateOfBirth)
	put(set, "country_of_origin", in.CountryOfOrigin)
	put(set, "description", in.Description)
	put(set, "profile_image", in.ProfileImage)
	return s.res.update(ctx, id, set)
}

func (s *AuthorService) Delete(ctx context.Context, id string) error {
	return s.res.remove(ctx, id)
}
