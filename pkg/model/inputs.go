package model

import "time"

// Create inputs carry every client-settable field of an entity. Update
// inputs are partial: a nil field leaves the stored value unchanged.

type CreateAuthor struct {
	Name            string    `json:"name" validate:"required"`
	DateOfBirth     time.Time `json:"dateOfBirth" validate:"required"`
	CountryOfOrigin string    `json:"countryOfOrigin" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	ProfileImage    string    `json:"profileImage"`
}

type UpdateAuthor struct {
	Name            *string    `json:"name"`
	DateOfBirth     *time.Time `json:"dateOfBirth"`
	CountryOfOrigin *string    `json:"countryOfOrigin"`
	Description     *string    `json:"description"`
	ProfileImage    *string    `json:"profileImage"`
}

type CreateBook struct {
	Name            string    `json:"name" validate:"required"`
	Summary         string    `json:"summary" validate:"required"`
	PublicationDate time.Time `json:"publicationDate" validate:"required"`
	TotalSales      int64     `json:"totalSales" validate:"gte=0"`
	AuthorID        string    `json:"authorId" validate:"required"`
	CoverImage      string    `json:"coverImage"`
}

type UpdateBook struct {
	Name            *string    `json:"name"`
	Summary         *string    `json:"summary"`
	PublicationDate *time.Time `json:"publicationDate"`
	TotalSales      *int64     `json:"totalSales" validate:"omitempty,gte=0"`
	AuthorID        *string    `json:"authorId"`
	CoverImage      *string    `json:"coverImage"`
}

// CreateReview has no upvote field: new reviews always start at zero.
type CreateReview struct {
	BookID string `json:"bookId" validate:"required"`
	Body   string `json:"review" validate:"required"`
	Score  int    `json:"score" validate:"required,min=1,max=5"`
}

// UpdateReview has no upvote field either; upvotes move only through the
// server-side increment.
type UpdateReview struct {
	BookID *string `json:"bookId"`
	Body   *string `json:"review"`
	Score  *int    `json:"score" validate:"omitempty,min=1,max=5"`
}

type CreateSale struct {
	BookID string `json:"bookId" validate:"required"`
	Year   int    `json:"year" validate:"required"`
	Sales  int64  `json:"sales" validate:"gte=0"`
}

type UpdateSale struct {
	BookID *string `json:"bookId"`
	Year   *int    `json:"year"`
	Sales  *int64  `json:"sales" validate:"omitempty,gte=0"`
}
