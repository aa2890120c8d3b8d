// Package model holds the catalog's domain types and the error taxonomy
// shared by every component.
package model

import "time"

// Collection keys. They namespace cache keys, search indices and store
// collections, so they must stay globally unique.
const (
	CollectionAuthors = "authors"
	CollectionBooks   = "books"
	CollectionReviews = "reviews"
	CollectionSales   = "sales"
)

// Author is a book author. Authors have no outgoing references.
type Author struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name"`
	DateOfBirth     time.Time `json:"dateOfBirth" bson:"date_of_birth"`
	CountryOfOrigin string    `json:"countryOfOrigin" bson:"country_of_origin"`
	Description     string    `json:"description" bson:"description"`
	ProfileImage    string    `json:"profileImage,omitempty" bson:"profile_image,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

// Book references exactly one Author by id. TotalSales is a denormalized
// display counter; the Sale ledger is authoritative for rankings.
type Book struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	Name            string    `json:"name" bson:"name"`
	Summary         string    `json:"summary" bson:"summary"`
	PublicationDate time.Time `json:"publicationDate" bson:"publication_date"`
	TotalSales      int64     `json:"totalSales" bson:"total_sales"`
	AuthorID        string    `json:"author" bson:"author"`
	CoverImage      string    `json:"coverImage,omitempty" bson:"cover_image,omitempty"`
	CreatedAt       time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updated_at"`
}

// Review references exactly one Book. Upvotes is only ever changed through
// the server-side increment, never by client input.
type Review struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	BookID    string    `json:"book" bson:"book"`
	Body      string    `json:"review" bson:"review"`
	Score     int       `json:"score" bson:"score"`
	Upvotes   int64     `json:"numberOfUpvotes" bson:"upvotes"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// Sale is one ledger entry: units sold for a book in a calendar year.
// Several entries may exist for the same (book, year); aggregation sums them.
type Sale struct {
	ID     string `json:"id" bson:"_id,omitempty"`
	BookID string `json:"book" bson:"book"`
	Year   int    `json:"year" bson:"year"`
	Sales  int64  `json:"sales" bson:"sales"`
}
