// Package entity holds the catalog records shared by the session cache and
// the domain services.
package entity

// AuthorRef is the author embedded in a book listing.
type AuthorRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Book is keyed by its Open Library work key.
type Book struct {
	WorkKey          string     `json:"work_key" yaml:"work_key" validate:"required"`
	Title            string     `json:"title" yaml:"title"`
	Authors          []string   `json:"authors,omitempty" yaml:"authors,omitempty"`
	Author           *AuthorRef `json:"author,omitempty" yaml:"author,omitempty"`
	CoverID          *int       `json:"cover_id,omitempty" yaml:"cover_id,omitempty"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	FirstPublishYear *int       `json:"first_publish_year,omitempty" yaml:"first_publish_year,omitempty"`
	NumberOfPages    *int       `json:"number_of_pages,omitempty" yaml:"number_of_pages,omitempty"`
	Publishers       []string   `json:"publishers,omitempty" yaml:"publishers,omitempty"`
	ISBN             []string   `json:"isbn,omitempty" yaml:"isbn,omitempty"`
	Subjects         []string   `json:"subjects,omitempty" yaml:"subjects,omitempty"`
	PublishDate      string     `json:"publish_date,omitempty" yaml:"publish_date,omitempty"`
	Views            int        `json:"views,omitempty" yaml:"views,omitempty"`
	Rating           float64    `json:"rating,omitempty" yaml:"rating,omitempty"`
	TotalRatings     int        `json:"total_ratings,omitempty" yaml:"total_ratings,omitempty"`
}

// HasDetails reports whether the record came from the detail endpoint.
// Listing payloads never carry ISBNs or publishers.
func (b Book) HasDetails() bool {
	return len(b.ISBN) > 0 && len(b.Publishers) > 0
}

// AuthorName prefers the embedded author, then the first listed name.
func (b Book) AuthorName() string {
	if b.Author != nil && b.Author.Name != "" {
		return b.Author.Name
	}
	if len(b.Authors) > 0 {
		return b.Authors[0]
	}
	return UnknownAuthor
}

// Merge overlays the non-zero fields of newer onto b.
func (b Book) Merge(newer Book) Book {
	out := b
	if newer.WorkKey != "" {
		out.WorkKey = newer.WorkKey
	}
	if newer.Title != "" {
		out.Title = newer.Title
	}
	if newer.Authors != nil {
		out.Authors = newer.Authors
	}
	if newer.Author != nil {
		out.Author = newer.Author
	}
	if newer.CoverID != nil {
		out.CoverID = newer.CoverID
	}
	if newer.Description != "" {
		out.Description = newer.Description
	}
	if newer.FirstPublishYear != nil {
		out.FirstPublishYear = newer.FirstPublishYear
	}
	if newer.NumberOfPages != nil {
		out.NumberOfPages = newer.NumberOfPages
	}
	if newer.Publishers != nil {
		out.Publishers = newer.Publishers
	}
	if newer.ISBN != nil {
		out.ISBN = newer.ISBN
	}
	if newer.Subjects != nil {
		out.Subjects = newer.Subjects
	}
	if newer.PublishDate != "" {
		out.PublishDate = newer.PublishDate
	}
	if newer.Views != 0 {
		out.Views = newer.Views
	}
	if newer.Rating != 0 {
		out.Rating = newer.Rating
	}
	if newer.TotalRatings != 0 {
		out.TotalRatings = newer.TotalRatings
	}
	return out
}
