package book

import (
	"errors"
	"net/url"
	"strconv"

	"bookhub/internal/entity"

	"github.com/go-playground/validator/v10"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

type Book = entity.Book

// Query defines filters and pagination for listing books.
type Query struct {
	Offset  int    `validate:"gte=0"`
	Limit   int    `validate:"gte=0,lte=100"`
	OrderBy string `validate:"omitempty,oneof=title views rating first_publish_year created_at"`
	Order   string `validate:"omitempty,oneof=asc desc"`
	Search  string
}

var validate = validator.New()

// Validate checks the paging bounds and the sort field and direction.
func (q Query) Validate() error {
	return validate.Struct(q)
}

// Values encodes the query; zero fields are left out.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.OrderBy != "" {
		v.Set("order_by", q.OrderBy)
	}
	if q.Order != "" {
		v.Set("order", q.Order)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}
