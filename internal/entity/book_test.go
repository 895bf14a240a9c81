package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(i int) *int { return &i }

func TestBook_HasDetails(t *testing.T) {
	assert.False(t, Book{WorkKey: "OL1W"}.HasDetails())
	assert.False(t, Book{WorkKey: "OL1W", ISBN: []string{"1"}}.HasDetails())
	assert.True(t, Book{WorkKey: "OL1W", ISBN: []string{"1"}, Publishers: []string{"P"}}.HasDetails())
}

func TestBook_Merge(t *testing.T) {
	listed := Book{
		WorkKey:  "OL1W",
		Title:    "Dune",
		Authors:  []string{"Frank Herbert"},
		CoverID:  ptr(7),
		Subjects: []string{"Science fiction"},
		Views:    40,
	}
	detail := Book{
		WorkKey:       "OL1W",
		Title:         "Dune",
		ISBN:          []string{"9780441013593"},
		Publishers:    []string{"Ace"},
		NumberOfPages: ptr(412),
	}

	merged := listed.Merge(detail)

	assert.True(t, merged.HasDetails())
	assert.Equal(t, []string{"Frank Herbert"}, merged.Authors)
	assert.Equal(t, 7, *merged.CoverID)
	assert.Equal(t, 40, merged.Views)
	assert.Equal(t, 412, *merged.NumberOfPages)
	assert.Nil(t, listed.ISBN, "receiver is not modified")
}

func TestBook_AuthorName(t *testing.T) {
	assert.Equal(t, "A", Book{Author: &AuthorRef{Key: "OL1A", Name: "A"}}.AuthorName())
	assert.Equal(t, "B", Book{Authors: []string{"B"}}.AuthorName())
	assert.Equal(t, UnknownAuthor, Book{}.AuthorName())
}
