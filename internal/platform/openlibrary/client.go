// Package openlibrary holds helpers for the Open Library identifiers and
// cover CDN that the book API passes through unchanged.
package openlibrary

import (
	"fmt"
	"strings"
)

const coversBaseURL = "https://covers.openlibrary.org"

// Size is a cover CDN size code.
type Size string

const (
	Small  Size = "S"
	Medium Size = "M"
	Large  Size = "L"
)

func (s Size) valid() bool {
	return s == Small || s == Medium || s == Large
}

// CoverURL returns the cover image URL for a cover id, or "" when the book has none.
func CoverURL(coverID *int, size Size) string {
	if coverID == nil || *coverID <= 0 {
		return ""
	}
	if !size.valid() {
		size = Medium
	}
	return fmt.Sprintf("%s/b/id/%d-%s.jpg", coversBaseURL, *coverID, size)
}

// AuthorPhotoURL uses the first photo id; Open Library marks missing photos with -1.
func AuthorPhotoURL(photos []int, size Size) string {
	if len(photos) == 0 || photos[0] <= 0 {
		return ""
	}
	if !size.valid() {
		size = Medium
	}
	return fmt.Sprintf("%s/a/id/%d-%s.jpg", coversBaseURL, photos[0], size)
}

// AuthorKey strips the "/authors/" prefix: "/authors/OL1A" and "OL1A" are the same author.
func AuthorKey(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "/authors/")
}

// WorkKey strips the "/works/" prefix.
func WorkKey(key string) string {
	return strings.TrimPrefix(strings.TrimSpace(key), "/works/")
}

// FormatBio flattens a bio that can be a string or {type: ..., value: ...}.
func FormatBio(bio any) string {
	switch v := bio.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return ""
}
