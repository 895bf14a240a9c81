package openlibrary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func TestCoverURL(t *testing.T) {
	tests := []struct {
		name string
		id   *int
		size Size
		want string
	}{
		{"nil id", nil, Medium, ""},
		{"zero id", intPtr(0), Medium, ""},
		{"large", intPtr(8231856), Large, "https://covers.openlibrary.org/b/id/8231856-L.jpg"},
		{"unknown size falls back to M", intPtr(12), Size("XL"), "https://covers.openlibrary.org/b/id/12-M.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoverURL(tt.id, tt.size))
		})
	}
}

func TestAuthorPhotoURL(t *testing.T) {
	assert.Equal(t, "", AuthorPhotoURL(nil, Small))
	assert.Equal(t, "", AuthorPhotoURL([]int{-1}, Small))
	assert.Equal(t, "https://covers.openlibrary.org/a/id/5543033-S.jpg", AuthorPhotoURL([]int{5543033, 1}, Small))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "OL23919A", AuthorKey("/authors/OL23919A"))
	assert.Equal(t, "OL23919A", AuthorKey("OL23919A"))
	assert.Equal(t, "OL82563W", WorkKey("/works/OL82563W"))
}

func TestFormatBio(t *testing.T) {
	assert.Equal(t, "", FormatBio(nil))
	assert.Equal(t, "plain", FormatBio("plain"))
	assert.Equal(t, "typed", FormatBio(map[string]any{"type": "/type/text", "value": "typed"}))
	assert.Equal(t, "", FormatBio(42))
}
