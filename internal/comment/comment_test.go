package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComment_Normalize(t *testing.T) {
	id := int64(3)
	tests := []struct {
		name string
		in   Comment
		want User
	}{
		{"no user", Comment{ID: 1}, User{Username: Anonymous}},
		{"empty username", Comment{ID: 1, User: &User{ID: &id}}, User{ID: &id, Username: Anonymous}},
		{"named", Comment{ID: 1, User: &User{ID: &id, Username: "alice"}}, User{ID: &id, Username: "alice"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.normalize()
			assert.Equal(t, tt.want, *got.User)
		})
	}
}

func TestComment_FormatDate(t *testing.T) {
	assert.Equal(t, "05/03/2024 14:07", Comment{CreatedAt: "2024-03-05T14:07:09"}.FormatDate())
	assert.Equal(t, "05/03/2024 14:07", Comment{CreatedAt: "2024-03-05T14:07:09.123456"}.FormatDate())
	assert.Equal(t, "05/03/2024 14:07", Comment{CreatedAt: "2024-03-05T14:07:09Z"}.FormatDate())
	assert.Equal(t, "Invalid date", Comment{CreatedAt: "yesterday"}.FormatDate())
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		prev, next Direction
		in, want   Counts
	}{
		{"like from nothing", None, Like, Counts{3, 1}, Counts{4, 1}},
		{"switch to dislike", Like, Dislike, Counts{4, 1}, Counts{3, 2}},
		{"withdraw", Dislike, None, Counts{3, 2}, Counts{3, 1}},
		{"never negative", Like, None, Counts{0, 0}, Counts{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apply(tt.in, tt.prev, tt.next))
		})
	}
}
