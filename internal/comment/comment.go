// Package comment loads comment threads for a book and handles posting,
// replies, deletion and like/dislike votes.
package comment

import (
	"errors"
	"time"
)

const Anonymous = "Anonymous"

var ErrEmptyContent = errors.New("comment content is empty")

type User struct {
	ID       *int64 `json:"id"`
	Username string `json:"username"`
}

type Comment struct {
	ID        int64     `json:"comment_id" yaml:"comment_id" validate:"required"`
	Content   string    `json:"content" yaml:"content"`
	User      *User     `json:"user" yaml:"user"`
	CreatedAt string    `json:"created_at" yaml:"created_at"`
	Replies   []Comment `json:"replies,omitempty" yaml:"replies,omitempty"`
}

// normalize fills in the Anonymous user for comments without one.
func (c Comment) normalize() Comment {
	switch {
	case c.User == nil:
		c.User = &User{Username: Anonymous}
	case c.User.Username == "":
		u := *c.User
		u.Username = Anonymous
		c.User = &u
	}
	return c
}

// Created parses CreatedAt; the API sends RFC 3339 or naive ISO timestamps.
func (c Comment) Created() (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, c.CreatedAt); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders CreatedAt as DD/MM/YYYY HH:MM.
func (c Comment) FormatDate() string {
	t, ok := c.Created()
	if !ok {
		return "Invalid date"
	}
	return t.Format("02/01/2006 15:04")
}

// Counts are the server-side vote totals for one comment.
type Counts struct {
	Likes    int `json:"likes_count" yaml:"likes_count" validate:"gte=0"`
	Dislikes int `json:"dislikes_count" yaml:"dislikes_count" validate:"gte=0"`
}

// Direction is the viewer's vote: +1 like, -1 dislike, 0 none.
type Direction int

const (
	None    Direction = 0
	Like    Direction = 1
	Dislike Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Like:
		return "like"
	case Dislike:
		return "dislike"
	default:
		return "none"
	}
}

// VoteState tracks how much the client knows about the viewer's vote.
type VoteState int

const (
	// VoteUnknown: the server does not report the viewer's vote, so after a
	// load the direction is unknown.
	VoteUnknown VoteState = iota
	// VotePending: an optimistic update is applied and not yet verified.
	VotePending
	// VoteConfirmed: the vote was accepted and the counts re-read afterwards.
	VoteConfirmed
)

func (s VoteState) String() string {
	switch s {
	case VotePending:
		return "pending"
	case VoteConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

type Vote struct {
	State     VoteState
	Direction Direction
	Counts    Counts
}
