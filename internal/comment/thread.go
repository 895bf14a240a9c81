package comment

import (
	"context"
	"sync"
	"time"

	"bookhub/internal/platform/logging"
)

// Thread is the comment view of one book: comments with their replies,
// which reply lists are expanded, and per-comment vote state.
type Thread struct {
	svc    *Service
	bookID string

	mu       sync.Mutex
	comments []Comment
	expanded map[int64]bool
	votes    map[int64]Vote
}

func (s *Service) Thread(bookID string) *Thread {
	return &Thread{
		svc:      s,
		bookID:   bookID,
		expanded: map[int64]bool{},
		votes:    map[int64]Vote{},
	}
}

func (t *Thread) BookID() string { return t.bookID }

// Load fetches the comments, every reply list and all like counts. All reply
// lists start expanded and every vote direction becomes unknown.
func (t *Thread) Load(ctx context.Context) {
	comments := t.svc.Comments(ctx, t.bookID)
	votes := map[int64]Vote{}
	expanded := map[int64]bool{}

	for i := range comments {
		comments[i].Replies = t.svc.Replies(ctx, comments[i].ID)
		expanded[comments[i].ID] = true
		votes[comments[i].ID] = Vote{Counts: t.svc.Counts(ctx, comments[i].ID)}
		for _, r := range comments[i].Replies {
			votes[r.ID] = Vote{Counts: t.svc.Counts(ctx, r.ID)}
		}
	}

	t.mu.Lock()
	t.comments = comments
	t.expanded = expanded
	t.votes = votes
	t.mu.Unlock()
}

// Comments returns a copy of the loaded comments. Collapsed comments are
// returned without their replies.
func (t *Thread) Comments() []Comment {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Comment, len(t.comments))
	for i, c := range t.comments {
		if t.expanded[c.ID] {
			c.Replies = append([]Comment(nil), c.Replies...)
		} else {
			c.Replies = nil
		}
		out[i] = c
	}
	return out
}

func (t *Thread) Expanded(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expanded[id]
}

// VoteOf returns the vote state of a comment or reply.
func (t *Thread) VoteOf(id int64) Vote {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.votes[id]
}

// Toggle collapses an expanded reply list, or expands it and re-fetches the replies.
func (t *Thread) Toggle(ctx context.Context, id int64) bool {
	t.mu.Lock()
	open := !t.expanded[id]
	t.expanded[id] = open
	t.mu.Unlock()

	if open {
		t.refreshReplies(ctx, id)
	}
	return open
}

func (t *Thread) refreshReplies(ctx context.Context, id int64) {
	replies := t.svc.Replies(ctx, id)
	counts := make(map[int64]Counts, len(replies))
	for _, r := range replies {
		counts[r.ID] = t.svc.Counts(ctx, r.ID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.comments {
		if t.comments[i].ID == id {
			t.comments[i].Replies = replies
		}
	}
	for rid, c := range counts {
		v := t.votes[rid]
		v.Counts = c
		t.votes[rid] = v
	}
}

// Post submits a top-level comment and reloads the thread.
func (t *Thread) Post(ctx context.Context, content string) error {
	if err := t.svc.Post(ctx, t.bookID, content); err != nil {
		return err
	}
	t.Load(ctx)
	return nil
}

// Reply answers comment id and refreshes only its replies.
func (t *Thread) Reply(ctx context.Context, id int64, content string) error {
	if err := t.svc.Reply(ctx, id, content); err != nil {
		return err
	}
	t.mu.Lock()
	t.expanded[id] = true
	t.mu.Unlock()
	t.refreshReplies(ctx, id)
	return nil
}

// Delete removes a comment and reloads the thread.
func (t *Thread) Delete(ctx context.Context, id int64) error {
	if err := t.svc.Delete(ctx, id); err != nil {
		return err
	}
	t.Load(ctx)
	return nil
}

// Vote applies d optimistically and sends it. Voting the current direction
// again withdraws the vote (sent as 0). On success the counts are re-read
// after the reconcile delay and the vote becomes confirmed; if that read
// fails the vote stays pending. On failure the counts are re-read at once,
// the previous vote is restored and the send error is returned.
func (t *Thread) Vote(ctx context.Context, id int64, d Direction) (Vote, error) {
	t.mu.Lock()
	prev := t.votes[id]
	next := d
	if d == prev.Direction {
		next = None
	}
	optimistic := Vote{State: VotePending, Direction: next, Counts: apply(prev.Counts, prev.Direction, next)}
	t.votes[id] = optimistic
	t.mu.Unlock()

	if err := t.svc.repo.Vote(ctx, id, next); err != nil {
		restored := prev
		if c, cerr := t.svc.repo.Counts(ctx, id); cerr == nil {
			restored.Counts = c
		} else {
			logging.Ctx(ctx).Warn().Err(cerr).Int64("comment", id).Msg("re-read counts after failed vote")
		}
		t.set(id, restored)
		return restored, err
	}

	if t.svc.reconcileDelay > 0 {
		timer := time.NewTimer(t.svc.reconcileDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return optimistic, nil
		}
	}

	c, err := t.svc.repo.Counts(ctx, id)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("comment", id).Msg("reconcile like counts")
		return optimistic, nil
	}
	confirmed := Vote{State: VoteConfirmed, Direction: next, Counts: c}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.votes[id] != optimistic {
		// a later vote superseded this one
		return t.votes[id], nil
	}
	t.votes[id] = confirmed
	return confirmed, nil
}

func (t *Thread) set(id int64, v Vote) {
	t.mu.Lock()
	t.votes[id] = v
	t.mu.Unlock()
}

// apply moves one vote from prev to next, never going below zero.
func apply(c Counts, prev, next Direction) Counts {
	switch prev {
	case Like:
		c.Likes--
	case Dislike:
		c.Dislikes--
	}
	switch next {
	case Like:
		c.Likes++
	case Dislike:
		c.Dislikes++
	}
	c.Likes = max(c.Likes, 0)
	c.Dislikes = max(c.Dislikes, 0)
	return c
}
