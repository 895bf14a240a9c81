package comment

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookhub/internal/platform/apiclient"
	"bookhub/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_LoadOrdersAndExpands(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.AddUser("alice", "password1")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	older := api.AddComment("OL1W", 0, "alice", "older", base)
	newer := api.AddComment("OL1W", 0, "ghost", "newer", base.Add(time.Hour))
	api.AddComment("OL1W", older, "alice", "second reply", base.Add(3*time.Hour))
	api.AddComment("OL1W", older, "alice", "first reply", base.Add(2*time.Hour))

	th := NewService(NewAPIRepo(api.Client("")), 0).Thread("OL1W")
	th.Load(context.Background())

	comments := th.Comments()
	require.Len(t, comments, 2)
	assert.Equal(t, newer, comments[0].ID)
	assert.Equal(t, Anonymous, comments[0].User.Username)
	require.Len(t, comments[1].Replies, 2)
	assert.Equal(t, "first reply", comments[1].Replies[0].Content)
	assert.True(t, th.Expanded(older))
	assert.Equal(t, VoteUnknown, th.VoteOf(older).State)
}

func TestThread_Toggle(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	tok := api.AddUser("alice", "password1")
	parent := api.AddComment("OL1W", 0, "alice", "parent", time.Now())
	th := NewService(NewAPIRepo(api.Client(tok)), 0).Thread("OL1W")
	ctx := context.Background()
	th.Load(ctx)

	assert.False(t, th.Toggle(ctx, parent))
	assert.Nil(t, th.Comments()[0].Replies)

	api.AddComment("OL1W", parent, "alice", "late reply", time.Now())
	assert.True(t, th.Toggle(ctx, parent))
	require.Len(t, th.Comments()[0].Replies, 1)
	assert.Equal(t, "late reply", th.Comments()[0].Replies[0].Content)
}

func TestThread_PostReplyDelete(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	tok := api.AddUser("alice", "password1")
	th := NewService(NewAPIRepo(api.Client(tok)), 0).Thread("OL1W")
	ctx := context.Background()

	require.NoError(t, th.Post(ctx, "great book"))
	comments := th.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "alice", comments[0].User.Username)

	require.NoError(t, th.Reply(ctx, comments[0].ID, "agreed"))
	require.Len(t, th.Comments()[0].Replies, 1)

	assert.ErrorIs(t, th.Post(ctx, "   "), ErrEmptyContent)

	require.NoError(t, th.Delete(ctx, comments[0].ID))
	assert.Empty(t, th.Comments())
}

func TestThread_WritesNeedToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	th := NewService(NewAPIRepo(api.Client("")), 0).Thread("OL1W")

	err := th.Post(context.Background(), "hi")

	assert.ErrorIs(t, err, apiclient.ErrAuthRequired)
	assert.Equal(t, int64(0), api.Requests())
}

func TestThread_VoteOptimisticThenConfirmed(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	th := NewService(repo, 50*time.Millisecond).Thread("OL1W")
	th.votes[42] = Vote{Counts: Counts{Likes: 3, Dislikes: 1}}

	sent := make(chan struct{})
	repo.EXPECT().Vote(gomock.Any(), int64(42), Like).DoAndReturn(func(context.Context, int64, Direction) error {
		close(sent)
		return nil
	})
	repo.EXPECT().Counts(gomock.Any(), int64(42)).Return(Counts{Likes: 4, Dislikes: 1}, nil)

	done := make(chan Vote)
	go func() {
		v, err := th.Vote(context.Background(), 42, Like)
		assert.NoError(t, err)
		done <- v
	}()

	<-sent
	pending := th.VoteOf(42)
	assert.Equal(t, VotePending, pending.State)
	assert.Equal(t, Counts{Likes: 4, Dislikes: 1}, pending.Counts)

	v := <-done
	assert.Equal(t, VoteConfirmed, v.State)
	assert.Equal(t, Like, v.Direction)
	assert.Equal(t, v, th.VoteOf(42))
}

func TestThread_VoteSameDirectionWithdraws(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	th := NewService(repo, 0).Thread("OL1W")
	th.votes[7] = Vote{State: VoteConfirmed, Direction: Dislike, Counts: Counts{Likes: 0, Dislikes: 2}}

	repo.EXPECT().Vote(gomock.Any(), int64(7), None).Return(nil)
	repo.EXPECT().Counts(gomock.Any(), int64(7)).Return(Counts{Likes: 0, Dislikes: 1}, nil)

	v, err := th.Vote(context.Background(), 7, Dislike)

	require.NoError(t, err)
	assert.Equal(t, None, v.Direction)
	assert.Equal(t, Counts{Likes: 0, Dislikes: 1}, v.Counts)
}

func TestThread_VoteFailureRestores(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	th := NewService(repo, time.Hour).Thread("OL1W")
	before := Vote{State: VoteUnknown, Counts: Counts{Likes: 3, Dislikes: 1}}
	th.votes[42] = before

	sendErr := &apiclient.APIError{Status: 500, Detail: "boom"}
	repo.EXPECT().Vote(gomock.Any(), int64(42), Like).Return(sendErr)
	repo.EXPECT().Counts(gomock.Any(), int64(42)).Return(Counts{Likes: 3, Dislikes: 1}, nil)

	start := time.Now()
	v, err := th.Vote(context.Background(), 42, Like)

	assert.True(t, errors.Is(err, sendErr))
	assert.Less(t, time.Since(start), time.Minute, "no reconcile wait on failure")
	assert.Equal(t, before, v)
	assert.Equal(t, before, th.VoteOf(42))
}

func TestThread_VoteReconcileReadFailsStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	th := NewService(repo, 0).Thread("OL1W")

	repo.EXPECT().Vote(gomock.Any(), int64(1), Like).Return(nil)
	repo.EXPECT().Counts(gomock.Any(), int64(1)).Return(Counts{}, errors.New("down"))

	v, err := th.Vote(context.Background(), 1, Like)

	require.NoError(t, err)
	assert.Equal(t, VotePending, v.State)
	assert.Equal(t, Counts{Likes: 1}, v.Counts)
}

func TestThread_VoteAgainstAPI(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	tok := api.AddUser("alice", "password1")
	api.AddUser("bob", "password2")
	id := api.AddComment("OL1W", 0, "bob", "hello", time.Now())
	th := NewService(NewAPIRepo(api.Client(tok)), time.Millisecond).Thread("OL1W")
	ctx := context.Background()
	th.Load(ctx)

	v, err := th.Vote(ctx, id, Like)
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 1}, v.Counts)
	assert.Equal(t, 1, api.Votes(id, "alice"))

	v, err = th.Vote(ctx, id, Dislike)
	require.NoError(t, err)
	assert.Equal(t, Counts{Dislikes: 1}, v.Counts)

	v, err = th.Vote(ctx, id, Dislike)
	require.NoError(t, err)
	assert.Equal(t, Counts{}, v.Counts)
	assert.Equal(t, 0, api.Votes(id, "alice"))
}
