package rating

import (
	"context"
	"errors"
	"testing"

	"bookhub/internal/entity"
	"bookhub/internal/platform/apiclient"
	"bookhub/internal/testutil"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		score   int
		setup   func(*MockRepository)
		wantErr error
	}{
		{name: "zero", score: 0, wantErr: ErrInvalidScore},
		{name: "six", score: 6, wantErr: ErrInvalidScore},
		{
			name:  "valid",
			score: 4,
			setup: func(m *MockRepository) { m.EXPECT().Submit(gomock.Any(), "OL1W", 4).Return(nil) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := NewMockRepository(ctrl)
			if tt.setup != nil {
				tt.setup(repo)
			}
			err := NewService(repo).Submit(ctx, "OL1W", tt.score)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestService_SummaryDegrades(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	repo.EXPECT().Summary(gomock.Any(), "OL1W").Return(Summary{}, errors.New("down"))

	s := NewService(repo).Summary(context.Background(), "OL1W")

	assert.Equal(t, ZeroSummary(), s)
	assert.Equal(t, 0, s.Count(5))
	assert.Nil(t, s.UserScore)
}

func TestService_RoundTrip(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.AddBooks(entity.Book{WorkKey: "OL1W", Title: "Dune"})
	alice := api.AddUser("alice", "password1")
	bob := api.AddUser("bob", "password2")
	ctx := context.Background()

	asAlice := NewService(NewAPIRepo(api.Client(alice)))
	asBob := NewService(NewAPIRepo(api.Client(bob)))

	require.NoError(t, asAlice.Submit(ctx, "OL1W", 5))
	require.NoError(t, asBob.Submit(ctx, "OL1W", 2))

	s := asAlice.Summary(ctx, "OL1W")
	assert.Equal(t, 2, s.TotalRatings)
	assert.InDelta(t, 3.5, s.AverageScore, 0.001)
	assert.Equal(t, 1, s.Count(5))
	assert.Equal(t, 1, s.Count(2))
	require.NotNil(t, s.UserScore)
	assert.Equal(t, 5, *s.UserScore)

	require.NoError(t, asAlice.Delete(ctx, "OL1W"))
	s = asAlice.Summary(ctx, "OL1W")
	assert.Equal(t, 1, s.TotalRatings)
	assert.Nil(t, s.UserScore)
	assert.InDelta(t, 2.0, asBob.Average(ctx, "OL1W"), 0.001)
}

func TestService_WritesNeedToken(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	svc := NewService(NewAPIRepo(api.Client("")))

	err := svc.Submit(context.Background(), "OL1W", 3)

	assert.ErrorIs(t, err, apiclient.ErrAuthRequired)
	assert.Equal(t, int64(0), api.Requests())
}
