package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
)

var errRedisDown = errors.New("redis down")

type mockMatchRepo struct {
	mock.Mock
}

func (that *mockMatchRepo) CreateOrUpdate(ctx context.Context, match *entity.Match) error {
	args := that.Called(ctx, match)
	return args.Error(0)
}

func (that *mockMatchRepo) GetByID(ctx context.Context, id string) (*entity.Match, error) {
	args := that.Called(ctx, id)
	match, _ := args.Get(0).(*entity.Match)
	return match, args.Error(1)
}

func (that *mockMatchRepo) List(ctx context.Context) ([]*entity.Match, error) {
	args := that.Called(ctx)
	matches, _ := args.Get(0).([]*entity.Match)
	return matches, args.Error(1)
}

func (that *mockMatchRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func newTestManager(repo *mockMatchRepo) *MatchManager {
	return NewMatchManager(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
}

func TestMatchManager_Track(t *testing.T) {
	ctx := context.Background()

	t.Run("Saves the snapshot", func(t *testing.T) {
		// Given: a repository accepting writes
		repo := &mockMatchRepo{}
		match := entity.NewMatch("m-1", "a", "b")
		repo.On("CreateOrUpdate", ctx, match).Return(nil).Once()

		// When: the match is tracked
		newTestManager(repo).Track(ctx, match)

		// Then: the snapshot reached the repository
		repo.AssertExpectations(t)
	})

	t.Run("Swallows repository failures", func(t *testing.T) {
		// Given: a repository that is down
		repo := &mockMatchRepo{}
		repo.On("CreateOrUpdate", ctx, mock.AnythingOfType("*entity.Match")).Return(errRedisDown).Once()

		// When: the match is tracked
		// Then: nothing panics and the call was attempted
		assert.NotPanics(t, func() {
			newTestManager(repo).Track(ctx, entity.NewMatch("m-1", "a", "b"))
		})
		repo.AssertExpectations(t)
	})
}

func TestMatchManager_Forget(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes the match", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("DeleteByID", ctx, "m-1").Return(nil).Once()

		newTestManager(repo).Forget(ctx, "m-1")

		repo.AssertExpectations(t)
	})

	t.Run("Missing match is not an error", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("DeleteByID", ctx, "m-1").Return(apperror.ErrMatchNotFound).Once()

		assert.NotPanics(t, func() {
			newTestManager(repo).Forget(ctx, "m-1")
		})
		repo.AssertExpectations(t)
	})
}

func TestMatchManager_ListMatches(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns live matches", func(t *testing.T) {
		// Given: a repository holding one match
		repo := &mockMatchRepo{}
		stored := []*entity.Match{entity.NewMatch("m-1", "a", "b")}
		repo.On("List", ctx).Return(stored, nil).Once()

		// When: listing matches
		matches, err := newTestManager(repo).ListMatches(ctx)

		// Then: the stored matches are returned
		require.NoError(t, err)
		assert.Equal(t, stored, matches)
	})

	t.Run("Wraps repository errors", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("List", ctx).Return(nil, errRedisDown).Once()

		matches, err := newTestManager(repo).ListMatches(ctx)

		require.ErrorIs(t, err, errRedisDown)
		assert.Nil(t, matches)
	})
}

func TestMatchManager_GetMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns the match", func(t *testing.T) {
		repo := &mockMatchRepo{}
		stored := entity.NewMatch("m-1", "a", "b")
		repo.On("GetByID", ctx, "m-1").Return(stored, nil).Once()

		match, err := newTestManager(repo).GetMatch(ctx, "m-1")

		require.NoError(t, err)
		assert.Equal(t, stored, match)
	})

	t.Run("Keeps ErrMatchNotFound visible", func(t *testing.T) {
		repo := &mockMatchRepo{}
		repo.On("GetByID", ctx, "nope").Return(nil, apperror.ErrMatchNotFound).Once()

		match, err := newTestManager(repo).GetMatch(ctx, "nope")

		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
		assert.Nil(t, match)
	})
}
