package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/internal/apperror"
	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/testing/suite"
)

func TestMatchRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	matchRepo := NewMatchRepository(st.Storage, time.Hour)

	// Given: a new match snapshot
	match := entity.NewMatch("123", "10.0.0.1:1", "10.0.0.2:2")

	// When: CreateOrUpdate is called
	err := matchRepo.CreateOrUpdate(ctx, match)

	// Then: the snapshot is stored with an expiry and indexed
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "match:123").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)

	isMember, err := st.Storage.SIsMember(ctx, "matches", "123").Result()
	require.NoError(t, err)
	assert.True(t, isMember)
}

func TestMatchRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// Given: a stored match that has been played on
		match := entity.NewMatch("123", "a", "b")
		match.Status = entity.StatusOngoing
		match.Turn = entity.SideB.String()
		match.Moves = 1

		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: GetByID is called with the existing ID
		retrieved, err := matchRepo.GetByID(ctx, match.ID)

		// Then: the retrieved snapshot matches the saved one
		require.NoError(t, err)
		assert.Equal(t, match.ID, retrieved.ID)
		assert.Equal(t, entity.StatusOngoing, retrieved.Status)
		assert.Equal(t, "B", retrieved.Turn)
		assert.Equal(t, 1, retrieved.Moves)
		assert.Equal(t, match.Board, retrieved.Board)
		assert.Equal(t, match.Players, retrieved.Players)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// When: GetByID is called with a non-existent ID
		retrieved, err := matchRepo.GetByID(ctx, "9999999")

		// Then: ErrMatchNotFound is returned
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestMatchRepository_List(t *testing.T) {
	t.Run("List_ReturnsLiveMatches", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// Given: two stored matches
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, entity.NewMatch("1", "a", "b")))
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, entity.NewMatch("2", "c", "d")))

		// When: List is called
		matches, err := matchRepo.List(ctx)

		// Then: both matches are returned
		require.NoError(t, err)
		require.Len(t, matches, 2)

		ids := []string{matches[0].ID, matches[1].ID}
		assert.ElementsMatch(t, []string{"1", "2"}, ids)
	})

	t.Run("List_Empty", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		matches, err := matchRepo.List(ctx)

		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("List_PrunesExpiredSnapshots", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// Given: a stored match whose snapshot vanished behind the index
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, entity.NewMatch("1", "a", "b")))
		require.NoError(t, st.Storage.Del(ctx, "match:1").Err())

		// When: List is called
		matches, err := matchRepo.List(ctx)

		// Then: nothing is returned and the stale index entry is gone
		require.NoError(t, err)
		assert.Empty(t, matches)

		isMember, err := st.Storage.SIsMember(ctx, "matches", "1").Result()
		require.NoError(t, err)
		assert.False(t, isMember)
	})
}

func TestMatchRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// Given: a stored match
		match := entity.NewMatch("123", "a", "b")
		require.NoError(t, matchRepo.CreateOrUpdate(ctx, match))

		// When: DeleteByID is called with the existing ID
		err := matchRepo.DeleteByID(ctx, match.ID)

		// Then: the match is gone from the snapshot and the index
		require.NoError(t, err)

		_, err = matchRepo.GetByID(ctx, match.ID)
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)

		matches, err := matchRepo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		matchRepo := NewMatchRepository(st.Storage, time.Hour)

		// When: DeleteByID is called with a non-existent ID
		err := matchRepo.DeleteByID(ctx, "9999999")

		// Then: ErrMatchNotFound is returned
		require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	})
}
