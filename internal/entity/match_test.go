package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatch(t *testing.T) {
	// When: a match is created for two peers
	match := NewMatch("m-1", "10.0.0.1:5000", "10.0.0.2:5000")

	// Then: it is waiting with an empty board and both seats filled
	require.NotNil(t, match)
	assert.Equal(t, "m-1", match.ID)
	assert.True(t, match.IsWaiting())
	assert.Equal(t, NewBoard().Rows(), match.Board)
	require.Len(t, match.Players, 2)
	assert.Equal(t, &Player{Side: "A", Mark: "R", Addr: "10.0.0.1:5000"}, match.Players[0])
	assert.Equal(t, &Player{Side: "B", Mark: "Y", Addr: "10.0.0.2:5000"}, match.Players[1])
	assert.False(t, match.StartedAt.IsZero())
}

func TestMatch_Finish(t *testing.T) {
	t.Run("Win records the winning side", func(t *testing.T) {
		// Given: an ongoing match with B to move
		match := NewMatch("m-1", "a", "b")
		match.Status = StatusOngoing
		match.Turn = SideB.String()

		// When: B wins
		match.Finish(WinB)

		// Then: the snapshot is finished with B as the winner
		assert.True(t, match.IsFinished())
		assert.Equal(t, "B", match.Winner)
		assert.Empty(t, match.Turn)
	})

	t.Run("Draw records the draw marker", func(t *testing.T) {
		match := NewMatch("m-2", "a", "b")
		match.Status = StatusOngoing

		match.Finish(Draw)

		assert.True(t, match.IsFinished())
		assert.Equal(t, WinnerDraw, match.Winner)
	})
}

func TestOutcome(t *testing.T) {
	side, ok := WinFor(SideA).Winner()
	assert.True(t, ok)
	assert.Equal(t, SideA, side)

	side, ok = WinFor(SideB).Winner()
	assert.True(t, ok)
	assert.Equal(t, SideB, side)

	_, ok = Draw.Winner()
	assert.False(t, ok)
	assert.False(t, Pending.IsDecided())
	assert.True(t, Draw.IsDecided())
	assert.Equal(t, "win_a", WinA.String())
}
