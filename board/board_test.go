package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sente-ai/gozero/board"
)

func newTestBoard(t *testing.T, n int) *board.Board {
	t.Helper()
	z := board.NewZobristTable(1)
	return board.NewBoard(n, z)
}

func TestNewBoardAllEmpty(t *testing.T) {
	b := newTestBoard(t, 9)
	for _, s := range []string{"A1", "E5", "J9", "C7"} {
		v, err := board.ParseVertex(9, s)
		require.NoError(t, err)
		assert.Equal(t, board.Empty, b.At(v))
	}
	assert.Equal(t, board.Black, b.ToMove())
}

func TestPlayAlternatesToMove(t *testing.T) {
	b := newTestBoard(t, 9)
	v, err := board.ParseVertex(9, "C3")
	require.NoError(t, err)

	_, err = b.Play(board.Black, v)
	require.NoError(t, err)
	assert.Equal(t, board.White, b.ToMove())
	assert.Equal(t, board.Black, b.At(v))
}

func TestPlayRejectsOccupiedPoint(t *testing.T) {
	b := newTestBoard(t, 9)
	v, err := board.ParseVertex(9, "C3")
	require.NoError(t, err)
	_, err = b.Play(board.Black, v)
	require.NoError(t, err)

	_, err = b.Play(board.White, v)
	assert.Error(t, err)
}

func TestCaptureRemovesGroup(t *testing.T) {
	b := newTestBoard(t, 5)
	// Surround a lone white stone at C3 with black on all four sides.
	white, _ := board.ParseVertex(5, "C3")
	_, err := b.Play(board.White, white)
	require.NoError(t, err)

	for _, s := range []string{"C2", "B3", "D3"} {
		v, _ := board.ParseVertex(5, s)
		_, err := b.Play(board.Black, v)
		require.NoError(t, err)
		_, err = b.Play(board.White, board.PASS)
		require.NoError(t, err)
	}
	last, _ := board.ParseVertex(5, "C4")
	captured, err := b.Play(board.Black, last)
	require.NoError(t, err)
	assert.Contains(t, captured, white)
	assert.Equal(t, board.Empty, b.At(white))
}

func TestSuicideIsIllegal(t *testing.T) {
	b := newTestBoard(t, 5)
	for _, s := range []string{"C2", "B3", "D3", "C4"} {
		v, _ := board.ParseVertex(5, s)
		_, err := b.Play(board.Black, v)
		require.NoError(t, err)
		_, err = b.Play(board.White, board.PASS)
		require.NoError(t, err)
	}
	center, _ := board.ParseVertex(5, "C3")
	assert.True(t, b.IsSuicide(board.White, center))
	_, err := b.Play(board.White, center)
	assert.Error(t, err)
}

func TestHashMatchesCalcHash(t *testing.T) {
	b := newTestBoard(t, 9)
	for _, s := range []string{"C3", "D4", "E5"} {
		v, _ := board.ParseVertex(9, s)
		_, err := b.Play(b.ToMove(), v)
		require.NoError(t, err)
	}
	assert.Equal(t, b.Hash(), b.Clone().Hash())
	assert.Equal(t, b.RecomputeHash(), b.Hash())

	_, err := b.Play(b.ToMove(), board.PASS)
	require.NoError(t, err)
	_, err = b.Play(b.ToMove(), board.PASS)
	require.NoError(t, err)
	v, _ := board.ParseVertex(9, "G7")
	_, err = b.Play(b.ToMove(), v)
	require.NoError(t, err)
	assert.Equal(t, b.RecomputeHash(), b.Hash(), "hash must match the from-scratch oracle after a pass-then-move sequence")
}

func TestCloneIsIndependent(t *testing.T) {
	b := newTestBoard(t, 9)
	clone := b.Clone()
	v, _ := board.ParseVertex(9, "E5")
	_, err := b.Play(board.Black, v)
	require.NoError(t, err)
	assert.Equal(t, board.Empty, clone.At(v))
}
