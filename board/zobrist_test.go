package board_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sente-ai/gozero/board"
)

func TestZobristTableDeterministic(t *testing.T) {
	a := board.NewZobristTable(42)
	b := board.NewZobristTable(42)

	v, _ := board.ParseVertex(9, "C3")
	assert.Equal(t, a.Stone(board.Black, v), b.Stone(board.Black, v))
	assert.Equal(t, a.Turn(), b.Turn())
	assert.Equal(t, a.Pass(3), b.Pass(3))
}

func TestZobristTableDiffersBySeed(t *testing.T) {
	a := board.NewZobristTable(1)
	b := board.NewZobristTable(2)

	v, _ := board.ParseVertex(9, "C3")
	assert.NotEqual(t, a.Stone(board.Black, v), b.Stone(board.Black, v))
}

func TestZobristPassClampsIndex(t *testing.T) {
	z := board.NewZobristTable(1)
	assert.Equal(t, z.Pass(4), z.Pass(100))
	assert.Equal(t, z.Pass(0), z.Pass(-1))
}

func TestZobristBlackWhiteDistinct(t *testing.T) {
	z := board.NewZobristTable(1)
	v, _ := board.ParseVertex(9, "C3")
	assert.NotEqual(t, z.Stone(board.Black, v), z.Stone(board.White, v))
}
