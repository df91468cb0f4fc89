package gozero_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sente-ai/gozero"
	"github.com/sente-ai/gozero/board"
	"github.com/sente-ai/gozero/nn"
)

// uniformEvaluator returns a flat policy and a neutral value for any
// board size, letting engine tests exercise search and play without a
// real weights file.
type uniformEvaluator struct{}

func (uniformEvaluator) Evaluate(features []float32) (nn.Eval, error) {
	n := 9
	policy := make([]float32, n*n+1)
	for i := range policy {
		policy[i] = 1.0 / float32(len(policy))
	}
	return nn.Eval{Policy: policy, Value: 0}, nil
}

func newTestEngine(t *testing.T) *gozero.Engine {
	t.Helper()
	cfg := gozero.DefaultConfig(9)
	cfg.MCTS.TranspositionSize = 64
	cfg.MCTS.Workers = 2
	e, err := gozero.NewEngine(cfg, uniformEvaluator{})
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestNewEngineStartsWithEmptyBoard(t *testing.T) {
	e := newTestEngine(t)
	b := e.Board()
	for _, s := range []string{"A1", "E5", "J9"} {
		v, err := board.ParseVertex(b.Size(), s)
		require.NoError(t, err)
		assert.Equal(t, board.Empty, b.At(v))
	}
	assert.Equal(t, board.Black, b.ToMove())
}

func TestEnginePlayAlternatesToMove(t *testing.T) {
	e := newTestEngine(t)
	v, err := board.ParseVertex(9, "C3")
	require.NoError(t, err)
	require.NoError(t, e.Play(board.Black, v))

	assert.Equal(t, board.White, e.Board().ToMove())
	assert.Equal(t, board.Black, e.Board().At(v))
}

func TestEnginePlayRejectsIllegalMove(t *testing.T) {
	e := newTestEngine(t)
	v, err := board.ParseVertex(9, "C3")
	require.NoError(t, err)
	require.NoError(t, e.Play(board.Black, v))

	err = e.Play(board.White, v)
	assert.Error(t, err)
}

func TestEnginePlayResignRecordsResignation(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.Play(board.Black, board.RESIGN))
	resigned, color := e.GameState().Resigned()
	assert.True(t, resigned)
	assert.Equal(t, board.Black, color)
}

func TestEngineGenMovePlaysALegalMove(t *testing.T) {
	e := newTestEngine(t)
	e.SetTimeSettings(2, 0, 0, 0)

	move, report, err := e.GenMove(board.Black)
	require.NoError(t, err)
	if move != board.RESIGN && move != board.PASS {
		assert.Equal(t, board.Black, e.Board().At(move))
	}
	assert.GreaterOrEqual(t, report.Playouts, 0)
}

func TestEngineUndoRestoresPriorPosition(t *testing.T) {
	e := newTestEngine(t)
	v, err := board.ParseVertex(9, "E5")
	require.NoError(t, err)
	require.NoError(t, e.Play(board.Black, v))

	assert.True(t, e.Undo())
	assert.Equal(t, board.Empty, e.Board().At(v))
	assert.Equal(t, board.Black, e.Board().ToMove())
}

func TestEngineUndoAtStartFails(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.Undo())
}

func TestEngineNewGameResetsBoardSize(t *testing.T) {
	e := newTestEngine(t)
	e.NewGame(13, 6.5)
	assert.Equal(t, 13, e.Board().Size())
}

func TestEngineFinalScoreOnEmptyBoardFavorsWhiteByKomi(t *testing.T) {
	e := newTestEngine(t)
	result := e.FinalScore()
	assert.Equal(t, board.White, result.Winner)
	assert.Equal(t, float32(7.5), result.Margin)
}

func TestEngineShowBoardWritesPNG(t *testing.T) {
	e := newTestEngine(t)
	var buf bytes.Buffer
	require.NoError(t, e.ShowBoard(&buf))
	assert.NotZero(t, buf.Len())
	// PNG signature.
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, buf.Bytes()[:4])
}

func TestEngineTreeReflectsCurrentSearch(t *testing.T) {
	e := newTestEngine(t)
	e.SetTimeSettings(2, 0, 0, 0)
	require.NotNil(t, e.Tree())
	_, _, err := e.GenMove(board.Black)
	require.NoError(t, err)
	require.NotNil(t, e.Tree())
}

func TestEngineRejectsInvalidConfig(t *testing.T) {
	cfg := gozero.Config{BoardSize: -1}
	_, err := gozero.NewEngine(cfg, uniformEvaluator{})
	assert.Error(t, err)
}
