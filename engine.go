package gozero

import (
	"io"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/sente-ai/gozero/board"
	"github.com/sente-ai/gozero/mcts"
	"github.com/sente-ai/gozero/nn"
	"github.com/sente-ai/gozero/pool"
	"github.com/sente-ai/gozero/timecontrol"
)

// Engine is a single game's worth of board, search tree, evaluator and
// clock — the object a GTP-style frontend drives.
type Engine struct {
	cfg Config

	zobrist *board.ZobristTable
	gs      *board.GameState
	tree    *mcts.Tree
	clock   *timecontrol.Controller
	pool    *pool.Pool
	eval    nn.Evaluator
}

// NewEngine builds an Engine from cfg and a loaded evaluator, starting a
// fresh game immediately.
func NewEngine(cfg Config, eval nn.Evaluator) (*Engine, error) {
	if !cfg.IsValid() {
		return nil, errors.New("gozero: invalid config")
	}
	e := &Engine{
		cfg:  cfg,
		pool: pool.New(workerCount(cfg.MCTS)),
		eval: eval,
	}
	e.NewGame(cfg.BoardSize, cfg.Komi)
	return e, nil
}

func workerCount(cfg mcts.Config) int {
	if cfg.Workers > 0 {
		return cfg.Workers
	}
	return runtime.NumCPU()
}

// Close releases the engine's worker pool and, if the evaluator holds its
// own resources (a batching goroutine, an open weights file), closes
// those too, aggregating any failures via multierror.
func (e *Engine) Close() error {
	var result *multierror.Error
	if e.pool != nil {
		e.pool.Close()
	}
	if closer, ok := e.eval.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			result = multierror.Append(result, errors.Wrap(err, "gozero: closing evaluator"))
		}
	}
	if result == nil {
		return nil
	}
	return result
}

// NewGame resets the engine to a fresh game on an n×n board, backing the
// clear_board / boardsize operations.
func (e *Engine) NewGame(n int, komi float32) {
	e.cfg.BoardSize = n
	e.cfg.Komi = komi
	e.zobrist = board.NewZobristTable(int64(e.cfg.MCTS.Seed))
	e.gs = board.NewGameState(n, e.zobrist, komi)
	e.clock = timecontrol.New(e.cfg.Time)
	e.gs.SetTimeControl(e.clock)
	e.tree = mcts.NewTree(e.eval, e.cfg.MCTS, e.pool)
	e.tree.Reset(e.gs)
}

// SetTimeSettings reconfigures the clock, backing time_settings.
func (e *Engine) SetTimeSettings(main, byoTime float64, byoStones, byoPeriods int) {
	e.clock.Set(main, byoTime, byoStones, byoPeriods)
}

// TimeLeft reports a time_left GTP update from the other side of a
// connection back into the clock.
func (e *Engine) TimeLeft(color board.Color, remaining float64, stones int) {
	e.clock.Adjust(color, remaining, stones)
}

// Play plays a move for color, advancing the search tree's root when
// possible so playouts already spent on the resulting position aren't
// thrown away.
func (e *Engine) Play(color board.Color, v board.Vertex) error {
	if v == board.RESIGN {
		e.gs.Resign(color)
		return nil
	}
	if err := e.gs.Play(color, v); err != nil {
		return err
	}
	if !e.tree.AdvanceRoot(v) {
		e.tree.Reset(e.gs)
	}
	return nil
}

// PlayText parses and plays GTP-style vertex text for color.
func (e *Engine) PlayText(color board.Color, s string) (board.Vertex, error) {
	v, err := board.ParseVertex(e.gs.Current().Size(), s)
	if err != nil {
		return board.NoVertex, err
	}
	return v, e.Play(color, v)
}

// GenMove runs a search for color and plays the chosen move, backing
// genmove. The time budget comes from the clock's per-move allocation;
// ShouldResign is checked before committing the move, returning
// board.RESIGN without playing anything further.
func (e *Engine) GenMove(color board.Color) (board.Vertex, mcts.Report, error) {
	e.clock.Start(color)
	budget := mcts.Budget{Timeout: e.clock.Allocate(color, e.cfg.BoardSize)}

	move, report, err := e.tree.Think(e.gs, budget)
	e.clock.Stop(color)
	if err != nil {
		return board.NoVertex, report, err
	}

	if e.tree.ShouldResign(color) {
		e.gs.Resign(color)
		return board.RESIGN, report, nil
	}

	if err := e.Play(color, move); err != nil {
		return board.NoVertex, report, errors.Wrap(err, "gozero: engine selected an illegal move")
	}
	return move, report, nil
}

// Undo takes back the last move, backing undo.
func (e *Engine) Undo() bool {
	if !e.gs.Undo() {
		return false
	}
	e.tree.Reset(e.gs)
	return true
}

// FinalScore reports the area-scoring result at the current position,
// backing final_score.
func (e *Engine) FinalScore() board.Result {
	return e.gs.Current().Score(e.gs.Komi())
}

// ShowBoard renders the current position as a PNG, backing showboard.
func (e *Engine) ShowBoard(w io.Writer) error {
	r := board.NewRenderer()
	return r.Render(e.gs.Current(), w)
}

// Board returns the current position, mostly for test and diagnostic use.
func (e *Engine) Board() *board.Board { return e.gs.Current() }

// GameState returns the underlying game state.
func (e *Engine) GameState() *board.GameState { return e.gs }

// Tree returns the live search tree, for diagnostics such as DOT dumps.
func (e *Engine) Tree() *mcts.Tree { return e.tree }

