package board

import "fmt"

// TimeController is the black-box time-control collaborator GameState
// holds, supporting start/stop/adjust/set. Defined here as the interface
// GameState depends on; the timecontrol package provides the concrete
// implementation, kept separate to avoid board importing anything above
// it in the dependency graph.
type TimeController interface {
	Start(color Color)
	Stop(color Color)
	Adjust(color Color, remaining float64, stones int)
	Set(main, byoTime float64, byoStones, byoPeriods int)
}

// GameState extends a positional-superko-aware board with move/undo/
// forward navigation over a snapshot stack. Snapshots are immutable once
// taken and shared by reference, so undo is O(1) and forward is a
// pointer bump.
type GameState struct {
	snapshots []*Board // snapshots[i] is the position after move i (0 = start)
	ptr       int

	komi float32

	resigned      bool
	resignedColor Color
	lastWasResign bool

	timeControl TimeController
}

// NewGameState creates a fresh game on an n×n board using the shared
// Zobrist table z, with the given komi (added to White's area score).
func NewGameState(n int, z *ZobristTable, komi float32) *GameState {
	return &GameState{
		snapshots: []*Board{NewBoard(n, z)},
		komi:      komi,
	}
}

// SetTimeControl installs the time-control collaborator.
func (g *GameState) SetTimeControl(tc TimeController) { g.timeControl = tc }

// TimeControl returns the installed time-control collaborator, or nil.
func (g *GameState) TimeControl() TimeController { return g.timeControl }

// Current returns the board at the current position.
func (g *GameState) Current() *Board { return g.snapshots[g.ptr] }

// MoveNumber returns how many moves have been played to reach the current
// position (equivalently, the snapshot pointer).
func (g *GameState) MoveNumber() int { return g.ptr }

// Komi returns the configured komi.
func (g *GameState) Komi() float32 { return g.komi }

// superkoHistory returns the ko_hash of every position from game start up
// to and including the current one, the positional-superko key set
// Legal consults.
func (g *GameState) superkoHistory() []uint64 {
	hs := make([]uint64, g.ptr+1)
	for i := 0; i <= g.ptr; i++ {
		hs[i] = g.snapshots[i].KoHash()
	}
	return hs
}

// Legal reports whether color may play v at the current position,
// honoring positional superko.
func (g *GameState) Legal(color Color, v Vertex) bool {
	return g.Current().Legal(color, v, g.superkoHistory())
}

// Play plays color at v. Playing after an undo truncates future history.
func (g *GameState) Play(color Color, v Vertex) error {
	if !g.Legal(color, v) {
		return fmt.Errorf("board: illegal move %v for %v", VertexString(g.Current().Size(), v), color)
	}
	next := g.Current().Clone()
	if _, err := next.Play(color, v); err != nil {
		return err
	}
	g.commit(next)
	g.lastWasResign = false
	return nil
}

// PlayText parses GTP-style vertex text and plays it (or records a
// resignation), returning the parsed vertex.
func (g *GameState) PlayText(color Color, s string) (Vertex, error) {
	v, err := ParseVertex(g.Current().Size(), s)
	if err != nil {
		return NoVertex, err
	}
	if v == RESIGN {
		g.Resign(color)
		return v, nil
	}
	return v, g.Play(color, v)
}

// Resign records color's resignation. This is recorded on the board as
// an ordinary pass (so Board's move-kind space stays binary) but
// GameState keeps a distinct marker so callers such as the gtp
// controller can tell a resignation from a genuine pass.
func (g *GameState) Resign(color Color) {
	next := g.Current().Clone()
	_, _ = next.Play(color, PASS)
	g.commit(next)
	g.resigned = true
	g.resignedColor = color
	g.lastWasResign = true
}

// Resigned reports whether the game ended by resignation, and who
// resigned.
func (g *GameState) Resigned() (bool, Color) { return g.resigned, g.resignedColor }

// LastMoveWasResign reports whether the move that produced the current
// position was a resignation rather than an ordinary pass.
func (g *GameState) LastMoveWasResign() bool { return g.lastWasResign }

func (g *GameState) commit(next *Board) {
	g.snapshots = g.snapshots[:g.ptr+1]
	g.snapshots = append(g.snapshots, next)
	g.ptr++
}

// Undo moves one position back in history. Returns false at the start of
// the game.
func (g *GameState) Undo() bool {
	if g.ptr == 0 {
		return false
	}
	g.ptr--
	g.resigned = false
	g.lastWasResign = false
	return true
}

// Forward re-plays one position forward (redo), if any future history
// exists.
func (g *GameState) Forward() bool {
	if g.ptr >= len(g.snapshots)-1 {
		return false
	}
	g.ptr++
	return true
}

// Ended reports whether the game has finished (two consecutive passes or
// a resignation) and, if so, the winner per area scoring: only area
// scoring, nothing fancier, decides this.
func (g *GameState) Ended() (ended bool, winner Color) {
	if g.resigned {
		return true, g.resignedColor.Other()
	}
	b := g.Current()
	if b.passes >= 2 {
		res := b.Score(g.komi)
		return true, res.Winner
	}
	return false, Empty
}

// Eq reports whether two game states are at the same position (same full
// hash, which folds in stones, pass count, and side to move).
func (g *GameState) Eq(other *GameState) bool {
	return g.Current().Hash() == other.Current().Hash()
}

// Clone deep-copies the game state, including its full snapshot history,
// so a clone can be independently mutated (used by search workers, which
// each need their own navigable copy).
func (g *GameState) Clone() *GameState {
	snaps := make([]*Board, len(g.snapshots))
	for i, s := range g.snapshots {
		snaps[i] = s.Clone()
	}
	return &GameState{
		snapshots:     snaps,
		ptr:           g.ptr,
		komi:          g.komi,
		resigned:      g.resigned,
		resignedColor: g.resignedColor,
		lastWasResign: g.lastWasResign,
		timeControl:   g.timeControl,
	}
}
