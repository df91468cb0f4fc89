package mcts

import (
	"time"

	"github.com/sente-ai/gozero/board"
)

// Config tunes the search.
type Config struct {
	// PUCT is c_puct, the exploration constant in the PUCT formula.
	PUCT float32
	// FPUReduction is subtracted from the parent's Q to produce the
	// first-play-urgency value for an unvisited child.
	FPUReduction float32
	// VirtualLossUnits is L, the pending-loss weight applied on entering
	// a node during a descent and removed on backup.
	VirtualLossUnits uint32
	// MinPriorEpsilon is the epsilon a child's prior must exceed (after
	// optional noise) to be instantiated during expansion.
	MinPriorEpsilon float32

	// SelfPlay enables root-level Dirichlet noise.
	SelfPlay        bool
	DirichletAlpha  float64
	DirichletWeight float32 // noise_frac

	// RandomCount is the move number below which bestMove samples from
	// the visit-count distribution instead of taking the argmax (used in
	// self-play to diversify openings).
	RandomCount       int
	RandomTemperature float32

	// ResignThreshold and NoResign gate the resignation rule.
	ResignThreshold float32
	NoResign        bool

	// Workers is the fixed worker-pool size; 0 lets the Engine size its
	// pool to runtime.NumCPU().
	Workers int
	// TranspositionSize is the fixed bucket count for the shared TT.
	TranspositionSize int

	// Seed is the process-wide RNG seed the tree's Dirichlet noise source
	// and bestMove's sampling RNG are derived from.
	Seed uint64
}

// DefaultConfig returns AlphaZero-typical constants.
func DefaultConfig() Config {
	return Config{
		PUCT:              1.5,
		FPUReduction:      0.25,
		VirtualLossUnits:  3,
		MinPriorEpsilon:   1e-4,
		DirichletAlpha:    0.03,
		DirichletWeight:   0.25,
		RandomCount:       30,
		RandomTemperature: 1.0,
		ResignThreshold:   0.05,
		TranspositionSize: 1 << 20,
		Workers:           0,
	}
}

// IsValid reports whether the config has sane, non-degenerate values.
func (c Config) IsValid() bool {
	return c.PUCT > 0 && c.TranspositionSize > 0 && c.RandomTemperature > 0
}

// Budget bounds one think: the minimum of a playout cap, a wall-clock
// timeout, and an externally-signaled stop channel.
type Budget struct {
	MaxPlayouts int
	Timeout     time.Duration
	Stop        <-chan struct{}
}

// ChildStat reports one root child's statistics: visits, winrate,
// prior, and a short principal-variation snippet.
type ChildStat struct {
	Move    board.Vertex
	Visits  uint32
	WinRate float32
	Prior   float32
	PV      []board.Vertex
}

// Report is what the search driver emits at stop: the principal
// variation and per-root-child statistics.
type Report struct {
	PV       []board.Vertex
	Children []ChildStat
	Playouts int
	Elapsed  time.Duration
}
