package mcts

import (
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sente-ai/gozero/board"
	"github.com/sente-ai/gozero/pool"
)

// Think runs playouts from the current root until budget is exhausted,
// then returns the chosen move and a Report describing the search. gs
// holds
// the position at the root; each worker clones it so every goroutine
// walks its own GameState snapshot stack during descent, since GameState
// is not itself safe for concurrent navigation.
func (t *Tree) Think(gs *board.GameState, budget Budget) (board.Vertex, Report, error) {
	start := time.Now()
	if t.root == NilNode {
		t.Reset(gs)
	}
	root := t.node(t.root)
	if !root.IsExpanded() && root.tryExpand() {
		evalBlack, err := t.expand(t.root, gs, true)
		if err != nil {
			return board.NoVertex, Report{}, err
		}
		root.Update(evalBlack)
		t.tt.Update(root.Hash(), root.Visits(), root.EvalSum())
	}

	// Fan out exactly one playout loop per pool worker: more loops than
	// workers would just queue behind each other on the shared Pool, so
	// the pool's own size is the fan-out count, not a separately
	// recomputed guess.
	workers := t.pool.Size()

	deadline := deadlineFor(start, budget)
	var playouts int64

	group := pool.NewTaskGroup(t.pool)
	for w := 0; w < workers; w++ {
		group.Add(func() {
			local := gs.Clone()
			for {
				if budgetExhausted(budget, deadline, &playouts) {
					return
				}
				t.playout(local)
				atomic.AddInt64(&playouts, 1)
				resetClone(local, gs)
			}
		})
	}
	group.WaitAll()

	report := t.report(start, int(atomic.LoadInt64(&playouts)))
	move := t.bestMove(gs.MoveNumber(), rngForSample(t.cfg))
	return move, report, nil
}

func deadlineFor(start time.Time, budget Budget) time.Time {
	if budget.Timeout <= 0 {
		return time.Time{}
	}
	return start.Add(budget.Timeout)
}

func budgetExhausted(budget Budget, deadline time.Time, playouts *int64) bool {
	if budget.Stop != nil {
		select {
		case <-budget.Stop:
			return true
		default:
		}
	}
	if budget.MaxPlayouts > 0 && int(atomic.LoadInt64(playouts)) >= budget.MaxPlayouts {
		return true
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return true
	}
	return false
}

// resetClone restores local to root's position for the next playout by
// replaying root's move count worth of undos; cheaper than re-cloning gs
// every iteration, and exercises the same snapshot-pointer navigation
// GatherFeatures uses.
func resetClone(local, root *board.GameState) {
	for local.MoveNumber() > root.MoveNumber() {
		if !local.Undo() {
			break
		}
	}
}

// playout runs one SELECT/EXPAND/BACKUP cycle from the root.
// Nodes still EXPANDING under another goroutine are treated as leaves for
// this playout (their prior alone contributes to the parent's PUCT score
// via virtualN/virtualQ) rather than blocking; the caller simply retries
// on the next playout, so no goroutine ever busy-waits on another's
// expansion.
func (t *Tree) playout(gs *board.GameState) {
	cfg := t.cfg
	var path []NodeID
	node := t.root

	for {
		path = append(path, node)
		n := t.node(node)

		if ended, winner := gs.Ended(); ended {
			t.backup(path, terminalEvalBlack(winner))
			return
		}

		if !n.IsExpanded() {
			if n.tryExpand() {
				evalBlack, err := t.expand(node, gs, node == t.root)
				if err != nil {
					t.undoVirtualLoss(path)
					return
				}
				t.backup(path, evalBlack)
				return
			}
			// Someone else is expanding this node; treat it as a leaf for
			// this playout and back up its current (possibly TT-seeded)
			// mean so the descent still contributes information.
			t.backup(path, n.Q(board.Black))
			return
		}

		childID := selectChild(t.arena, n, cfg.PUCT, cfg.FPUReduction, cfg.VirtualLossUnits)
		if childID == NilNode {
			// Expanded with zero children: no legal moves, which Legal's
			// pass-is-always-legal guarantee makes unreachable in
			// practice, but treat it as terminal defensively.
			t.backup(path, n.Q(board.Black))
			return
		}
		child := t.node(childID)
		child.AddVirtualLoss(cfg.VirtualLossUnits)

		if err := gs.Play(n.Color(), child.Move()); err != nil {
			child.RemoveVirtualLoss(cfg.VirtualLossUnits)
			t.undoVirtualLoss(path)
			return
		}
		node = childID
	}
}

func (t *Tree) undoVirtualLoss(path []NodeID) {
	for _, id := range path {
		t.node(id).RemoveVirtualLoss(t.cfg.VirtualLossUnits)
	}
}

// backup propagates evalBlack (black's-perspective value) up every node
// on path, removes the virtual loss each carried during descent, and
// republishes each expanded node's stats into the transposition table,
// refreshing its entry on every backup.
func (t *Tree) backup(path []NodeID, evalBlack float64) {
	for i, id := range path {
		n := t.node(id)
		n.Update(evalBlack)
		if i > 0 {
			n.RemoveVirtualLoss(t.cfg.VirtualLossUnits)
		}
		if n.IsExpanded() {
			t.tt.Update(n.Hash(), n.Visits(), n.EvalSum())
		}
	}
}

// terminalEvalBlack converts a game result into a black-perspective
// value: +1 black wins, -1 white wins, 0 for the (practically
// unreachable in Go) drawn case.
func terminalEvalBlack(winner board.Color) float64 {
	switch winner {
	case board.Black:
		return 1
	case board.White:
		return -1
	default:
		return 0
	}
}

// bestMove picks the root's move. With Config.SelfPlay set and the move
// number below Config.RandomCount it samples from the visit-count
// distribution raised to 1/temperature (for self-play opening
// diversity); otherwise it's the max-visits child, ties broken by mean
// value. A childless root means no legal moves ever passed expansion's
// threshold, which Play/pass being always-legal should prevent; it
// returns PASS in that defensive case.
func (t *Tree) bestMove(moveNumber int, rng *RNG) board.Vertex {
	root := t.node(t.root)
	children := root.Children()
	if len(children) == 0 {
		return board.PASS
	}

	if !t.cfg.SelfPlay || moveNumber >= t.cfg.RandomCount {
		perspective := root.Color()
		best := children[0]
		for _, id := range children[1:] {
			if betterForSelection(t.node(id), t.node(best), perspective) {
				best = id
			}
		}
		return t.node(best).Move()
	}
	return t.sampleMove(children, rng)
}

func betterForSelection(a, b *Node, perspective board.Color) bool {
	if a.Visits() != b.Visits() {
		return a.Visits() > b.Visits()
	}
	if a.Q(perspective) != b.Q(perspective) {
		return a.Q(perspective) > b.Q(perspective)
	}
	return a.Move() < b.Move()
}

func (t *Tree) sampleMove(children []NodeID, rng *RNG) board.Vertex {
	temp := t.cfg.RandomTemperature
	if temp <= 0 {
		temp = 1
	}
	weights := make([]float64, len(children))
	var total float64
	for i, id := range children {
		v := float64(t.node(id).Visits())
		w := math.Pow(v, 1/float64(temp))
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return t.node(children[0]).Move()
	}
	r := float64(rng.F32()) * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r <= cum {
			return t.node(children[i]).Move()
		}
	}
	return t.node(children[len(children)-1]).Move()
}

// report builds the reporting operation: the principal variation
// (walking best-visits children down from the root) and per-root-child
// statistics.
func (t *Tree) report(start time.Time, playouts int) Report {
	root := t.node(t.root)
	children := root.Children()
	perspective := root.Color()

	stats := make([]ChildStat, 0, len(children))
	for _, id := range children {
		c := t.node(id)
		stats = append(stats, ChildStat{
			Move:    c.Move(),
			Visits:  c.Visits(),
			WinRate: (c.Q(perspective) + 1) / 2,
			Prior:   c.Prior(),
			PV:      t.principalVariation(id, 3),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Visits > stats[j].Visits })

	pv := t.principalVariation(t.root, 12)
	return Report{
		PV:       pv,
		Children: stats,
		Playouts: playouts,
		Elapsed:  time.Since(start),
	}
}

// principalVariation walks the most-visited child from id down to depth
// plies, returning the sequence of moves taken.
func (t *Tree) principalVariation(id NodeID, depth int) []board.Vertex {
	var pv []board.Vertex
	cur := id
	for i := 0; i < depth; i++ {
		n := t.node(cur)
		children := n.Children()
		if len(children) == 0 {
			break
		}
		best := children[0]
		for _, c := range children[1:] {
			if t.node(c).Visits() > t.node(best).Visits() {
				best = c
			}
		}
		pv = append(pv, t.node(best).Move())
		cur = best
	}
	return pv
}

// ShouldResign reports whether the root's value falls below
// Config.ResignThreshold for the side to move. NoResign disables it
// unconditionally.
func (t *Tree) ShouldResign(toMove board.Color) bool {
	if t.cfg.NoResign || t.root == NilNode {
		return false
	}
	root := t.node(t.root)
	if root.Visits() == 0 {
		return false
	}
	winrate := (root.Q(toMove) + 1) / 2
	return winrate < t.cfg.ResignThreshold
}

func rngForSample(cfg Config) *RNG { return NewRNG(cfg.Seed ^ 0xBE57_3A0F) }
