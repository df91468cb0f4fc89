package mcts

import (
	"math"
	"sync/atomic"

	"github.com/chewxy/math32"
	"github.com/sente-ai/gozero/board"
)

// expandState is the three-state node lifecycle: a single CAS moves a
// node UNEXPANDED -> EXPANDING, and a release store publishes
// EXPANDING -> EXPANDED once children are written.
type expandState uint32

const (
	unexpanded expandState = iota
	expanding
	expanded
)

// Node is one position in the shared search tree. Every field that can be
// touched by more than one goroutine is accessed through sync/atomic;
// prior and children are written exactly once, before the publishing
// store to state, and never mutated afterward, so they need no
// synchronization of their own.
type Node struct {
	id NodeID

	move  board.Vertex
	color board.Color // color to move AT this node, i.e. who selects among children
	prior float32     // P(s, a) from the parent's policy softmax; write-once

	hash uint64 // this node's position hash, set at expansion for TT sharing

	visits      uint32 // atomic: N(s, a)
	virtualLoss uint32 // atomic: pending-loss count from in-flight descents
	evalBits    uint64 // atomic: math.Float64bits of the running eval sum, black's perspective
	state       uint32 // atomic expandState

	children []NodeID // write-once, published by the state store
}

// Move returns the vertex that led to this node.
func (n *Node) Move() board.Vertex { return n.move }

// Color returns the color to move at this node.
func (n *Node) Color() board.Color { return n.color }

// Prior returns P(s, a).
func (n *Node) Prior() float32 { return n.prior }

// Hash returns the node's position hash (valid once expanded).
func (n *Node) Hash() uint64 { return atomic.LoadUint64(&n.hash) }

// Visits returns N(s, a).
func (n *Node) Visits() uint32 { return atomic.LoadUint32(&n.visits) }

// VirtualLoss returns the current pending-loss count.
func (n *Node) VirtualLoss() uint32 { return atomic.LoadUint32(&n.virtualLoss) }

// State returns the node's expansion state.
func (n *Node) State() expandState { return expandState(atomic.LoadUint32(&n.state)) }

// IsExpanded reports whether children have been published.
func (n *Node) IsExpanded() bool { return n.State() == expanded }

// Children returns the published child list, or nil if not yet expanded.
func (n *Node) Children() []NodeID {
	if !n.IsExpanded() {
		return nil
	}
	return n.children
}

// EvalSum returns the accumulated evaluation sum, from black's
// perspective.
func (n *Node) EvalSum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&n.evalBits))
}

// Q returns the mean evaluation from the perspective of the player to
// move at this node's PARENT (i.e. the value of selecting this node as a
// child) — black's running sum flipped to whichever color is moving one
// ply up. perspective should be the parent's color to move.
func (n *Node) Q(perspective board.Color) float32 {
	v := n.Visits()
	if v == 0 {
		return 0
	}
	mean := n.EvalSum() / float64(v)
	if perspective == board.White {
		mean = -mean
	}
	return float32(mean)
}

// addEval atomically adds delta (black's perspective) to the running sum,
// via a compare-and-swap retry loop — the standard lock-free pattern for
// atomic float accumulation, since there is no hardware atomic float add.
func (n *Node) addEval(delta float64) {
	for {
		old := atomic.LoadUint64(&n.evalBits)
		next := math.Float64bits(math.Float64frombits(old) + delta)
		if atomic.CompareAndSwapUint64(&n.evalBits, old, next) {
			return
		}
	}
}

// AddVirtualLoss applies the temporary pending-loss penalty on entering
// this node during a descent.
func (n *Node) AddVirtualLoss(l uint32) { atomic.AddUint32(&n.virtualLoss, l) }

// RemoveVirtualLoss removes a previously-applied virtual loss, done on
// backup once the real evaluation is ready.
func (n *Node) RemoveVirtualLoss(l uint32) {
	for {
		old := atomic.LoadUint32(&n.virtualLoss)
		next := old
		if old >= l {
			next = old - l
		}
		if atomic.CompareAndSwapUint32(&n.virtualLoss, old, next) {
			return
		}
	}
}

// Update backs up one playout's result into this node: increments visits
// and adds evalBlack (black's-perspective evaluation) to the running
// sum.
func (n *Node) Update(evalBlack float64) {
	n.addEval(evalBlack)
	atomic.AddUint32(&n.visits, 1)
}

// seedFromTT imports a transposition-table hit's (visits, evalSum) into a
// node that is being expanded for the first time, before it is published.
// It is only ever called by the single goroutine that won tryExpand, before any
// other goroutine can observe the node as expanded, so it writes directly
// rather than through the CAS paths addEval/Update use once the node is
// live.
func (n *Node) seedFromTT(visits uint32, evalSum float64) {
	atomic.StoreUint32(&n.visits, visits)
	atomic.StoreUint64(&n.evalBits, math.Float64bits(evalSum))
}

// tryExpand attempts the UNEXPANDED -> EXPANDING transition. Only one
// goroutine ever observes ok == true for a given node.
func (n *Node) tryExpand() (ok bool) {
	return atomic.CompareAndSwapUint32(&n.state, uint32(unexpanded), uint32(expanding))
}

// publish writes the node's children and position hash and then performs
// the release store that makes the node EXPANDED. Every field written
// before this call is visible to any goroutine that subsequently observes
// State() == expanded, by the happens-before guarantee atomic store/load
// gives in the Go memory model.
func (n *Node) publish(hash uint64, children []NodeID) {
	n.hash = hash
	n.children = children
	atomic.StoreUint32(&n.state, uint32(expanded))
}

// virtualN and virtualQ fold the virtual-loss count into the visit count
// and Q value used during selection, so parallel descents see a
// pessimistic, self-correcting view of nodes already being explored —
// the only mechanism that keeps parallel workers from stampeding down
// the same path.
func virtualN(n *Node) float32 {
	return float32(n.Visits()) + float32(n.VirtualLoss())
}

func virtualQ(n *Node, perspective board.Color, l uint32) float32 {
	v := n.Visits()
	vl := n.VirtualLoss()
	if v+vl == 0 {
		return 0
	}
	sum := n.EvalSum()
	if perspective == board.White {
		sum = -sum
	}
	// Each pending virtual loss counts as a loss (-1) from perspective.
	sum -= float64(vl)
	return float32(sum / float64(v+vl))
}

// fpuQ computes the first-play-urgency value for an unvisited child: the
// parent's own Q reduced by fpuReduction.
func fpuQ(parentQ, fpuReduction float32) float32 {
	return parentQ - fpuReduction
}

// selectChild runs PUCT selection among a node's children using the
// arena a, returning the chosen child's id. Ties are broken by higher
// prior, then by lower move index.
func selectChild(a *arena, parent *Node, cPUCT, fpuReduction float32, virtualLossUnits uint32) NodeID {
	children := parent.Children()
	if len(children) == 0 {
		return NilNode
	}

	var parentVisits float32
	for _, id := range children {
		parentVisits += virtualN(a.node(id))
	}
	numerator := math32.Sqrt(parentVisits + 1) // +1 guards the all-unvisited root

	parentQ := parent.Q(parent.color)

	best := NilNode
	var bestValue = math32.Inf(-1)
	var bestPrior float32 = -1
	var bestMove board.Vertex

	for _, id := range children {
		child := a.node(id)
		n := virtualN(child)

		var q float32
		if child.Visits() == 0 && child.VirtualLoss() == 0 {
			q = fpuQ(parentQ, fpuReduction)
		} else {
			q = virtualQ(child, parent.color, virtualLossUnits)
		}

		u := cPUCT * child.Prior() * numerator / (1 + n)
		value := q + u

		better := value > bestValue
		tie := value == bestValue
		if tie && child.Prior() > bestPrior {
			better = true
		}
		if tie && child.Prior() == bestPrior && child.Move() < bestMove {
			better = true
		}
		if better {
			bestValue = value
			best = id
			bestPrior = child.Prior()
			bestMove = child.Move()
		}
	}
	return best
}
