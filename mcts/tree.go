package mcts

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/sente-ai/gozero/board"
	"github.com/sente-ai/gozero/nn"
	"github.com/sente-ai/gozero/pool"
)

// Tree is one search tree: the node arena, the shared transposition
// cache, an evaluator, and the worker pool playouts run on. A Tree is
// built once per engine and reused across moves via AdvanceRoot,
// so the transposition cache and worker pool stay warm for the whole
// game.
type Tree struct {
	arena *arena
	tt    *Transposition
	eval  nn.Evaluator
	cfg   Config
	pool  *pool.Pool

	root     NodeID
	rootMove board.Vertex

	dirichletSrc rand.Source
}

// NewTree builds a fresh, empty tree. p may be shared across many Tree
// instances (e.g. across games) since pool.Pool is itself safe for
// concurrent Submit from many callers.
func NewTree(eval nn.Evaluator, cfg Config, p *pool.Pool) *Tree {
	return &Tree{
		tt:           NewTransposition(cfg.TranspositionSize),
		eval:         eval,
		cfg:          cfg,
		pool:         p,
		root:         NilNode,
		dirichletSrc: rand.NewSource(cfg.Seed ^ 0xD1_5E1_D000),
	}
}

// Reset discards the current tree and creates a fresh root for gs's
// current position. Used at the start of a new game and whenever
// AdvanceRoot can't find a matching child (e.g. an opponent move this
// tree never searched).
func (t *Tree) Reset(gs *board.GameState) {
	t.arena = newArena()
	id, n := t.arena.alloc()
	n.color = gs.Current().ToMove()
	n.move = board.NoVertex
	t.root = id
	t.rootMove = board.NoVertex
}

// Root returns the current root node's id, or NilNode before the first
// Reset.
func (t *Tree) Root() NodeID { return t.root }

func (t *Tree) node(id NodeID) *Node { return t.arena.node(id) }

// AdvanceRoot reuses the subtree under the root's child for move, if one
// was ever expanded, avoiding throwing away playouts already spent on the
// position that results from a move both sides already expected. It
// returns false (and leaves the tree
// untouched) when the root isn't expanded or has no child for move; the
// caller should then fall back to Reset.
func (t *Tree) AdvanceRoot(move board.Vertex) bool {
	if t.root == NilNode {
		return false
	}
	root := t.node(t.root)
	if !root.IsExpanded() {
		return false
	}
	for _, id := range root.Children() {
		child := t.node(id)
		if child.Move() == move {
			t.root = id
			t.rootMove = move
			return true
		}
	}
	return false
}

// expand evaluates gs's current position, seeds the node from the
// transposition table if a richer entry exists, and publishes one child
// per move whose prior clears Config.MinPriorEpsilon. isRoot controls
// whether Dirichlet noise is mixed into the priors, since root noise
// only applies at the search root. It returns the
// position's evaluation from black's perspective; the caller is
// responsible for backing it up the path (expand itself only publishes,
// it does not update visit/eval statistics).
func (t *Tree) expand(nodeID NodeID, gs *board.GameState, isRoot bool) (evalBlack float64, err error) {
	node := t.node(nodeID)
	cur := gs.Current()
	hash := cur.Hash()

	if visits, evalSum, ok := t.tt.Sync(hash, node.Visits()); ok {
		node.seedFromTT(visits, evalSum)
	}

	features := board.GatherFeatures(gs)
	out, err := t.eval.Evaluate(features)
	if err != nil {
		return 0, err
	}

	n := cur.Size()
	priors := out.Policy
	if isRoot && t.cfg.SelfPlay {
		priors = t.withDirichletNoise(priors)
	}

	toMove := cur.ToMove()
	var children []NodeID
	for idx, p := range priors {
		v := board.PASS
		if idx < n*n {
			v = board.VertexFromPolicyIndex(n, idx)
		}
		if v != board.PASS && p < t.cfg.MinPriorEpsilon {
			continue
		}
		if !gs.Legal(toMove, v) {
			continue
		}
		id, child := t.arena.alloc()
		child.move = v
		child.color = toMove.Other()
		child.prior = p
		children = append(children, id)
	}

	node.publish(hash, children)
	evalBlack = float64(out.Value)
	if toMove == board.White {
		evalBlack = -evalBlack
	}
	return evalBlack, nil
}

// withDirichletNoise mixes Dir(alpha) noise into the root's priors:
// p_i = (1-weight)*p_i + weight*noise_i. The Dirichlet draw itself comes
// from gonum's stat/distmv, seeded from a
// golang.org/x/exp/rand source kept on the tree so root noise is
// reproducible given Config.Seed.
func (t *Tree) withDirichletNoise(priors []float32) []float32 {
	alpha := make([]float64, len(priors))
	for i := range alpha {
		alpha[i] = t.cfg.DirichletAlpha
	}
	dir := distmv.NewDirichlet(alpha, t.dirichletSrc)
	noise := dir.Rand(nil)

	w := t.cfg.DirichletWeight
	out := make([]float32, len(priors))
	for i, p := range priors {
		out[i] = (1-w)*p + w*float32(noise[i])
	}
	return out
}
