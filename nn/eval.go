// Package nn's eval.go implements the Evaluator contract: a pure function
// from a position's feature planes to (policy, value), the CPU reference
// forward pass built from the kernel set in kernels.go, and the 8-way
// dihedral symmetry ensemble that averages the raw network's output over
// the board's rotations and reflections.
package nn

import (
	"math"
	"math/rand"
	"sync"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func expf64(x float64) float64 { return math.Exp(x) }

// Eval is one evaluator result: a policy distribution over the N*N+1
// action space (board points, then pass, last) and a value estimate from
// the perspective of the player to move at the evaluated position.
type Eval struct {
	Policy []float32
	Value  float32
}

// Evaluator is the position -> Eval contract. Implementations must be
// safe for concurrent use: MCTS workers call Evaluate from many
// goroutines during parallel descents.
type Evaluator interface {
	Evaluate(features []float32) (Eval, error)
}

// Network is the CPU reference dual-headed residual network: the direct,
// unensembled forward pass built from the kernels in kernels.go.
type Network struct {
	w *Weights
}

// NewNetwork wraps parsed weights as an Evaluator.
func NewNetwork(w *Weights) *Network { return &Network{w: w} }

// Evaluate runs the forward pass: input conv+BN+ReLU, then B residual
// blocks (conv+BN+ReLU, conv+BN, += skip, ReLU), then a
// policy head (1x1 conv to 2 channels, BN+ReLU, FC to N*N+1, softmax with
// temperature) and a value head (1x1 conv to 1 channel, BN+ReLU, FC to
// ValueFCWidth, ReLU, FC to 1, tanh).
func (net *Network) Evaluate(features []float32) (Eval, error) {
	cfg := net.w.Config
	n := cfg.BoardSize
	if len(features) != cfg.Features*n*n {
		return Eval{}, errors.Errorf("nn: expected %d feature values, got %d", cfg.Features*n*n, len(features))
	}

	x := tensor.New(tensor.WithShape(cfg.Features, n, n), tensor.WithBacking(append([]float32(nil), features...)))

	h := batchnormReLU(net.w.Input, convolve(net.w.Input, x, n, n), n, n)

	for i := 0; i+1 < len(net.w.Residual); i += 2 {
		skip := h
		a := batchnormReLU(net.w.Residual[i], convolve(net.w.Residual[i], h, n, n), n, n)
		bLayer := net.w.Residual[i+1]
		b := applyBN(bLayer, convolve(bLayer, a, n, n), n, n)
		h = relu(residualAdd(b, skip))
	}

	policy := net.policyHead(h, n)
	value := net.valueHead(h, n)
	return Eval{Policy: policy, Value: value}, nil
}

func applyBN(l layer, x *tensor.Dense, h, w int) *tensor.Dense {
	const eps = 1e-5
	xd := data(x)
	for c := 0; c < l.outCh; c++ {
		mean := l.bnMeans[c]
		inv := 1.0 / math32.Sqrt(l.bnVars[c]+eps)
		base := c * h * w
		for i := 0; i < h*w; i++ {
			xd[base+i] = (xd[base+i] - mean) * inv
		}
	}
	return x
}

func (net *Network) policyHead(h *tensor.Dense, n int) []float32 {
	cfg := net.w.Config
	p := batchnormReLU(net.w.PolicyConv, convolve(net.w.PolicyConv, h, n, n), n, n)
	logits := fc(net.w.PolicyFCW, net.w.PolicyFCB, data(p), cfg.ActionSpace(), 2*n*n)
	if cfg.UseGraph {
		out, err := gorgoniaSoftmax(logits, cfg.Temperature)
		if err == nil {
			return out
		}
	}
	return softmax(logits, cfg.Temperature)
}

func (net *Network) valueHead(h *tensor.Dense, n int) float32 {
	cfg := net.w.Config
	v := batchnormReLU(net.w.ValueConv, convolve(net.w.ValueConv, h, n, n), n, n)
	hidden := fc(net.w.ValueFC1W, net.w.ValueFC1B, data(v), cfg.ValueFCWidth, n*n)
	for i, x := range hidden {
		if x < 0 {
			hidden[i] = 0
		}
	}
	out := fc(net.w.ValueFC2W, net.w.ValueFC2B, hidden, 1, cfg.ValueFCWidth)
	return tanh32(out[0])
}

// softmax applies a temperature-scaled softmax, the reference path used
// whenever Config.UseGraph is false or the graph path errors.
func softmax(logits []float32, temperature float32) []float32 {
	if temperature <= 0 {
		temperature = 1
	}
	out := make([]float32, len(logits))
	max := logits[0]
	for _, v := range logits {
		if v > max {
			max = v
		}
	}
	var sum float32
	for i, v := range logits {
		e := expf32((v - max) / temperature)
		out[i] = e
		sum += e
	}
	if sum == 0 {
		sum = 1
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func expf32(x float32) float32 {
	// exp via the standard library's float64 exp; the conversion cost is
	// negligible next to the conv kernels above and keeps this file free
	// of a second math import split across two precisions.
	return float32(expf64(float64(x)))
}

// gorgoniaSoftmax runs the policy head's softmax through a gorgonia
// graph, exercising the accelerator-graph path named in the domain stack
// when Config.UseGraph is set. The rest of the forward pass stays on the
// plain CPU kernels in kernels.go; only this last, cheap step is worth
// building a graph for, since building and running a graph per call has
// its own overhead that only pays off for nontrivial vector lengths.
func gorgoniaSoftmax(logits []float32, temperature float32) ([]float32, error) {
	if temperature <= 0 {
		temperature = 1
	}
	scaled := make([]float32, len(logits))
	for i, v := range logits {
		scaled[i] = v / temperature
	}

	g := gorgonia.NewGraph()
	xT := tensor.New(tensor.WithShape(len(scaled)), tensor.WithBacking(scaled))
	x := gorgonia.NewVector(g, tensor.Float32, gorgonia.WithShape(len(scaled)), gorgonia.WithValue(xT), gorgonia.WithName("logits"))
	y, err := gorgonia.SoftMax(x)
	if err != nil {
		return nil, errors.Wrap(err, "nn: building softmax graph")
	}

	machine := gorgonia.NewTapeMachine(g)
	defer machine.Close()
	if err := machine.RunAll(); err != nil {
		return nil, errors.Wrap(err, "nn: running softmax graph")
	}
	result, ok := y.Value().Data().([]float32)
	if !ok {
		return nil, errors.New("nn: unexpected softmax graph output type")
	}
	return append([]float32(nil), result...), nil
}

// Ensemble wraps an Evaluator with 8-way dihedral symmetry averaging: the
// feature planes are rotated/reflected before evaluation and the
// resulting policy is rotated back before averaging, since the network's
// output is only meaningful in the same frame as its input.
type Ensemble struct {
	inner Evaluator
	n     int
	// symmetries lists which of the 8 transforms to apply; RandomRotation
	// uses a single randomly-chosen one per call instead of all 8, trading
	// ensemble accuracy for 8x less evaluator work as a cheaper
	// alternative.
	symmetries []int
	rnd        *rand.Rand
	mu         sync.Mutex
}

// Direct builds an ensemble over the board's 8 dihedral symmetries.
func Direct(inner Evaluator, boardSize int) *Ensemble {
	return &Ensemble{inner: inner, n: boardSize, symmetries: []int{0, 1, 2, 3, 4, 5, 6, 7}}
}

// RandomRotation builds an ensemble that evaluates a single, randomly
// chosen symmetry per call.
func RandomRotation(inner Evaluator, boardSize int, seed int64) *Ensemble {
	return &Ensemble{inner: inner, n: boardSize, rnd: rand.New(rand.NewSource(seed))}
}

// Evaluate implements Evaluator by averaging over the configured set of
// symmetries (all 8 for Direct, one randomly picked for RandomRotation).
func (e *Ensemble) Evaluate(features []float32) (Eval, error) {
	syms := e.symmetries
	if syms == nil {
		e.mu.Lock()
		s := e.rnd.Intn(8)
		e.mu.Unlock()
		syms = []int{s}
	}

	n := e.n
	planeCount := len(features) / (n * n)
	actionSpace := n*n + 1

	var policySum = make([]float64, actionSpace)
	var valueSum float64

	for _, s := range syms {
		transformed := transformFeatures(features, planeCount, n, s)
		out, err := e.inner.Evaluate(transformed)
		if err != nil {
			return Eval{}, err
		}
		restored := untransformPolicy(out.Policy, n, s)
		for i, p := range restored {
			policySum[i] += float64(p)
		}
		valueSum += float64(out.Value)
	}

	count := float64(len(syms))
	policy := make([]float32, actionSpace)
	for i, s := range policySum {
		policy[i] = float32(s / count)
	}
	return Eval{Policy: policy, Value: float32(valueSum / count)}, nil
}

// transformFeatures applies dihedral symmetry s (0-7: 4 rotations, then
// the same 4 after a horizontal flip) to every plane independently.
func transformFeatures(features []float32, planeCount, n, s int) []float32 {
	out := make([]float32, len(features))
	for p := 0; p < planeCount; p++ {
		src := features[p*n*n : (p+1)*n*n]
		dst := out[p*n*n : (p+1)*n*n]
		applySymmetry(src, dst, n, s)
	}
	return out
}

// untransformPolicy applies the inverse of symmetry s to the board-point
// portion of a policy vector (length n*n+1); the trailing pass
// probability is symmetry-invariant and copied unchanged.
func untransformPolicy(policy []float32, n, s int) []float32 {
	out := make([]float32, len(policy))
	board := policy[:n*n]
	dst := out[:n*n]
	applySymmetry(board, dst, n, inverseSymmetry(s))
	out[n*n] = policy[n*n]
	return out
}

// applySymmetry writes src, transformed by symmetry index s, into dst.
// Index 0-3 are rotations by 0/90/180/270 degrees; 4-7 are the same
// rotations after a horizontal flip.
func applySymmetry(src, dst []float32, n, s int) {
	flip := s >= 4
	rot := s % 4
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			sx, sy := x, y
			if flip {
				sx = n - 1 - sx
			}
			for r := 0; r < rot; r++ {
				sx, sy = n-1-sy, sx
			}
			dst[y*n+x] = src[sy*n+sx]
		}
	}
}

// inverseSymmetry returns the index that undoes symmetry s; pure
// rotations invert to their complementary rotation, flip-then-rotate
// symmetries (4-7) are all reflections and thus self-inverse.
func inverseSymmetry(s int) int {
	if s < 4 {
		return (4 - s) % 4
	}
	return s
}
