package nn_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sente-ai/gozero/nn"
)

func TestNetworkEvaluateProducesValidDistribution(t *testing.T) {
	cfg := testConfig()
	w, err := nn.LoadWeights(cfg, strings.NewReader(buildWeightsFile(cfg)))
	require.NoError(t, err)

	net := nn.NewNetwork(w)
	features := make([]float32, cfg.Features*cfg.BoardSize*cfg.BoardSize)
	out, err := net.Evaluate(features)
	require.NoError(t, err)

	assert.Len(t, out.Policy, cfg.ActionSpace())
	var sum float32
	for _, p := range out.Policy {
		assert.GreaterOrEqual(t, p, float32(0))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
	assert.GreaterOrEqual(t, out.Value, float32(-1))
	assert.LessOrEqual(t, out.Value, float32(1))
}

func TestNetworkEvaluateRejectsWrongFeatureLength(t *testing.T) {
	cfg := testConfig()
	w, err := nn.LoadWeights(cfg, strings.NewReader(buildWeightsFile(cfg)))
	require.NoError(t, err)

	net := nn.NewNetwork(w)
	_, err = net.Evaluate(make([]float32, 3))
	assert.Error(t, err)
}

// fixedEvaluator always returns the same Eval, letting Ensemble tests
// isolate the symmetry transform/untransform plumbing from the network
// math itself.
type fixedEvaluator struct {
	eval nn.Eval
}

func (f *fixedEvaluator) Evaluate(features []float32) (nn.Eval, error) {
	return f.eval, nil
}

func TestEnsembleDirectAveragesOverAllSymmetries(t *testing.T) {
	n := 3
	policy := make([]float32, n*n+1)
	for i := range policy {
		policy[i] = 1.0 / float32(len(policy))
	}
	inner := &fixedEvaluator{eval: nn.Eval{Policy: policy, Value: 0.4}}
	ens := nn.Direct(inner, n)

	features := make([]float32, 18*n*n)
	out, err := ens.Evaluate(features)
	require.NoError(t, err)

	// A uniform policy and a fixed value are invariant under every
	// symmetry, so the ensemble average must reproduce them exactly.
	for i, p := range out.Policy {
		assert.InDelta(t, policy[i], p, 1e-6)
	}
	assert.InDelta(t, 0.4, out.Value, 1e-6)
}

func TestEnsembleRandomRotationEvaluatesOnce(t *testing.T) {
	calls := 0
	counting := &countingEvaluator{inner: &fixedEvaluator{eval: nn.Eval{
		Policy: make([]float32, 10),
		Value:  0,
	}}, calls: &calls}
	ens := nn.RandomRotation(counting, 3, 1)

	_, err := ens.Evaluate(make([]float32, 18*9))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

type countingEvaluator struct {
	inner nn.Evaluator
	calls *int
}

func (c *countingEvaluator) Evaluate(features []float32) (nn.Eval, error) {
	*c.calls++
	return c.inner.Evaluate(features)
}
