package nn_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sente-ai/gozero/nn"
)

func TestActionSpaceIsBoardAreaPlusPass(t *testing.T) {
	cfg := nn.Config{BoardSize: 9}
	assert.Equal(t, 82, cfg.ActionSpace())
}

func TestDefaultConfigIsValid(t *testing.T) {
	for _, n := range []int{5, 9, 13, 19} {
		cfg := nn.DefaultConfig(n)
		assert.True(t, cfg.IsValid(), "n=%d", n)
		assert.Equal(t, 18, cfg.Features)
		assert.Equal(t, n, cfg.ResidualBlocks)
	}
}

func TestWeightsLineCountFormula(t *testing.T) {
	cfg := nn.Config{ResidualBlocks: 3}
	// 1 version line + 4*(1 input + 2*3 residual) layer-groups + 14
	// policy/value head lines.
	assert.Equal(t, 1+4*(1+2*3)+14, cfg.WeightsLineCount())
}

func TestIsValidRejectsZeroFilters(t *testing.T) {
	cfg := nn.DefaultConfig(9)
	cfg.Filters = 0
	assert.False(t, cfg.IsValid())
}

func TestIsValidRejectsNonPositiveBoardSize(t *testing.T) {
	cfg := nn.DefaultConfig(9)
	cfg.BoardSize = 0
	assert.False(t, cfg.IsValid())
}
