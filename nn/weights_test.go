package nn_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sente-ai/gozero/nn"
)

// floats returns a line of n space-separated float literals, mirroring
// the one-tensor-per-line layout LoadWeights expects.
func floats(n int) string {
	fields := make([]string, n)
	for i := range fields {
		fields[i] = strconv.FormatFloat(0.1*float64(i%7), 'f', -1, 32)
	}
	return strings.Join(fields, " ")
}

// buildWeightsFile generates a minimal but structurally valid weights file
// for cfg, following LoadWeights' exact line-consumption order: one input
// conv layer (4 lines), 2*ResidualBlocks residual layers (4 lines each),
// then the policy and value heads (14 lines total).
func buildWeightsFile(cfg nn.Config) string {
	var lines []string
	lines = append(lines, "1")

	appendLayer := func(inCh, outCh, filterLen int) {
		lines = append(lines, floats(outCh*inCh*filterLen*filterLen))
		lines = append(lines, floats(outCh))
		lines = append(lines, floats(outCh))
		lines = append(lines, floats(outCh))
	}

	appendLayer(cfg.Features, cfg.Filters, 3)
	for i := 0; i < 2*cfg.ResidualBlocks; i++ {
		appendLayer(cfg.Filters, cfg.Filters, 3)
	}
	appendLayer(cfg.Filters, 2, 1)
	lines = append(lines, floats(cfg.ActionSpace()*2*cfg.BoardSize*cfg.BoardSize))
	lines = append(lines, floats(cfg.ActionSpace()))
	appendLayer(cfg.Filters, 1, 1)
	lines = append(lines, floats(cfg.ValueFCWidth*cfg.BoardSize*cfg.BoardSize))
	lines = append(lines, floats(cfg.ValueFCWidth))
	lines = append(lines, floats(cfg.ValueFCWidth))
	lines = append(lines, floats(1))

	return strings.Join(lines, "\n") + "\n"
}

func testConfig() nn.Config {
	return nn.Config{
		BoardSize:      3,
		Features:       2,
		Filters:        2,
		ResidualBlocks: 1,
		ValueFCWidth:   4,
		BatchSize:      1,
		Temperature:    1,
	}
}

func TestLoadWeightsParsesValidFile(t *testing.T) {
	cfg := testConfig()
	text := buildWeightsFile(cfg)

	w, err := nn.LoadWeights(cfg, strings.NewReader(text))
	require.NoError(t, err)
	assert.Len(t, w.Residual, 2*cfg.ResidualBlocks)
	assert.Len(t, w.PolicyFCB, cfg.ActionSpace())
	assert.Len(t, w.ValueFC2B, 1)
}

func TestLoadWeightsRejectsWrongLineCount(t *testing.T) {
	cfg := testConfig()
	text := buildWeightsFile(cfg)
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	truncated := strings.Join(lines[:len(lines)-1], "\n")

	_, err := nn.LoadWeights(cfg, strings.NewReader(truncated))
	assert.Error(t, err)
}

func TestLoadWeightsRejectsBadVersion(t *testing.T) {
	cfg := testConfig()
	text := buildWeightsFile(cfg)
	text = strings.Replace(text, "1\n", "2\n", 1)

	_, err := nn.LoadWeights(cfg, strings.NewReader(text))
	assert.Error(t, err)
}

func TestLoadWeightsRejectsWrongFieldCount(t *testing.T) {
	cfg := testConfig()
	lines := strings.Split(strings.TrimRight(buildWeightsFile(cfg), "\n"), "\n")
	lines[1] = "0.1 0.2" // input conv weights line with too few fields
	text := strings.Join(lines, "\n")

	_, err := nn.LoadWeights(cfg, strings.NewReader(text))
	assert.Error(t, err)
}
