package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.True(t, DefaultConfig().IsValid())
}

func TestConfigInvalidWhenPUCTNonPositive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PUCT = 0
	assert.False(t, cfg.IsValid())
}

func TestConfigInvalidWhenTranspositionSizeZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TranspositionSize = 0
	assert.False(t, cfg.IsValid())
}

func TestConfigInvalidWhenTemperatureNonPositive(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RandomTemperature = 0
	assert.False(t, cfg.IsValid())
}
