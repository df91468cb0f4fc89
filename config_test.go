package gozero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sente-ai/gozero"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := gozero.DefaultConfig(9)
	assert.True(t, cfg.IsValid())
	assert.Equal(t, float32(7.5), cfg.Komi)
}

func TestDefaultConfigRejectsOversizedBoard(t *testing.T) {
	cfg := gozero.DefaultConfig(30)
	assert.False(t, cfg.IsValid())
}

func TestDefaultConfigRejectsZeroBoard(t *testing.T) {
	cfg := gozero.DefaultConfig(0)
	assert.False(t, cfg.IsValid())
}
