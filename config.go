package gozero

import (
	"github.com/sente-ai/gozero/mcts"
	"github.com/sente-ai/gozero/nn"
	"github.com/sente-ai/gozero/timecontrol"
)

// Config bundles the sub-configs of every component an Engine owns:
// name, board geometry, and the nested NN/MCTS/time-control configs.
type Config struct {
	Name      string
	BoardSize int
	Komi      float32

	NN   nn.Config
	MCTS mcts.Config
	Time timecontrol.Settings
}

// DefaultConfig returns a ready-to-use configuration for a board of side
// n, with a standard 7.5 komi.
func DefaultConfig(n int) Config {
	return Config{
		Name:      "gozero",
		BoardSize: n,
		Komi:      7.5,
		NN:        nn.DefaultConfig(n),
		MCTS:      mcts.DefaultConfig(),
		Time: timecontrol.Settings{
			ByoStones:  5,
			ByoPeriods: 1,
		},
	}
}

// IsValid reports whether every sub-config is self-consistent.
func (c Config) IsValid() bool {
	return c.BoardSize > 0 && c.BoardSize <= 25 &&
		c.NN.IsValid() && c.MCTS.IsValid()
}
