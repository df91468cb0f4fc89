// Command weightscheck validates a weights file's line count and tensor
// shapes against a given board size/network shape, rejecting any file
// with a wrong line count, without running a search.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/sente-ai/gozero/nn"
)

var (
	weightsPath    = flag.String("weights", "", "path to a weights file")
	boardSize      = flag.Int("size", 19, "board size")
	filters        = flag.Int("filters", 0, "filter count K (0: derive from board size)")
	residualBlocks = flag.Int("blocks", 0, "residual block count B (0: derive from board size)")
)

func main() {
	flag.Parse()
	if *weightsPath == "" {
		log.Fatal("weightscheck: -weights is required")
	}

	cfg := nn.DefaultConfig(*boardSize)
	if *filters > 0 {
		cfg.Filters = *filters
	}
	if *residualBlocks > 0 {
		cfg.ResidualBlocks = *residualBlocks
	}

	f, err := os.Open(*weightsPath)
	if err != nil {
		log.Fatalf("weightscheck: %v", err)
	}
	defer f.Close()

	w, err := nn.LoadWeights(cfg, f)
	if err != nil {
		log.Fatalf("weightscheck: INVALID: %v", err)
	}
	log.Printf("weightscheck: OK — %s, %d residual layers, policy/value heads present", w.Config, len(w.Residual))
}
