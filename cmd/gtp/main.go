// Command gtp is a minimal, non-conformant line-protocol demo that wires
// board+mcts+nn+timecontrol into a gozero.Engine and drives it from
// stdin/stdout with gtp.Controller.Dispatch. It is not a GTP server: no id
// numbers, no multi-line replies, no command-set negotiation.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/sente-ai/gozero"
	"github.com/sente-ai/gozero/gtp"
	"github.com/sente-ai/gozero/nn"
)

var (
	weightsPath = flag.String("weights", "", "path to a weights file")
	boardSize   = flag.Int("size", 19, "board size")
)

func main() {
	flag.Parse()
	if *weightsPath == "" {
		log.Fatal("gtp: -weights is required")
	}

	cfg := gozero.DefaultConfig(*boardSize)

	f, err := os.Open(*weightsPath)
	if err != nil {
		log.Fatalf("gtp: opening weights: %v", err)
	}
	defer f.Close()

	weights, err := nn.LoadWeights(cfg.NN, f)
	if err != nil {
		log.Fatalf("gtp: loading weights: %v", err)
	}
	evaluator := nn.Direct(nn.NewNetwork(weights), cfg.BoardSize)

	engine, err := gozero.NewEngine(cfg, evaluator)
	if err != nil {
		log.Fatalf("gtp: %v", err)
	}
	defer engine.Close()

	ctrl := gtp.New(engine)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "quit" {
			return
		}
		reply, err := ctrl.Dispatch(line)
		if err != nil {
			fmt.Printf("? %v\n", err)
			continue
		}
		fmt.Printf("= %s\n", reply)
	}
}
