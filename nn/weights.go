package nn

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// layer is one plain-conv layer's parameters: a 3x3 (or 1x1) convolution
// followed by batchnorm, stored as four lines in the weights file, in
// order {weights, biases, bn_means, bn_variances}.
type layer struct {
	weights   []float32
	biases    []float32
	bnMeans   []float32
	bnVars    []float32
	outCh     int
	inCh      int
	filterLen int
}

// Weights holds every parsed tensor of a dual-headed residual network,
// laid out exactly as the file format describes: one input conv, 2*B
// residual-block convs, then the policy and value heads.
type Weights struct {
	Config Config

	Input    layer
	Residual []layer // length 2*ResidualBlocks

	PolicyConv   layer
	PolicyFCW    []float32
	PolicyFCB    []float32
	ValueConv    layer
	ValueFC1W    []float32
	ValueFC1B    []float32
	ValueFC2W    []float32
	ValueFC2B    []float32
}

// LoadWeights parses a line-oriented weights file. The evaluator rejects
// any file whose line count doesn't exactly equal
// Config.WeightsLineCount(); this is checked before any tensor is parsed,
// so a truncated or mismatched file fails fast with a clear count instead
// of an obscure shape error partway through.
func LoadWeights(cfg Config, r io.Reader) (*Weights, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, errors.Wrap(err, "nn: reading weights file")
	}
	want := cfg.WeightsLineCount()
	if len(lines) != want {
		return nil, errors.Errorf("nn: weights file has %d lines, want %d for %s", len(lines), want, cfg)
	}

	version, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || version != 1 {
		return nil, errors.Errorf("nn: unsupported weights file version %q", lines[0])
	}
	lines = lines[1:]

	n := cfg.BoardSize
	k := cfg.Filters

	w := &Weights{Config: cfg}

	var idx int
	nextLayer := func(inCh, outCh, filterLen int) (layer, error) {
		l := layer{inCh: inCh, outCh: outCh, filterLen: filterLen}
		var err error
		if l.weights, err = parseFloats(lines[idx], outCh*inCh*filterLen*filterLen); err != nil {
			return l, errors.Wrapf(err, "layer weights at line %d", idx+1)
		}
		idx++
		if l.biases, err = parseFloats(lines[idx], outCh); err != nil {
			return l, errors.Wrapf(err, "layer biases at line %d", idx+1)
		}
		idx++
		if l.bnMeans, err = parseFloats(lines[idx], outCh); err != nil {
			return l, errors.Wrapf(err, "bn means at line %d", idx+1)
		}
		idx++
		if l.bnVars, err = parseFloats(lines[idx], outCh); err != nil {
			return l, errors.Wrapf(err, "bn variances at line %d", idx+1)
		}
		idx++
		return l, nil
	}

	var err2 error
	if w.Input, err2 = nextLayer(cfg.Features, k, 3); err2 != nil {
		return nil, err2
	}
	w.Residual = make([]layer, 2*cfg.ResidualBlocks)
	for i := range w.Residual {
		if w.Residual[i], err2 = nextLayer(k, k, 3); err2 != nil {
			return nil, errors.Wrapf(err2, "residual layer %d", i)
		}
	}

	if w.PolicyConv, err2 = nextLayer(k, 2, 1); err2 != nil {
		return nil, errors.Wrap(err2, "policy conv")
	}
	if w.PolicyFCW, err2 = parseFloats(lines[idx], cfg.ActionSpace()*2*n*n); err2 != nil {
		return nil, errors.Wrap(err2, "policy fc weights")
	}
	idx++
	if w.PolicyFCB, err2 = parseFloats(lines[idx], cfg.ActionSpace()); err2 != nil {
		return nil, errors.Wrap(err2, "policy fc biases")
	}
	idx++

	if w.ValueConv, err2 = nextLayer(k, 1, 1); err2 != nil {
		return nil, errors.Wrap(err2, "value conv")
	}
	if w.ValueFC1W, err2 = parseFloats(lines[idx], cfg.ValueFCWidth*n*n); err2 != nil {
		return nil, errors.Wrap(err2, "value fc1 weights")
	}
	idx++
	if w.ValueFC1B, err2 = parseFloats(lines[idx], cfg.ValueFCWidth); err2 != nil {
		return nil, errors.Wrap(err2, "value fc1 biases")
	}
	idx++
	if w.ValueFC2W, err2 = parseFloats(lines[idx], cfg.ValueFCWidth); err2 != nil {
		return nil, errors.Wrap(err2, "value fc2 weights")
	}
	idx++
	if w.ValueFC2B, err2 = parseFloats(lines[idx], 1); err2 != nil {
		return nil, errors.Wrap(err2, "value fc2 biases")
	}
	idx++

	return w, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 1<<20), 1<<28)
	for s.Scan() {
		line := s.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func parseFloats(line string, want int) ([]float32, error) {
	fields := strings.Fields(line)
	if len(fields) != want {
		return nil, fmt.Errorf("got %d values, want %d", len(fields), want)
	}
	out := make([]float32, want)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}
