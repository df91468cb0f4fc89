package nn

import (
	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
	"gorgonia.org/vecf32"
)

// This file is the CPU reference operator set: convolve, batchnorm_relu,
// residual_add and fc. Each operates on gorgonia.org/tensor.Dense values
// so the evaluator's tensor type is the same one the rest of the numeric
// stack (gorgonia.org/gorgonia, gorgonia.org/vecf32) already shares, even
// though this reference implementation is plain nested loops rather than
// a compiled graph. Correctness, not speed, is the contract here: a
// from-scratch GEMM or FFT-based convolution is out of scope.

func newDense(shape ...int) *tensor.Dense {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(make([]float32, size)))
}

func data(t *tensor.Dense) []float32 { return t.Data().([]float32) }

// convolve applies an outCh x inCh x f x f filter bank with zero padding
// to an (inCh, h, w) input, producing an (outCh, h, w) output. f is 1 or
// 3, matching the weights file layout.
func convolve(l layer, in *tensor.Dense, h, w int) *tensor.Dense {
	inD := data(in)
	out := newDense(l.outCh, h, w)
	outD := data(out)
	pad := l.filterLen / 2

	for co := 0; co < l.outCh; co++ {
		bias := l.biases[co]
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum := bias
				for c := 0; c < l.inCh; c++ {
					base := c * h * w
					for fy := 0; fy < l.filterLen; fy++ {
						iy := y + fy - pad
						if iy < 0 || iy >= h {
							continue
						}
						wBase := ((co*l.inCh+c)*l.filterLen + fy) * l.filterLen
						for fx := 0; fx < l.filterLen; fx++ {
							ix := x + fx - pad
							if ix < 0 || ix >= w {
								continue
							}
							sum += inD[base+iy*w+ix] * l.weights[wBase+fx]
						}
					}
				}
				outD[co*h*w+y*w+x] = sum
			}
		}
	}
	return out
}

// batchnormReLU applies per-channel batch normalization (using the
// layer's stored running mean/variance, inference mode only — training
// is never performed here) followed by ReLU, in place over x shaped
// (ch, h, w).
func batchnormReLU(l layer, x *tensor.Dense, h, w int) *tensor.Dense {
	const eps = 1e-5
	xd := data(x)
	for c := 0; c < l.outCh; c++ {
		mean := l.bnMeans[c]
		inv := 1.0 / math32.Sqrt(l.bnVars[c]+eps)
		base := c * h * w
		for i := 0; i < h*w; i++ {
			v := (xd[base+i] - mean) * inv
			if v < 0 {
				v = 0
			}
			xd[base+i] = v
		}
	}
	return x
}

// residualAdd fuses a residual-block's skip connection before the block's
// final ReLU: x += r, element-wise, via vecf32's generated SIMD-friendly
// add, the same package the tensor numeric stack already uses for
// elementwise float32 arithmetic.
func residualAdd(x, r *tensor.Dense) *tensor.Dense {
	vecf32.Add(data(x), data(r))
	return x
}

// relu applies rectified linear activation in place.
func relu(x *tensor.Dense) *tensor.Dense {
	xd := data(x)
	for i, v := range xd {
		if v < 0 {
			xd[i] = 0
		}
	}
	return x
}

// fc computes a fully-connected layer: out = W*in + b, with W stored
// row-major (outDim, inDim).
func fc(w, b []float32, in []float32, outDim, inDim int) []float32 {
	out := make([]float32, outDim)
	for o := 0; o < outDim; o++ {
		sum := b[o]
		base := o * inDim
		for i := 0; i < inDim; i++ {
			sum += w[base+i] * in[i]
		}
		out[o] = sum
	}
	return out
}

// tanh32 is a float32 tanh, used on the value head's scalar output.
func tanh32(x float32) float32 {
	return math32.Tanh(x)
}
