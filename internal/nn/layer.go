// Package nn implements the pairwise discriminator network described by
// spec.md §4.10 and SPEC_FULL.md §6.5: a small, fixed-shape
// feed-forward network with a shared sub-network applied to both sides
// of a layout comparison. No ML framework appears anywhere in the
// example corpus for this kind of bespoke architecture, so this package
// is hand-rolled on top of plain `math`/`math/rand` — see DESIGN.md for
// why no third-party numerics library could take its place.
package nn

import "math/rand"

// dense is a single fully-connected affine layer y = W^T x + b, weights
// laid out input-major (W[i][j] is the weight from input i to output j)
// so that forward and backward passes can walk rows without transposing.
type dense struct {
	W [][]float64
	B []float64
}

func newDense(in, out int, rng *rand.Rand) *dense {
	w := make([][]float64, in)
	for i := range w {
		row := make([]float64, out)
		for j := range row {
			row[j] = truncatedNormal(rng)
		}
		w[i] = row
	}
	return &dense{W: w, B: make([]float64, out)}
}

// truncatedNormal draws from a zero-mean, 0.05-stdev normal distribution
// resampling any draw more than two standard deviations from the mean,
// mirroring Keras's 'truncated_normal' kernel_initializer.
func truncatedNormal(rng *rand.Rand) float64 {
	const stdev = 0.05
	for {
		v := rng.NormFloat64() * stdev
		if v >= -2*stdev && v <= 2*stdev {
			return v
		}
	}
}

func (d *dense) forward(x []float64) []float64 {
	out := make([]float64, len(d.B))
	copy(out, d.B)
	for i, xi := range x {
		if xi == 0 {
			continue
		}
		row := d.W[i]
		for j, wij := range row {
			out[j] += xi * wij
		}
	}
	return out
}

// backward accumulates this layer's weight/bias gradients for one
// example into gradW/gradB and returns the gradient with respect to x.
func (d *dense) backward(x, dOut []float64, gradW [][]float64, gradB []float64) []float64 {
	dX := make([]float64, len(x))
	for i, xi := range x {
		row := d.W[i]
		gRow := gradW[i]
		var dxi float64
		for j, dj := range dOut {
			gRow[j] += xi * dj
			dxi += row[j] * dj
		}
		dX[i] = dxi
	}
	for j, dj := range dOut {
		gradB[j] += dj
	}
	return dX
}

func zeroMatrix(in, out int) [][]float64 {
	m := make([][]float64, in)
	for i := range m {
		m[i] = make([]float64, out)
	}
	return m
}

// dropout applies inverted dropout at rate p: each element survives with
// probability 1-p and is rescaled by 1/(1-p) so evaluation (train=false)
// needs no further correction. mask is nil when train is false.
func dropout(x []float64, p float64, rng *rand.Rand, train bool) (y, mask []float64) {
	if !train || p <= 0 {
		y = make([]float64, len(x))
		copy(y, x)
		return y, nil
	}
	y = make([]float64, len(x))
	mask = make([]float64, len(x))
	scale := 1.0 / (1.0 - p)
	for i, xi := range x {
		if rng.Float64() < p {
			mask[i] = 0
		} else {
			mask[i] = scale
		}
		y[i] = xi * mask[i]
	}
	return y, mask
}

func relu(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		if v > 0 {
			out[i] = v
		}
	}
	return out
}

func reluGrad(preact, upstream []float64) []float64 {
	out := make([]float64, len(preact))
	for i, v := range preact {
		if v > 0 {
			out[i] = upstream[i]
		}
	}
	return out
}

func elementwiseSub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func negate(a []float64) []float64 {
	out := make([]float64, len(a))
	for i, v := range a {
		out[i] = -v
	}
	return out
}

func concat(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// applyDropoutMask multiplies upstream gradients by a dropout mask
// recorded at forward time (nil mask means dropout was a no-op).
func applyDropoutMask(upstream, mask []float64) []float64 {
	if mask == nil {
		return upstream
	}
	out := make([]float64, len(upstream))
	for i, v := range upstream {
		out[i] = v * mask[i]
	}
	return out
}
