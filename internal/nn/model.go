package nn

import (
	"math"
	"math/rand"
)

// Model is the pairwise discriminator network of spec.md §4.10: a shared
// sub-network f applied to both layout inputs, a linear graph branch,
// and a final tanh-activated combination. Dense1/Dense2 are shared
// between the left and right branches; DenseAux and DenseOut are not.
type Model struct {
	LayoutDims int
	GraphDims  int
	Hidden1    int
	Hidden2    int

	Dense1   *dense // LayoutDims -> Hidden1, linear
	Dense2   *dense // Hidden1 -> Hidden2, ReLU
	DenseAux *dense // GraphDims -> GraphDims, linear
	DenseOut *dense // (Hidden2+GraphDims) -> 1, tanh
}

// New builds a freshly initialized Model sized for layoutDims layout
// features and graphDims graph features, following spec.md §4.10's
// round(2*sqrt(N_L))/round(1.5*sqrt(N_L)) hidden-layer sizing.
func New(layoutDims, graphDims int, rng *rand.Rand) *Model {
	h1 := int(math.Round(2.0 * math.Sqrt(float64(layoutDims))))
	h2 := int(math.Round(1.5 * math.Sqrt(float64(layoutDims))))
	if h1 < 1 {
		h1 = 1
	}
	if h2 < 1 {
		h2 = 1
	}
	return &Model{
		LayoutDims: layoutDims,
		GraphDims:  graphDims,
		Hidden1:    h1,
		Hidden2:    h2,
		Dense1:     newDense(layoutDims, h1, rng),
		Dense2:     newDense(h1, h2, rng),
		DenseAux:   newDense(graphDims, graphDims, rng),
		DenseOut:   newDense(h2+graphDims, 1, rng),
	}
}

// sharedCache records every intermediate activation of one call to f,
// the shared sub-network, needed to run its backward pass.
type sharedCache struct {
	x0    []float64 // input after the first dropout
	z1d   []float64 // Dense1 output after the second dropout
	a2    []float64 // Dense2 pre-activation
	z2    []float64 // Dense2 output after ReLU (this branch's result)
	mask0 []float64
	mask1 []float64
}

func (m *Model) shared(x []float64, train bool, rng *rand.Rand) ([]float64, *sharedCache) {
	x0, mask0 := dropout(x, 0.50, rng, train)
	z1 := m.Dense1.forward(x0)
	z1d, mask1 := dropout(z1, 0.25, rng, train)
	a2 := m.Dense2.forward(z1d)
	z2 := relu(a2)
	return z2, &sharedCache{x0: x0, z1d: z1d, a2: a2, z2: z2, mask0: mask0, mask1: mask1}
}

// Predict runs the model in inference mode (no dropout) and returns the
// scalar comparison score for the pair (lhs, rhs) given the shared
// graph's auxiliary features. The result lies in (-1, +1); positive
// means rhs is predicted better than lhs.
func (m *Model) Predict(lhs, rhs, aux []float64) float64 {
	lo, _ := m.shared(lhs, false, nil)
	ro, _ := m.shared(rhs, false, nil)
	sub := elementwiseSub(lo, ro)
	auxOut := m.DenseAux.forward(aux)
	cat := concat(sub, auxOut)
	z := m.DenseOut.forward(cat)[0]
	return math.Tanh(z)
}
