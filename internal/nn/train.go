package nn

import (
	"math"
	"math/rand"

	"github.com/5gon12eder/graphstudy-go/internal/corpus"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
)

// gradients accumulates the partial derivatives of a batch's total loss
// with respect to every trainable parameter. Dense1/Dense2 are shared
// between the left and right branches, so both branches' backward
// passes add into the same slots.
type gradients struct {
	dW1, dW2, dWAux, dWOut [][]float64
	dB1, dB2, dBAux, dBOut []float64
	n                      int
}

func newGradients(m *Model) *gradients {
	return &gradients{
		dW1:   zeroMatrix(m.LayoutDims, m.Hidden1),
		dB1:   make([]float64, m.Hidden1),
		dW2:   zeroMatrix(m.Hidden1, m.Hidden2),
		dB2:   make([]float64, m.Hidden2),
		dWAux: zeroMatrix(m.GraphDims, m.GraphDims),
		dBAux: make([]float64, m.GraphDims),
		dWOut: zeroMatrix(m.Hidden2+m.GraphDims, 1),
		dBOut: make([]float64, 1),
	}
}

// backwardShared runs one branch's backward pass through the shared
// sub-network, given the upstream gradient with respect to its output
// (dz2), adding into g.
func (m *Model) backwardShared(cache *sharedCache, dz2 []float64, g *gradients) {
	da2 := reluGrad(cache.a2, dz2)
	dz1d := m.Dense2.backward(cache.z1d, da2, g.dW2, g.dB2)
	dz1 := applyDropoutMask(dz1d, cache.mask1)
	_ = m.Dense1.backward(cache.x0, dz1, g.dW1, g.dB1)
}

// step runs one example's forward and backward pass, adding its
// gradient contribution into g, and returns its squared error.
func (m *Model) step(lhs, rhs, aux []float64, target float64, rng *rand.Rand, g *gradients) float64 {
	loOut, loCache := m.shared(lhs, true, rng)
	roOut, roCache := m.shared(rhs, true, rng)
	sub := elementwiseSub(loOut, roOut)
	auxOut := m.DenseAux.forward(aux)
	cat := concat(sub, auxOut)
	zOut := m.DenseOut.forward(cat)[0]
	y := math.Tanh(zOut)

	err := y - target
	dzOut := []float64{2 * err * (1 - y*y)}
	dCat := m.DenseOut.backward(cat, dzOut, g.dWOut, g.dBOut)

	dSub := dCat[:m.Hidden2]
	dAux := dCat[m.Hidden2:]

	m.DenseAux.backward(aux, dAux, g.dWAux, g.dBAux)
	m.backwardShared(loCache, dSub, g)
	m.backwardShared(roCache, negate(dSub), g)

	g.n++
	return err * err
}

func (m *Model) applyGradients(g *gradients, lr float64) {
	if g.n == 0 {
		return
	}
	scale := lr / float64(g.n)
	applyMatrix(m.Dense1.W, g.dW1, scale)
	applyVector(m.Dense1.B, g.dB1, scale)
	applyMatrix(m.Dense2.W, g.dW2, scale)
	applyVector(m.Dense2.B, g.dB2, scale)
	applyMatrix(m.DenseAux.W, g.dWAux, scale)
	applyVector(m.DenseAux.B, g.dBAux, scale)
	applyMatrix(m.DenseOut.W, g.dWOut, scale)
	applyVector(m.DenseOut.B, g.dBOut, scale)
}

func applyMatrix(w, dw [][]float64, scale float64) {
	for i := range w {
		for j := range w[i] {
			w[i][j] -= scale * dw[i][j]
		}
	}
}

func applyVector(b, db []float64, scale float64) {
	for i := range b {
		b[i] -= scale * db[i]
	}
}

// TrainOptions configures Train.
type TrainOptions struct {
	Epochs          int     // fixed epoch budget, spec.md §4.10 suggests ~100
	LearningRate    float64 // plain SGD step size
	BatchSize       int     // mini-batch size
	ValidationSplit float64 // fraction of the training set held out, spec.md says 0.25
}

// DefaultTrainOptions mirrors the original driver's defaults:
// model.fit(..., validation_split=0.25, epochs=100) with plain SGD.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{Epochs: 100, LearningRate: 0.01, BatchSize: 32, ValidationSplit: 0.25}
}

// Train runs mini-batch SGD over data's rows for opts.Epochs epochs,
// holding out opts.ValidationSplit of the rows (chosen once, up front)
// for validation-loss reporting. Mirrors _train_model.
func Train(m *Model, data *corpus.DataSet, opts TrainOptions, rng *rand.Rand, log *logger.Logger) {
	if log == nil {
		log = logger.NewNop()
	}
	n := data.Len()
	if n == 0 {
		return
	}
	perm := rng.Perm(n)
	nval := int(float64(n) * opts.ValidationSplit)
	valIdx := perm[:nval]
	trainIdx := perm[nval:]

	log.Info("training discriminator model", "epochs", opts.Epochs, "examples", len(trainIdx), "validation", len(valIdx))
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
		var trainLoss float64
		for start := 0; start < len(trainIdx); start += opts.BatchSize {
			end := start + opts.BatchSize
			if end > len(trainIdx) {
				end = len(trainIdx)
			}
			g := newGradients(m)
			for _, idx := range trainIdx[start:end] {
				trainLoss += m.step(data.LHS[idx], data.RHS[idx], data.Aux[idx], data.Out[idx], rng, g)
			}
			m.applyGradients(g, opts.LearningRate)
		}
		if len(trainIdx) > 0 {
			trainLoss /= float64(len(trainIdx))
		}
		var valLoss float64
		for _, idx := range valIdx {
			p := m.Predict(data.LHS[idx], data.RHS[idx], data.Aux[idx])
			d := p - data.Out[idx]
			valLoss += d * d
		}
		if len(valIdx) > 0 {
			valLoss /= float64(len(valIdx))
		}
		log.Debug("training epoch complete", "epoch", epoch+1, "trainLoss", trainLoss, "valLoss", valLoss)
	}
}

// Test runs the model over every row of data and returns its
// predictions alongside the hit rate (fraction of rows where the
// prediction and the label agree in sign) and the signed prediction
// error's mean and standard deviation, mirroring _test_model.
func Test(m *Model, data *corpus.DataSet) (predictions []float64, hitRate, errMean, errStdev float64) {
	n := data.Len()
	predictions = make([]float64, n)
	var hits int
	var sum float64
	for i := 0; i < n; i++ {
		p := m.Predict(data.LHS[i], data.RHS[i], data.Aux[i])
		predictions[i] = p
		if p*data.Out[i] >= 0.0 {
			hits++
		}
		sum += p - data.Out[i]
	}
	if n == 0 {
		return predictions, 0, 0, 0
	}
	errMean = sum / float64(n)
	var ss float64
	for i := 0; i < n; i++ {
		d := (predictions[i] - data.Out[i]) - errMean
		ss += d * d
	}
	errStdev = math.Sqrt(ss / float64(n))
	hitRate = float64(hits) / float64(n)
	return predictions, hitRate, errMean, errStdev
}
