package baselines

import (
	"context"
	"math"
	"math/rand"

	"github.com/MaxHalford/eaopt"

	"github.com/5gon12eder/graphstudy-go/internal/corpus"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// designMatrix standardizes each of info's pairs against its graph's
// per-metric mean and standard deviation, producing one row per pair
// and one column per Huang metric — the standardized difference the
// trained weights are later applied to. Entries for unavailable
// ingredients are NaN, mirroring
// _load_huang_context_with_matrix_and_weights_vector.
func designMatrix(ctx context.Context, st *store.Store, c *HuangContext, info []corpus.PairInfo) ([][]float64, error) {
	metrics := c.Metrics()
	matrix := make([][]float64, len(info))
	for i, p := range info {
		stats, err := c.statsFor(ctx, st, p.LHS, p.RHS)
		if err != nil {
			return nil, err
		}
		row := make([]float64, len(metrics))
		for j, m := range metrics {
			s, ok := stats[m]
			lhsVal, lhsOK, err := metricValue(ctx, st, p.LHS, m)
			if err != nil {
				return nil, err
			}
			rhsVal, rhsOK, err := metricValue(ctx, st, p.RHS, m)
			if err != nil {
				return nil, err
			}
			switch {
			case !ok || !s.Valid || !lhsOK || !rhsOK:
				row[j] = math.NaN()
			case s.Stdev > 0.0:
				row[j] = (lhsVal - rhsVal) / s.Stdev
			default:
				row[j] = 0.0
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}

func sanitizeNaN(matrix [][]float64) {
	for _, row := range matrix {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				row[j] = 0.0
			}
		}
	}
}

// failureRate returns the fraction of rows where the weighted
// combination of matrix's row disagrees in sign with labels, the same
// objective _train_alternative_huang minimizes.
func failureRate(matrix [][]float64, labels []float64, weights []float64) float64 {
	var norm float64
	for _, w := range weights {
		norm += math.Abs(w)
	}
	if norm == 0.0 {
		return 1.0
	}
	var failures int
	for i, row := range matrix {
		var prediction float64
		for j, v := range row {
			prediction += v * (weights[j] / norm)
		}
		if prediction*labels[i] < 0.0 {
			failures++
		}
	}
	return float64(failures) / float64(len(matrix))
}

// TrainHuang fits the Huang composite's weights to the labeled corpus
// by minimizing the sign-disagreement failure rate with CMA-ES,
// starting from the initial weights of NewHuangContext — the
// evolutionary-strategy analogue of the original driver's Nelder-Mead
// search in _train_alternative_huang, re-grounded per SPEC_FULL.md
// since no member of the example corpus imports scipy.
func TrainHuang(ctx context.Context, st *store.Store, info []corpus.PairInfo, labels []float64, rng *rand.Rand, log *logger.Logger) (*HuangContext, error) {
	if log == nil {
		log = logger.NewNop()
	}
	hctx := NewHuangContext()
	if err := hctx.PopulateCache(ctx, st); err != nil {
		return nil, err
	}
	metrics := hctx.Metrics()

	matrix, err := designMatrix(ctx, st, hctx, info)
	if err != nil {
		return nil, err
	}
	limit := 0.01
	if _, err := corpus.CheckNonFiniteFraction(matrix, "huang", &limit, log); err != nil {
		return nil, err
	}
	sanitizeNaN(matrix)

	initWeights := make([]float64, len(metrics))
	for i, m := range metrics {
		initWeights[i] = hctx.Weights[m]
	}

	cfg := eaopt.NewDefaultCMAESConfig()
	cfg.NDim = len(metrics)
	cfg.NPop = 20
	cfg.InitMean = initWeights
	cfg.Rng = rng

	optimizer, err := cfg.NewOptimizer()
	if err != nil {
		return nil, xerrors.WrapFatal(err, "configuring Huang weight optimizer")
	}
	best, failrate, err := optimizer.Minimize(func(x []float64) float64 {
		rate := failureRate(matrix, labels, x)
		log.Debug("huang weight search", "failureRate", rate)
		return rate
	})
	if err != nil {
		return nil, xerrors.WrapFatal(err, "optimizing Huang parameters")
	}

	var norm float64
	for _, w := range best {
		norm += math.Abs(w)
	}
	if norm == 0.0 {
		return nil, xerrors.Sanityf("huang weight optimization converged to the zero vector")
	}
	for i, m := range metrics {
		hctx.Weights[m] = best[i] / norm
	}
	log.Info("trained huang composite weights", "failureRate", failrate)
	for _, m := range metrics {
		log.Info("huang weight", "metric", m, "weight", hctx.Weights[m])
	}
	return hctx, nil
}
