package corpus

import (
	"bytes"
	"context"
	"encoding/gob"
	"math"
	"math/rand"
	"os"

	"github.com/5gon12eder/graphstudy-go/internal/features"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// na is the normalized sentinel for a feature that was never observed.
const na = math.NaN()

// Normalizer holds the mean and standard deviation of one feature
// column, computed only from its finite observations. A Mean of NaN
// means no observation for this column was ever finite; a Stdev of NaN
// means fewer than three finite observations were available to estimate
// spread. Mirrors _get_normalizers.
type Normalizer struct {
	Mean, Stdev float64
}

// ComputeNormalizers derives one Normalizer per column of vectors.
func ComputeNormalizers(vectors [][]float64) []Normalizer {
	if len(vectors) == 0 {
		return nil
	}
	cols := len(vectors[0])
	norms := make([]Normalizer, cols)
	for c := 0; c < cols; c++ {
		var sum float64
		var count int
		for _, row := range vectors {
			if v := row[c]; !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		mean := na
		if count >= 1 {
			mean = sum / float64(count)
		}
		stdev := na
		if count >= 3 {
			var ss float64
			for _, row := range vectors {
				if v := row[c]; !math.IsNaN(v) {
					d := v - mean
					ss += d * d
				}
			}
			stdev = math.Sqrt(ss / float64(count))
		}
		norms[c] = Normalizer{Mean: mean, Stdev: stdev}
	}
	return norms
}

// Normalize mean-centers and stdev-scales every column of vectors
// against norm, replacing any resulting NaN/Inf with zero. The input is
// left untouched; a fresh matrix is returned. Mirrors _normalize_data.
func Normalize(norm []Normalizer, vectors [][]float64) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, row := range vectors {
		newrow := make([]float64, len(row))
		copy(newrow, row)
		for c, n := range norm {
			if c >= len(newrow) {
				break
			}
			v := newrow[c]
			if !math.IsNaN(n.Mean) {
				v -= n.Mean
			}
			if !math.IsNaN(n.Stdev) && n.Stdev > 0.0 {
				v /= n.Stdev
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0.0
			}
			newrow[c] = v
		}
		out[i] = newrow
	}
	return out
}

// CheckNonFiniteFraction counts the rows of vectors that contain at
// least one non-finite entry and returns their fraction of the whole. If
// badLimit is non-nil and the fraction exceeds it, a Fatal error is
// returned instead. Mirrors _check_for_non_finite_feature_vectors.
func CheckNonFiniteFraction(vectors [][]float64, what string, badLimit *float64, log *logger.Logger) (float64, error) {
	if log == nil {
		log = logger.NewNop()
	}
	n := len(vectors)
	if n == 0 {
		return 0, nil
	}
	bad := 0
	for _, row := range vectors {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				bad++
				break
			}
		}
	}
	fraction := float64(bad) / float64(n)
	log.Info("feature vectors contain non-finite entries", "what", what, "bad", bad, "total", n, "percent", 100.0*fraction)
	if badLimit != nil && fraction > *badLimit {
		return fraction, xerrors.Fatalf("%.2f %% of the %s feature vectors contain non-finite entries (limit: %.2f %%)",
			100.0*fraction, what, 100.0*(*badLimit))
	}
	return fraction, nil
}

// PairInfo records which two layouts a DataSet row compares.
type PairInfo struct {
	LHS, RHS idfp.ID
}

// DataSet is a matched set of left/right/auxiliary feature matrices and
// their target labels, ready to feed the discriminator model (or its
// baselines). Every row is independent; LHS[i]/RHS[i]/Aux[i]/Out[i]
// describe the same comparison.
type DataSet struct {
	LHS, RHS, Aux [][]float64
	Out           []float64
}

// Len reports the number of rows.
func (d *DataSet) Len() int { return len(d.Out) }

// Bias reports how many rows favor the right-hand layout (pos), how
// many favor the left (neg), and the mean label value. Mirrors
// _DataSet.bias.
func (d *DataSet) Bias() (pos, neg int, bias float64) {
	var sum float64
	for _, o := range d.Out {
		switch {
		case o > 0:
			pos++
		case o < 0:
			neg++
		}
		sum += o
	}
	if len(d.Out) > 0 {
		bias = sum / float64(len(d.Out))
	}
	return
}

// FeatureSchema is the persisted description of a trained model's input
// columns: their names (for staleness detection against a reconfigured
// properties.cfg) and the normalizers used to standardize them.
// Mirrors the combination of _save_features/_restore_features.
type FeatureSchema struct {
	LayoutNames       []string
	LayoutNormalizers []Normalizer
	GraphNames        []string
	GraphNormalizers  []Normalizer
}

// Save persists the schema to the store's model-features file.
func (fs *FeatureSchema) Save(st *store.Store) error {
	if err := os.MkdirAll(st.ModelDir(), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating model directory")
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(fs); err != nil {
		return xerrors.WrapFatal(err, "encoding feature schema")
	}
	if err := os.WriteFile(st.ModelFeaturesFile(), buf.Bytes(), 0o644); err != nil {
		return xerrors.WrapFatal(err, "writing %s", st.ModelFeaturesFile())
	}
	return nil
}

// LoadFeatureSchema restores a previously saved FeatureSchema, or
// returns (nil, nil) if none has been persisted yet.
func LoadFeatureSchema(st *store.Store) (*FeatureSchema, error) {
	data, err := os.ReadFile(st.ModelFeaturesFile())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.WrapFatal(err, "reading %s", st.ModelFeaturesFile())
	}
	var fs FeatureSchema
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&fs); err != nil {
		return nil, xerrors.WrapFatal(err, "decoding %s", st.ModelFeaturesFile())
	}
	return &fs, nil
}

// featureCache memoizes a per-entity feature vector, preserving the
// order entities were first requested in — the same order Python's
// dict-backed cache iterates, which in turn determines the row order of
// the normalizer-fitting matrix.
type featureCache struct {
	order  []idfp.ID
	names  []string
	values map[idfp.ID][]float64
}

func newFeatureCache() *featureCache {
	return &featureCache{values: make(map[idfp.ID][]float64)}
}

func (c *featureCache) get(id idfp.ID, compute func() ([]features.Feature, error)) ([]float64, error) {
	if v, ok := c.values[id]; ok {
		return v, nil
	}
	fs, err := compute()
	if err != nil {
		return nil, err
	}
	if c.names == nil {
		c.names = features.Names(fs)
	}
	v := features.Values(fs)
	c.values[id] = v
	c.order = append(c.order, id)
	return v, nil
}

func (c *featureCache) matrix() [][]float64 {
	out := make([][]float64, len(c.order))
	for i, id := range c.order {
		out[i] = c.values[id]
	}
	return out
}

// LoadResult is everything the discriminator model (and its baselines)
// needs to train and evaluate: the split data sets, which original pair
// each row came from, and the persisted-or-fresh normalizer schema.
type LoadResult struct {
	Training, Testing         *DataSet
	TrainingInfo, TestingInfo []PairInfo
	Schema                    *FeatureSchema
}

// Assembler turns the store's graphs, layouts and derived artifacts into
// a LoadResult. It owns the random source used to break ties and choose
// the train/test split, so that passing the same seed reproduces the
// same corpus.
type Assembler struct {
	st  *store.Store
	rng *rand.Rand
	log *logger.Logger
}

// NewAssembler builds an Assembler. rng must not be nil; callers that
// want a reproducible corpus pass rand.New(rand.NewSource(seed)).
func NewAssembler(st *store.Store, rng *rand.Rand, log *logger.Logger) *Assembler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Assembler{st: st, rng: rng, log: log.With("component", "corpus")}
}

// LoadOptions configures one call to Load.
type LoadOptions struct {
	PropsDisc, PropsCont, Puncture features.PropertySet
	TestFraction                  float64              // fraction of graphs reserved for testing
	Persist                       bool                 // persist the feature schema
	Strict                        bool                 // reject implausibly small data sets
	FingerprintMatch              FingerprintMatchMode // how to detect seemingly-identical pairs; zero value is exact match
}

var noFiniteCheckLimit = 0.01

// Load gathers every significant pair from all three sources, assembles
// and normalizes their feature vectors, and splits the result into a
// training and a testing DataSet at the graph level. Mirrors
// _load_training_and_testing_data.
func (a *Assembler) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	a.log.Info("loading training / testing data from store")

	var collection []Pair
	for _, gather := range []func(context.Context, *store.Store, *rand.Rand) ([]Pair, error){
		GatherProper, GatherInter, GatherWorse,
	} {
		pairs, err := gather(ctx, a.st, a.rng)
		if err != nil {
			return nil, err
		}
		collection = append(collection, FilterSignificant(pairs)...)
	}

	allGraphIDs := make(map[idfp.ID]bool)
	for _, p := range collection {
		allGraphIDs[p.GraphID] = true
	}
	if opts.Strict && len(allGraphIDs) < 2 {
		return nil, xerrors.Fatalf("please, I need at least two graphs, you only gave me %d", len(allGraphIDs))
	}

	var testGraphIDs map[idfp.ID]bool
	for {
		testGraphIDs = make(map[idfp.ID]bool)
		for gid := range allGraphIDs {
			if a.rng.Float64() < opts.TestFraction {
				testGraphIDs[gid] = true
			}
		}
		if len(allGraphIDs) < 2 || (len(testGraphIDs) > 0 && len(testGraphIDs) < len(allGraphIDs)) {
			break
		}
	}

	allLayouts, err := store.Select[store.Layout](ctx, a.st.DB(), nil)
	if err != nil {
		return nil, err
	}
	fingerprints := make(map[idfp.ID]idfp.Fingerprint, len(allLayouts))
	for _, l := range allLayouts {
		fingerprints[l.ID] = l.Fingerprint
	}

	lodata := newFeatureCache()
	grdata := newFeatureCache()
	type pairKey struct{ lhs, rhs idfp.ID }
	seen := make(map[pairKey]bool)

	var lhs, rhs, aux [][]float64
	var out []float64
	var info []PairInfo
	var selection []bool

	for _, p := range collection {
		if opts.FingerprintMatch.Match(fingerprints[p.LHS], fingerprints[p.RHS]) {
			a.log.Debug("discarding seemingly identical pair", "lhs", p.LHS, "rhs", p.RHS, "rank", p.Rank)
			continue
		}
		key := pairKey{p.LHS, p.RHS}
		if seen[key] {
			continue
		}
		seen[key] = true

		lv, err := lodata.get(p.LHS, func() ([]features.Feature, error) {
			return features.LayoutFeatures(ctx, a.st, p.LHS, opts.PropsDisc, opts.PropsCont, opts.Puncture)
		})
		if err != nil {
			return nil, err
		}
		rv, err := lodata.get(p.RHS, func() ([]features.Feature, error) {
			return features.LayoutFeatures(ctx, a.st, p.RHS, opts.PropsDisc, opts.PropsCont, opts.Puncture)
		})
		if err != nil {
			return nil, err
		}
		av, err := grdata.get(p.GraphID, func() ([]features.Feature, error) {
			return features.GraphFeatures(ctx, a.st, p.GraphID)
		})
		if err != nil {
			return nil, err
		}

		lhs = append(lhs, lv)
		rhs = append(rhs, rv)
		aux = append(aux, av)
		out = append(out, p.Rank)
		info = append(info, PairInfo{LHS: p.LHS, RHS: p.RHS})
		selection = append(selection, !testGraphIDs[p.GraphID])
	}

	count := len(out)
	if opts.Strict && count < 10 {
		return nil, xerrors.Fatalf("there is no point in training a neural network with only %d data points", count)
	}

	graphMatrix := grdata.matrix()
	layoutMatrix := lodata.matrix()
	if len(opts.Puncture) == 0 {
		if _, err := CheckNonFiniteFraction(graphMatrix, "graph", &noFiniteCheckLimit, a.log); err != nil {
			return nil, err
		}
		if _, err := CheckNonFiniteFraction(layoutMatrix, "layout", &noFiniteCheckLimit, a.log); err != nil {
			return nil, err
		}
	}
	grnorm := ComputeNormalizers(graphMatrix)
	lonorm := ComputeNormalizers(layoutMatrix)

	lhs = Normalize(lonorm, lhs)
	rhs = Normalize(lonorm, rhs)
	aux = Normalize(grnorm, aux)

	training := &DataSet{}
	testing := &DataSet{}
	var trainInfo, testInfo []PairInfo
	for i := 0; i < count; i++ {
		if selection[i] {
			training.LHS = append(training.LHS, lhs[i])
			training.RHS = append(training.RHS, rhs[i])
			training.Aux = append(training.Aux, aux[i])
			training.Out = append(training.Out, out[i])
			trainInfo = append(trainInfo, info[i])
		} else {
			testing.LHS = append(testing.LHS, lhs[i])
			testing.RHS = append(testing.RHS, rhs[i])
			testing.Aux = append(testing.Aux, aux[i])
			testing.Out = append(testing.Out, out[i])
			testInfo = append(testInfo, info[i])
		}
	}

	a.log.Info("loaded corpus", "pairs", count, "training", len(trainInfo), "testing", len(testInfo))

	schema := &FeatureSchema{
		LayoutNames:       lodata.names,
		LayoutNormalizers: lonorm,
		GraphNames:        grdata.names,
		GraphNormalizers:  grnorm,
	}
	if opts.Persist {
		if err := schema.Save(a.st); err != nil {
			return nil, err
		}
	}

	return &LoadResult{
		Training:     training,
		Testing:      testing,
		TrainingInfo: trainInfo,
		TestingInfo:  testInfo,
		Schema:       schema,
	}, nil
}
