package corpus

import (
	"math"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/features"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/store"
)

func TestComputeNormalizersMeanAndStdev(t *testing.T) {
	vectors := [][]float64{{1, na}, {2, 5}, {3, 5}, {4, 5}}
	norms := ComputeNormalizers(vectors)
	if len(norms) != 2 {
		t.Fatalf("ComputeNormalizers returned %d columns, want 2", len(norms))
	}
	if math.Abs(norms[0].Mean-2.5) > 1e-9 {
		t.Errorf("column 0 mean = %v, want 2.5", norms[0].Mean)
	}
	if norms[0].Stdev <= 0 {
		t.Errorf("column 0 stdev = %v, want positive (4 finite observations)", norms[0].Stdev)
	}
	if math.IsNaN(norms[1].Stdev) || norms[1].Stdev != 0 {
		t.Errorf("column 1 has 3 finite observations with zero spread, stdev = %v, want computed 0, not NaN", norms[1].Stdev)
	}
}

func TestComputeNormalizersAllNaNColumn(t *testing.T) {
	vectors := [][]float64{{na}, {na}}
	norms := ComputeNormalizers(vectors)
	if !math.IsNaN(norms[0].Mean) {
		t.Errorf("an all-NaN column should yield a NaN mean, got %v", norms[0].Mean)
	}
}

func TestComputeNormalizersEmptyInput(t *testing.T) {
	if got := ComputeNormalizers(nil); got != nil {
		t.Errorf("ComputeNormalizers(nil) = %v, want nil", got)
	}
}

func TestNormalizeCentersAndScales(t *testing.T) {
	norms := []Normalizer{{Mean: 2, Stdev: 2}}
	out := Normalize(norms, [][]float64{{4}, {0}})
	if math.Abs(out[0][0]-1) > 1e-9 || math.Abs(out[1][0]-(-1)) > 1e-9 {
		t.Errorf("Normalize = %v, want [[1] [-1]]", out)
	}
}

func TestNormalizeLeavesInputUntouched(t *testing.T) {
	in := [][]float64{{4}}
	norms := []Normalizer{{Mean: 2, Stdev: 2}}
	Normalize(norms, in)
	if in[0][0] != 4 {
		t.Errorf("Normalize should not mutate its input, got %v", in[0][0])
	}
}

func TestNormalizeReplacesInfWithZero(t *testing.T) {
	norms := []Normalizer{{Mean: na, Stdev: na}}
	out := Normalize(norms, [][]float64{{math.Inf(1)}})
	if out[0][0] != 0 {
		t.Errorf("Normalize should replace a non-finite result with 0, got %v", out[0][0])
	}
}

func TestNormalizeSkipsZeroStdev(t *testing.T) {
	norms := []Normalizer{{Mean: 1, Stdev: 0}}
	out := Normalize(norms, [][]float64{{3}})
	if out[0][0] != 2 {
		t.Errorf("Normalize with zero stdev should only center, got %v, want 2", out[0][0])
	}
}

func TestCheckNonFiniteFractionCountsAndLimits(t *testing.T) {
	vectors := [][]float64{{1, 2}, {na, 2}, {1, math.Inf(1)}, {3, 4}}
	limit := 0.4
	frac, err := CheckNonFiniteFraction(vectors, "test", nil, nil)
	if err != nil {
		t.Fatalf("CheckNonFiniteFraction: %v", err)
	}
	if math.Abs(frac-0.5) > 1e-9 {
		t.Errorf("fraction = %v, want 0.5", frac)
	}
	_, err = CheckNonFiniteFraction(vectors, "test", &limit, nil)
	if err == nil {
		t.Errorf("exceeding the bad limit of %v with a fraction of 0.5 should fail", limit)
	}
}

func TestCheckNonFiniteFractionEmptyIsZero(t *testing.T) {
	limit := 0.0
	frac, err := CheckNonFiniteFraction(nil, "test", &limit, nil)
	if err != nil || frac != 0 {
		t.Errorf("CheckNonFiniteFraction(nil) = (%v, %v), want (0, nil)", frac, err)
	}
}

func TestCheckNonFiniteFractionNoLimitNeverFails(t *testing.T) {
	vectors := [][]float64{{na}, {na}}
	if _, err := CheckNonFiniteFraction(vectors, "test", nil, nil); err != nil {
		t.Errorf("CheckNonFiniteFraction with a nil limit should never fail, got %v", err)
	}
}

func TestDataSetBiasUnitLabels(t *testing.T) {
	d := &DataSet{Out: []float64{1, -1, 1, 0}}
	pos, neg, bias := d.Bias()
	if pos != 2 || neg != 1 {
		t.Errorf("Bias() = (%d, %d, %v), want pos=2, neg=1", pos, neg, bias)
	}
	if math.Abs(bias-0.25) > 1e-9 {
		t.Errorf("bias = %v, want 0.25", bias)
	}
}

func TestDataSetLenAndBiasOnEmpty(t *testing.T) {
	d := &DataSet{}
	if d.Len() != 0 {
		t.Errorf("Len() on an empty DataSet = %d, want 0", d.Len())
	}
	_, _, bias := d.Bias()
	if bias != 0 {
		t.Errorf("Bias() on an empty DataSet = %v, want 0", bias)
	}
}

func TestFeatureCacheMemoizesAndPreservesOrder(t *testing.T) {
	c := newFeatureCache()
	idA, idB := idfp.New(), idfp.New()
	calls := 0
	compute := func(v float64) func() ([]features.Feature, error) {
		return func() ([]features.Feature, error) {
			calls++
			return []features.Feature{{Name: "x", Value: v}}, nil
		}
	}
	v1, err := c.get(idA, compute(1))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v1[0] != 1 {
		t.Errorf("get(idA) = %v, want [1]", v1)
	}
	if _, err := c.get(idA, compute(99)); err != nil {
		t.Fatalf("get: %v", err)
	}
	if calls != 1 {
		t.Errorf("a repeated get() for the same id should not recompute, calls = %d", calls)
	}
	if _, err := c.get(idB, compute(2)); err != nil {
		t.Fatalf("get: %v", err)
	}
	matrix := c.matrix()
	if len(matrix) != 2 || matrix[0][0] != 1 || matrix[1][0] != 2 {
		t.Errorf("matrix() = %v, want rows in first-seen order [[1] [2]]", matrix)
	}
	if len(c.names) != 1 || c.names[0] != "x" {
		t.Errorf("names = %v, want [x]", c.names)
	}
}

func TestFeatureSchemaSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, store.OpenOptions{Backend: store.SQLite, Create: true}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	schema := &FeatureSchema{
		LayoutNames:       []string{"Angular:D"},
		LayoutNormalizers: []Normalizer{{Mean: 1, Stdev: 2}},
		GraphNames:        []string{"nodes"},
		GraphNormalizers:  []Normalizer{{Mean: 3, Stdev: 4}},
	}
	if err := schema.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFeatureSchema(st)
	if err != nil {
		t.Fatalf("LoadFeatureSchema: %v", err)
	}
	if loaded == nil || loaded.LayoutNames[0] != "Angular:D" || loaded.GraphNormalizers[0].Mean != 3 {
		t.Errorf("LoadFeatureSchema round trip = %+v, want match of saved schema", loaded)
	}
}

func TestLoadFeatureSchemaMissingReturnsNilNil(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(dir, store.OpenOptions{Backend: store.SQLite, Create: true}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	schema, err := LoadFeatureSchema(st)
	if err != nil {
		t.Fatalf("LoadFeatureSchema: %v", err)
	}
	if schema != nil {
		t.Errorf("LoadFeatureSchema with nothing persisted = %v, want nil", schema)
	}
}
