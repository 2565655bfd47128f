// Package corpus assembles labeled layout-comparison pairs into the
// training and testing data sets consumed by the discriminator model
// (spec.md §4.9, SPEC_FULL.md §6.4/§6.7, action C11). Three independent
// sources contribute pairs: proper layouts rated by their generation
// method, interpolation chains rated by the parents' rank times the
// signed rate difference, and worsening chains rated by the parent's
// rank times the rate difference normalized by that method's largest
// observed rate. Every pair is filtered to a minimum significance,
// deduplicated, and finally split at the graph level so that no graph
// contributes to both sets. This mirrors the original driver's
// model.py almost line for line.
package corpus

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"sort"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// MinSignificance is the smallest absolute rank a gathered pair must
// carry to be admitted into the corpus.
const MinSignificance = 0.05

// FingerprintMatchMode controls when two layouts are considered
// "seemingly identical" and dropped from the corpus. The zero value is
// ExactFingerprintMatch, the documented default: only byte-identical
// fingerprints match. RoundedFingerprintMatch(n) instead compares only
// the leading n bytes, treating fingerprints that agree up to that
// precision as identical too.
type FingerprintMatchMode struct {
	rounded   bool
	precision int
}

// ExactFingerprintMatch is the default mode: fingerprints must be
// byte-identical.
var ExactFingerprintMatch = FingerprintMatchMode{}

// RoundedFingerprintMatch builds a mode that compares only the leading
// precision bytes of each fingerprint.
func RoundedFingerprintMatch(precision int) FingerprintMatchMode {
	return FingerprintMatchMode{rounded: true, precision: precision}
}

// Match reports whether a and b should be treated as the same layout for
// the purposes of dropping a pair as seemingly identical.
func (m FingerprintMatchMode) Match(a, b idfp.Fingerprint) bool {
	if !m.rounded || m.precision <= 0 || len(a) < m.precision || len(b) < m.precision {
		return a.Equal(b)
	}
	return bytes.Equal([]byte(a[:m.precision]), []byte(b[:m.precision]))
}

// layoutRatings assigns each proper-layout generation method a scalar
// quality rating in [-1, +1]. A method absent from this map (e.g. one of
// the less common algorithmic layouts) has no known rating and never
// contributes a proper-pair label.
var layoutRatings = map[enums.Layout]float64{
	enums.LayoutNative:        +1.0,
	enums.LayoutFMMM:          +1.0,
	enums.LayoutStress:        +1.0,
	enums.LayoutRandomUniform: -1.0,
	enums.LayoutRandomNormal:  -1.0,
	enums.LayoutPhantom:       -1.0,
}

// Pair is one labeled comparison between two layouts of the same graph.
// Rank lies in [-1, +1]; positive means RHS is judged better than LHS.
type Pair struct {
	LHS, RHS idfp.ID
	GraphID  idfp.ID
	Rank     float64
}

// Significant reports whether rank passes the minimum-significance cut.
func Significant(rank float64) bool {
	return math.Abs(rank) >= MinSignificance
}

// FilterSignificant keeps only the pairs whose rank is significant.
func FilterSignificant(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		if Significant(p.Rank) {
			out = append(out, p)
		}
	}
	return out
}

func rankLayout(kind *enums.Layout) (float64, bool) {
	if kind == nil {
		return 0, false
	}
	r, ok := layoutRatings[*kind]
	return r, ok
}

func rankLayouts(lhs, rhs *enums.Layout) (float64, bool) {
	l, lok := rankLayout(lhs)
	r, rok := rankLayout(rhs)
	if !lok || !rok {
		return 0, false
	}
	return (r - l) / 2.0, true
}

func layoutByID(ctx context.Context, st *store.Store, id idfp.ID) (*store.Layout, error) {
	rows, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{"id": id[:]})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, xerrors.Sanityf("corpus: layout %s does not exist", id)
	}
	return &rows[0], nil
}

// GatherProper pairs every two proper layouts of the same graph, rating
// each pair by the two layouts' generation methods. Mirrors
// _gather_proper.
func GatherProper(ctx context.Context, st *store.Store, rng *rand.Rand) ([]Pair, error) {
	graphs, err := store.Select[store.Graph](ctx, st.DB(), nil)
	if err != nil {
		return nil, err
	}
	var out []Pair
	for _, g := range graphs {
		layouts, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{
			"graph_id": g.ID[:], "layout": store.Any,
		})
		if err != nil {
			return nil, err
		}
		sort.Slice(layouts, func(i, j int) bool {
			return bytes.Compare(layouts[i].ID[:], layouts[j].ID[:]) < 0
		})
		for i := 0; i < len(layouts); i++ {
			for j := i + 1; j < len(layouts); j++ {
				lhs, rhs := layouts[i], layouts[j]
				if rng.Float64() > 0.5 {
					lhs, rhs = rhs, lhs
				}
				rank, ok := rankLayouts(lhs.Layout, rhs.Layout)
				if !ok {
					continue
				}
				out = append(out, Pair{LHS: lhs.ID, RHS: rhs.ID, GraphID: g.ID, Rank: rank})
			}
		}
	}
	return out, nil
}

// parentPair identifies one interpolation chain by its two endpoints.
type parentPair struct {
	first, second idfp.ID
}

// GatherInter pairs every two points along each interpolation chain
// (the two endpoints included, at rate 0 and rate 1), rating each pair
// by the parents' rank times the signed rate difference. Mirrors
// _gather_inter.
func GatherInter(ctx context.Context, st *store.Store, rng *rand.Rand) ([]Pair, error) {
	var out []Pair
	for _, method := range enums.AllLayInter() {
		rows, err := store.Select[store.InterLayout](ctx, st.DB(), map[string]interface{}{"method": method})
		if err != nil {
			return nil, err
		}
		lines := make(map[parentPair]map[float64]idfp.ID)
		for _, row := range rows {
			key := parentPair{row.Parent1st, row.Parent2nd}
			if lines[key] == nil {
				lines[key] = make(map[float64]idfp.ID)
			}
			lines[key][row.Rate] = row.ID
		}
		for key, points := range lines {
			points[0.0] = key.first
			points[1.0] = key.second

			layout, err := layoutByID(ctx, st, key.first)
			if err != nil {
				return nil, err
			}
			graphID := layout.GraphID
			parent1 := layout.Layout
			parent2layout, err := layoutByID(ctx, st, key.second)
			if err != nil {
				return nil, err
			}
			prank, ok := rankLayouts(parent1, parent2layout.Layout)
			if !ok {
				continue
			}

			rates := make([]float64, 0, len(points))
			for r := range points {
				rates = append(rates, r)
			}
			sort.Float64s(rates)
			for i := 0; i < len(rates); i++ {
				for j := i + 1; j < len(rates); j++ {
					r1, r2 := rates[i], rates[j]
					if rng.Float64() > 0.5 {
						r1, r2 = r2, r1
					}
					rank := (r2 - r1) * prank
					out = append(out, Pair{LHS: points[r1], RHS: points[r2], GraphID: graphID, Rank: rank})
				}
			}
		}
	}
	return out, nil
}

func worseMaxRates(ctx context.Context, st *store.Store) (map[enums.LayWorse]float64, error) {
	rows, err := store.Select[store.WorseLayout](ctx, st.DB(), nil)
	if err != nil {
		return nil, err
	}
	maxima := make(map[enums.LayWorse]float64)
	for _, row := range rows {
		if row.Rate > maxima[row.Method] {
			maxima[row.Method] = row.Rate
		}
	}
	return maxima, nil
}

// GatherWorse pairs every two points along each worsening chain (the
// unworsened parent itself included, at rate 0), rating each pair by the
// parent's rank times the rate difference normalized by that method's
// largest observed rate across the whole corpus. Mirrors _gather_worse.
func GatherWorse(ctx context.Context, st *store.Store, rng *rand.Rand) ([]Pair, error) {
	maxima, err := worseMaxRates(ctx, st)
	if err != nil {
		return nil, err
	}
	var out []Pair
	for _, method := range enums.AllLayWorse() {
		max := maxima[method]
		rows, err := store.Select[store.WorseLayout](ctx, st.DB(), map[string]interface{}{"method": method})
		if err != nil {
			return nil, err
		}
		lines := make(map[idfp.ID]map[float64]idfp.ID)
		for _, row := range rows {
			if lines[row.Parent] == nil {
				lines[row.Parent] = make(map[float64]idfp.ID)
			}
			lines[row.Parent][row.Rate] = row.ID
		}
		for parent, points := range lines {
			points[0.0] = parent
		}
		for parent, points := range lines {
			parentLayout, err := layoutByID(ctx, st, parent)
			if err != nil {
				return nil, err
			}
			prank, ok := rankLayout(parentLayout.Layout)
			if !ok {
				continue
			}
			graphID := parentLayout.GraphID

			rates := make([]float64, 0, len(points))
			for r := range points {
				rates = append(rates, r)
			}
			sort.Float64s(rates)
			for i := 0; i < len(rates); i++ {
				for j := i + 1; j < len(rates); j++ {
					r1, r2 := rates[i], rates[j]
					if rng.Float64() > 0.5 {
						r1, r2 = r2, r1
					}
					var rank float64
					if prank > 0.0 {
						rank = (r1/max - r2/max) * prank
					}
					out = append(out, Pair{LHS: points[r1], RHS: points[r2], GraphID: graphID, Rank: rank})
				}
			}
		}
	}
	return out, nil
}
