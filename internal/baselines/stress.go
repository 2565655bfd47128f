// Package baselines implements the non-learned comparator baselines of
// spec.md §4.11 (action C13): the three stress-metric comparators and
// the Huang composite, each producing the same kind of (-1, +1)
// pairwise judgment as the discriminator model so that all of them can
// be scored against the ground-truth label by the same TestScore
// machinery. This mirrors the original driver's alternatives.py.
package baselines

import (
	"context"
	"math"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/store"
)

// StressMetrics maps each stress comparator test to the single metric
// it compares.
var StressMetrics = map[enums.Test]enums.Metric{
	enums.TestStressKK:         enums.MetricStressKK,
	enums.TestStressFitNodesep: enums.MetricStressFitNodesep,
	enums.TestStressFitScale:   enums.MetricStressFitScale,
}

// compare turns two raw metric values into the same tanh-bounded signed
// judgment every comparator in this package reports: positive means
// rhs is better (lower) than lhs. Mirrors the shared formula of
// _get_alternative_value_stress and _get_alternative_value_huang,
// tanh((L-R)/(|L+R|/2)).
func compare(lhs, rhs float64) (float64, bool) {
	magnitude := math.Abs(lhs+rhs) / 2.0
	if magnitude == 0.0 {
		return 0.0, false
	}
	offset := (lhs - rhs) / magnitude
	return math.Tanh(offset), true
}

func metricValue(ctx context.Context, st *store.Store, layoutID idfp.ID, metr enums.Metric) (float64, bool, error) {
	rows, err := store.Select[store.Metric](ctx, st.DB(), map[string]interface{}{
		"layout_id": layoutID[:], "metric": metr,
	})
	if err != nil {
		return 0, false, err
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Value, true, nil
}

// StressValue computes the given stress comparator's judgment for the
// ordered pair (lhs, rhs), or (_, false, nil) if either layout is
// missing the underlying metric.
func StressValue(ctx context.Context, st *store.Store, test enums.Test, lhs, rhs idfp.ID) (float64, bool, error) {
	metr, ok := StressMetrics[test]
	if !ok {
		return 0, false, nil
	}
	lhsVal, ok, err := metricValue(ctx, st, lhs, metr)
	if err != nil || !ok {
		return 0, false, err
	}
	rhsVal, ok, err := metricValue(ctx, st, rhs, metr)
	if err != nil || !ok {
		return 0, false, err
	}
	value, ok := compare(lhsVal, rhsVal)
	return value, ok, nil
}
