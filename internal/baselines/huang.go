package baselines

import (
	"context"
	"math"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// meanStdev is a graph-and-metric-scoped normalizer: the mean and
// sample standard deviation of one metric over every layout of one
// graph, derived layouts included. Valid is false when too few layouts
// carried the metric to compute it.
type meanStdev struct {
	Mean, Stdev float64
	Valid       bool
}

// HuangContext holds the per-graph metric statistics and the composite
// weights of the Huang comparator (spec.md §4.11), mirroring
// AlternativeContextHuang. The zero value is not usable; build one with
// NewHuangContext.
type HuangContext struct {
	Weights map[enums.Metric]float64

	graphOf map[idfp.ID]idfp.ID
	stats   map[idfp.ID]map[enums.Metric]meanStdev
	values  map[idfp.ID]map[enums.Metric]float64
}

// NewHuangContext returns a context with the initial weights of
// spec.md §4.11: +0.25 cross-count, -0.25 cross-resolution, -0.25
// angular resolution, +0.25 edge-length standard deviation.
func NewHuangContext() *HuangContext {
	return &HuangContext{
		Weights: map[enums.Metric]float64{
			enums.MetricCrossCount:      +0.25,
			enums.MetricCrossResolution: -0.25,
			enums.MetricAngularRes:      -0.25,
			enums.MetricEdgeLengthStdev: +0.25,
		},
	}
}

// Metrics returns the four metrics this context combines, in a fixed
// order matching enums.HuangMetrics.
func (c *HuangContext) Metrics() []enums.Metric {
	return enums.HuangMetrics()
}

// PopulateCache loads every layout's graph membership and every Huang
// metric value from the store, then precomputes the per-graph mean and
// standard deviation of each metric over graphs with at least three
// layouts (proper and derived alike) — mirroring populate_cache.
func (c *HuangContext) PopulateCache(ctx context.Context, st *store.Store) error {
	layouts, err := store.Select[store.Layout](ctx, st.DB(), nil)
	if err != nil {
		return err
	}
	graphOf := make(map[idfp.ID]idfp.ID, len(layouts))
	graphLayouts := make(map[idfp.ID][]idfp.ID)
	for _, l := range layouts {
		graphOf[l.ID] = l.GraphID
		graphLayouts[l.GraphID] = append(graphLayouts[l.GraphID], l.ID)
	}

	values := make(map[idfp.ID]map[enums.Metric]float64)
	for _, m := range c.Metrics() {
		rows, err := store.Select[store.Metric](ctx, st.DB(), map[string]interface{}{"metric": m})
		if err != nil {
			return err
		}
		for _, row := range rows {
			if values[row.LayoutID] == nil {
				values[row.LayoutID] = make(map[enums.Metric]float64)
			}
			values[row.LayoutID][row.Metric] = row.Value
		}
	}

	stats := make(map[idfp.ID]map[enums.Metric]meanStdev)
	for graphID, layoutIDs := range graphLayouts {
		if len(layoutIDs) < 3 {
			continue
		}
		stats[graphID] = statsForLayouts(values, layoutIDs, c.Metrics())
	}

	c.graphOf = graphOf
	c.stats = stats
	c.values = values
	return nil
}

// statsForLayouts computes, for each metric, the mean and sample
// standard deviation of that metric's value over layoutIDs — but only
// if every one of layoutIDs carries it, matching the original's
// try/except KeyError fallback to (None, None).
func statsForLayouts(values map[idfp.ID]map[enums.Metric]float64, layoutIDs []idfp.ID, metrics []enums.Metric) map[enums.Metric]meanStdev {
	out := make(map[enums.Metric]meanStdev, len(metrics))
	for _, m := range metrics {
		vals := make([]float64, 0, len(layoutIDs))
		complete := true
		for _, lid := range layoutIDs {
			v, ok := values[lid][m]
			if !ok {
				complete = false
				break
			}
			vals = append(vals, v)
		}
		if !complete || len(vals) < 2 {
			continue
		}
		mean, stdev := meanAndSampleStdev(vals)
		out[m] = meanStdev{Mean: mean, Stdev: stdev, Valid: true}
	}
	return out
}

func meanAndSampleStdev(vals []float64) (mean, stdev float64) {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(len(vals))
	var ss float64
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	stdev = math.Sqrt(ss / float64(len(vals)-1))
	return mean, stdev
}

// getCachedValue returns the stored metric value for one layout, or
// (0, false) if the cache holds none.
func (c *HuangContext) getCachedValue(layoutID idfp.ID, metric enums.Metric) (float64, bool) {
	v, ok := c.values[layoutID][metric]
	return v, ok
}

// statsFor returns the normalizers for the graph shared by lhs and
// rhs, falling back to an on-the-fly computation over that graph's
// layouts (without the three-layout minimum) when the cache has
// nothing for it — mirroring get_cached_mean_and_stdev's fallback path
// in _get_alternative_value_huang.
func (c *HuangContext) statsFor(ctx context.Context, st *store.Store, lhs, rhs idfp.ID) (map[enums.Metric]meanStdev, error) {
	graphID, ok := c.graphOf[lhs]
	if !ok || c.graphOf[rhs] != graphID {
		g, err := graphIDOfPair(ctx, st, lhs, rhs)
		if err != nil {
			return nil, err
		}
		graphID = g
	}
	if s, ok := c.stats[graphID]; ok {
		return s, nil
	}

	layouts, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{"graph_id": graphID[:]})
	if err != nil {
		return nil, err
	}
	layoutIDs := make([]idfp.ID, len(layouts))
	for i, l := range layouts {
		layoutIDs[i] = l.ID
	}
	values := c.values
	if values == nil {
		values = make(map[idfp.ID]map[enums.Metric]float64)
		for _, m := range c.Metrics() {
			rows, err := store.Select[store.Metric](ctx, st.DB(), map[string]interface{}{"metric": m})
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				if values[row.LayoutID] == nil {
					values[row.LayoutID] = make(map[enums.Metric]float64)
				}
				values[row.LayoutID][row.Metric] = row.Value
			}
		}
	}
	return statsForLayouts(values, layoutIDs, c.Metrics()), nil
}

func graphIDOfPair(ctx context.Context, st *store.Store, lhs, rhs idfp.ID) (idfp.ID, error) {
	lhsRows, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{"id": lhs[:]})
	if err != nil {
		return idfp.ID{}, err
	}
	rhsRows, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{"id": rhs[:]})
	if err != nil {
		return idfp.ID{}, err
	}
	if len(lhsRows) == 0 || len(rhsRows) == 0 {
		return idfp.ID{}, xerrors.Sanityf("huang comparator: unknown layout in pair (%s, %s)", lhs, rhs)
	}
	if lhsRows[0].GraphID != rhsRows[0].GraphID {
		return idfp.ID{}, xerrors.Sanityf("huang comparator: layouts %s and %s belong to different graphs", lhs, rhs)
	}
	return lhsRows[0].GraphID, nil
}

// Value computes the Huang composite's judgment for the ordered pair
// (lhs, rhs): a weighted sum of four metrics, each standardized against
// its graph's mean and standard deviation, folded through the same
// tanh bound every comparator in this package uses. Returns
// (_, false, nil) if any ingredient is unavailable, mirroring
// _get_alternative_value_huang's early "return None" paths.
func (c *HuangContext) Value(ctx context.Context, st *store.Store, lhs, rhs idfp.ID) (float64, bool, error) {
	stats, err := c.statsFor(ctx, st, lhs, rhs)
	if err != nil {
		return 0, false, err
	}
	var lhsSum, rhsSum float64
	for _, m := range c.Metrics() {
		s, ok := stats[m]
		if !ok || !s.Valid {
			return 0, false, nil
		}
		lhsVal, ok := c.getCachedValue(lhs, m)
		if !ok {
			lv, present, err := metricValue(ctx, st, lhs, m)
			if err != nil {
				return 0, false, err
			}
			if !present {
				return 0, false, nil
			}
			lhsVal = lv
		}
		rhsVal, ok := c.getCachedValue(rhs, m)
		if !ok {
			rv, present, err := metricValue(ctx, st, rhs, m)
			if err != nil {
				return 0, false, err
			}
			if !present {
				return 0, false, nil
			}
			rhsVal = rv
		}
		if s.Stdev > 0.0 {
			lhsSum += c.Weights[m] * (lhsVal - s.Mean) / s.Stdev
			rhsSum += c.Weights[m] * (rhsVal - s.Mean) / s.Stdev
		}
	}
	v, ok := compare(lhsSum, rhsSum)
	return v, ok, nil
}
