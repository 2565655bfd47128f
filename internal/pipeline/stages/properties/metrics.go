package properties

import (
	"context"
	"math"
	"path/filepath"

	"github.com/5gon12eder/graphstudy-go/internal/badlog"
	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/toolrunner"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// metricPrograms and metricFlags mirror the original driver's
// _METRIC_PROGS / _METRIC_FLAGS (original_source/driver/metrics.py): the
// three stress variants share the `stress` binary distinguished only by
// flags, while all four Huang metrics share the `huang` binary, which
// emits all four values from a single invocation.
var metricPrograms = map[enums.Metric]string{
	enums.MetricStressKK:         "stress",
	enums.MetricStressFitNodesep: "stress",
	enums.MetricStressFitScale:   "stress",
	enums.MetricCrossCount:       "huang",
	enums.MetricCrossResolution:  "huang",
	enums.MetricAngularRes:       "huang",
	enums.MetricEdgeLengthStdev:  "huang",
}

var metricFlags = map[enums.Metric][]string{
	enums.MetricStressKK:         nil,
	enums.MetricStressFitNodesep: {"--fit-nodesep"},
	enums.MetricStressFitScale:   {"--fit-scale"},
	enums.MetricCrossCount:       nil,
	enums.MetricCrossResolution:  nil,
	enums.MetricAngularRes:       nil,
	enums.MetricEdgeLengthStdev:  nil,
}

// huangToolHowto maps the huang tool's JSON output keys to the Metric
// each one feeds.
var huangToolHowto = map[string]enums.Metric{
	"cross-count":        enums.MetricCrossCount,
	"cross-resolution":   enums.MetricCrossResolution,
	"angular-resolution": enums.MetricAngularRes,
	"edge-length-stdev":  enums.MetricEdgeLengthStdev,
}

// metricHowto maps a requested metric to the set of (JSON key -> Metric)
// pairs one invocation of its program actually produces. For the stress
// variants this is a single entry; for any of the four Huang metrics it
// is all four, since one `huang` invocation reports every one of them.
var metricHowto = map[enums.Metric]map[string]enums.Metric{
	enums.MetricStressKK:         {"stress": enums.MetricStressKK},
	enums.MetricStressFitNodesep: {"stress": enums.MetricStressFitNodesep},
	enums.MetricStressFitScale:   {"stress": enums.MetricStressFitScale},
	enums.MetricCrossCount:       huangToolHowto,
	enums.MetricCrossResolution:  huangToolHowto,
	enums.MetricAngularRes:       huangToolHowto,
	enums.MetricEdgeLengthStdev:  huangToolHowto,
}

// MetricsStage computes scalar layout-quality metrics (action
// ActionMetrics).
type MetricsStage struct {
	st       *store.Store
	runner   *toolrunner.Runner
	badlog   *badlog.Log
	cfg      *config.Configuration
	toolsDir string
	log      *logger.Logger
}

// NewMetrics builds the metrics stage.
func NewMetrics(st *store.Store, runner *toolrunner.Runner, bl *badlog.Log, cfg *config.Configuration, toolsDir string, log *logger.Logger) *MetricsStage {
	if log == nil {
		log = logger.NewNop()
	}
	return &MetricsStage{st: st, runner: runner, badlog: bl, cfg: cfg, toolsDir: toolsDir, log: log.With("stage", "metrics")}
}

// Run executes the stage.
func (s *MetricsStage) Run(ctx context.Context) error {
	for metr, sizes := range s.cfg.DesiredMetrics {
		if err := s.computeAllMetrics(ctx, metr, sizes); err != nil {
			return err
		}
	}
	return nil
}

func (s *MetricsStage) computeAllMetrics(ctx context.Context, metr enums.Metric, sizes config.SizeSet) error {
	layouts, err := store.Select[store.Layout](ctx, s.st.DB(), nil)
	if err != nil {
		return err
	}
	graphSizeCache := make(map[idfp.ID]enums.GraphSize)
	for _, l := range layouts {
		size, ok := graphSizeCache[l.GraphID]
		if !ok {
			g, err := store.Select[store.Graph](ctx, s.st.DB(), map[string]interface{}{"id": l.GraphID[:]})
			if err != nil {
				return err
			}
			if len(g) == 0 {
				continue
			}
			size = enums.ClassifyGraphSize(int(g[0].Nodes))
			graphSizeCache[l.GraphID] = size
		}
		if !sizes.Contains(size) {
			continue
		}
		existing, err := store.Select[store.Metric](ctx, s.st.DB(), map[string]interface{}{
			"layout_id": l.ID[:], "metric": metr,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		if msg, bad := s.badlog.GetBad(enums.ActionMetrics, l.ID, metr); bad {
			s.log.Notice("skipping computation of metric", "metric", metr, "layout", l.ID, "reason", msg)
			continue
		}
		s.log.Info("computing metric for layout", "metric", metr, "layout", l.ID)
		if err := s.computeMetric(ctx, metr, l); err != nil {
			if !xerrors.Is(err, xerrors.Recoverable) {
				return err
			}
			if err := s.badlog.SetBad(enums.ActionMetrics, err.Error(), l.ID, metr); err != nil {
				return err
			}
			s.log.Error("cannot compute metric for layout", "metric", metr, "layout", l.ID, "graph", l.GraphID, "error", err.Error())
		}
	}
	return nil
}

func (s *MetricsStage) computeMetric(ctx context.Context, metr enums.Metric, l store.Layout) error {
	prog, ok := metricPrograms[metr]
	if !ok {
		return xerrors.Sanityf("metrics: no program registered for %s", metr)
	}
	args := []string{s.toolPath("metrics", prog)}
	args = append(args, metricFlags[metr]...)
	args = append(args, "--meta=STDIO", l.File)

	res, err := s.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout, Deterministic: true})
	if err != nil {
		return err
	}
	return s.insertMetric(ctx, metr, l.ID, res.Meta)
}

// insertMetric stores the Metric rows one tool invocation's output
// describes, matching _insert_metric: the metric that triggered the call
// is inserted or updated, and a single `huang` call also inserts any of
// its other three metrics that have no row yet (existing rows for those
// are left as they are).
func (s *MetricsStage) insertMetric(ctx context.Context, metr enums.Metric, layoutID idfp.ID, meta map[string]interface{}) error {
	for key, dst := range metricHowto[metr] {
		raw, present := meta[key]
		value, isNumber := raw.(float64)
		finite := present && isNumber && !math.IsInf(value, 0) && !math.IsNaN(value)
		if !finite {
			s.log.Error("JSON data contains non-finite value", "key", key, "value", raw)
			if dst == metr {
				return xerrors.Recoverablef("non-finite value obtained for metric %s", metr)
			}
			continue
		}
		existing, err := store.Select[store.Metric](ctx, s.st.DB(), map[string]interface{}{
			"layout_id": layoutID[:], "metric": dst,
		})
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			if dst != metr {
				continue
			}
			if err := s.st.DB().WithContext(ctx).Model(&store.Metric{}).
				Where("layout_id = ? AND metric = ?", layoutID[:], dst).
				Update("value", value).Error; err != nil {
				return xerrors.WrapFatal(err, "updating metric %s for layout %s", dst, layoutID)
			}
			continue
		}
		row := store.Metric{LayoutID: layoutID, Metric: dst, Value: value}
		if err := s.st.DB().WithContext(ctx).Create(&row).Error; err != nil {
			return xerrors.WrapFatal(err, "inserting metric %s for layout %s", dst, layoutID)
		}
	}
	return nil
}

func (s *MetricsStage) toolPath(subdir, prog string) string {
	if s.toolsDir == "" {
		return prog
	}
	return filepath.Join(s.toolsDir, subdir, prog)
}
