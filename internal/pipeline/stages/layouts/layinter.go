package layouts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gorm.io/gorm"

	"github.com/5gon12eder/graphstudy-go/internal/badlog"
	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/toolrunner"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// interPrograms and interFlags mirror the original driver's
// _INTER_PROGS / _INTER_FLAGS (original_source/driver/layinter.py): both
// interpolation methods share the `interpol` binary, XLINEAR adds
// `--clever`.
var interPrograms = map[enums.LayInter]string{
	enums.InterLinear:  "interpol",
	enums.InterXLinear: "interpol",
}

var interFlags = map[enums.LayInter][]string{
	enums.InterLinear:  nil,
	enums.InterXLinear: {"--clever"},
}

// InterStage produces interpolated layouts between every pair of proper
// layouts of the same non-poisoned graph (action ActionLayInter).
type InterStage struct {
	st       *store.Store
	runner   *toolrunner.Runner
	badlog   *badlog.Log
	cfg      *config.Configuration
	toolsDir string
	log      *logger.Logger
}

// NewInter builds the lay-inter stage.
func NewInter(st *store.Store, runner *toolrunner.Runner, bl *badlog.Log, cfg *config.Configuration, toolsDir string, log *logger.Logger) *InterStage {
	if log == nil {
		log = logger.NewNop()
	}
	return &InterStage{st: st, runner: runner, badlog: bl, cfg: cfg, toolsDir: toolsDir, log: log.With("stage", "lay-inter")}
}

// Run executes the stage.
func (s *InterStage) Run(ctx context.Context) error {
	graphs, err := store.Select[store.Graph](ctx, s.st.DB(), map[string]interface{}{"poisoned": false})
	if err != nil {
		return err
	}
	for _, g := range graphs {
		proper, err := store.Select[store.Layout](ctx, s.st.DB(), map[string]interface{}{
			"graph_id": g.ID[:], "layout": store.Any,
		})
		if err != nil {
			return err
		}
		sort.Slice(proper, func(i, j int) bool { return bytes.Compare(proper[i].ID[:], proper[j].ID[:]) < 0 })
		for i := 0; i < len(proper); i++ {
			for j := i + 1; j < len(proper); j++ {
				id1, id2 := proper[i], proper[j]
				for method, rates := range s.cfg.DesiredLayInter {
					if err := s.considerPair(ctx, g.ID, method, rates, id1, id2); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (s *InterStage) considerPair(ctx context.Context, graphID idfp.ID, method enums.LayInter, want []float64, id1, id2 store.Layout) error {
	haveRows, err := store.Select[store.InterLayout](ctx, s.st.DB(), map[string]interface{}{
		"method": method, "parent1st": id1.ID[:], "parent2nd": id2.ID[:],
	})
	if err != nil {
		return err
	}
	have := make([]float64, len(haveRows))
	for i, r := range haveRows {
		have[i] = r.Rate
	}
	need := missingRates(want, have)
	if len(need) == 0 {
		return nil
	}
	if msg, bad := s.badlog.GetBad(enums.ActionLayInter, id1.ID, id2.ID, method); bad {
		s.log.Info("skipping interpolation (previously failed)", "lhs", id1.ID, "rhs", id2.ID, "method", method, "reason", msg)
		return nil
	}
	s.log.Info("interpolating between layouts", "lhs", id1.ID, "rhs", id2.ID, "steps", len(need), "method", method)
	if err := s.interpolateGeneric(ctx, method, graphID, id1, id2, need); err != nil {
		if !xerrors.Is(err, xerrors.Recoverable) {
			return err
		}
		if err := s.badlog.SetBad(enums.ActionLayInter, err.Error(), id1.ID, id2.ID, method); err != nil {
			return err
		}
		s.log.Error("cannot interpolate between layouts", "lhs", id1.ID, "rhs", id2.ID, "method", method, "error", err.Error())
	}
	return nil
}

func (s *InterStage) interpolateGeneric(ctx context.Context, method enums.LayInter, graphID idfp.ID, id1, id2 store.Layout, rates []float64) error {
	prog, ok := interPrograms[method]
	if !ok {
		return xerrors.Sanityf("lay-inter: no program registered for %s", method)
	}
	tempdir, err := os.MkdirTemp("", "graphstudy-inter-")
	if err != nil {
		return xerrors.WrapFatal(err, "creating temp directory")
	}
	defer os.RemoveAll(tempdir)

	pattern := filepath.Join(tempdir, "%"+store.LayoutFileSuffix)
	args := []string{s.toolPath("bitrans", prog), "--output=" + pattern, "--meta=STDIO"}
	args = append(args, interFlags[method]...)
	for _, r := range rates {
		args = append(args, fmt.Sprintf("--rate=%.10f", r))
	}
	args = append(args, id1.File, id2.File)

	res, err := s.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout})
	if err != nil {
		return err
	}
	items, ok := res.Meta["data"].([]interface{})
	if !ok {
		return xerrors.Recoverablef("tool output is missing required field %q", "data")
	}
	seed := metaSeed(res.Meta)
	for _, item := range items {
		data, ok := item.(map[string]interface{})
		if !ok {
			return xerrors.Recoverablef("tool output %q entry is not an object", "data")
		}
		if err := s.addInterLayout(ctx, method, graphID, id1.ID, id2.ID, data, seed); err != nil {
			return err
		}
	}
	return nil
}

func (s *InterStage) addInterLayout(ctx context.Context, method enums.LayInter, graphID, parent1st, parent2nd idfp.ID, data map[string]interface{}, seed []byte) error {
	thisID, err := s.st.AllocateUniqueLayoutID(ctx)
	if err != nil {
		return err
	}
	filename := s.st.LayoutFilePath(graphID, thisID, "inter")
	width := metaFloatPtr(data, "width")
	height := metaFloatPtr(data, "height")
	fp := metaFingerprint(data)
	rate, ok := data["rate"].(float64)
	if !ok {
		return xerrors.Recoverablef("tool output is missing required field %q", "rate")
	}
	srcfile, _ := data["filename"].(string)
	if srcfile == "" {
		return xerrors.Recoverablef("tool output is missing required field %q", "filename")
	}

	layoutRow := store.Layout{ID: thisID, GraphID: graphID, Layout: nil, File: filename, Width: width, Height: height, Seed: seed, Fingerprint: fp}
	interRow := store.InterLayout{ID: thisID, Parent1st: parent1st, Parent2nd: parent2nd, Method: method, Rate: rate}
	if err := s.st.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&layoutRow).Error; err != nil {
			return err
		}
		return tx.Create(&interRow).Error
	}); err != nil {
		return xerrors.WrapFatal(err, "inserting interpolated layout")
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating layout directory for %s", filename)
	}
	if err := os.Rename(srcfile, filename); err != nil {
		return xerrors.WrapFatal(err, "renaming interpolated layout file %s to %s", srcfile, filename)
	}
	return nil
}

func (s *InterStage) toolPath(subdir, prog string) string {
	if s.toolsDir == "" {
		return prog
	}
	return filepath.Join(s.toolsDir, subdir, prog)
}
