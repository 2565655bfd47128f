package layouts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

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

// worsePrograms mirrors the original driver's _WORSE_PROGS
// (original_source/driver/layworse.py): each method is its own binary,
// unlike lay-inter where both methods share one.
var worsePrograms = map[enums.LayWorse]string{
	enums.WorseFlipNodes: "flip-nodes",
	enums.WorseFlipEdges: "flip-edges",
	enums.WorseMovLSQ:    "movlsq",
	enums.WorsePerturb:   "perturb",
}

// WorseStage produces worsened layouts derived from every proper layout
// (action ActionLayWorse).
type WorseStage struct {
	st       *store.Store
	runner   *toolrunner.Runner
	badlog   *badlog.Log
	cfg      *config.Configuration
	toolsDir string
	log      *logger.Logger
}

// NewWorse builds the lay-worse stage.
func NewWorse(st *store.Store, runner *toolrunner.Runner, bl *badlog.Log, cfg *config.Configuration, toolsDir string, log *logger.Logger) *WorseStage {
	if log == nil {
		log = logger.NewNop()
	}
	return &WorseStage{st: st, runner: runner, badlog: bl, cfg: cfg, toolsDir: toolsDir, log: log.With("stage", "lay-worse")}
}

// Run executes the stage.
func (s *WorseStage) Run(ctx context.Context) error {
	proper, err := store.Select[store.Layout](ctx, s.st.DB(), map[string]interface{}{"layout": store.Any})
	if err != nil {
		return err
	}
	for _, l := range proper {
		for method, rates := range s.cfg.DesiredLayWorse {
			if err := s.considerLayout(ctx, method, rates, l); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *WorseStage) considerLayout(ctx context.Context, method enums.LayWorse, want []float64, parent store.Layout) error {
	haveRows, err := store.Select[store.WorseLayout](ctx, s.st.DB(), map[string]interface{}{
		"method": method, "parent": parent.ID[:],
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
	if msg, bad := s.badlog.GetBad(enums.ActionLayWorse, parent.ID, method); bad {
		s.log.Info("skipping worsening (previously failed)", "layout", parent.ID, "method", method, "reason", msg)
		return nil
	}
	s.log.Info("worsening layout", "layout", parent.ID, "steps", len(need), "method", method)
	if err := s.worsenGeneric(ctx, method, parent, need); err != nil {
		if !xerrors.Is(err, xerrors.Recoverable) {
			return err
		}
		if err := s.badlog.SetBad(enums.ActionLayWorse, err.Error(), parent.ID, method); err != nil {
			return err
		}
		s.log.Error("cannot worsen layout", "layout", parent.ID, "method", method, "error", err.Error())
	}
	return nil
}

func (s *WorseStage) worsenGeneric(ctx context.Context, method enums.LayWorse, parent store.Layout, rates []float64) error {
	prog, ok := worsePrograms[method]
	if !ok {
		return xerrors.Sanityf("lay-worse: no program registered for %s", method)
	}
	tempdir, err := os.MkdirTemp("", "graphstudy-worse-")
	if err != nil {
		return xerrors.WrapFatal(err, "creating temp directory")
	}
	defer os.RemoveAll(tempdir)

	pattern := filepath.Join(tempdir, "%"+store.LayoutFileSuffix)
	args := []string{s.toolPath("perturbators", prog), "--output=" + pattern, "--meta=STDIO"}
	for _, r := range rates {
		args = append(args, fmt.Sprintf("--rate=%.10f", r))
	}
	args = append(args, parent.File)

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
		if err := s.addWorseLayout(ctx, method, parent.GraphID, parent.ID, data, seed); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorseStage) addWorseLayout(ctx context.Context, method enums.LayWorse, graphID, parentID idfp.ID, data map[string]interface{}, seed []byte) error {
	thisID, err := s.st.AllocateUniqueLayoutID(ctx)
	if err != nil {
		return err
	}
	filename := s.st.LayoutFilePath(graphID, thisID, "worse")
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
	worseRow := store.WorseLayout{ID: thisID, Parent: parentID, Method: method, Rate: rate}
	if err := s.st.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&layoutRow).Error; err != nil {
			return err
		}
		return tx.Create(&worseRow).Error
	}); err != nil {
		return xerrors.WrapFatal(err, "inserting worsened layout")
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating layout directory for %s", filename)
	}
	if err := os.Rename(srcfile, filename); err != nil {
		return xerrors.WrapFatal(err, "renaming worsened layout file %s to %s", srcfile, filename)
	}
	return nil
}

func (s *WorseStage) toolPath(subdir, prog string) string {
	if s.toolsDir == "" {
		return prog
	}
	return filepath.Join(s.toolsDir, subdir, prog)
}
