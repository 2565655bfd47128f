// Package layouts implements the layouts pipeline stage (spec.md §4.7,
// action ActionLayouts): for every Graph x desired Layout kind not yet
// present, either symlink the graph file itself (NATIVE) or invoke the
// matching layout tool, then backfill any Layout row still missing a
// fingerprint. Mirrors the original driver's
// do_layouts/_lay_native/_lay_generic/_ensure_layout_fingerprints.
package layouts

import (
	"context"
	"encoding/hex"
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

// Stage produces proper layouts for every (graph, desired layout kind)
// pair not yet in the store, then backfills missing fingerprints.
type Stage struct {
	st       *store.Store
	runner   *toolrunner.Runner
	badlog   *badlog.Log
	cfg      *config.Configuration
	toolsDir string
	log      *logger.Logger
}

// New builds the layouts stage.
func New(st *store.Store, runner *toolrunner.Runner, bl *badlog.Log, cfg *config.Configuration, toolsDir string, log *logger.Logger) *Stage {
	if log == nil {
		log = logger.NewNop()
	}
	return &Stage{st: st, runner: runner, badlog: bl, cfg: cfg, toolsDir: toolsDir, log: log.With("stage", "layouts")}
}

// Run executes the stage.
func (s *Stage) Run(ctx context.Context) error {
	graphs, err := store.Select[store.Graph](ctx, s.st.DB(), nil)
	if err != nil {
		return err
	}
	for _, g := range graphs {
		size := enums.ClassifyGraphSize(int(g.Nodes))
		for _, kind := range allDesirableLayouts() {
			sizes, ok := s.cfg.DesiredLayouts[kind]
			if !ok || !sizes.Contains(size) {
				continue
			}
			existing, err := store.Select[store.Layout](ctx, s.st.DB(), map[string]interface{}{
				"graph_id": g.ID[:], "layout": kind,
			})
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				continue
			}
			if msg, bad := s.badlog.GetBad(enums.ActionLayouts, g.ID, kind); bad {
				s.log.Notice("skipping layout (previously failed)", "graph", g.ID, "layout", kind, "reason", msg)
				continue
			}
			var runErr error
			if kind == enums.LayoutNative {
				if g.Native {
					runErr = s.layNative(ctx, g)
				}
			} else {
				runErr = s.layGeneric(ctx, kind, g)
			}
			if runErr != nil {
				if !xerrors.Is(runErr, xerrors.Recoverable) {
					return runErr
				}
				if err := s.badlog.SetBad(enums.ActionLayouts, runErr.Error(), g.ID, kind); err != nil {
					return err
				}
				s.log.Error("cannot make layout for graph", "layout", kind, "graph", g.ID, "error", runErr.Error())
			}
		}
	}
	return s.ensureLayoutFingerprints(ctx)
}

func (s *Stage) layNative(ctx context.Context, g store.Graph) error {
	layoutID, err := s.st.AllocateUniqueLayoutID(ctx)
	if err != nil {
		return err
	}
	filename := s.st.LayoutFilePath(g.ID, layoutID, "")
	native := enums.LayoutNative
	row := store.Layout{ID: layoutID, GraphID: g.ID, Layout: &native, File: filename, Fingerprint: g.Fingerprint}
	if err := s.st.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	}); err != nil {
		return xerrors.WrapFatal(err, "inserting native layout for graph %s", g.ID)
	}
	directory := filepath.Dir(filename)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating layout directory %s", directory)
	}
	target, err := filepath.Rel(directory, g.File)
	if err != nil {
		target = g.File
	}
	s.log.Info("creating symbolic link for native layout", "file", filename, "target", target)
	if err := os.Symlink(target, filename); err != nil {
		return xerrors.WrapFatal(err, "symlinking native layout %s", filename)
	}
	return nil
}

func (s *Stage) layGeneric(ctx context.Context, kind enums.Layout, g store.Graph) error {
	prog, ok := layoutPrograms[kind]
	if !ok {
		return xerrors.Sanityf("layouts: no program registered for %s", kind)
	}
	tempdir, err := os.MkdirTemp("", "graphstudy-layout-")
	if err != nil {
		return xerrors.WrapFatal(err, "creating temp directory")
	}
	defer os.RemoveAll(tempdir)

	outfile := filepath.Join(tempdir, kind.String()+store.LayoutFileSuffix)
	args := []string{s.toolPath("layouts", prog), "--output=" + outfile, "--meta=STDIO"}
	args = append(args, layoutFlags[kind]...)
	args = append(args, g.File)

	s.log.Info("generating layout for graph", "layout", kind, "graph", g.ID)
	res, err := s.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout})
	if err != nil {
		return err
	}

	layoutID, err := s.st.AllocateUniqueLayoutID(ctx)
	if err != nil {
		return err
	}
	layoutfilename := s.st.LayoutFilePath(g.ID, layoutID, "")
	width := metaFloatPtr(res.Meta, "width")
	height := metaFloatPtr(res.Meta, "height")
	seed := metaSeed(res.Meta)
	fp := metaFingerprint(res.Meta)
	k := kind
	row := store.Layout{
		ID: layoutID, GraphID: g.ID, Layout: &k, File: layoutfilename,
		Width: width, Height: height, Seed: seed, Fingerprint: fp,
	}
	if err := s.st.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	}); err != nil {
		return xerrors.WrapFatal(err, "inserting layout for graph %s", g.ID)
	}

	srcfile, _ := res.Meta["filename"].(string)
	if srcfile == "" {
		return xerrors.Recoverablef("tool output is missing required field %q", "filename")
	}
	if err := os.MkdirAll(filepath.Dir(layoutfilename), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating layout directory for %s", layoutfilename)
	}
	if err := os.Rename(srcfile, layoutfilename); err != nil {
		return xerrors.WrapFatal(err, "renaming layout file %s to %s", srcfile, layoutfilename)
	}
	return nil
}

// ensureLayoutFingerprints backfills the fingerprint (and width/height)
// of every Layout row that doesn't have one yet, matching
// _ensure_layout_fingerprints.
func (s *Stage) ensureLayoutFingerprints(ctx context.Context) error {
	without, err := store.Select[store.Layout](ctx, s.st.DB(), map[string]interface{}{"fingerprint": nil})
	if err != nil {
		return err
	}
	if len(without) == 0 {
		return nil
	}
	s.log.Notice("layouts in the database have no associated fingerprint", "count", len(without))
	for i, l := range without {
		s.log.Info("computing fingerprint for layout", "progress", i+1, "total", len(without), "layout", l.ID)
		args := []string{s.toolPath("utility", "fingerprint"), "--layout", "--meta=STDIO", l.File}
		res, err := s.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout})
		if err != nil {
			s.log.Error("cannot compute fingerprint for layout", "layout", l.ID, "error", err.Error())
			continue
		}
		fp := metaFingerprint(res.Meta)
		if len(fp) == 0 {
			s.log.Error("cannot compute fingerprint for layout", "layout", l.ID, "error", "no fingerprint")
			continue
		}
		width := metaFloatPtr(res.Meta, "width")
		height := metaFloatPtr(res.Meta, "height")
		if err := s.st.WithTx(ctx, func(tx *gorm.DB) error {
			return tx.Model(&store.Layout{}).Where("id = ?", l.ID[:]).Updates(map[string]interface{}{
				"fingerprint": fp, "width": width, "height": height,
			}).Error
		}); err != nil {
			return xerrors.WrapFatal(err, "updating fingerprint for layout %s", l.ID)
		}
	}
	return nil
}

func metaFloatPtr(meta map[string]interface{}, key string) *float64 {
	v, ok := meta[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func metaSeed(meta map[string]interface{}) []byte {
	s, ok := meta["seed"].(string)
	if !ok || s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func metaFingerprint(meta map[string]interface{}) idfp.Fingerprint {
	s, ok := meta["layout"].(string)
	if !ok || s == "" {
		return nil
	}
	fp, err := idfp.ParseFingerprint(&s)
	if err != nil {
		return nil
	}
	return fp
}

func (s *Stage) toolPath(subdir, prog string) string {
	if s.toolsDir == "" {
		return prog
	}
	return filepath.Join(s.toolsDir, subdir, prog)
}
