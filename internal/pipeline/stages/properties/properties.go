// Package properties implements the properties pipeline stage (spec.md
// §4.7, action ActionProperties): for every Layout and every
// distribution-valued property configured for its graph's size, invoke
// the matching extractor tool and record a discrete (histogram) and/or
// continuous (sliding-average) distribution summary. Mirrors the
// original driver's do_properties/_compute_prop_outer/_compute_prop_inner/
// _insert_data/_maybe_insert_pca.
package properties

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

const dataFileSuffix = ".txt.gz"

// propertyPrograms and propertyFlags mirror the original driver's
// _PROPERTY_PROGS / _PROPERTY_FLAGS (original_source/driver/properties.py).
var propertyPrograms = map[enums.Property]string{
	enums.PropAngular:    "angular",
	enums.PropRDFGlobal:  "rdf-global",
	enums.PropRDFLocal:   "rdf-local",
	enums.PropEdgeLength: "edge-length",
	enums.PropPrinComp1:  "princomp",
	enums.PropPrinComp2:  "princomp",
	enums.PropTension:    "tension",
}

var propertyFlags = map[enums.Property][]string{
	enums.PropAngular:    nil,
	enums.PropRDFGlobal:  nil,
	enums.PropRDFLocal:   nil,
	enums.PropEdgeLength: nil,
	enums.PropPrinComp1:  {"-1"},
	enums.PropPrinComp2:  {"-2"},
	enums.PropTension:    nil,
}

// deterministicProperties are the properties whose tool output must be
// reproducible bit-for-bit: PCA's sign/ordering convention depends on
// it, matching `deterministic = prop in [PRINCOMP1ST, PRINCOMP2ND]`.
var deterministicProperties = map[enums.Property]bool{
	enums.PropPrinComp1: true,
	enums.PropPrinComp2: true,
}

// Stage computes discrete and continuous property distributions for
// every layout.
type Stage struct {
	st       *store.Store
	runner   *toolrunner.Runner
	badlog   *badlog.Log
	cfg      *config.Configuration
	toolsDir string
	log      *logger.Logger
}

// New builds the properties stage.
func New(st *store.Store, runner *toolrunner.Runner, bl *badlog.Log, cfg *config.Configuration, toolsDir string, log *logger.Logger) *Stage {
	if log == nil {
		log = logger.NewNop()
	}
	return &Stage{st: st, runner: runner, badlog: bl, cfg: cfg, toolsDir: toolsDir, log: log.With("stage", "properties")}
}

type layoutJob struct {
	graphID   idfp.ID
	graphFile string
	graphSize enums.GraphSize
	layoutID  idfp.ID
	file      string
}

// Run executes the stage.
func (s *Stage) Run(ctx context.Context) error {
	graphs, err := store.Select[store.Graph](ctx, s.st.DB(), nil)
	if err != nil {
		return err
	}
	var jobs []layoutJob
	for _, g := range graphs {
		size := enums.ClassifyGraphSize(int(g.Nodes))
		layouts, err := store.Select[store.Layout](ctx, s.st.DB(), map[string]interface{}{"graph_id": g.ID[:]})
		if err != nil {
			return err
		}
		for _, l := range layouts {
			jobs = append(jobs, layoutJob{graphID: g.ID, graphFile: g.File, graphSize: size, layoutID: l.ID, file: l.File})
		}
	}

	total := len(jobs)
	for i, job := range jobs {
		progress := 0.0
		if total > 0 {
			progress = float64(i+1) / float64(total)
		}
		for _, prop := range enums.AllProperties() {
			if sizes, ok := s.cfg.DesiredPropertiesDisc[prop]; ok && sizes.Contains(job.graphSize) {
				exists, err := s.exists(ctx, enums.KernelDisc, job.layoutID, prop)
				if err != nil {
					return err
				}
				if !exists {
					if err := s.computeOuter(ctx, prop, enums.KernelDisc, job, progress); err != nil {
						return err
					}
				}
			}
			if sizes, ok := s.cfg.DesiredPropertiesCont[prop]; ok && sizes.Contains(job.graphSize) {
				exists, err := s.exists(ctx, enums.KernelCont, job.layoutID, prop)
				if err != nil {
					return err
				}
				if !exists {
					if err := s.computeOuter(ctx, prop, enums.KernelCont, job, progress); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (s *Stage) exists(ctx context.Context, kern enums.Kernel, layoutID idfp.ID, prop enums.Property) (bool, error) {
	where := map[string]interface{}{"layout_id": layoutID[:], "property": prop}
	if kern == enums.KernelDisc {
		rows, err := store.Select[store.PropertyDisc](ctx, s.st.DB(), where)
		return len(rows) > 0, err
	}
	rows, err := store.Select[store.PropertyCont](ctx, s.st.DB(), where)
	return len(rows) > 0, err
}

func (s *Stage) computeOuter(ctx context.Context, prop enums.Property, kern enums.Kernel, job layoutJob, progress float64) error {
	what := "discrete"
	if kern == enums.KernelCont {
		what = "continuous"
	}
	if msg, bad := s.badlog.GetBad(enums.ActionProperties, job.layoutID, prop); bad {
		s.log.Notice("skipping computation of property", "kind", what, "property", prop, "layout", job.layoutID, "reason", msg)
		return nil
	}
	s.log.Info("computing property for layout", "progress", progress, "kind", what, "property", prop, "layout", job.layoutID)
	directory := s.st.PropertyDir(job.layoutID, prop)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating property directory %s", directory)
	}
	if err := s.computeInner(ctx, prop, kern, job, directory); err != nil {
		if !xerrors.Is(err, xerrors.Recoverable) {
			return err
		}
		if err := s.badlog.SetBad(enums.ActionProperties, err.Error(), job.layoutID, prop); err != nil {
			return err
		}
		s.log.Error("cannot compute property for layout", "kind", what, "property", prop, "layout", job.layoutID, "graph", job.graphID, "error", err.Error())
	}
	return nil
}

func (s *Stage) computeInner(ctx context.Context, prop enums.Property, kern enums.Kernel, job layoutJob, directory string) error {
	tempdir, err := os.MkdirTemp("", "graphstudy-property-")
	if err != nil {
		return xerrors.WrapFatal(err, "creating temp directory")
	}
	defer os.RemoveAll(tempdir)

	prog, ok := propertyPrograms[prop]
	if !ok {
		return xerrors.Sanityf("properties: no program registered for %s", prop)
	}
	args := []string{s.toolPath("properties", prog)}
	args = append(args, propertyFlags[prop]...)
	args = append(args, "--kernel="+kernelName(kern))
	if kern == enums.KernelDisc {
		for _, b := range enums.FixedCountBins {
			args = append(args, fmt.Sprintf("--bins=%d", b))
		}
	}
	if prop.Localized() {
		for _, v := range enums.VICINITIES {
			args = append(args, fmt.Sprintf("--vicinity=%.1f", float64(v)))
		}
	}
	filenamebase := "histogram"
	if kern == enums.KernelCont {
		filenamebase = "gaussian"
	}
	suffix := "%" + dataFileSuffix
	if prop.Localized() {
		suffix = "%-%" + dataFileSuffix
	}
	args = append(args, "--output="+filepath.Join(tempdir, filenamebase+"-"+suffix))
	args = append(args, "--meta=STDIO")
	args = append(args, job.file)

	res, err := s.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout, Deterministic: deterministicProperties[prop]})
	if err != nil {
		return err
	}

	if prop.Localized() {
		items, ok := res.Meta["data"].([]interface{})
		if !ok {
			return xerrors.Recoverablef("tool output is missing required field %q", "data")
		}
		diameter, _ := res.Meta["diameter"].(float64)
		if structDiameter, structErr := structuralDiameter(job.graphFile); structErr != nil {
			s.log.Warn("falling back to tool-reported diameter", "graph", job.graphID, "error", structErr.Error())
		} else {
			diameter = structDiameter
		}
		var maxVicinitySeen bool
		for _, raw := range items {
			item, ok := raw.(map[string]interface{})
			if !ok {
				return xerrors.Recoverablef("tool output %q entry is not an object", "data")
			}
			vicinity, _ := item["vicinity"].(float64)
			subdata, _ := item["data"].([]interface{})
			nullCount := 0
			for _, sub := range subdata {
				m, _ := sub.(map[string]interface{})
				if m == nil || m["filename"] == nil {
					nullCount++
				}
			}
			allNull := len(subdata) > 0 && nullCount == len(subdata)
			anyNull := nullCount > 0
			if anyNull != allNull {
				return xerrors.Sanityf("properties: either all or no files shall be NULL for vicinity %g", vicinity)
			}
			if vicinity <= diameter && allNull {
				return xerrors.Sanityf("properties: files shall not be NULL for vicinities up to the graph's diameter")
			}
			if vicinity > diameter && maxVicinitySeen && !allNull {
				return xerrors.Sanityf("properties: files shall be NULL for all but one vicinity above the graph's diameter")
			}
			if vicinity > diameter && allNull {
				maxVicinitySeen = true
			}
			if err := s.insertData(ctx, prop, kern, job.layoutID, item, directory, tempdir); err != nil {
				return err
			}
		}
		return nil
	}
	return s.insertData(ctx, prop, kern, job.layoutID, res.Meta, directory, tempdir)
}

func (s *Stage) insertData(ctx context.Context, prop enums.Property, kern enums.Kernel, layoutID idfp.ID, meta map[string]interface{}, directory, tempdir string) error {
	vicinity, err := roundabout(metaFloatPtr(meta, "vicinity"))
	if err != nil {
		return err
	}
	size, _ := meta["size"].(float64)
	minimum, _ := meta["minimum"].(float64)
	maximum, _ := meta["maximum"].(float64)
	mean, _ := meta["mean"].(float64)
	rms, _ := meta["rms"].(float64)
	entropyIntercept, _ := meta["entropy-intercept"].(float64)
	entropySlope, _ := meta["entropy-slope"].(float64)

	items, _ := meta["data"].([]interface{})
	var renamings [][2]string

	return s.st.WithTx(ctx, func(tx *gorm.DB) error {
		switch kern {
		case enums.KernelDisc:
			row := store.PropertyDisc{
				LayoutID: layoutID, Property: prop, Vicinity: uintPtr(vicinity),
				Size: size, Minimum: minimum, Maximum: maximum, Mean: mean, RMS: rms,
				EntropyIntercept: entropyIntercept, EntropySlope: entropySlope,
			}
			if err := tx.Create(&row).Error; err != nil {
				return xerrors.WrapRecoverable(err, "inserting discrete property row")
			}
			for _, raw := range items {
				data, _ := raw.(map[string]interface{})
				if data == nil || data["filename"] == nil {
					continue
				}
				tempname, _ := data["filename"].(string)
				filename := persistentName(tempname, tempdir, directory)
				renamings = append(renamings, [2]string{tempname, filename})
				entropy := metaFloatPtr(data, "entropy")
				bincount, _ := data["bincount"].(float64)
				binwidth, _ := data["binwidth"].(float64)
				hist := store.Histogram{
					PropertyDiscID: row.ID, Bincount: uint(bincount), Binwidth: binwidth,
					Entropy: entropy, File: &filename,
				}
				if err := tx.Create(&hist).Error; err != nil {
					return xerrors.WrapRecoverable(err, "inserting histogram row")
				}
			}
		case enums.KernelCont:
			row := store.PropertyCont{
				LayoutID: layoutID, Property: prop, Vicinity: uintPtr(vicinity),
				Size: size, Minimum: minimum, Maximum: maximum, Mean: mean, RMS: rms,
			}
			if err := tx.Create(&row).Error; err != nil {
				return xerrors.WrapRecoverable(err, "inserting continuous property row")
			}
			for _, raw := range items {
				data, _ := raw.(map[string]interface{})
				if data == nil || data["filename"] == nil {
					continue
				}
				tempname, _ := data["filename"].(string)
				filename := persistentName(tempname, tempdir, directory)
				renamings = append(renamings, [2]string{tempname, filename})
				entropy := metaFloatPtr(data, "entropy")
				sigma, _ := data["sigma"].(float64)
				points, _ := data["points"].(float64)
				avg := store.SlidingAverage{
					PropertyContID: row.ID, Sigma: sigma, Points: uint(points),
					Entropy: entropy, File: &filename,
				}
				if err := tx.Create(&avg).Error; err != nil {
					return xerrors.WrapRecoverable(err, "inserting sliding-average row")
				}
			}
		}
		if err := s.maybeInsertPCA(tx, prop, layoutID, meta); err != nil {
			return err
		}
		for _, r := range renamings {
			if err := os.Rename(r[0], r[1]); err != nil {
				return xerrors.WrapFatal(err, "renaming property data file %s to %s", r[0], r[1])
			}
		}
		return nil
	})
}

func (s *Stage) maybeInsertPCA(tx *gorm.DB, prop enums.Property, layoutID idfp.ID, meta map[string]interface{}) error {
	if prop != enums.PropPrinComp1 && prop != enums.PropPrinComp2 {
		return nil
	}
	comp, ok := meta["component"].([]interface{})
	if !ok || len(comp) != 2 {
		return xerrors.Recoverablef("tool output is missing required field %q", "component")
	}
	x, _ := comp[0].(float64)
	y, _ := comp[1].(float64)
	var upsertErr error
	if prop == enums.PropPrinComp1 {
		row := store.MajorAxis{LayoutID: layoutID, X: x, Y: y}
		upsertErr = tx.Save(&row).Error
	} else {
		row := store.MinorAxis{LayoutID: layoutID, X: x, Y: y}
		upsertErr = tx.Save(&row).Error
	}
	if upsertErr != nil {
		return xerrors.WrapRecoverable(upsertErr, "inserting principal-component axis")
	}
	return nil
}

// roundabout mirrors _roundabout: a vicinity value must round-trip
// exactly through rounding to an integer, or the tool output is
// internally inconsistent.
func roundabout(x *float64) (*int, error) {
	if x == nil {
		return nil, nil
	}
	r := int(*x + 0.5)
	if *x == float64(r) {
		return &r, nil
	}
	return nil, xerrors.Sanityf("properties: non-integral vicinity %v", *x)
}

func uintPtr(i *int) *uint {
	if i == nil {
		return nil
	}
	u := uint(*i)
	return &u
}

func persistentName(tempname, tempdir, directory string) string {
	rel, err := filepath.Rel(tempdir, tempname)
	if err != nil {
		rel = filepath.Base(tempname)
	}
	return filepath.Join(directory, rel)
}

func metaFloatPtr(meta map[string]interface{}, key string) *float64 {
	v, ok := meta[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func kernelName(k enums.Kernel) string {
	if k == enums.KernelDisc {
		return "BOXED"
	}
	return "GAUSSIAN"
}

func (s *Stage) toolPath(subdir, prog string) string {
	if s.toolsDir == "" {
		return prog
	}
	return filepath.Join(s.toolsDir, subdir, prog)
}
