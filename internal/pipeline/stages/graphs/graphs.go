// Package graphs implements the graphs pipeline stage (spec.md §4.7,
// action ActionGraphs): for every (generator, size, count) cell of
// graphs.cfg, grow or import graphs until the store holds at least the
// desired count of each size from each generator. Mirrors the original
// driver's do_graphs/_generate_graphs/_gen_generic/_gen_import.
//
// Unlike layouts/lay-inter/lay-worse/properties, this stage does not
// consult the bad-log: a generator or import source that fails is
// logged and skipped for the run, but never durably remembered as
// "don't bother trying again" — the upstream archive may simply be
// offline this time.
package graphs

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/importsrc"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/toolrunner"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Stage grows and imports graphs until graphs.cfg's desired counts are
// met.
type Stage struct {
	st       *store.Store
	runner   *toolrunner.Runner
	cfg      *config.Configuration
	toolsDir string
	log      *logger.Logger

	// quickArchiveImport mirrors _quick_archive_import_eh: when set, an
	// unbounded ('*') request against an already-satisfied generator is
	// treated as done without ever scanning the archive.
	quickArchiveImport bool
}

// New builds the graphs stage. toolsDir is joined with "generators" and
// a program name to find each generator/import binary; an empty
// toolsDir resolves program names via PATH instead.
func New(st *store.Store, runner *toolrunner.Runner, cfg *config.Configuration, toolsDir string, log *logger.Logger) *Stage {
	if log == nil {
		log = logger.NewNop()
	}
	return &Stage{
		st:                 st,
		runner:             runner,
		cfg:                cfg,
		toolsDir:           toolsDir,
		log:                log.With("stage", "graphs"),
		quickArchiveImport: quickArchiveImportEnabled(),
	}
}

func quickArchiveImportEnabled() bool {
	v := os.Getenv("MSC_QUICK_ARCHIVE_IMPORT")
	return v != "" && v != "0"
}

// Run executes the stage: build one bucket list per generator from
// graphs.cfg, deduct what the store already has, then grow or import
// whatever remains.
func (s *Stage) Run(ctx context.Context) error {
	worklist := make(map[enums.Generator]*bucketList)
	for _, d := range s.cfg.DesiredGraphs {
		bl, ok := worklist[d.Gen]
		if !ok {
			bl = newBucketList()
			worklist[d.Gen] = bl
		}
		bl.request(d.Size, d.Count)
	}

	for gen, bl := range worklist {
		if err := s.updateBucketList(ctx, gen, bl); err != nil {
			return err
		}
	}

	for gen, bl := range worklist {
		if !bl.any() {
			continue
		}
		if err := s.generateGraphs(ctx, gen, bl); err != nil {
			return err
		}
	}
	return nil
}

// updateBucketList deducts graphs the store already has from each size's
// request, logging the shortfall the way _update_bucket_list does.
func (s *Stage) updateBucketList(ctx context.Context, gen enums.Generator, bl *bucketList) error {
	existing := 0
	for _, size := range bl.sizes() {
		count, bounded := bl.get(size)
		prev, err := s.countExisting(ctx, gen, size)
		if err != nil {
			return err
		}
		existing += prev
		if !bounded {
			if s.quickArchiveImport {
				s.log.Info("graphs already exist, unbounded request satisfied without scanning archive",
					"generator", gen, "size", size, "existing", prev)
			} else {
				s.log.Info("graphs already exist", "generator", gen, "size", size, "existing", prev)
			}
			continue
		}
		needed := count - prev
		if needed < 0 {
			needed = 0
		}
		s.log.Info("graphs already exist", "generator", gen, "size", size, "existing", prev, "desired", count, "needed", needed)
		bl.change(size, needed)
	}
	if s.quickArchiveImport && existing > 0 {
		bl.discardUnboundedRequests()
	}
	return nil
}

func (s *Stage) countExisting(ctx context.Context, gen enums.Generator, size enums.GraphSize) (int, error) {
	q := s.st.DB().WithContext(ctx).Model(&store.Graph{}).Where("generator = ?", gen).Where("nodes >= ?", size.LowEnd())
	high := size.HighEnd()
	if !isInf(high) {
		q = q.Where("nodes < ?", high)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, xerrors.WrapFatal(err, "counting existing %s graphs of size %s", gen, size)
	}
	return int(count), nil
}

func isInf(f float64) bool {
	return f > 1e18
}

// generateGraphs dispatches to the generic generator or the appropriate
// import source for gen, matching _generate_graphs.
func (s *Stage) generateGraphs(ctx context.Context, gen enums.Generator, bl *bucketList) error {
	if gen == enums.GenIMPORT {
		s.log.Info("looking for import graphs in configured sources", "count", len(s.cfg.ImportSources))
		for _, spec := range s.cfg.ImportSources {
			if err := s.genImport(ctx, gen, spec, bl); err != nil {
				if xerrors.Is(err, xerrors.Recoverable) {
					s.log.Error("cannot import graphs from configured source", "error", err.Error())
					continue
				}
				return err
			}
		}
		return nil
	}
	if gen.Imported() {
		spec, ok := wellKnownSources[gen]
		if !ok {
			return xerrors.Sanityf("graphs: no well-known import source registered for %s", gen)
		}
		if err := s.genImport(ctx, gen, spec, bl); err != nil {
			if xerrors.Is(err, xerrors.Recoverable) {
				s.log.Error("cannot import graphs", "generator", gen, "error", err.Error())
				return nil
			}
			return err
		}
		return nil
	}
	if err := s.genGeneric(ctx, gen, bl); err != nil {
		if xerrors.Is(err, xerrors.Recoverable) {
			s.log.Error("cannot generate graphs", "generator", gen, "error", err.Error())
			return nil
		}
		return err
	}
	return nil
}

// genGeneric repeatedly invokes gen's generator binary for whichever
// size currently has the greatest deficit, matching _gen_generic.
func (s *Stage) genGeneric(ctx context.Context, gen enums.Generator, bl *bucketList) error {
	for bl.any() {
		size, ok := bl.pick()
		if !ok {
			break
		}
		tempdir, err := os.MkdirTemp("", "graphstudy-gen-")
		if err != nil {
			return xerrors.WrapFatal(err, "creating temp directory")
		}
		meta, err := s.callGenericTool(ctx, gen, size, tempdir)
		if err != nil {
			s.log.Error("cannot generate graph", "generator", gen, "size", size, "error", err.Error())
			os.RemoveAll(tempdir)
			continue
		}
		actual := classifyMetaSize(meta)
		if actual != size {
			if bl.offer(actual) {
				s.log.Notice("asked for a graph of one size but got another which is still useful",
					"generator", gen, "asked", size, "got", actual)
			} else {
				s.log.Warn("asked for a graph of one size but got another which must be discarded",
					"generator", gen, "asked", size, "got", actual)
				os.RemoveAll(tempdir)
				continue
			}
		}
		inserted, err := s.insertGraph(ctx, gen, meta, tempdir)
		os.RemoveAll(tempdir)
		if err != nil {
			return err
		}
		if inserted {
			bl.decrement(actual)
		}
	}
	return nil
}

func (s *Stage) callGenericTool(ctx context.Context, gen enums.Generator, size enums.GraphSize, tempdir string) (map[string]interface{}, error) {
	prog, ok := genPrograms[gen]
	if !ok {
		return nil, xerrors.Sanityf("graphs: no generator program registered for %s", gen)
	}
	args := []string{s.toolPath("generators", prog)}
	args = append(args, genFlags[gen]...)
	outfile := filepath.Join(tempdir, gen.String()+store.GraphFileSuffix)
	args = append(args, "--output="+outfile, "--meta=STDIO", fmt.Sprintf("--nodes=%d", size.Target()))
	res, err := s.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout})
	if err != nil {
		return nil, err
	}
	return res.Meta, nil
}

// genImport drives one import source through an archive, importing
// every candidate the bucket list still wants, matching _gen_import.
func (s *Stage) genImport(ctx context.Context, gen enums.Generator, spec config.ImportSourceSpec, bl *bucketList) error {
	src, err := importsrc.FromSpec(spec, s.log)
	if err != nil {
		return err
	}
	if err := src.Open(ctx); err != nil {
		return err
	}
	defer src.Close()

	tempdir, err := os.MkdirTemp("", "graphstudy-import-")
	if err != nil {
		return xerrors.WrapFatal(err, "creating temp directory")
	}
	defer os.RemoveAll(tempdir)

	candidates := src.Candidates()
	archlen := len(candidates)
	s.log.Info("archive contains graphs", "source", src.Name(), "count", archlen)

	importProg := s.toolPath("generators", "import")
	outfile := filepath.Join(tempdir, gen.String()+store.GraphFileSuffix)
	baseArgs := []string{importProg, "--format=" + src.Format(), "--output=" + outfile, "--meta=STDIO"}
	if src.Layout() {
		baseArgs = append(baseArgs, "--layout")
	}
	if spec.Simplify {
		baseArgs = append(baseArgs, "--simplify")
	}
	stdinSpec := "STDIO"
	if spec.Compression != "" {
		stdinSpec = "STDIO:" + spec.Compression
	}
	baseArgs = append(baseArgs, stdinSpec)

	count := 0
	for i, cand := range candidates {
		if !bl.any() {
			break
		}
		s.log.Info("considering import candidate", "generator", gen, "index", i+1, "total", archlen, "candidate", string(cand))
		body, err := readCandidate(ctx, src, cand)
		if err != nil {
			s.log.Error("cannot read import candidate", "candidate", string(cand), "error", err.Error())
			continue
		}
		res, err := s.runner.Run(ctx, toolrunner.Options{Args: baseArgs, Meta: toolrunner.MetaStdout, Stdin: body})
		if err != nil {
			s.log.Error("cannot import graph", "generator", gen, "candidate", string(cand), "error", err.Error())
			continue
		}
		actual := classifyMetaSize(res.Meta)
		if !bl.offer(actual) {
			s.log.Notice("discarding imported graph (not wanted)", "generator", gen, "size", actual)
			continue
		}
		inserted, err := s.insertGraph(ctx, gen, res.Meta, tempdir)
		if err != nil {
			return err
		}
		if inserted {
			bl.decrement(actual)
			count++
		}
	}
	s.log.Info("finished importing graphs", "generator", gen, "source", src.Name(), "imported", count)
	for size, diff := range bl.remainingDeficits() {
		s.log.Warn("archive exhausted but graphs are still missing", "generator", gen, "size", size, "missing", diff)
	}
	return nil
}

func readCandidate(ctx context.Context, src importsrc.Source, cand importsrc.Candidate) ([]byte, error) {
	rc, err := src.Get(ctx, cand)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "reading import candidate %s", cand)
	}
	return data, nil
}

// insertGraph inserts the Graph row described by meta and renames its
// output file into the canonical store location, matching
// _insert_graph. It reports false (without error) when a graph with the
// same ID already exists, matching the original's discard-duplicate
// behavior.
func (s *Stage) insertGraph(ctx context.Context, gen enums.Generator, meta map[string]interface{}, tempdir string) (bool, error) {
	idStr, _ := meta["graph"].(string)
	id, err := idfp.Parse(idStr)
	if err != nil {
		return false, xerrors.WrapRecoverable(err, "parsing graph id from tool output")
	}
	nodes, err := metaUint(meta, "nodes")
	if err != nil {
		return false, err
	}
	edges, err := metaUint(meta, "edges")
	if err != nil {
		return false, err
	}
	native, _ := meta["native"].(bool)
	seed := metaSeed(meta)
	fp := metaFingerprint(meta)
	srcfile, _ := meta["filename"].(string)
	if srcfile == "" {
		return false, xerrors.Recoverablef("tool output is missing required field %q", "filename")
	}

	destfile := s.st.GraphFilePath(id, gen)
	row := store.Graph{
		ID: id, Generator: gen, File: destfile, Nodes: nodes, Edges: edges,
		Native: native, Seed: seed, Fingerprint: fp,
	}
	already := false
	if txErr := s.st.WithTx(ctx, func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&store.Graph{}).Where("id = ?", id[:]).Count(&count).Error; err != nil {
			return xerrors.WrapFatal(err, "checking for existing graph %s", id)
		}
		if count > 0 {
			already = true
			return nil
		}
		if err := tx.Create(&row).Error; err != nil {
			return xerrors.WrapFatal(err, "inserting graph %s", id)
		}
		return nil
	}); txErr != nil {
		return false, txErr
	}
	if already {
		s.log.Notice("discarding graph (already exists)", "generator", gen, "id", id)
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(destfile), 0o755); err != nil {
		return false, xerrors.WrapFatal(err, "creating graph directory for %s", destfile)
	}
	if err := os.Rename(srcfile, destfile); err != nil {
		return false, xerrors.WrapFatal(err, "renaming graph file %s to %s", srcfile, destfile)
	}
	return true, nil
}

func classifyMetaSize(meta map[string]interface{}) enums.GraphSize {
	n, _ := metaUint(meta, "nodes")
	return enums.ClassifyGraphSize(int(n))
}

func metaUint(meta map[string]interface{}, key string) (uint, error) {
	v, ok := meta[key]
	if !ok {
		return 0, xerrors.Recoverablef("tool output is missing required field %q", key)
	}
	f, ok := v.(float64)
	if !ok || f < 0 {
		return 0, xerrors.Recoverablef("tool output field %q is not a non-negative number", key)
	}
	return uint(f), nil
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
