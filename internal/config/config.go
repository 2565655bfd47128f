package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Configuration is the fully-resolved set of pipeline knobs, assembled
// from the *.cfg/*.json files in a single directory with documented
// defaults filling in whatever is missing.
type Configuration struct {
	ConfigDir             string
	ImportSources         []ImportSourceSpec
	DesiredGraphs         []GraphDesire
	DesiredLayouts        map[enums.Layout]SizeSet
	DesiredLayInter       map[enums.LayInter][]float64
	DesiredLayWorse       map[enums.LayWorse][]float64
	DesiredPropertiesDisc map[enums.Property]SizeSet
	DesiredPropertiesCont map[enums.Property]SizeSet
	DesiredMetrics        map[enums.Metric]SizeSet
	Puncture              Puncture
}

// Load assembles a Configuration from configdir, logging a warning for
// any *.cfg file present that none of the known parsers claimed.
func Load(configdir string, log *logger.Logger) (*Configuration, error) {
	if log == nil {
		log = logger.NewNop()
	}
	cfg := &Configuration{ConfigDir: configdir}
	var claimed []string

	loadCfg := func(basename string, parse func(r *Reader) error, useDefault func()) error {
		path := filepath.Join(configdir, basename)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			useDefault()
			return nil
		}
		if err != nil {
			return xerrors.WrapFatal(err, "opening %s", path)
		}
		defer f.Close()
		claimed = append(claimed, path)
		log.Info("reading configuration file", "path", basename)
		r := NewReader(f, path)
		return parse(r)
	}

	if err := loadImportsFile(configdir, cfg, log); err != nil {
		return nil, err
	}

	if err := loadCfg("graphs.cfg", func(r *Reader) error {
		v, err := ParseGraphs(r)
		if err != nil {
			return err
		}
		cfg.DesiredGraphs = v
		return nil
	}, func() { cfg.DesiredGraphs = DefaultGraphs() }); err != nil {
		return nil, err
	}

	if err := loadCfg("layouts.cfg", func(r *Reader) error {
		v, err := ParseLayouts(r)
		if err != nil {
			return err
		}
		cfg.DesiredLayouts = v
		return nil
	}, func() { cfg.DesiredLayouts = DefaultLayouts() }); err != nil {
		return nil, err
	}

	if err := loadCfg("interpolation.cfg", func(r *Reader) error {
		v, err := ParseLayInter(r)
		if err != nil {
			return err
		}
		cfg.DesiredLayInter = v
		return nil
	}, func() { cfg.DesiredLayInter = DefaultLayInter() }); err != nil {
		return nil, err
	}

	if err := loadCfg("worsening.cfg", func(r *Reader) error {
		v, err := ParseLayWorse(r)
		if err != nil {
			return err
		}
		cfg.DesiredLayWorse = v
		return nil
	}, func() { cfg.DesiredLayWorse = DefaultLayWorse() }); err != nil {
		return nil, err
	}

	if err := loadCfg("properties-disc.cfg", func(r *Reader) error {
		v, err := ParseProperties(r)
		if err != nil {
			return err
		}
		cfg.DesiredPropertiesDisc = v
		return nil
	}, func() { cfg.DesiredPropertiesDisc = DefaultPropertiesDisc() }); err != nil {
		return nil, err
	}

	if err := loadCfg("properties-cont.cfg", func(r *Reader) error {
		v, err := ParseProperties(r)
		if err != nil {
			return err
		}
		cfg.DesiredPropertiesCont = v
		return nil
	}, func() { cfg.DesiredPropertiesCont = DefaultPropertiesCont() }); err != nil {
		return nil, err
	}

	if err := loadCfg("puncture.cfg", func(r *Reader) error {
		v, err := ParsePuncture(r)
		if err != nil {
			return err
		}
		cfg.Puncture = v
		return nil
	}, func() { cfg.Puncture = DefaultPuncture() }); err != nil {
		return nil, err
	}

	if err := loadCfg("metrics.cfg", func(r *Reader) error {
		v, err := ParseMetrics(r)
		if err != nil {
			return err
		}
		cfg.DesiredMetrics = v
		return nil
	}, func() { cfg.DesiredMetrics = DefaultMetrics() }); err != nil {
		return nil, err
	}

	warnUnclaimed(configdir, claimed, log)

	if err := cfg.checkPunctureEnv("MSC_PUNCTURE", log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// checkPunctureEnv cross-checks the puncture.cfg contents against the
// MSC_PUNCTURE environment variable, which a batch driver sets to the
// number of properties it expects to be punctured as a sanity check
// against stale configuration.
func (c *Configuration) checkPunctureEnv(envvar string, log *logger.Logger) error {
	envval := os.Getenv(envvar)
	if envval == "" {
		log.Warn("environment variable is not set; cannot check punctures", "envvar", envvar)
		return nil
	}
	n, err := strconv.Atoi(envval)
	if err != nil {
		log.Warn("ignoring bogus value of environment variable", "envvar", envvar, "value", envval)
		return nil
	}
	log.Info("checking punctured property count", "envvar", envvar, "expected", n)
	if n != c.Puncture.Len() {
		return xerrors.Sanityf("expected %d punctured properties but found %d", n, c.Puncture.Len())
	}
	return nil
}

// loadImportsFile reads imports.json directly, since its grammar is JSON
// rather than the shared comment-stripped line syntax the rest of the
// configuration directory uses.
func loadImportsFile(configdir string, cfg *Configuration, log *logger.Logger) error {
	path := filepath.Join(configdir, "imports.json")
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		cfg.ImportSources = DefaultImports()
		return nil
	}
	if err != nil {
		return xerrors.WrapFatal(err, "opening %s", path)
	}
	defer f.Close()
	log.Info("reading configuration file", "path", "imports.json")
	specs, err := ParseImports(f, path)
	if err != nil {
		return err
	}
	cfg.ImportSources = specs
	return nil
}

func warnUnclaimed(configdir string, claimed []string, log *logger.Logger) {
	entries, err := os.ReadDir(configdir)
	if err != nil {
		return
	}
	claimedSet := make(map[string]struct{}, len(claimed))
	for _, c := range claimed {
		claimedSet[filepath.Base(c)] = struct{}{}
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".cfg" {
			continue
		}
		if _, ok := claimedSet[e.Name()]; !ok {
			log.Warn(fmt.Sprintf("unrecognized configuration file %q", e.Name()))
		}
	}
}
