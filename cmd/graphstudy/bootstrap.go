package main

import (
	"flag"

	"github.com/5gon12eder/graphstudy-go/internal/badlog"
	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/toolrunner"
)

// commonOptions are the flags every subcommand needs to locate the data
// store, its configuration, and the external tool binaries.
type commonOptions struct {
	dataDir   string
	configDir string
	toolsDir  string
	badLog    string
	backend   string
	create    bool
	dev       bool
}

// registerCommon adds the shared flags to fs, defaulting each from its
// MSC_-prefixed environment variable exactly as the rest of this module
// resolves its knobs.
func registerCommon(fs *flag.FlagSet) *commonOptions {
	o := &commonOptions{}
	fs.StringVar(&o.dataDir, "data-dir", getEnv("MSC_DATA_DIR", "data"), "root of the graphstudy data store")
	fs.StringVar(&o.configDir, "config-dir", getEnv("MSC_CONFIG_DIR", "config"), "directory of *.cfg configuration files")
	fs.StringVar(&o.toolsDir, "tools-dir", getEnv("MSC_TOOLS_DIR", ""), "directory the external graphstudy tool binaries live under")
	fs.StringVar(&o.badLog, "bad-log", getEnv("MSC_BAD_LOG", "bad.log"), "file recording units of work every stage has given up on")
	fs.StringVar(&o.backend, "backend", getEnv("MSC_STORE_BACKEND", "sqlite"), "store backend: sqlite or postgres")
	fs.BoolVar(&o.create, "create", false, "create the data directory if it does not already exist")
	fs.BoolVar(&o.dev, "dev", false, "use human-readable development logging instead of JSON")
	return o
}

// logger builds this invocation's Logger.
func (o *commonOptions) logger() *logger.Logger {
	mode := logger.Production
	if o.dev {
		mode = logger.Development
	}
	return logger.New(mode)
}

// open wires up the store, configuration, tool runner, and bad-log
// together, the same four collaborators every pipeline stage
// constructor takes.
func (o *commonOptions) open(log *logger.Logger) (*store.Store, *config.Configuration, *toolrunner.Runner, *badlog.Log, error) {
	backend := store.SQLite
	if o.backend == "postgres" {
		backend = store.Postgres
	}
	st, err := store.Open(o.dataDir, store.OpenOptions{Backend: backend, Create: o.create}, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cfg, err := config.Load(o.configDir, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	runner := toolrunner.New(log, st)
	cache, err := toolrunner.NewResultCacheFromEnv(log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	runner.WithCache(cache)
	bl, err := badlog.Open(o.badLog, false, log)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return st, cfg, runner, bl, nil
}
