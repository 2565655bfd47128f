package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// tagFileName marks a directory as a graphstudy data root, the way the
// original driver's Manager.__enter__ used a DATADIR.TAG file to refuse
// operating on an arbitrary directory that merely happens to exist.
const tagFileName = "DATADIR.TAG"

// Store wraps a single *gorm.DB plus the file tree rooted at DataDir.
type Store struct {
	db      *gorm.DB
	DataDir string
	log     *logger.Logger
}

// Backend selects which SQL engine Open connects to.
type Backend int

const (
	SQLite Backend = iota
	Postgres
)

// OpenOptions configures Open.
type OpenOptions struct {
	Backend Backend
	// Create, when true, creates DataDir and its tag file if missing.
	// When false, a missing tag file is Fatal: the directory either
	// isn't a data root or was never properly initialized.
	Create bool
}

// Open connects to the store rooted at dataDir, enforcing the
// DATADIR.TAG convention, and returns a ready-to-use Store with the
// schema migrated.
func Open(dataDir string, opts OpenOptions, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNop()
	}
	tagPath := filepath.Join(dataDir, tagFileName)
	if _, err := os.Stat(tagPath); os.IsNotExist(err) {
		if !opts.Create {
			return nil, xerrors.Fatalf("data directory %s is not tagged as a graphstudy data root (missing %s)", dataDir, tagFileName)
		}
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, xerrors.WrapFatal(err, "creating data directory %s", dataDir)
		}
		if err := os.WriteFile(tagPath, []byte("graphstudy data directory\n"), 0o644); err != nil {
			return nil, xerrors.WrapFatal(err, "writing tag file %s", tagPath)
		}
	} else if err != nil {
		return nil, xerrors.WrapFatal(err, "statting %s", tagPath)
	}

	gormLog := gormlogger.New(
		&gormWriter{log: log},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch opts.Backend {
	case Postgres:
		dialector = postgres.Open(postgresDSN(log))
	default:
		dbPath := filepath.Join(dataDir, "graphstudy.db")
		dialector = sqlite.Open(dbPath)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, xerrors.WrapFatal(err, "connecting to store database")
	}
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return nil, xerrors.WrapFatal(err, "migrating store schema")
	}
	for _, sub := range []string{"graphs", "layouts", "properties", "model"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0o755); err != nil {
			return nil, xerrors.WrapFatal(err, "creating %s directory", sub)
		}
	}
	return &Store{db: db, DataDir: dataDir, log: log.With("component", "store")}, nil
}

func postgresDSN(log *logger.Logger) string {
	get := func(key, dflt string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dflt
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		get("GRAPHSTUDY_POSTGRES_USER", "postgres"),
		get("GRAPHSTUDY_POSTGRES_PASSWORD", ""),
		get("GRAPHSTUDY_POSTGRES_HOST", "localhost"),
		get("GRAPHSTUDY_POSTGRES_PORT", "5432"),
		get("GRAPHSTUDY_POSTGRES_NAME", "graphstudy"),
	)
}

// gormWriter adapts *logger.Logger to gorm's Writer interface
// (gormlogger.New wants a Printf-shaped sink), so slow-query and error
// logs from GORM flow through the same structured logger as everything
// else.
type gormWriter struct {
	log *logger.Logger
}

func (w *gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warn(fmt.Sprintf(format, args...))
}

// DB exposes the underlying *gorm.DB for callers that need GORM's full
// query surface beyond the generic helpers in query.go.
func (s *Store) DB() *gorm.DB { return s.db }
