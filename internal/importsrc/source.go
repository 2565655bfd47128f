// Package importsrc implements the external archive sources the graphs
// stage draws from for import-kind generators: a local directory walk,
// a downloaded tarball, a plain URL list, or a GCS prefix. Every source
// presents the same iterate-then-get shape as the original driver's
// ImportSource hierarchy.
package importsrc

import (
	"context"
	"io"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Candidate identifies one member of a Source: a file path, a tar
// header name, a URL, or a GCS object name, depending on the Source's
// kind.
type Candidate string

// Source enumerates and fetches the raw archive members an import
// generator reads graphs from.
type Source interface {
	// Name identifies this source for logging, e.g. a directory path or
	// archive URL.
	Name() string
	// Open indexes the source's members. Callers must call Close when
	// done.
	Open(ctx context.Context) error
	// Close releases any resources Open acquired.
	Close() error
	// Candidates lists every member found by Open.
	Candidates() []Candidate
	// Get opens one candidate for reading. Callers must close the
	// returned reader.
	Get(ctx context.Context, c Candidate) (io.ReadCloser, error)
	// Format is the graph file format the caller should parse members
	// as (e.g. "graphml", "dot"), taken from the configuration.
	Format() string
	// Layout reports whether members also carry layout (coordinate)
	// information to import alongside the graph structure.
	Layout() bool
}

// FromSpec builds the concrete Source described by spec.
func FromSpec(spec config.ImportSourceSpec, log *logger.Logger) (Source, error) {
	switch spec.Kind {
	case "dir":
		return newDirectorySource(spec), nil
	case "tar":
		return newTarSource(spec, log), nil
	case "url":
		return newURLSource(spec, log), nil
	case "gcs":
		return newGCSSource(spec, log), nil
	default:
		return nil, xerrors.Configf("importsrc: unrecognized kind %q", spec.Kind)
	}
}
