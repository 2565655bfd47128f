package importsrc

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

type directorySource struct {
	directory  string
	pattern    string
	recursive  bool
	format     string
	layout     bool
	candidates []Candidate
}

func newDirectorySource(spec config.ImportSourceSpec) *directorySource {
	pattern := spec.Pattern
	if pattern == "" {
		pattern = "*"
	}
	return &directorySource{
		directory: os.ExpandEnv(spec.Directory),
		pattern:   pattern,
		recursive: spec.Recursive,
		format:    spec.Format,
		layout:    spec.Layout,
	}
}

func (s *directorySource) Name() string        { return s.directory }
func (s *directorySource) Format() string      { return s.format }
func (s *directorySource) Layout() bool        { return s.layout }
func (s *directorySource) Candidates() []Candidate { return s.candidates }

func (s *directorySource) Open(ctx context.Context) error {
	return s.scan(s.directory)
}

func (s *directorySource) scan(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return xerrors.WrapRecoverable(err, "cannot index local archive %s", s.directory)
	}
	for _, e := range entries {
		full := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if s.recursive {
				if err := s.scan(full); err != nil {
					return err
				}
			}
			continue
		}
		if ok, _ := filepath.Match(s.pattern, e.Name()); ok {
			s.candidates = append(s.candidates, Candidate(full))
		}
	}
	return nil
}

func (s *directorySource) Close() error { return nil }

func (s *directorySource) Get(ctx context.Context, c Candidate) (io.ReadCloser, error) {
	f, err := os.Open(string(c))
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "opening %s", c)
	}
	return f, nil
}
