package importsrc

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// urlSource reads a flat list of graph-archive URLs (one per line, blank
// lines and "#"-comments ignored) from spec.URL and fetches each member
// on demand, optionally caching it under spec.Cache.
type urlSource struct {
	listURL string
	cache   string
	format  string
	layout  bool
	log     *logger.Logger

	candidates []Candidate
}

func newURLSource(spec config.ImportSourceSpec, log *logger.Logger) *urlSource {
	return &urlSource{
		listURL: spec.URL,
		cache:   spec.Cache,
		format:  spec.Format,
		layout:  spec.Layout,
		log:     log,
	}
}

func (s *urlSource) Name() string            { return s.listURL }
func (s *urlSource) Format() string          { return s.format }
func (s *urlSource) Layout() bool            { return s.layout }
func (s *urlSource) Candidates() []Candidate { return s.candidates }
func (s *urlSource) Close() error            { return nil }

func (s *urlSource) Open(ctx context.Context) error {
	body, err := s.fetch(ctx, s.listURL)
	if err != nil {
		return err
	}
	defer body.Close()
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s.candidates = append(s.candidates, Candidate(line))
	}
	if err := scanner.Err(); err != nil {
		return xerrors.WrapRecoverable(err, "reading URL list %s", s.listURL)
	}
	return nil
}

func (s *urlSource) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "building request for %s", url)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "downloading %s", url)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, xerrors.Recoverablef("downloading %s: status %s", url, resp.Status)
	}
	return resp.Body, nil
}

func (s *urlSource) Get(ctx context.Context, c Candidate) (io.ReadCloser, error) {
	url := string(c)
	if s.cache == "" {
		return s.fetch(ctx, url)
	}
	cachePath := filepath.Join(s.cache, cacheKey(url))
	if f, err := os.Open(cachePath); err == nil {
		return f, nil
	}
	body, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	if err := os.MkdirAll(s.cache, 0o755); err != nil {
		return nil, xerrors.WrapFatal(err, "creating cache directory %s", s.cache)
	}
	f, err := os.Create(cachePath)
	if err != nil {
		return nil, xerrors.WrapFatal(err, "creating cache file %s", cachePath)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return nil, xerrors.WrapRecoverable(err, "caching %s", url)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, xerrors.WrapFatal(err, "seeking cache file %s", cachePath)
	}
	return f, nil
}

func cacheKey(url string) string {
	name := filepath.Base(url)
	if name == "" || name == "." || name == "/" {
		name = "item"
	}
	return name
}
