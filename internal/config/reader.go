// Package config loads the pipeline's plain-text and JSON configuration
// files: which generators/sizes to grow, which layouts to compute, which
// interpolation and worsening rates to apply, which properties and
// metrics to measure, which properties to puncture, and which external
// archives to import from. Every parser tolerates a missing file by
// falling back to a documented default, matching the original driver's
// per-concern _Config subclasses.
package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Reader strips comments (everything from the first '#' to end of line;
// there is no escape for a literal '#') and blank lines from an underlying stream, handing callers one
// logical configuration line at a time while tracking line numbers for
// diagnostics.
type Reader struct {
	scanner  *bufio.Scanner
	filename string
	lineno   int
}

// NewReader wraps r. filename is used only in error messages; pass "" for
// an anonymous stream.
func NewReader(r io.Reader, filename string) *Reader {
	if filename == "" {
		filename = "/dev/stdin"
	}
	return &Reader{scanner: bufio.NewScanner(r), filename: filename}
}

// Next returns the next non-blank, comment-stripped line, or ok=false at
// end of stream.
func (r *Reader) Next() (string, bool) {
	for r.scanner.Scan() {
		r.lineno++
		raw := r.scanner.Text()
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

// Failuref builds a Config-kind error prefixed with the current file and
// line number, the way the original driver's ConfigReader.failure did.
func (r *Reader) Failuref(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return xerrors.Configf("%s:%d: %s", r.filename, r.lineno, msg)
}

// Err reports any error encountered by the underlying bufio.Scanner.
func (r *Reader) Err() error {
	if err := r.scanner.Err(); err != nil {
		return xerrors.WrapConfig(err, "reading %s", r.filename)
	}
	return nil
}
