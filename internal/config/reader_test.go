package config

import (
	"strings"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

func TestReaderStripsCommentsAndBlankLines(t *testing.T) {
	r := NewReader(strings.NewReader("foo bar # trailing comment\n\n   \n# whole line\nbaz\n"), "test.cfg")
	line, ok := r.Next()
	if !ok || line != "foo bar" {
		t.Fatalf("Next() = (%q, %v), want (\"foo bar\", true)", line, ok)
	}
	line, ok = r.Next()
	if !ok || line != "baz" {
		t.Fatalf("Next() = (%q, %v), want (\"baz\", true)", line, ok)
	}
	if _, ok := r.Next(); ok {
		t.Errorf("Next() at end of stream should report false")
	}
}

func TestReaderFailurefIncludesFilenameAndLine(t *testing.T) {
	r := NewReader(strings.NewReader("one\ntwo\n"), "sizes.cfg")
	r.Next()
	r.Next()
	err := r.Failuref("bad token: %s", "xyz")
	if !xerrors.Is(err, xerrors.Config) {
		t.Errorf("Failuref should produce a Config-kind error, got %v", xerrors.KindOf(err))
	}
	msg := err.Error()
	if !strings.Contains(msg, "sizes.cfg:2") || !strings.Contains(msg, "bad token: xyz") {
		t.Errorf("Failuref message = %q, want it to mention the file:line and the formatted text", msg)
	}
}

func TestNewReaderDefaultsAnonymousFilename(t *testing.T) {
	r := NewReader(strings.NewReader("x\n"), "")
	r.Next()
	err := r.Failuref("oops")
	if !strings.Contains(err.Error(), "/dev/stdin") {
		t.Errorf("an empty filename should default to /dev/stdin, got %q", err.Error())
	}
}
