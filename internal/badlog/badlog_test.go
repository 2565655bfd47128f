package badlog

import (
	"path/filepath"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

func TestSetBadAndGetBadRoundTrip(t *testing.T) {
	l, err := Open("", false, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.SetBad(enums.ActionLayouts, "tool crashed", "graph1", enums.LayoutFMMM); err != nil {
		t.Fatalf("SetBad: %v", err)
	}
	msg, ok := l.GetBad(enums.ActionLayouts, "graph1", enums.LayoutFMMM)
	if !ok || msg != "tool crashed" {
		t.Errorf("GetBad = (%q, %v), want (\"tool crashed\", true)", msg, ok)
	}
	if _, ok := l.GetBad(enums.ActionLayouts, "graph2", enums.LayoutFMMM); ok {
		t.Errorf("GetBad for an unset key should report false")
	}
}

func TestSetBadRejectsEmptyMessage(t *testing.T) {
	l, _ := Open("", false, nil)
	if err := l.SetBad(enums.ActionGraphs, "", "x"); err == nil {
		t.Errorf("SetBad with an empty message should fail")
	}
}

func TestSetBadRejectsReadonly(t *testing.T) {
	l, _ := Open("", true, nil)
	if err := l.SetBad(enums.ActionGraphs, "nope", "x"); err == nil {
		t.Errorf("SetBad on a read-only log should fail")
	}
}

func TestNilLogBehavesEmpty(t *testing.T) {
	var l *Log
	if _, ok := l.GetBad(enums.ActionGraphs, "x"); ok {
		t.Errorf("nil log's GetBad should always report false")
	}
	if l.Count(enums.ActionGraphs) != 0 {
		t.Errorf("nil log's Count should be 0")
	}
	if l.Iterate(enums.ActionGraphs) != nil {
		t.Errorf("nil log's Iterate should be nil")
	}
	if err := l.Close(); err != nil {
		t.Errorf("nil log's Close should be a no-op, got %v", err)
	}
}

func TestCountAndIterate(t *testing.T) {
	l, _ := Open("", false, nil)
	l.SetBad(enums.ActionProperties, "m1", "a")
	l.SetBad(enums.ActionProperties, "m2", "b")
	if got := l.Count(enums.ActionProperties); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}
	entries := l.Iterate(enums.ActionProperties)
	if len(entries) != 2 {
		t.Errorf("Iterate() returned %d entries, want 2", len(entries))
	}
}

func TestCloseAndReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.log")

	l1, err := Open(path, false, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l1.SetBad(enums.ActionMetrics, "timed out", "graph7", enums.MetricStressKK); err != nil {
		t.Fatalf("SetBad: %v", err)
	}
	if err := l1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l2, err := Open(path, false, nil)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	msg, ok := l2.GetBad(enums.ActionMetrics, "graph7", enums.MetricStressKK)
	if !ok || msg != "timed out" {
		t.Errorf("after reopening, GetBad = (%q, %v), want (\"timed out\", true)", msg, ok)
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(filepath.Join(dir, "does-not-exist.log"), false, nil)
	if err != nil {
		t.Fatalf("Open on a missing file should succeed, got %v", err)
	}
	if l.Count(enums.ActionGraphs) != 0 {
		t.Errorf("a freshly-opened missing log should start empty")
	}
}
