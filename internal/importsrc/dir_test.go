package importsrc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/config"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDirectorySourceNonRecursiveFindsTopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.graphml"), "a")
	writeFile(t, filepath.Join(dir, "nested", "b.graphml"), "b")

	src := newDirectorySource(config.ImportSourceSpec{Directory: dir, Pattern: "*.graphml", Format: "graphml"})
	if err := src.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := src.Candidates()
	if len(got) != 1 || filepath.Base(string(got[0])) != "a.graphml" {
		t.Errorf("Candidates() = %v, want just a.graphml", got)
	}
}

func TestDirectorySourceRecursiveWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.graphml"), "a")
	writeFile(t, filepath.Join(dir, "nested", "b.graphml"), "b")

	src := newDirectorySource(config.ImportSourceSpec{
		Directory: dir, Pattern: "*.graphml", Format: "graphml", Recursive: true,
	})
	if err := src.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	names := make([]string, 0, len(src.Candidates()))
	for _, c := range src.Candidates() {
		names = append(names, filepath.Base(string(c)))
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "a.graphml" || names[1] != "b.graphml" {
		t.Errorf("Candidates() = %v, want [a.graphml b.graphml]", names)
	}
}

func TestDirectorySourceDefaultPatternMatchesEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "whatever.dat"), "x")

	src := newDirectorySource(config.ImportSourceSpec{Directory: dir, Format: "graphml"})
	if err := src.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(src.Candidates()) != 1 {
		t.Errorf("Candidates() = %v, want one match under the default \"*\" pattern", src.Candidates())
	}
}

func TestDirectorySourceGetReadsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.graphml")
	writeFile(t, path, "graph-data")

	src := newDirectorySource(config.ImportSourceSpec{Directory: dir, Pattern: "*.graphml", Format: "graphml"})
	if err := src.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	rc, err := src.Get(context.Background(), src.Candidates()[0])
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "graph-data" {
		t.Errorf("Get content = %q, want %q", data, "graph-data")
	}
}

func TestDirectorySourceOpenMissingDirectoryFails(t *testing.T) {
	src := newDirectorySource(config.ImportSourceSpec{Directory: filepath.Join(t.TempDir(), "missing"), Format: "graphml"})
	if err := src.Open(context.Background()); err == nil {
		t.Errorf("Open on a missing directory should fail")
	}
}

func TestDirectorySourceNameFormatLayout(t *testing.T) {
	dir := t.TempDir()
	src := newDirectorySource(config.ImportSourceSpec{Directory: dir, Format: "dot", Layout: true})
	if src.Name() != dir {
		t.Errorf("Name() = %q, want %q", src.Name(), dir)
	}
	if src.Format() != "dot" {
		t.Errorf("Format() = %q, want %q", src.Format(), "dot")
	}
	if !src.Layout() {
		t.Errorf("Layout() = false, want true")
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}
