package toolrunner

import (
	"context"
	"testing"
	"time"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

func TestRunRejectsEmptyArgs(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Run(context.Background(), Options{})
	if !xerrors.Is(err, xerrors.Sanity) {
		t.Errorf("Run with no args should fail Sanity, got %v", err)
	}
}

func TestRunCapturesStdoutMeta(t *testing.T) {
	r := New(nil, nil)
	result, err := r.Run(context.Background(), Options{
		Args: []string{"/bin/sh", "-c", `echo '{"nodes": 4, "edges": 3}'`},
		Meta: MetaStdout,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Meta["nodes"] != float64(4) {
		t.Errorf("Run result meta = %v, want nodes=4", result.Meta)
	}
	if result.ElapsedSeconds < 0 {
		t.Errorf("ElapsedSeconds = %v, want non-negative", result.ElapsedSeconds)
	}
}

func TestRunCapturesStderrMeta(t *testing.T) {
	r := New(nil, nil)
	result, err := r.Run(context.Background(), Options{
		Args: []string{"/bin/sh", "-c", `echo '{"ok": true}' 1>&2`},
		Meta: MetaStderr,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Meta["ok"] != true {
		t.Errorf("Run result meta = %v, want ok=true", result.Meta)
	}
}

func TestRunWithoutMetaIgnoresOutput(t *testing.T) {
	r := New(nil, nil)
	result, err := r.Run(context.Background(), Options{
		Args: []string{"/bin/sh", "-c", "echo not json"},
		Meta: MetaNone,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Meta != nil {
		t.Errorf("Run without Meta requested should leave Meta nil, got %v", result.Meta)
	}
}

func TestRunReportsNonzeroExitAsRecoverable(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Run(context.Background(), Options{Args: []string{"/bin/sh", "-c", "exit 1"}})
	if !xerrors.Is(err, xerrors.Recoverable) {
		t.Errorf("a crashing tool should fail Recoverable, got %v", err)
	}
}

func TestRunReportsMissingExecutableAsRecoverable(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Run(context.Background(), Options{Args: []string{"/no/such/program/anywhere"}})
	if !xerrors.Is(err, xerrors.Recoverable) {
		t.Errorf("a missing executable should fail Recoverable, got %v", err)
	}
}

func TestRunReportsUnparsableMetaAsRecoverable(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Run(context.Background(), Options{
		Args: []string{"/bin/sh", "-c", "echo not json at all"},
		Meta: MetaStdout,
	})
	if !xerrors.Is(err, xerrors.Recoverable) {
		t.Errorf("unparsable JSON meta should fail Recoverable, got %v", err)
	}
}

func TestRunReportsEmptyMetaStreamAsRecoverable(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Run(context.Background(), Options{
		Args: []string{"/bin/sh", "-c", "true"},
		Meta: MetaStdout,
	})
	if !xerrors.Is(err, xerrors.Recoverable) {
		t.Errorf("an empty meta stream should fail Recoverable, got %v", err)
	}
}

func TestRunTimesOutOnSlowCommand(t *testing.T) {
	r := New(nil, nil)
	_, err := r.Run(context.Background(), Options{
		Args:    []string{"/bin/sh", "-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if !xerrors.Is(err, xerrors.Recoverable) {
		t.Errorf("a command exceeding its timeout should fail Recoverable, got %v", err)
	}
}

func TestRunSetsDeterministicSeedEnv(t *testing.T) {
	r := New(nil, nil)
	result, err := r.Run(context.Background(), Options{
		Args:          []string{"/bin/sh", "-c", `printf '{"seed": "%s"}' "$MSC_RANDOM_SEED"`},
		Meta:          MetaStdout,
		Deterministic: true,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Meta["seed"] != deterministicSeed {
		t.Errorf("MSC_RANDOM_SEED in subprocess = %v, want %q", result.Meta["seed"], deterministicSeed)
	}
}

type countingRecorder struct {
	calls int
	tool  string
}

func (c *countingRecorder) RecordToolPerformance(ctx context.Context, tool string, elapsedSeconds float64) error {
	c.calls++
	c.tool = tool
	return nil
}

func TestRunRecordsPerformanceOnSuccess(t *testing.T) {
	rec := &countingRecorder{}
	r := New(nil, rec)
	_, err := r.Run(context.Background(), Options{Args: []string{"/bin/sh", "-c", "true"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.calls != 1 || rec.tool != "sh" {
		t.Errorf("recorder called %d times with tool %q, want 1 call with \"sh\"", rec.calls, rec.tool)
	}
}
