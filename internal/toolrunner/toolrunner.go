// Package toolrunner invokes the external graph/layout/property tools
// every pipeline stage depends on: generators, layout algorithms,
// interpolators, worseners, and property/metric extractors. Every
// invocation is wrapped in an OpenTelemetry span, runs under a timeout,
// and reports Recoverable errors for every failure mode a flaky external
// tool can produce, mirroring the original driver's
// Manager.call_graphstudy_tool. A Runner may optionally carry a
// ResultCache (see cache.go) that memoizes deterministic invocations in
// Redis.
package toolrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

var tracer = otel.Tracer("graphstudy/toolrunner")

// MetaStream selects which stream of a tool invocation carries its JSON
// meta output, mirroring call_graphstudy_tool's meta='stdout'/'stderr'.
type MetaStream int

const (
	MetaNone MetaStream = iota
	MetaStdout
	MetaStderr
)

// Options configures one tool invocation.
type Options struct {
	// Args is the full argv, Args[0] the executable.
	Args []string
	// Meta selects which stream, if any, carries JSON meta output.
	Meta MetaStream
	// Stdin, if non-nil, is piped to the subprocess.
	Stdin []byte
	// Deterministic sets MSC_RANDOM_SEED to a fixed all-zero seed so the
	// tool's internal randomness is reproducible.
	Deterministic bool
	// Timeout bounds how long the subprocess may run.
	Timeout time.Duration
}

// Result is the outcome of a successful invocation.
type Result struct {
	Meta           map[string]interface{}
	ElapsedSeconds float64
}

// PerformanceRecorder is implemented by the store to persist a
// ToolPerformance row after a successful invocation, without toolrunner
// importing the store package directly (which would be a cyclic
// dependency once the store starts invoking tools through stages).
type PerformanceRecorder interface {
	RecordToolPerformance(ctx context.Context, tool string, elapsedSeconds float64) error
}

// Runner invokes external tools.
type Runner struct {
	log      *logger.Logger
	recorder PerformanceRecorder
	cache    *ResultCache
}

// New builds a Runner. recorder may be nil, in which case elapsed time
// is simply not persisted (useful for tests and dry runs).
func New(log *logger.Logger, recorder PerformanceRecorder) *Runner {
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{log: log.With("component", "toolrunner"), recorder: recorder}
}

// WithCache attaches a ResultCache that memoizes deterministic
// invocations (see Options.Deterministic). Returns r for chaining at
// the construction site. A nil cache is accepted and simply disables
// memoization, matching New's "recorder may be nil" convention.
func (r *Runner) WithCache(cache *ResultCache) *Runner {
	r.cache = cache
	return r
}

const deterministicSeed = "000000000000000000000000000000000000000000000000" // 48 zero characters, as mandated

// Run invokes the tool described by opts and returns its parsed JSON
// meta output, if requested. Every failure mode — timeout, nonzero
// exit, unparseable output — is reported as a Recoverable error so
// calling stages can log it to the bad-log and continue with the next
// unit of work.
//
// When opts.Deterministic is set and a ResultCache is attached, the
// invocation is memoized: repeat calls with the same argv, stdin, and
// meta stream return the cached Result without spawning a subprocess.
// Non-deterministic invocations always run, since their whole point is
// that two calls need not agree.
func (r *Runner) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.Deterministic && r.cache != nil {
		return r.cache.Do(ctx, opts, func() (Result, error) { return r.runOnce(ctx, opts) })
	}
	return r.runOnce(ctx, opts)
}

func (r *Runner) runOnce(ctx context.Context, opts Options) (Result, error) {
	if len(opts.Args) == 0 {
		return Result{}, xerrors.Sanityf("toolrunner: empty argument list")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "toolrunner.Run",
		trace.WithAttributes(attribute.String("tool.program", filepath.Base(opts.Args[0]))),
	)
	defer span.End()

	cmd := exec.CommandContext(ctx, opts.Args[0], opts.Args[1:]...)
	cmd.Env = os.Environ()
	if opts.Deterministic {
		cmd.Env = append(cmd.Env, "MSC_RANDOM_SEED="+deterministicSeed)
	}
	if len(opts.Stdin) > 0 {
		cmd.Stdin = bytes.NewReader(opts.Stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("executing command", "argv", opts.Args)
	t0 := time.Now()
	err := cmd.Run()
	elapsed := time.Since(t0).Seconds()

	if ctx.Err() == context.DeadlineExceeded {
		r.log.Error("command did not complete before timeout", "timeout", opts.Timeout.Seconds())
		span.SetStatus(codes.Error, "timeout")
		return Result{}, xerrors.Recoverablef("external program was killed (timeout)")
	}
	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			r.log.Error("could not execute external program", "error", err)
			span.SetStatus(codes.Error, "exec failure")
			return Result{}, xerrors.WrapRecoverable(err, "external program could not be executed")
		}
		r.log.Error("external program exited with failure", "stderr", stderr.String())
		span.SetStatus(codes.Error, "nonzero exit")
		return Result{}, xerrors.Recoverablef("external program crashed: %v", err)
	}
	r.log.Debug("command completed", "elapsedSeconds", elapsed)
	if r.recorder != nil {
		if rerr := r.recorder.RecordToolPerformance(ctx, filepath.Base(opts.Args[0]), elapsed); rerr != nil {
			r.log.Warn("could not record tool performance", "error", rerr)
		}
	}

	result := Result{ElapsedSeconds: elapsed}
	var raw []byte
	switch opts.Meta {
	case MetaNone:
		return result, nil
	case MetaStdout:
		raw = stdout.Bytes()
	case MetaStderr:
		raw = stderr.Bytes()
	default:
		return Result{}, xerrors.Sanityf("toolrunner: unknown meta stream %v", opts.Meta)
	}
	if len(raw) == 0 {
		return Result{}, xerrors.Recoverablef("external tool produced no JSON output")
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(raw, &meta); err != nil {
		r.log.Error("cannot parse meta output of external tool as JSON", "error", err)
		span.SetStatus(codes.Error, "invalid json")
		return Result{}, xerrors.WrapRecoverable(err, "cannot parse meta output of external tool as JSON")
	}
	result.Meta = meta
	return result, nil
}
