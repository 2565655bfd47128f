// Package orchestrator drives the pipeline stages (graphs, layouts,
// inter/worse, properties/metrics, features, corpus, model, baselines)
// in dependency order, strictly sequentially: one stage and, within it,
// one tool invocation at a time. There is no child-job polling here —
// unlike the teacher's DAG engine, distributed execution across
// processes is an explicit non-goal of this system, so a stage either
// runs to completion inline or the whole run aborts.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

var tracer = otel.Tracer("graphstudy/pipeline/orchestrator")

// Stage is one named unit of pipeline work. Deps names the stages that
// must have already succeeded before this one may run.
type Stage struct {
	Name string
	Deps []string
	Run  func(ctx context.Context) error
}

// Result records how long each stage took and, for a stage that failed,
// the error it returned.
type Result struct {
	Name     string
	Elapsed  time.Duration
	Err      error
	Skipped  bool
}

// Orchestrator runs a fixed stage list to completion or first failure.
type Orchestrator struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Orchestrator {
	return &Orchestrator{log: log}
}

// Run executes stages in dependency order. It returns as soon as any
// stage's Run returns a non-nil error (a stage's own loop is expected to
// have already swallowed every Recoverable failure internally; anything
// that escapes a stage here is Fatal/Sanity/Config and aborts the run),
// together with the per-stage timing collected so far.
func (o *Orchestrator) Run(ctx context.Context, stages []Stage) ([]Result, error) {
	order, err := validateDAG(stages)
	if err != nil {
		return nil, xerrors.WrapFatal(err, "invalid pipeline stage graph")
	}
	byName := make(map[string]Stage, len(stages))
	for _, s := range stages {
		byName[s.Name] = s
	}

	results := make([]Result, 0, len(stages))
	succeeded := map[string]bool{}

	for _, name := range order {
		def := byName[name]

		if ctx.Err() != nil {
			return results, xerrors.WrapRecoverable(ctx.Err(), "pipeline canceled before stage %q", name)
		}
		if !depsOK(def, succeeded) {
			o.log.Warn("skipping stage because a dependency did not complete", "stage", name)
			results = append(results, Result{Name: name, Skipped: true})
			continue
		}

		o.log.Info("starting stage", "stage", name)
		start := time.Now()

		stageCtx, span := tracer.Start(ctx, "pipeline.stage", trace.WithAttributes(attribute.String("stage.name", name)))
		runErr := def.Run(stageCtx)
		span.End()

		elapsed := time.Since(start)
		results = append(results, Result{Name: name, Elapsed: elapsed, Err: runErr})

		if runErr != nil {
			o.log.Error("stage failed", "stage", name, "error", runErr.Error(), "elapsed", elapsed.String())
			return results, fmt.Errorf("stage %q: %w", name, runErr)
		}
		o.log.Notice("stage completed", "stage", name, "elapsed", elapsed.String())
		succeeded[name] = true
	}
	return results, nil
}

func depsOK(def Stage, succeeded map[string]bool) bool {
	for _, dep := range def.Deps {
		if !succeeded[dep] {
			return false
		}
	}
	return true
}
