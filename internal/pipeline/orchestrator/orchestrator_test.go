package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
)

func TestOrchestratorRunsStagesInDependencyOrder(t *testing.T) {
	var ran []string
	stages := []Stage{
		{Name: "b", Deps: []string{"a"}, Run: func(ctx context.Context) error {
			ran = append(ran, "b")
			return nil
		}},
		{Name: "a", Run: func(ctx context.Context) error {
			ran = append(ran, "a")
			return nil
		}},
	}
	o := New(logger.NewNop())
	results, err := o.Run(context.Background(), stages)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ran) != 2 || ran[0] != "a" || ran[1] != "b" {
		t.Errorf("ran = %v, want [a b]", ran)
	}
	for _, r := range results {
		if r.Err != nil || r.Skipped {
			t.Errorf("result for %q = %+v, want success", r.Name, r)
		}
	}
}

func TestOrchestratorStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var ranC bool
	stages := []Stage{
		{Name: "a", Run: func(ctx context.Context) error { return boom }},
		{Name: "b", Deps: []string{"a"}, Run: func(ctx context.Context) error {
			ranC = true
			return nil
		}},
	}
	o := New(logger.NewNop())
	results, err := o.Run(context.Background(), stages)
	if err == nil {
		t.Fatalf("Run should report the failing stage's error")
	}
	if ranC {
		t.Errorf("stage b should not run: it depends on the failed stage a")
	}
	if len(results) != 1 || results[0].Err == nil {
		t.Errorf("results = %+v, want one failed entry for stage a", results)
	}
}

func TestOrchestratorSkipsStageWithFailedDependency(t *testing.T) {
	boom := errors.New("boom")
	stages := []Stage{
		{Name: "a", Run: func(ctx context.Context) error { return nil }},
		{Name: "b", Deps: []string{"a"}, Run: func(ctx context.Context) error { return boom }},
		{Name: "c", Deps: []string{"b"}, Run: func(ctx context.Context) error {
			t.Errorf("stage c should never run")
			return nil
		}},
	}
	o := New(logger.NewNop())
	_, err := o.Run(context.Background(), stages)
	if err == nil {
		t.Fatalf("Run should fail when stage b fails")
	}
}

func TestOrchestratorRejectsInvalidGraph(t *testing.T) {
	stages := []Stage{{Name: "a", Deps: []string{"ghost"}, Run: func(ctx context.Context) error { return nil }}}
	o := New(logger.NewNop())
	_, err := o.Run(context.Background(), stages)
	if err == nil {
		t.Errorf("Run should reject a stage graph with an unknown dependency")
	}
}

func TestOrchestratorHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stages := []Stage{{Name: "a", Run: func(ctx context.Context) error {
		t.Errorf("stage should not run once the context is already canceled")
		return nil
	}}}
	o := New(logger.NewNop())
	_, err := o.Run(ctx, stages)
	if err == nil {
		t.Errorf("Run should report the context's cancellation as an error")
	}
}
