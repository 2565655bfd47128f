package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/5gon12eder/graphstudy-go/internal/pipeline/orchestrator"
	"github.com/5gon12eder/graphstudy-go/internal/pipeline/stages/graphs"
	"github.com/5gon12eder/graphstudy-go/internal/pipeline/stages/layouts"
	"github.com/5gon12eder/graphstudy-go/internal/pipeline/stages/properties"
	"github.com/5gon12eder/graphstudy-go/internal/store/neo4jmirror"
)

// runPipeline drives the full graph/layout/property/metric generation
// sweep: every stage runs at most once and strictly in dependency
// order, mirroring the original driver's single-threaded main loop.
func runPipeline(args []string) error {
	fs := flag.NewFlagSet("pipeline", flag.ExitOnError)
	common := registerCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := common.logger()
	st, cfg, runner, bl, err := common.open(log)
	if err != nil {
		return err
	}
	defer bl.Close()

	graphsStage := graphs.New(st, runner, cfg, common.toolsDir, log)
	layoutsStage := layouts.New(st, runner, bl, cfg, common.toolsDir, log)
	interStage := layouts.NewInter(st, runner, bl, cfg, common.toolsDir, log)
	worseStage := layouts.NewWorse(st, runner, bl, cfg, common.toolsDir, log)
	propertiesStage := properties.New(st, runner, bl, cfg, common.toolsDir, log)
	metricsStage := properties.NewMetrics(st, runner, bl, cfg, common.toolsDir, log)

	orch := orchestrator.New(log)
	results, runErr := orch.Run(context.Background(), []orchestrator.Stage{
		{Name: "graphs", Run: graphsStage.Run},
		{Name: "layouts", Deps: []string{"graphs"}, Run: layoutsStage.Run},
		{Name: "lay-inter", Deps: []string{"layouts"}, Run: interStage.Run},
		{Name: "lay-worse", Deps: []string{"layouts"}, Run: worseStage.Run},
		{Name: "properties", Deps: []string{"layouts", "lay-inter", "lay-worse"}, Run: propertiesStage.Run},
		{Name: "metrics", Deps: []string{"layouts", "lay-inter", "lay-worse"}, Run: metricsStage.Run},
	})

	printStageSummary(os.Stdout, results)
	if runErr != nil {
		return runErr
	}

	mirror, err := neo4jmirror.NewFromEnv(log)
	if err != nil {
		return err
	}
	if mirror != nil {
		defer mirror.Close(context.Background())
		if err := mirror.Rebuild(context.Background(), st); err != nil {
			return err
		}
	}
	return nil
}

func printStageSummary(w *os.File, results []orchestrator.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"stage", "status", "elapsed", "error"})
	for _, r := range results {
		switch {
		case r.Skipped:
			t.AppendRow(table.Row{r.Name, "skipped", "", ""})
		case r.Err != nil:
			t.AppendRow(table.Row{r.Name, "failed", r.Elapsed.String(), r.Err.Error()})
		default:
			t.AppendRow(table.Row{r.Name, "ok", r.Elapsed.String(), ""})
		}
	}
	fmt.Fprintln(w, t.Render())
}
