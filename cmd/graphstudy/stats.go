package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/5gon12eder/graphstudy-go/internal/store"
)

// runStats prints a per-tool summary of every recorded subprocess
// invocation's elapsed time — the observability data spec.md §4.1
// requires every successful tool call to leave behind, aggregated the
// way an operator actually wants to read it: one row per distinct
// tool, not one row per invocation.
func runStats(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	common := registerCommon(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	log := common.logger()
	st, _, _, _, err := common.open(log)
	if err != nil {
		return err
	}

	rows, err := store.Select[store.ToolPerformance](context.Background(), st.DB(), nil)
	if err != nil {
		return err
	}

	type aggregate struct {
		tool         string
		count        int
		totalSeconds float64
		minSeconds   float64
		maxSeconds   float64
	}
	byTool := map[string]*aggregate{}
	for _, r := range rows {
		a, ok := byTool[r.Tool]
		if !ok {
			a = &aggregate{tool: r.Tool, minSeconds: r.ElapsedSeconds, maxSeconds: r.ElapsedSeconds}
			byTool[r.Tool] = a
		}
		a.count++
		a.totalSeconds += r.ElapsedSeconds
		if r.ElapsedSeconds < a.minSeconds {
			a.minSeconds = r.ElapsedSeconds
		}
		if r.ElapsedSeconds > a.maxSeconds {
			a.maxSeconds = r.ElapsedSeconds
		}
	}

	aggregates := make([]*aggregate, 0, len(byTool))
	for _, a := range byTool {
		aggregates = append(aggregates, a)
	}
	sort.Slice(aggregates, func(i, j int) bool { return aggregates[i].tool < aggregates[j].tool })

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"tool", "calls", "total (s)", "mean (s)", "min (s)", "max (s)"})
	for _, a := range aggregates {
		mean := a.totalSeconds / float64(a.count)
		t.AppendRow(table.Row{a.tool, a.count, fmtSeconds(a.totalSeconds), fmtSeconds(mean), fmtSeconds(a.minSeconds), fmtSeconds(a.maxSeconds)})
	}
	t.Render()
	return nil
}

func fmtSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
