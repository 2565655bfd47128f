// Command graphstudy drives the graph/layout/property generation
// pipeline, trains the discriminator model and its Huang baseline, and
// renders debug previews of stored layouts — the CLI counterpart to
// the original driver's single Python entry point, split here into
// subcommands the way the original's "graphstudy pipeline|train|..."
// argument dispatch worked.
package main

import (
	"fmt"
	"os"
)

var subcommands = map[string]func(args []string) error{
	"pipeline": runPipeline,
	"train":    runTrain,
	"preview":  runPreview,
	"stats":    runStats,
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	run, ok := subcommands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "graphstudy: unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err := run(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "graphstudy: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: graphstudy <pipeline|train|preview|stats> [flags]")
}
