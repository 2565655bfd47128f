package main

import (
	"context"
	"flag"
	"os"

	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/preview"
	"github.com/5gon12eder/graphstudy-go/internal/toolrunner"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// runPreview renders one layout's debug picture to a file, svg or png
// depending on the -format flag.
func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	common := registerCommon(fs)
	layoutFlag := fs.String("layout", "", "hex ID of the layout to render")
	format := fs.String("format", "svg", "output format: svg or png")
	output := fs.String("output", "", "output file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *layoutFlag == "" || *output == "" {
		return xerrors.Sanityf("preview: -layout and -output are both required")
	}
	layoutID, err := idfp.Parse(*layoutFlag)
	if err != nil {
		return xerrors.WrapSanity(err, "parsing -layout")
	}

	log := common.logger()
	st, _, _, _, err := common.open(log)
	if err != nil {
		return err
	}
	runner := toolrunner.New(log, st)
	renderer := preview.New(st, runner, common.toolsDir, log)

	pic, err := renderer.Load(context.Background(), layoutID)
	if err != nil {
		return err
	}

	f, err := os.Create(*output)
	if err != nil {
		return xerrors.WrapFatal(err, "creating %s", *output)
	}
	defer f.Close()

	switch *format {
	case "svg":
		return preview.RenderSVG(pic, f, preview.SVGOptions{})
	case "png":
		return preview.RenderPNG(pic, f, preview.PNGOptions{})
	default:
		return xerrors.Sanityf("preview: unknown -format %q (want svg or png)", *format)
	}
}
