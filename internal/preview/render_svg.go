package preview

import (
	"io"

	svg "github.com/ajstarks/svgo"
)

// SVGOptions configures RenderSVG.
type SVGOptions struct {
	Width, Height int
	NodeRadius    int
}

func (o SVGOptions) withDefaults() SVGOptions {
	if o.Width == 0 {
		o.Width = 640
	}
	if o.Height == 0 {
		o.Height = 480
	}
	if o.NodeRadius == 0 {
		o.NodeRadius = 3
	}
	return o
}

// RenderSVG draws a Picture to w as a standalone SVG document: edges
// as thin grey lines, nodes as filled black circles, the major/minor
// axes as arrows from the centroid, and the identity legend in the
// top-left corner.
func RenderSVG(p *Picture, w io.Writer, opts SVGOptions) error {
	opts = opts.withDefaults()
	minX, minY, maxX, maxY := p.bounds()
	proj := newProjection(minX, minY, maxX, maxY, opts.Width, opts.Height, 20)

	canvas := svg.New(w)
	canvas.Start(opts.Width, opts.Height)
	canvas.Rect(0, 0, opts.Width, opts.Height, "fill:white")

	for _, e := range p.Edges {
		if e.From < 0 || e.From >= len(p.Nodes) || e.To < 0 || e.To >= len(p.Nodes) {
			continue
		}
		x1, y1 := proj.project(p.Nodes[e.From])
		x2, y2 := proj.project(p.Nodes[e.To])
		canvas.Line(x1, y1, x2, y2, "stroke:#999999;stroke-width:1")
	}
	for _, n := range p.Nodes {
		x, y := proj.project(n)
		canvas.Circle(x, y, opts.NodeRadius, "fill:#222222")
	}

	drawAxisSVG(canvas, proj, p.Major, "#cc2222")
	drawAxisSVG(canvas, proj, p.Minor, "#2222cc")

	for i, line := range p.legendLines() {
		canvas.Text(8, 16+14*i, line, "font-family:monospace;font-size:11px;fill:#000000")
	}

	canvas.End()
	return nil
}

func drawAxisSVG(canvas *svg.SVG, proj projection, axis *Axis, color string) {
	if axis == nil {
		return
	}
	cx, cy := proj.centroidPixel()
	ex, ey := proj.projectVector(axis.X, axis.Y)
	canvas.Line(cx, cy, ex, ey, "stroke:"+color+";stroke-width:2")
}
