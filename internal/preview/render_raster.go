package preview

import (
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// PNGOptions configures RenderPNG.
type PNGOptions struct {
	Width, Height int
	NodeRadius    float64
}

func (o PNGOptions) withDefaults() PNGOptions {
	if o.Width == 0 {
		o.Width = 640
	}
	if o.Height == 0 {
		o.Height = 480
	}
	if o.NodeRadius == 0 {
		o.NodeRadius = 2.5
	}
	return o
}

// RenderPNG rasterizes a Picture the same way RenderSVG draws it, then
// overlays the identity/axis legend with freetype-rendered text (the
// SVG rendering can rely on the viewer's own font rendering for its
// <text> elements; a raster image has to bake the glyphs in itself).
func RenderPNG(p *Picture, w io.Writer, opts PNGOptions) error {
	opts = opts.withDefaults()
	minX, minY, maxX, maxY := p.bounds()
	proj := newProjection(minX, minY, maxX, maxY, opts.Width, opts.Height, 20)

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(color.White)
	dc.Clear()

	dc.SetRGB(0.6, 0.6, 0.6)
	dc.SetLineWidth(1)
	for _, e := range p.Edges {
		if e.From < 0 || e.From >= len(p.Nodes) || e.To < 0 || e.To >= len(p.Nodes) {
			continue
		}
		x1, y1 := proj.project(p.Nodes[e.From])
		x2, y2 := proj.project(p.Nodes[e.To])
		dc.DrawLine(float64(x1), float64(y1), float64(x2), float64(y2))
		dc.Stroke()
	}

	dc.SetRGB(0.13, 0.13, 0.13)
	for _, n := range p.Nodes {
		x, y := proj.project(n)
		dc.DrawCircle(float64(x), float64(y), opts.NodeRadius)
		dc.Fill()
	}

	drawAxisRaster(dc, proj, p.Major, 0.8, 0.13, 0.13)
	drawAxisRaster(dc, proj, p.Minor, 0.13, 0.13, 0.8)

	img := dc.Image().(*image.RGBA)
	if err := drawLegend(img, p.legendLines()); err != nil {
		return err
	}

	return png.Encode(w, img)
}

func drawAxisRaster(dc *gg.Context, proj projection, axis *Axis, r, g, b float64) {
	if axis == nil {
		return
	}
	cx, cy := proj.centroidPixel()
	ex, ey := proj.projectVector(axis.X, axis.Y)
	dc.SetRGB(r, g, b)
	dc.SetLineWidth(2)
	dc.DrawLine(float64(cx), float64(cy), float64(ex), float64(ey))
	dc.Stroke()
}

// drawLegend burns the identity/axis text block into the image's
// top-left corner using freetype directly, rather than gg's own font
// helper, so the raster legend is drawn through the same
// truetype-rasterization path the original driver's external tools
// would have used for axis labels.
func drawLegend(img *image.RGBA, lines []string) error {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	const size = 11.0
	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(font)
	ctx.SetFontSize(size)
	ctx.SetClip(img.Bounds())
	ctx.SetDst(img)
	ctx.SetSrc(image.NewUniform(color.Black))

	lineHeight := int(size * 1.4)
	for i, line := range lines {
		pt := freetype.Pt(8, 14+lineHeight*i)
		if _, err := ctx.DrawString(line, pt); err != nil {
			return err
		}
	}
	return nil
}
