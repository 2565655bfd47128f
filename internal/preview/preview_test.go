package preview

import (
	"bytes"
	"strings"
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/idfp"
)

func samplePicture() *Picture {
	return &Picture{
		GraphID:  idfp.ID{1},
		LayoutID: idfp.ID{2},
		Nodes:    []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 5, Y: 8}},
		Edges:    []Edge{{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 0}},
		Major:    &Axis{X: 1, Y: 0},
		Minor:    &Axis{X: 0, Y: 0.5},
	}
}

func TestBoundsOfNonEmptyPicture(t *testing.T) {
	p := samplePicture()
	minX, minY, maxX, maxY := p.bounds()
	if minX != 0 || minY != 0 || maxX != 10 || maxY != 8 {
		t.Errorf("bounds = (%g,%g,%g,%g), want (0,0,10,8)", minX, minY, maxX, maxY)
	}
}

func TestBoundsOfEmptyPictureFallsBackToUnitSquare(t *testing.T) {
	p := &Picture{}
	minX, minY, maxX, maxY := p.bounds()
	if minX != 0 || minY != 0 || maxX != 1 || maxY != 1 {
		t.Errorf("bounds of empty picture = (%g,%g,%g,%g), want (0,0,1,1)", minX, minY, maxX, maxY)
	}
}

func TestLegendLinesIncludeAxesWhenPresent(t *testing.T) {
	p := samplePicture()
	lines := p.legendLines()
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "major") || !strings.Contains(joined, "minor") {
		t.Errorf("legend is missing axis lines: %v", lines)
	}
	if !strings.Contains(joined, "nodes  3") {
		t.Errorf("legend is missing node count: %v", lines)
	}
}

func TestLegendLinesOmitAxesWhenAbsent(t *testing.T) {
	p := &Picture{Nodes: []Point{{X: 0, Y: 0}}}
	lines := p.legendLines()
	for _, line := range lines {
		if strings.HasPrefix(line, "major") || strings.HasPrefix(line, "minor") {
			t.Errorf("legend should omit axis lines when unset, got %v", lines)
		}
	}
}

func TestRenderSVGProducesWellFormedDocument(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSVG(samplePicture(), &buf, SVGOptions{}); err != nil {
		t.Fatalf("RenderSVG failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Errorf("output does not look like an SVG document: %q", out[:minInt(len(out), 80)])
	}
	if !strings.Contains(out, "circle") {
		t.Errorf("output is missing node circles")
	}
}

func TestRenderPNGProducesPNGSignature(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(samplePicture(), &buf, PNGOptions{}); err != nil {
		t.Fatalf("RenderPNG failed: %v", err)
	}
	sig := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	if !bytes.HasPrefix(buf.Bytes(), sig) {
		t.Errorf("output does not start with the PNG signature")
	}
}

func TestProjectionKeepsPointsWithinCanvas(t *testing.T) {
	proj := newProjection(0, 0, 10, 8, 640, 480, 20)
	x, y := proj.project(Point{X: 10, Y: 8})
	if x < 0 || x > 640 || y < 0 || y > 480 {
		t.Errorf("projected point (%d,%d) escaped the canvas", x, y)
	}
	x0, y0 := proj.project(Point{X: 0, Y: 0})
	if x0 < 0 || x0 > 640 || y0 < 0 || y0 > 480 {
		t.Errorf("projected origin (%d,%d) escaped the canvas", x0, y0)
	}
}
