// Package preview renders a quick, throwaway picture of a stored
// Layout: a debug aid for the integrity-check --repair report and for
// model-evaluation dumps, never the excluded full reporting UI. It
// shells out to the same "picture" family of external tools the
// original driver's picture-wrapper.py drives, asking for node
// positions (and, where the layout has one, the edge list) as JSON
// meta instead of a TikZ document, then draws the result itself.
package preview

import (
	"context"
	"fmt"

	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/toolrunner"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Point is one node's drawn position.
type Point struct {
	X, Y float64
}

// Edge is a pair of node indices into the Picture's Nodes slice.
type Edge struct {
	From, To int
}

// Axis is a principal-component direction, already scaled by its
// stdev, matching picture-wrapper.py's get_princomp.
type Axis struct {
	X, Y float64
}

// Picture is everything a renderer needs to draw one layout.
type Picture struct {
	GraphID idfp.ID
	LayoutID idfp.ID
	Nodes   []Point
	Edges   []Edge
	Major   *Axis
	Minor   *Axis
}

// Renderer fetches the node/edge geometry for a layout (via the
// "picture" tool) and its persisted principal-component axes (from
// the store), ready for RenderSVG/RenderPNG.
type Renderer struct {
	st       *store.Store
	runner   *toolrunner.Runner
	toolsDir string
	log      *logger.Logger
}

// New builds a Renderer.
func New(st *store.Store, runner *toolrunner.Runner, toolsDir string, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.NewNop()
	}
	return &Renderer{st: st, runner: runner, toolsDir: toolsDir, log: log.With("component", "preview")}
}

// Load fetches the Picture for a layout: queries the Layout and its
// graph, asks the picture tool for coordinates, and reads back any
// persisted MajorAxis/MinorAxis rows.
func (r *Renderer) Load(ctx context.Context, layoutID idfp.ID) (*Picture, error) {
	rows, err := store.Select[store.Layout](ctx, r.st.DB(), map[string]interface{}{"id": layoutID[:]})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, xerrors.Recoverablef("preview: no such layout %s", layoutID)
	}
	layout := rows[0]

	nodes, edges, err := r.fetchCoordinates(ctx, layout.File)
	if err != nil {
		return nil, err
	}

	pic := &Picture{GraphID: layout.GraphID, LayoutID: layout.ID, Nodes: nodes, Edges: edges}

	if majors, err := store.Select[store.MajorAxis](ctx, r.st.DB(), map[string]interface{}{"layout_id": layoutID[:]}); err != nil {
		return nil, err
	} else if len(majors) > 0 {
		pic.Major = &Axis{X: majors[0].X, Y: majors[0].Y}
	}
	if minors, err := store.Select[store.MinorAxis](ctx, r.st.DB(), map[string]interface{}{"layout_id": layoutID[:]}); err != nil {
		return nil, err
	} else if len(minors) > 0 {
		pic.Minor = &Axis{X: minors[0].X, Y: minors[0].Y}
	}
	return pic, nil
}

// fetchCoordinates invokes the "picture coords" tool against a layout
// file, parsing its meta JSON's "data" (one {x,y} object per node) and
// optional "edges" (pairs of node indices) fields.
func (r *Renderer) fetchCoordinates(ctx context.Context, layoutFile string) ([]Point, []Edge, error) {
	args := []string{r.toolPath("preview", "coords"), "--meta=STDIO", layoutFile}
	res, err := r.runner.Run(ctx, toolrunner.Options{Args: args, Meta: toolrunner.MetaStdout})
	if err != nil {
		return nil, nil, err
	}

	items, ok := res.Meta["data"].([]interface{})
	if !ok {
		return nil, nil, xerrors.Recoverablef("preview: tool output is missing required field %q", "data")
	}
	nodes := make([]Point, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]interface{})
		if !ok {
			return nil, nil, xerrors.Recoverablef("preview: %q entry is not an object", "data")
		}
		x, _ := item["x"].(float64)
		y, _ := item["y"].(float64)
		nodes = append(nodes, Point{X: x, Y: y})
	}

	var edges []Edge
	if raw, ok := res.Meta["edges"].([]interface{}); ok {
		edges = make([]Edge, 0, len(raw))
		for _, e := range raw {
			pair, ok := e.([]interface{})
			if !ok || len(pair) != 2 {
				continue
			}
			from, _ := pair[0].(float64)
			to, _ := pair[1].(float64)
			edges = append(edges, Edge{From: int(from), To: int(to)})
		}
	}
	return nodes, edges, nil
}

func (r *Renderer) toolPath(subdir, prog string) string {
	if r.toolsDir == "" {
		return prog
	}
	return r.toolsDir + "/" + subdir + "/" + prog
}

// bounds returns the axis-aligned bounding box of a Picture's nodes,
// falling back to a unit square when there are none.
func (p *Picture) bounds() (minX, minY, maxX, maxY float64) {
	if len(p.Nodes) == 0 {
		return 0, 0, 1, 1
	}
	minX, minY = p.Nodes[0].X, p.Nodes[0].Y
	maxX, maxY = minX, minY
	for _, n := range p.Nodes[1:] {
		minX, maxX = minOf(minX, n.X), maxOf(maxX, n.X)
		minY, maxY = minOf(minY, n.Y), maxOf(maxY, n.Y)
	}
	if minX == maxX {
		maxX = minX + 1
	}
	if minY == maxY {
		maxY = minY + 1
	}
	return
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// legendLines is the small text block every rendering drops in a
// corner: layout/graph identity plus the raw axis vectors, since
// neither is otherwise legible from the picture alone.
func (p *Picture) legendLines() []string {
	lines := []string{
		fmt.Sprintf("graph  %s", p.GraphID),
		fmt.Sprintf("layout %s", p.LayoutID),
		fmt.Sprintf("nodes  %d", len(p.Nodes)),
	}
	if p.Major != nil {
		lines = append(lines, fmt.Sprintf("major  (%.3f, %.3f)", p.Major.X, p.Major.Y))
	}
	if p.Minor != nil {
		lines = append(lines, fmt.Sprintf("minor  (%.3f, %.3f)", p.Minor.X, p.Minor.Y))
	}
	return lines
}
