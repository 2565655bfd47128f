package properties

import (
	"compress/gzip"
	"encoding/xml"
	"os"

	"github.com/katalvlaran/lvlath/graph"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// graphmlDocument is the minimal subset of the GraphML schema this
// package needs: node identities and edge endpoints, nothing else. The
// graph generator/import tools are the ones that care about attributes,
// styles, and the rest of the schema.
type graphmlDocument struct {
	XMLName xml.Name `xml:"graphml"`
	Graphs  []struct {
		Nodes []struct {
			ID string `xml:"id,attr"`
		} `xml:"node"`
		Edges []struct {
			Source string `xml:"source,attr"`
			Target string `xml:"target,attr"`
		} `xml:"edge"`
	} `xml:"graph"`
}

// loadStructuralGraph reconstructs the undirected, unweighted graph
// stored at path (a gzip-compressed GraphML document, spec.md §3's
// Graph.File) as an in-memory lvlath graph.Graph.
func loadStructuralGraph(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "opening graph file %s", path)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, xerrors.WrapRecoverable(err, "decompressing graph file %s", path)
	}
	defer gz.Close()

	var doc graphmlDocument
	if err := xml.NewDecoder(gz).Decode(&doc); err != nil {
		return nil, xerrors.WrapRecoverable(err, "parsing graph file %s as GraphML", path)
	}

	g := graph.NewGraph(false, false)
	for _, gm := range doc.Graphs {
		for _, n := range gm.Nodes {
			g.AddVertex(&graph.Vertex{ID: n.ID, Metadata: map[string]interface{}{}})
		}
		for _, e := range gm.Edges {
			g.AddEdge(e.Source, e.Target, 1)
		}
	}
	return g, nil
}

// structuralDiameter computes the graph's diameter — the longest
// shortest path between any two vertices — by running a BFS
// eccentricity scan from every vertex and taking the global maximum,
// mirroring how the Huang-style property extractors derive "diameter"
// from the graph's actual topology rather than trusting an externally
// reported value.
func structuralDiameter(path string) (float64, error) {
	g, err := loadStructuralGraph(path)
	if err != nil {
		return 0, err
	}
	var maxDepth int
	for id := range g.VerticesMap() {
		res, err := g.BFS(id, nil)
		if err != nil {
			return 0, xerrors.WrapRecoverable(err, "computing eccentricity of vertex %s", id)
		}
		for _, d := range res.Depth {
			if d > maxDepth {
				maxDepth = d
			}
		}
	}
	return float64(maxDepth), nil
}
