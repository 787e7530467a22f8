// Package analysis combines planarity testing, layout, and biconnected
// decomposition into the single result shape the service returns. Analyze is
// a pure function of the graph: no shared state, no I/O, and identical output
// on every run.
package analysis

import (
	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/layout"
	"github.com/planview/planview/pkg/planar"
)

// NodeView is a node with its display position and label.
type NodeView struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

// EdgeView marks an edge and whether it belongs to the planarity obstruction.
type EdgeView struct {
	Source     string `json:"source"`
	Target     string `json:"target"`
	IsConflict bool   `json:"is_conflict"`
}

// Subgraph is one biconnected block, carrying the parent graph's positions,
// labels, and conflict marks for its members.
type Subgraph struct {
	ID    int        `json:"id"`
	Nodes []NodeView `json:"nodes"`
	Edges []EdgeView `json:"edges"`
}

// Result is the full analysis of one graph.
type Result struct {
	IsPlanar              bool                `json:"is_planar"`
	Nodes                 []NodeView          `json:"nodes"`
	Edges                 []EdgeView          `json:"edges"`
	Certificate           *planar.Certificate `json:"certificate"`
	BiconnectedComponents int                 `json:"biconnected_components"`
	BiconnectedSubgraphs  []Subgraph          `json:"biconnected_subgraphs"`
}

// Analyze decides planarity with a certificate, lays out the nodes, and
// decomposes the graph into biconnected blocks. Edges in the obstruction are
// flagged as conflicts; planar graphs have no conflicts. The only error
// condition is an internal invariant violation in the planarity machinery,
// reported as ANALYSIS_FAILED.
func Analyze(g *graph.Graph) (*Result, error) {
	isPlanar, cert, err := planar.Check(g)
	if err != nil {
		return nil, err
	}

	pos := layout.Positions(g, isPlanar)

	conflict := func(u, v string) bool {
		return cert.Obstruction != nil && cert.Obstruction.Contains(u, v)
	}
	nodeView := func(n graph.Node) NodeView {
		p := pos[n.ID]
		return NodeView{ID: n.ID, X: p.X, Y: p.Y, Label: n.DisplayLabel()}
	}
	edgeView := func(e graph.Edge) EdgeView {
		return EdgeView{Source: e.Source, Target: e.Target, IsConflict: conflict(e.Source, e.Target)}
	}

	res := &Result{
		IsPlanar:    isPlanar,
		Certificate: cert,
		Nodes:       make([]NodeView, 0, g.NodeCount()),
		Edges:       make([]EdgeView, 0, g.EdgeCount()),
	}
	for _, n := range g.Nodes() {
		res.Nodes = append(res.Nodes, nodeView(n))
	}
	for _, e := range g.Edges() {
		res.Edges = append(res.Edges, edgeView(e))
	}

	blocks := planar.BiconnectedComponents(g)
	res.BiconnectedComponents = len(blocks)
	res.BiconnectedSubgraphs = make([]Subgraph, 0, len(blocks))
	for i, b := range blocks {
		sub := Subgraph{
			ID:    i,
			Nodes: make([]NodeView, 0, len(b.Edges)+1),
			Edges: make([]EdgeView, 0, len(b.Edges)),
		}
		for _, id := range b.NodeIDs() {
			n, ok := g.Node(id)
			if !ok {
				return nil, errors.New(errors.ErrCodeAnalysisFailed, "biconnected block references unknown node %s", id)
			}
			sub.Nodes = append(sub.Nodes, nodeView(n))
		}
		for _, e := range b.Edges {
			sub.Edges = append(sub.Edges, edgeView(e))
		}
		res.BiconnectedSubgraphs = append(res.BiconnectedSubgraphs, sub)
	}
	return res, nil
}
