package planar

import (
	"sort"

	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/graph"
)

// findObstruction extracts a Kuratowski witness from a non-planar graph by
// deleting, one at a time, every edge whose removal keeps the remainder
// non-planar. What survives is an edge-minimal non-planar subgraph, which is
// necessarily a subdivision of K5 or K3,3.
//
// The reduction runs the boolean planarity test once per edge, keeping the
// whole extraction at O(E) tests. It returns an ANALYSIS_FAILED error if g
// turns out to be planar, which callers treat as an internal defect.
func findObstruction(g *graph.Graph) (*Obstruction, error) {
	ix := index(g)

	type iedge struct{ u, v int }
	all := make([]iedge, 0, g.EdgeCount())
	for _, e := range g.Edges() {
		all = append(all, iedge{ix.pos[e.Source], ix.pos[e.Target]})
	}

	present := make([]bool, len(all))
	for i := range present {
		present[i] = true
	}

	planarWithout := func(skip int) bool {
		adj := make([][]int, len(ix.ids))
		for i, e := range all {
			if !present[i] || i == skip {
				continue
			}
			adj[e.u] = append(adj[e.u], e.v)
			adj[e.v] = append(adj[e.v], e.u)
		}
		return newLRState(len(ix.ids), adj).test()
	}

	if planarWithout(-1) {
		return nil, errors.New(errors.ErrCodeAnalysisFailed, "obstruction requested for a planar graph")
	}

	for i := range all {
		if !planarWithout(i) {
			present[i] = false // still non-planar without it, drop for good
		}
	}

	var edges []graph.Edge
	for i, e := range all {
		if present[i] {
			edges = append(edges, graph.Edge{Source: ix.ids[e.u], Target: ix.ids[e.v]})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})

	if len(edges) == 0 {
		return nil, errors.New(errors.ErrCodeAnalysisFailed, "edge reduction eliminated every edge of a non-planar graph")
	}
	return &Obstruction{Edges: edges}, nil
}
