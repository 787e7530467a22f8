package planar

import (
	"github.com/planview/planview/pkg/errors"
	"github.com/planview/planview/pkg/graph"
)

// indexed is a graph mapped onto dense vertex indices, the representation
// the DFS algorithms run on. Index order follows the graph's sorted node
// order, which keeps every downstream result deterministic.
type indexed struct {
	ids []string
	pos map[string]int
	adj [][]int
}

func index(g *graph.Graph) *indexed {
	nodes := g.Nodes()
	ix := &indexed{
		ids: make([]string, len(nodes)),
		pos: make(map[string]int, len(nodes)),
		adj: make([][]int, len(nodes)),
	}
	for i, n := range nodes {
		ix.ids[i] = n.ID
		ix.pos[n.ID] = i
	}
	for i, n := range nodes {
		for _, w := range g.Neighbors(n.ID) {
			ix.adj[i] = append(ix.adj[i], ix.pos[w])
		}
	}
	return ix
}

// IsPlanar reports whether g can be drawn in the plane without edge
// crossings. It runs the left-right test without constructing an embedding.
func IsPlanar(g *graph.Graph) bool {
	ix := index(g)
	return newLRState(len(ix.ids), ix.adj).test()
}

// Embed runs the full left-right algorithm. It returns the combinatorial
// embedding and true when g is planar, or nil and false when it is not.
func Embed(g *graph.Graph) (*Embedding, bool) {
	ix := index(g)
	st := newLRState(len(ix.ids), ix.adj)
	if !st.test() {
		return nil, false
	}
	st.embed()

	rotation := make(map[string][]string, len(ix.ids))
	for v, id := range ix.ids {
		r := make([]string, len(st.rotation[v]))
		for i, w := range st.rotation[v] {
			r[i] = ix.ids[w]
		}
		rotation[id] = r
	}
	return &Embedding{rotation: rotation}, true
}

// Check decides planarity and produces the matching certificate.
//
// For a planar graph the certificate carries a validated combinatorial
// embedding. For a non-planar graph it carries an obstruction: a subgraph of
// g homeomorphic to K5 or K3,3. An error is returned only when the algorithm
// violates its own invariants (an invalid embedding, or no obstruction for a
// non-planar input); such an error is an internal defect, not an input
// error.
func Check(g *graph.Graph) (bool, *Certificate, error) {
	if emb, ok := Embed(g); ok {
		if err := ValidateEmbedding(g, emb); err != nil {
			return true, nil, errors.Wrap(errors.ErrCodeAnalysisFailed, err, "embedding failed validation")
		}
		return true, &Certificate{Embedding: emb}, nil
	}

	obs, err := findObstruction(g)
	if err != nil {
		return false, nil, err
	}
	return false, &Certificate{Obstruction: obs}, nil
}
