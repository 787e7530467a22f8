package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/planar"
)

const (
	tutteMaxIter   = 1000
	tutteTolerance = 1e-9
	// Two nodes closer than this count as coincident and reject the layout.
	tutteMinSep = 1e-6
)

// tutte computes a straight-line drawing from a combinatorial embedding: the
// largest face is pinned to a convex polygon and every remaining node is
// relaxed to the barycenter of its neighbors. For a 3-connected planar graph
// this is a crossing-free drawing; weaker graphs can collapse nodes onto each
// other, which the degeneracy checks below report as an error so the caller
// can fall back.
func tutte(g *graph.Graph, emb *planar.Embedding) (map[string]Point, error) {
	if g.NodeCount() == 1 {
		return map[string]Point{g.Nodes()[0].ID: {}}, nil
	}

	faces, err := planar.Faces(g, emb)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("embedding has no faces")
	}

	outer := faces[0]
	for _, f := range faces[1:] {
		if len(f) > len(outer) {
			outer = f
		}
	}
	// A boundary walk that repeats a node wraps around a cut vertex or a
	// bridge; the polygon pinning below needs distinct corners.
	onOuter := make(map[string]int, len(outer))
	for i, id := range outer {
		if _, dup := onOuter[id]; dup {
			return nil, fmt.Errorf("outer face revisits node %q", id)
		}
		onOuter[id] = i
	}

	pos := make(map[string]Point, g.NodeCount())
	for i, id := range outer {
		angle := 2 * math.Pi * float64(i) / float64(len(outer))
		pos[id] = Point{math.Cos(angle), math.Sin(angle)}
	}

	var interior []string
	for _, n := range g.Nodes() {
		if _, fixed := onOuter[n.ID]; !fixed {
			interior = append(interior, n.ID)
			pos[n.ID] = Point{}
		}
	}
	sort.Strings(interior)

	// Gauss-Seidel barycentric relaxation.
	for iter := 0; iter < tutteMaxIter; iter++ {
		moved := 0.0
		for _, id := range interior {
			nbrs := g.Neighbors(id)
			var sx, sy float64
			for _, w := range nbrs {
				sx += pos[w].X
				sy += pos[w].Y
			}
			next := Point{sx / float64(len(nbrs)), sy / float64(len(nbrs))}
			moved = math.Max(moved, math.Hypot(next.X-pos[id].X, next.Y-pos[id].Y))
			pos[id] = next
		}
		if moved < tutteTolerance {
			break
		}
	}

	if err := checkPlacement(pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// checkPlacement rejects non-finite or coincident coordinates.
func checkPlacement(pos map[string]Point) error {
	ids := make([]string, 0, len(pos))
	for id, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("node %q placed at a non-finite position", id)
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := pos[ids[i]], pos[ids[j]]
			if math.Hypot(a.X-b.X, a.Y-b.Y) < tutteMinSep {
				return fmt.Errorf("nodes %q and %q collapse onto the same position", ids[i], ids[j])
			}
		}
	}
	return nil
}
