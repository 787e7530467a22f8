package layout

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/planar"
)

// Point is a node's display position.
type Point struct {
	X float64
	Y float64
}

// forceSeed pins the force-directed fallback so repeated analyses of the
// same graph always produce the same drawing.
const forceSeed = 42

// Positions computes coordinates for every node of g. When planarEmbedding
// is true the planar construction is attempted first, component by
// component; any component it cannot place falls back to the force layout.
// The function is total: it never fails and places every node at finite
// coordinates.
func Positions(g *graph.Graph, planarEmbedding bool) map[string]Point {
	comps := componentIDs(g)
	placed := make([]map[string]Point, 0, len(comps))

	for _, ids := range comps {
		cg := g.Induced(ids)
		var pos map[string]Point
		if planarEmbedding {
			if emb, ok := planar.Embed(cg); ok {
				pos, _ = tutte(cg, emb)
			}
		}
		if pos == nil {
			pos = forceLayout(cg, forceSeed)
		}
		placed = append(placed, normalizeUnit(pos))
	}

	return arrange(placed)
}

// componentIDs splits g into connected components, each a sorted ID slice,
// ordered by their smallest member.
func componentIDs(g *graph.Graph) [][]string {
	nodes := g.Nodes()
	pos := make(map[string]int64, len(nodes))
	ug := simple.NewUndirectedGraph()
	for i, n := range nodes {
		pos[n.ID] = int64(i)
		ug.AddNode(simple.Node(int64(i)))
	}
	for _, e := range g.Edges() {
		ug.SetEdge(simple.Edge{F: simple.Node(pos[e.Source]), T: simple.Node(pos[e.Target])})
	}

	var comps [][]string
	for _, c := range topo.ConnectedComponents(ug) {
		ids := make([]string, len(c))
		for i, n := range c {
			ids[i] = nodes[n.ID()].ID
		}
		sort.Strings(ids)
		comps = append(comps, ids)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// normalizeUnit rescales positions into the unit square, preserving aspect
// ratio. Degenerate extents (a single node, or all nodes collinear on an
// axis) collapse to the square's center line.
func normalizeUnit(pos map[string]Point) map[string]Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	out := make(map[string]Point, len(pos))
	for id, p := range pos {
		if span == 0 {
			out[id] = Point{0.5, 0.5}
			continue
		}
		out[id] = Point{
			X: (p.X-minX)/span + (span-(maxX-minX))/(2*span),
			Y: (p.Y-minY)/span + (span-(maxY-minY))/(2*span),
		}
	}
	return out
}

// arrange places unit-square component layouts on a grid and recenters the
// whole drawing into [-1, 1] on the longer axis.
func arrange(placed []map[string]Point) map[string]Point {
	cols := int(math.Ceil(math.Sqrt(float64(len(placed)))))
	if cols == 0 {
		return map[string]Point{}
	}
	const gap = 1.4 // cell pitch, leaves margin between components

	merged := make(map[string]Point)
	for i, pos := range placed {
		dx := float64(i%cols) * gap
		dy := float64(i/cols) * gap
		for id, p := range pos {
			merged[id] = Point{p.X + dx, p.Y + dy}
		}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range merged {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	for id, p := range merged {
		merged[id] = Point{
			X: 2 * (p.X - cx) / span,
			Y: 2 * (p.Y - cy) / span,
		}
	}
	return merged
}
