package layout

import (
	"math"
	"math/rand"
	"sort"

	"github.com/planview/planview/pkg/graph"
)

const forceIterations = 50

// forceLayout is a Fruchterman–Reingold spring layout with a fixed seed.
// Node order and the random source are both pinned, so the same graph always
// lands in the same drawing.
func forceLayout(g *graph.Graph, seed int64) map[string]Point {
	ids := make([]string, 0, g.NodeCount())
	for _, n := range g.Nodes() {
		ids = append(ids, n.ID)
	}
	sort.Strings(ids)

	n := len(ids)
	pos := make(map[string]Point, n)
	if n == 1 {
		pos[ids[0]] = Point{}
		return pos
	}

	rng := rand.New(rand.NewSource(seed))
	for _, id := range ids {
		pos[id] = Point{rng.Float64(), rng.Float64()}
	}

	k := math.Sqrt(1 / float64(n)) // ideal pairwise distance in the unit square
	temp := 0.1
	cool := temp / float64(forceIterations+1)

	disp := make(map[string]Point, n)
	for iter := 0; iter < forceIterations; iter++ {
		for _, id := range ids {
			disp[id] = Point{}
		}

		// Repulsion between every pair.
		for i, a := range ids {
			for _, b := range ids[i+1:] {
				dx := pos[a].X - pos[b].X
				dy := pos[a].Y - pos[b].Y
				d := math.Max(math.Hypot(dx, dy), 1e-9)
				f := k * k / d / d
				disp[a] = Point{disp[a].X + dx*f, disp[a].Y + dy*f}
				disp[b] = Point{disp[b].X - dx*f, disp[b].Y - dy*f}
			}
		}

		// Attraction along edges.
		for _, e := range g.Edges() {
			dx := pos[e.Source].X - pos[e.Target].X
			dy := pos[e.Source].Y - pos[e.Target].Y
			d := math.Max(math.Hypot(dx, dy), 1e-9)
			f := d / k
			disp[e.Source] = Point{disp[e.Source].X - dx/d*f, disp[e.Source].Y - dy/d*f}
			disp[e.Target] = Point{disp[e.Target].X + dx/d*f, disp[e.Target].Y + dy/d*f}
		}

		// Move each node, capped by the current temperature.
		for _, id := range ids {
			d := math.Max(math.Hypot(disp[id].X, disp[id].Y), 1e-9)
			step := math.Min(d, temp)
			pos[id] = Point{
				X: pos[id].X + disp[id].X/d*step,
				Y: pos[id].Y + disp[id].Y/d*step,
			}
		}
		temp -= cool
	}
	return pos
}
