package layout

import (
	"math"
	"testing"

	"github.com/planview/planview/pkg/graph"
	"github.com/planview/planview/pkg/planar"
)

func parse(t *testing.T, desc string) *graph.Graph {
	t.Helper()
	g, err := graph.ParseDescription(desc)
	if err != nil {
		t.Fatalf("parse %q: %v", desc, err)
	}
	return g
}

func k5(t *testing.T) *graph.Graph {
	return parse(t, `
		a - b; a - c; a - d; a - e
		b - c; b - d; b - e
		c - d; c - e
		d - e
	`)
}

func checkFinite(t *testing.T, g *graph.Graph, pos map[string]Point) {
	t.Helper()
	if len(pos) != g.NodeCount() {
		t.Fatalf("placed %d nodes, graph has %d", len(pos), g.NodeCount())
	}
	for id, p := range pos {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("node %s at non-finite position (%v, %v)", id, p.X, p.Y)
		}
	}
}

func TestPositionsTotal(t *testing.T) {
	cases := map[string]struct {
		g      *graph.Graph
		planar bool
	}{
		"single node":    {parse(t, "a"), true},
		"single edge":    {parse(t, "a - b"), true},
		"path":           {parse(t, "a - b; b - c"), true},
		"star":           {parse(t, "c - l1; c - l2; c - l3"), true},
		"K4":             {parse(t, "a - b; a - c; a - d; b - c; b - d; c - d"), true},
		"K5 non-planar":  {k5(t), false},
		"two triangles":  {parse(t, "a - b; b - c; c - a; x - y; y - z; z - x"), true},
		"triangle+loner": {parse(t, "a - b; b - c; c - a; solo"), true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			checkFinite(t, tc.g, Positions(tc.g, tc.planar))
		})
	}
}

func TestPositionsDeterministic(t *testing.T) {
	for name, g := range map[string]*graph.Graph{
		"K5 force":      k5(t),
		"K4 planar":     parse(t, "a - b; a - c; a - d; b - c; b - d; c - d"),
		"path fallback": parse(t, "a - b; b - c; c - d"),
	} {
		t.Run(name, func(t *testing.T) {
			p1 := Positions(g, planar.IsPlanar(g))
			p2 := Positions(g, planar.IsPlanar(g))
			for id, a := range p1 {
				if b := p2[id]; a != b {
					t.Errorf("node %s moved between runs: %v vs %v", id, a, b)
				}
			}
		})
	}
}

func TestPositionsDistinct(t *testing.T) {
	g := parse(t, "a - b; a - c; a - d; b - c; b - d; c - d")
	pos := Positions(g, true)
	ids := []string{"a", "b", "c", "d"}
	for i, u := range ids {
		for _, v := range ids[i+1:] {
			if math.Hypot(pos[u].X-pos[v].X, pos[u].Y-pos[v].Y) < 1e-6 {
				t.Errorf("nodes %s and %s coincide", u, v)
			}
		}
	}
}

func TestTutteK4(t *testing.T) {
	g := parse(t, "a - b; a - c; a - d; b - c; b - d; c - d")
	emb, ok := planar.Embed(g)
	if !ok {
		t.Fatal("K4 should embed")
	}
	pos, err := tutte(g, emb)
	if err != nil {
		t.Fatalf("tutte: %v", err)
	}
	checkFinite(t, g, pos)
}

func TestTutteRejectsPath(t *testing.T) {
	// Barycentric relaxation collapses a path's interior; the construction
	// must report it instead of returning coincident points.
	g := parse(t, "a - b; b - c")
	emb, ok := planar.Embed(g)
	if !ok {
		t.Fatal("path should embed")
	}
	if _, err := tutte(g, emb); err == nil {
		t.Fatal("expected degeneracy error for a path")
	}
}

func TestComponentsDoNotOverlap(t *testing.T) {
	g := parse(t, "a - b; b - c; c - a; x - y; y - z; z - x")
	pos := Positions(g, true)

	// Bounding boxes of the two triangles must be disjoint.
	box := func(ids ...string) (minX, minY, maxX, maxY float64) {
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
		for _, id := range ids {
			p := pos[id]
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
		return
	}
	aMinX, aMinY, aMaxX, aMaxY := box("a", "b", "c")
	bMinX, bMinY, bMaxX, bMaxY := box("x", "y", "z")
	if aMaxX > bMinX && bMaxX > aMinX && aMaxY > bMinY && bMaxY > aMinY {
		t.Error("component bounding boxes overlap")
	}
}
