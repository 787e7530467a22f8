package planar

import (
	"fmt"

	"github.com/planview/planview/pkg/graph"
)

// halfEdge is a directed traversal of an undirected edge, used for walking
// the faces induced by a rotation system.
type halfEdge struct{ from, to string }

// ValidateEmbedding checks that emb is a valid combinatorial embedding of g:
//
//   - the rotation of every node is exactly its neighbor set, so each edge
//     appears exactly twice across all rotations (once per endpoint);
//   - traversing faces by the rotation system visits every half-edge exactly
//     once and returns to its start;
//   - Euler's formula V - E + F = 2 holds for every connected component,
//     counting that component's own outer face.
//
// A nil error means the embedding genuinely describes a planar drawing.
func ValidateEmbedding(g *graph.Graph, emb *Embedding) error {
	// Rotations must match the adjacency exactly.
	for _, n := range g.Nodes() {
		rot := emb.Rotation(n.ID)
		want := g.Neighbors(n.ID)
		if len(rot) != len(want) {
			return fmt.Errorf("node %q: rotation has %d entries, degree is %d", n.ID, len(rot), len(want))
		}
		seen := make(map[string]bool, len(rot))
		for _, w := range rot {
			if !g.HasEdge(n.ID, w) {
				return fmt.Errorf("node %q: rotation entry %q is not a neighbor", n.ID, w)
			}
			if seen[w] {
				return fmt.Errorf("node %q: neighbor %q appears twice in rotation", n.ID, w)
			}
			seen[w] = true
		}
	}

	faces, err := countFaces(g, emb)
	if err != nil {
		return err
	}

	// Euler check per connected component.
	comp := components(g)
	type tally struct{ v, e, f int }
	byComp := make(map[int]*tally)
	for id, c := range comp {
		if byComp[c] == nil {
			byComp[c] = &tally{}
		}
		byComp[c].v++
		byComp[c].e += g.Degree(id)
	}
	for c, f := range faces.facesPerComponent(comp) {
		t := byComp[c]
		t.f = f
	}
	for c, t := range byComp {
		e := t.e / 2
		if t.v-e+t.f != 2 {
			return fmt.Errorf("component %d violates Euler's formula: V=%d E=%d F=%d", c, t.v, e, t.f)
		}
	}
	return nil
}

// Faces lists the faces of the embedding, each as the cyclic sequence of
// node identifiers visited by its boundary walk. Faces are discovered in
// sorted-edge order, so the listing is deterministic. The embedding must be
// valid for g; an invalid rotation system yields an error.
func Faces(g *graph.Graph, emb *Embedding) ([][]string, error) {
	prev := make(map[halfEdge]string)
	for _, n := range g.Nodes() {
		rot := emb.Rotation(n.ID)
		for i, w := range rot {
			prev[halfEdge{n.ID, w}] = rot[(i-1+len(rot))%len(rot)]
		}
	}

	var faces [][]string
	done := make(map[halfEdge]bool)
	for _, e := range g.Edges() {
		for _, start := range []halfEdge{{e.Source, e.Target}, {e.Target, e.Source}} {
			if done[start] {
				continue
			}
			var walk []string
			he := start
			for steps := 0; ; steps++ {
				if steps > 2*g.EdgeCount()+1 {
					return nil, fmt.Errorf("face traversal from %v does not close", start)
				}
				done[he] = true
				walk = append(walk, he.from)
				p, ok := prev[halfEdge{he.to, he.from}]
				if !ok {
					return nil, fmt.Errorf("rotation of %q is missing neighbor %q", he.to, he.from)
				}
				he = halfEdge{he.to, p}
				if he == start {
					break
				}
			}
			faces = append(faces, walk)
		}
	}
	return faces, nil
}

// faceIndex records, for every half-edge, which face its traversal belongs
// to.
type faceIndex struct {
	faceOf map[halfEdge]int
	starts []halfEdge
}

// facesPerComponent counts distinct faces per component. A face belongs to
// the component of the nodes it touches. Isolated nodes contribute a single
// implicit face each.
func (fi *faceIndex) facesPerComponent(comp map[string]int) map[int]int {
	counted := make(map[int]bool, len(fi.starts))
	out := make(map[int]int)
	for he, face := range fi.faceOf {
		if !counted[face] {
			counted[face] = true
			out[comp[he.from]]++
		}
	}
	// Components with no edges have exactly one face: the whole plane.
	seen := make(map[int]bool)
	for _, c := range comp {
		seen[c] = true
	}
	for c := range seen {
		if out[c] == 0 {
			out[c] = 1
		}
	}
	return out
}

// countFaces walks every face of the rotation system. The successor of the
// half-edge (u, v) is (v, w) where w precedes u in the clockwise rotation of
// v; a face is complete when the walk returns to its starting half-edge.
func countFaces(g *graph.Graph, emb *Embedding) (*faceIndex, error) {
	prev := make(map[halfEdge]string) // (v, u) -> neighbor before u in rotation of v
	for _, n := range g.Nodes() {
		rot := emb.Rotation(n.ID)
		for i, w := range rot {
			p := rot[(i-1+len(rot))%len(rot)]
			prev[halfEdge{n.ID, w}] = p
		}
	}

	fi := &faceIndex{faceOf: make(map[halfEdge]int)}
	for _, e := range g.Edges() {
		for _, start := range []halfEdge{{e.Source, e.Target}, {e.Target, e.Source}} {
			if _, done := fi.faceOf[start]; done {
				continue
			}
			face := len(fi.starts)
			fi.starts = append(fi.starts, start)
			he := start
			for steps := 0; ; steps++ {
				if steps > 2*g.EdgeCount()+1 {
					return nil, fmt.Errorf("face traversal from %v does not close", start)
				}
				if prior, dup := fi.faceOf[he]; dup {
					if prior != face || he != start {
						return nil, fmt.Errorf("face traversal from %v revisits half-edge %v", start, he)
					}
					break
				}
				fi.faceOf[he] = face
				p, ok := prev[halfEdge{he.to, he.from}]
				if !ok {
					return nil, fmt.Errorf("rotation of %q is missing neighbor %q", he.to, he.from)
				}
				he = halfEdge{he.to, p}
				if he == start {
					break
				}
			}
		}
	}
	return fi, nil
}

// components labels every node with a connected-component index, assigned in
// sorted node order so labels are deterministic.
func components(g *graph.Graph) map[string]int {
	comp := make(map[string]int, g.NodeCount())
	next := 0
	for _, n := range g.Nodes() {
		if _, done := comp[n.ID]; done {
			continue
		}
		queue := []string{n.ID}
		comp[n.ID] = next
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			for _, w := range g.Neighbors(id) {
				if _, done := comp[w]; !done {
					comp[w] = next
					queue = append(queue, w)
				}
			}
		}
		next++
	}
	return comp
}
