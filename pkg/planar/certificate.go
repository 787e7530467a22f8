package planar

import (
	"encoding/json"
	"sort"

	"github.com/planview/planview/pkg/graph"
)

// =============================================================================
// Certificate - Tagged Union
// =============================================================================

// CertificateKind discriminates the two certificate shapes.
type CertificateKind string

// Certificate kinds.
const (
	KindEmbedding   CertificateKind = "embedding"
	KindObstruction CertificateKind = "obstruction"
)

// Certificate is the proof attached to a planarity decision: exactly one of
// Embedding (planar) or Obstruction (non-planar) is non-nil. Consumers
// switch on Kind rather than inspecting fields.
type Certificate struct {
	Embedding   *Embedding
	Obstruction *Obstruction
}

// Kind returns which certificate variant is populated.
func (c *Certificate) Kind() CertificateKind {
	if c.Obstruction != nil {
		return KindObstruction
	}
	return KindEmbedding
}

// MarshalJSON produces the wire shape: a planar certificate serializes as a
// mapping node → ordered neighbor list, a non-planar one as
// {"type":"obstruction","edges":[[u,v],...]}.
func (c *Certificate) MarshalJSON() ([]byte, error) {
	if c.Obstruction != nil {
		edges := make([][2]string, len(c.Obstruction.Edges))
		for i, e := range c.Obstruction.Edges {
			edges[i] = [2]string{e.Source, e.Target}
		}
		return json.Marshal(struct {
			Type  string      `json:"type"`
			Edges [][2]string `json:"edges"`
		}{Type: "obstruction", Edges: edges})
	}
	if c.Embedding == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(c.Embedding.rotation)
}

// =============================================================================
// Embedding - Rotation System
// =============================================================================

// Embedding is a combinatorial embedding: for every node, the clockwise
// cyclic order of its neighbors in some planar drawing.
type Embedding struct {
	rotation map[string][]string
}

// Rotation returns the clockwise neighbor order of id. The slice is a copy.
func (e *Embedding) Rotation(id string) []string {
	r := e.rotation[id]
	out := make([]string, len(r))
	copy(out, r)
	return out
}

// Nodes returns the embedded node IDs in sorted order.
func (e *Embedding) Nodes() []string {
	out := make([]string, 0, len(e.rotation))
	for id := range e.rotation {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// =============================================================================
// Obstruction - Kuratowski Witness
// =============================================================================

// Obstruction is a subgraph of the analyzed graph that is homeomorphic to K5
// or K3,3, proving non-planarity. Edges are normalized and sorted.
type Obstruction struct {
	Edges []graph.Edge
}

// Contains reports whether the undirected edge u-v is part of the
// obstruction.
func (o *Obstruction) Contains(u, v string) bool {
	if u > v {
		u, v = v, u
	}
	for _, e := range o.Edges {
		if e.Source == u && e.Target == v {
			return true
		}
	}
	return false
}

// EdgeSet returns the obstruction edges as a membership set keyed by the
// normalized edge.
func (o *Obstruction) EdgeSet() map[graph.Edge]bool {
	set := make(map[graph.Edge]bool, len(o.Edges))
	for _, e := range o.Edges {
		set[e] = true
	}
	return set
}
