package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// =============================================================================
// Serialization API
// =============================================================================

// Canonical returns the canonical byte serialization of g.
//
// The output depends only on the graph value: node order, edge order and edge
// orientation in the original description do not affect it. Two descriptions
// that parse to the same graph therefore share a canonical form, which is the
// precondition the cache fingerprint relies on.
func (g *Graph) Canonical() []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"nodes":[`)
	for i, n := range g.nodes {
		if i > 0 {
			buf.WriteByte(',')
		}
		// json.Marshal on a Node cannot fail: all fields are strings.
		b, _ := json.Marshal(n)
		buf.Write(b)
	}
	buf.WriteString(`],"edges":[`)
	for i, e := range g.edges {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "[%q,%q]", e.Source, e.Target)
	}
	buf.WriteString(`]}`)
	return buf.Bytes()
}

// MarshalJSON serializes g as {"nodes": [...], "edges": [...]} with nodes
// and edges in canonical order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonGraph{Nodes: g.Nodes(), Edges: g.Edges()})
}

// UnmarshalGraph deserializes JSON bytes produced by MarshalJSON back into a
// Graph, revalidating the structure.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var jg jsonGraph
	if err := json.Unmarshal(data, &jg); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	return New(jg.Nodes, jg.Edges)
}

// Equal reports whether two graphs have identical node and edge sets,
// including labels.
func Equal(a, b *Graph) bool {
	return bytes.Equal(a.Canonical(), b.Canonical())
}
