package graph

import (
	"sort"

	"github.com/planview/planview/pkg/errors"
)

// =============================================================================
// Node and Edge - Value Types
// =============================================================================

// Node is a graph vertex with an opaque identifier and an optional display
// label. The zero Label means "display the ID".
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is an undirected edge between two distinct nodes. Edges are stored
// normalized with Source < Target so that (a,b) and (b,a) compare equal.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// normalize returns the edge with endpoints in lexicographic order.
func (e Edge) normalize() Edge {
	if e.Source > e.Target {
		return Edge{Source: e.Target, Target: e.Source}
	}
	return e
}

// =============================================================================
// Graph - Immutable Undirected Graph
// =============================================================================

// Graph is an immutable simple undirected graph. Construct one with New or
// ParseDescription; a Graph is never mutated after construction, so it is
// safe to share across goroutines and across the worker boundary.
type Graph struct {
	nodes []Node          // sorted by ID
	edges []Edge          // normalized, sorted
	index map[string]int  // node ID -> position in nodes
	adj   map[string][]string // node ID -> sorted neighbor IDs
}

// New constructs a Graph from node and edge lists.
//
// Validation errors (all ErrCodeInvalidGraph):
//   - duplicate node IDs
//   - self-loops
//   - duplicate edges (in either orientation)
//   - edge endpoints that are not declared nodes
func New(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: make([]Node, 0, len(nodes)),
		edges: make([]Edge, 0, len(edges)),
		index: make(map[string]int, len(nodes)),
		adj:   make(map[string][]string, len(nodes)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "node with empty id")
		}
		if _, dup := g.index[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate node %q", n.ID)
		}
		g.index[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n)
		g.adj[n.ID] = nil
	}

	seen := make(map[Edge]bool, len(edges))
	for _, e := range edges {
		if e.Source == e.Target {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "self-loop on node %q", e.Source)
		}
		if _, ok := g.index[e.Source]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "edge endpoint %q is not a declared node", e.Source)
		}
		if _, ok := g.index[e.Target]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "edge endpoint %q is not a declared node", e.Target)
		}
		ne := e.normalize()
		if seen[ne] {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "duplicate edge %s-%s", ne.Source, ne.Target)
		}
		seen[ne] = true
		g.edges = append(g.edges, ne)
		g.adj[ne.Source] = append(g.adj[ne.Source], ne.Target)
		g.adj[ne.Target] = append(g.adj[ne.Target], ne.Source)
	}

	sort.Slice(g.nodes, func(i, j int) bool { return g.nodes[i].ID < g.nodes[j].ID })
	for i, n := range g.nodes {
		g.index[n.ID] = i
	}
	sort.Slice(g.edges, func(i, j int) bool {
		if g.edges[i].Source != g.edges[j].Source {
			return g.edges[i].Source < g.edges[j].Source
		}
		return g.edges[i].Target < g.edges[j].Target
	})
	for id := range g.adj {
		sort.Strings(g.adj[id])
	}

	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Nodes returns the nodes sorted by ID. The slice is a copy.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the normalized edges in sorted order. The slice is a copy.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// HasNode reports whether id is a declared node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// HasEdge reports whether the undirected edge u-v exists.
func (g *Graph) HasEdge(u, v string) bool {
	ns := g.adj[u]
	i := sort.SearchStrings(ns, v)
	return i < len(ns) && ns[i] == v
}

// Node returns the node with the given ID and whether it exists.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Neighbors returns the sorted neighbor IDs of id. The slice is a copy.
func (g *Graph) Neighbors(id string) []string {
	ns := g.adj[id]
	out := make([]string, len(ns))
	copy(out, ns)
	return out
}

// Degree returns the number of edges incident to id.
func (g *Graph) Degree(id string) int { return len(g.adj[id]) }

// Induced returns the subgraph induced by the given node set: those nodes
// plus every edge of g with both endpoints in the set. Labels are retained.
// Unknown IDs are ignored.
func (g *Graph) Induced(ids []string) *Graph {
	in := make(map[string]bool, len(ids))
	var nodes []Node
	for _, id := range ids {
		if i, ok := g.index[id]; ok && !in[id] {
			in[id] = true
			nodes = append(nodes, g.nodes[i])
		}
	}
	var edges []Edge
	for _, e := range g.edges {
		if in[e.Source] && in[e.Target] {
			edges = append(edges, e)
		}
	}
	sub, err := New(nodes, edges)
	if err != nil {
		// Cannot happen: a subset of a valid graph is valid.
		panic(err)
	}
	return sub
}

// Subgraph returns the graph containing exactly the given edges of g and
// their endpoints. Edges not present in g are ignored.
func (g *Graph) Subgraph(edges []Edge) *Graph {
	in := make(map[string]bool)
	var nodes []Node
	var kept []Edge
	seen := make(map[Edge]bool)
	for _, e := range edges {
		ne := e.normalize()
		if !g.HasEdge(ne.Source, ne.Target) || seen[ne] {
			continue
		}
		seen[ne] = true
		kept = append(kept, ne)
		for _, id := range []string{ne.Source, ne.Target} {
			if !in[id] {
				in[id] = true
				n, _ := g.Node(id)
				nodes = append(nodes, n)
			}
		}
	}
	sub, err := New(nodes, kept)
	if err != nil {
		panic(err)
	}
	return sub
}
