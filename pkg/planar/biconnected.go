package planar

import (
	"sort"

	"github.com/planview/planview/pkg/graph"
)

// Block is one biconnected component: a maximal subgraph without an
// articulation point, materialized as its edge set.
type Block struct {
	Edges []graph.Edge
}

// NodeIDs returns the sorted node identifiers touched by the block's edges.
func (b Block) NodeIDs() []string {
	set := make(map[string]bool, 2*len(b.Edges))
	for _, e := range b.Edges {
		set[e.Source] = true
		set[e.Target] = true
	}
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// BiconnectedComponents partitions the edges of g into biconnected blocks
// using the Hopcroft–Tarjan edge-stack DFS.
//
// Every edge belongs to exactly one block and the union of all blocks is the
// edge set of g. An isolated node yields no block; a bridge yields a
// two-node single-edge block. Block order and the edge order inside each
// block are deterministic.
func BiconnectedComponents(g *graph.Graph) []Block {
	ix := index(g)
	n := len(ix.ids)

	disc := make([]int, n)   // discovery time, 0 = unvisited
	low := make([]int, n)    // lowest discovery time reachable
	parent := make([]int, n) // DFS tree parent, -1 for roots
	for i := range parent {
		parent[i] = -1
	}

	type iedge struct{ u, v int }
	var stack []iedge
	var blocks []Block
	timer := 0

	emit := func(until iedge) {
		var edges []graph.Edge
		for len(stack) > 0 {
			e := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			u, v := ix.ids[e.u], ix.ids[e.v]
			if u > v {
				u, v = v, u
			}
			edges = append(edges, graph.Edge{Source: u, Target: v})
			if e == until {
				break
			}
		}
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].Source != edges[j].Source {
				return edges[i].Source < edges[j].Source
			}
			return edges[i].Target < edges[j].Target
		})
		blocks = append(blocks, Block{Edges: edges})
	}

	var dfs func(u int)
	dfs = func(u int) {
		timer++
		disc[u] = timer
		low[u] = timer
		for _, v := range ix.adj[u] {
			switch {
			case disc[v] == 0: // tree edge
				parent[v] = u
				stack = append(stack, iedge{u, v})
				dfs(v)
				low[u] = min(low[u], low[v])
				if low[v] >= disc[u] {
					// u is an articulation point (or a root); the edges
					// above u-v on the stack form one block.
					emit(iedge{u, v})
				}
			case v != parent[u] && disc[v] < disc[u]: // back edge
				stack = append(stack, iedge{u, v})
				low[u] = min(low[u], disc[v])
			}
		}
	}

	for v := 0; v < n; v++ {
		if disc[v] == 0 {
			dfs(v)
		}
	}

	// DFS in sorted-vertex order already yields a deterministic block
	// sequence; sort again by first edge for a stable external order.
	sort.Slice(blocks, func(i, j int) bool {
		a, b := blocks[i].Edges[0], blocks[j].Edges[0]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
	return blocks
}
