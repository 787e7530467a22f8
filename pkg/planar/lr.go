package planar

import "sort"

// oedge is a directed edge between vertex indices, the unit the left-right
// test attaches its per-edge state to. The DFS orientation picks exactly one
// direction for every undirected edge.
type oedge struct{ u, v int }

// noEdge is the absent-edge sentinel. The vertex index -1 never occurs.
var noEdge = oedge{-1, -1}

// interval is a range of back edges, identified by its lowest and highest
// edge. Both fields are noEdge for the empty interval.
type interval struct{ low, high oedge }

func (i interval) empty() bool { return i.low == noEdge && i.high == noEdge }

// conflictPair holds the two groups of back-edge intervals that must end up
// on opposite sides of their fundamental cycle.
type conflictPair struct{ l, r interval }

func (p *conflictPair) swap() { p.l, p.r = p.r, p.l }

// lrState carries the whole state of one left-right planarity run over an
// indexed adjacency structure.
type lrState struct {
	n   int
	adj [][]int // undirected adjacency, neighbor indices sorted

	// Orientation phase
	height     []int // DFS height, -1 while unvisited
	parentEdge []oedge
	roots      []int
	outAdj     [][]int // oriented out-neighbors in discovery order
	oriented   map[oedge]bool
	lowpt      map[oedge]int
	lowpt2     map[oedge]int
	nesting    map[oedge]int

	// Testing phase
	s           []conflictPair
	stackBottom map[oedge]int
	lowptEdge   map[oedge]oedge
	ref         map[oedge]oedge
	side        map[oedge]int

	// Embedding phase
	orderedAdj [][]int
	leftRef    []int
	rightRef   []int
	rotation   [][]int // clockwise neighbor order per vertex
}

func newLRState(n int, adj [][]int) *lrState {
	st := &lrState{
		n:           n,
		adj:         adj,
		height:      make([]int, n),
		parentEdge:  make([]oedge, n),
		outAdj:      make([][]int, n),
		oriented:    make(map[oedge]bool),
		lowpt:       make(map[oedge]int),
		lowpt2:      make(map[oedge]int),
		nesting:     make(map[oedge]int),
		stackBottom: make(map[oedge]int),
		lowptEdge:   make(map[oedge]oedge),
		ref:         make(map[oedge]oedge),
		side:        make(map[oedge]int),
	}
	for i := range st.height {
		st.height[i] = -1
		st.parentEdge[i] = noEdge
	}
	return st
}

func (st *lrState) refOf(e oedge) oedge {
	if r, ok := st.ref[e]; ok {
		return r
	}
	return noEdge
}

func (st *lrState) sideOf(e oedge) int {
	if s, ok := st.side[e]; ok {
		return s
	}
	return 1
}

// test runs the orientation and testing phases and reports planarity.
func (st *lrState) test() bool {
	edgeCount := 0
	for _, ns := range st.adj {
		edgeCount += len(ns)
	}
	edgeCount /= 2
	if st.n > 2 && edgeCount > 3*st.n-6 {
		// Euler bound: too many edges to be planar.
		return false
	}

	for v := 0; v < st.n; v++ {
		if st.height[v] == -1 {
			st.height[v] = 0
			st.roots = append(st.roots, v)
			st.dfsOrient(v)
		}
	}

	st.orderByNesting()

	for _, root := range st.roots {
		if !st.dfsTest(root) {
			return false
		}
	}
	return true
}

// dfsOrient orients the edges and computes lowpoints and nesting depths.
func (st *lrState) dfsOrient(v int) {
	e := st.parentEdge[v]
	for _, w := range st.adj[v] {
		if st.oriented[oedge{v, w}] || st.oriented[oedge{w, v}] {
			continue
		}
		vw := oedge{v, w}
		st.oriented[vw] = true
		st.outAdj[v] = append(st.outAdj[v], w)
		st.lowpt[vw] = st.height[v]
		st.lowpt2[vw] = st.height[v]

		if st.height[w] == -1 { // tree edge
			st.parentEdge[w] = vw
			st.height[w] = st.height[v] + 1
			st.dfsOrient(w)
		} else { // back edge
			st.lowpt[vw] = st.height[w]
		}

		// Nesting depth doubles the lowpoint; chordal edges nest deeper.
		st.nesting[vw] = 2 * st.lowpt[vw]
		if st.lowpt2[vw] < st.height[v] {
			st.nesting[vw]++
		}

		if e != noEdge {
			switch {
			case st.lowpt[vw] < st.lowpt[e]:
				st.lowpt2[e] = min(st.lowpt[e], st.lowpt2[vw])
				st.lowpt[e] = st.lowpt[vw]
			case st.lowpt[vw] > st.lowpt[e]:
				st.lowpt2[e] = min(st.lowpt2[e], st.lowpt[vw])
			default:
				st.lowpt2[e] = min(st.lowpt2[e], st.lowpt2[vw])
			}
		}
	}
}

// orderByNesting sorts every vertex's out-adjacency by nesting depth.
// The sort is stable so ties keep the deterministic discovery order.
func (st *lrState) orderByNesting() {
	st.orderedAdj = make([][]int, st.n)
	for v := 0; v < st.n; v++ {
		ordered := make([]int, len(st.outAdj[v]))
		copy(ordered, st.outAdj[v])
		sort.SliceStable(ordered, func(i, j int) bool {
			return st.nesting[oedge{v, ordered[i]}] < st.nesting[oedge{v, ordered[j]}]
		})
		st.orderedAdj[v] = ordered
	}
}

// dfsTest is the constraint phase: it maintains the stack of conflict pairs
// and fails as soon as two back-edge intervals are forced onto the same side.
func (st *lrState) dfsTest(v int) bool {
	e := st.parentEdge[v]
	for i, w := range st.orderedAdj[v] {
		ei := oedge{v, w}
		st.stackBottom[ei] = len(st.s)

		if ei == st.parentEdge[w] { // tree edge
			if !st.dfsTest(w) {
				return false
			}
		} else { // back edge
			st.lowptEdge[ei] = ei
			st.s = append(st.s, conflictPair{r: interval{low: ei, high: ei}, l: interval{low: noEdge, high: noEdge}})
		}

		if st.lowpt[ei] < st.height[v] { // ei has a return edge
			if i == 0 {
				st.lowptEdge[e] = st.lowptEdge[ei]
			} else if !st.addConstraints(ei, e) {
				return false
			}
		}
	}

	if e != noEdge {
		u := e.u
		st.trimBackEdges(u)
		// Side of e is the side of a highest return edge.
		if st.lowpt[e] < st.height[u] && len(st.s) > 0 {
			top := st.s[len(st.s)-1]
			hl, hr := top.l.high, top.r.high
			if hl != noEdge && (hr == noEdge || st.lowpt[hl] > st.lowpt[hr]) {
				st.ref[e] = hl
			} else {
				st.ref[e] = hr
			}
		}
	}
	return true
}

func (st *lrState) conflicting(i interval, b oedge) bool {
	return !i.empty() && st.lowpt[i.high] > st.lowpt[b]
}

func (st *lrState) lowest(p conflictPair) int {
	if p.l.empty() {
		return st.lowpt[p.r.low]
	}
	if p.r.empty() {
		return st.lowpt[p.l.low]
	}
	return min(st.lowpt[p.l.low], st.lowpt[p.r.low])
}

func (st *lrState) pop() conflictPair {
	p := st.s[len(st.s)-1]
	st.s = st.s[:len(st.s)-1]
	return p
}

// addConstraints merges the constraints imposed by the return edges of ei
// with those of its preceding siblings. Returns false if the graph is not
// planar.
func (st *lrState) addConstraints(ei, e oedge) bool {
	p := conflictPair{l: interval{low: noEdge, high: noEdge}, r: interval{low: noEdge, high: noEdge}}

	// Merge return edges of ei into p.r.
	for {
		q := st.pop()
		if !q.l.empty() {
			q.swap()
		}
		if !q.l.empty() {
			return false // not planar
		}
		if st.lowpt[q.r.low] > st.lowpt[e] {
			// Merge intervals.
			if p.r.empty() {
				p.r.high = q.r.high
			} else {
				st.ref[p.r.low] = q.r.high
			}
			p.r.low = q.r.low
		} else {
			// Align to the lowest return edge of the parent.
			st.ref[q.r.low] = st.lowptEdge[e]
		}
		if len(st.s) == st.stackBottom[ei] {
			break
		}
	}

	// Merge conflicting return edges of the preceding siblings into p.l.
	for len(st.s) > 0 && (st.conflicting(st.s[len(st.s)-1].l, ei) || st.conflicting(st.s[len(st.s)-1].r, ei)) {
		q := st.pop()
		if st.conflicting(q.r, ei) {
			q.swap()
		}
		if st.conflicting(q.r, ei) {
			return false // not planar
		}
		// Merge the interval below lowpt(ei) into p.r.
		st.ref[p.r.low] = q.r.high
		if q.r.low != noEdge {
			p.r.low = q.r.low
		}
		if p.l.empty() {
			p.l.high = q.l.high
		} else {
			st.ref[p.l.low] = q.l.high
		}
		p.l.low = q.l.low
	}

	if !(p.l.empty() && p.r.empty()) {
		st.s = append(st.s, p)
	}
	return true
}

// trimBackEdges drops back edges that end at the parent u once the subtree
// rooted below u has been processed.
func (st *lrState) trimBackEdges(u int) {
	// Drop entire conflict pairs.
	for len(st.s) > 0 && st.lowest(st.s[len(st.s)-1]) == st.height[u] {
		p := st.pop()
		if p.l.low != noEdge {
			st.side[p.l.low] = -1
		}
	}

	if len(st.s) == 0 {
		return
	}

	// One more conflict pair to consider: trim its intervals.
	p := st.pop()
	for p.l.high != noEdge && p.l.high.v == u {
		p.l.high = st.refOf(p.l.high)
	}
	if p.l.high == noEdge && p.l.low != noEdge {
		st.ref[p.l.low] = p.r.low
		st.side[p.l.low] = -1
		p.l.low = noEdge
	}
	for p.r.high != noEdge && p.r.high.v == u {
		p.r.high = st.refOf(p.r.high)
	}
	if p.r.high == noEdge && p.r.low != noEdge {
		st.ref[p.r.low] = p.l.low
		st.side[p.r.low] = -1
		p.r.low = noEdge
	}
	st.s = append(st.s, p)
}

// sign resolves the reference chain of e and returns its final side.
func (st *lrState) sign(e oedge) int {
	if r := st.refOf(e); r != noEdge {
		st.side[e] = st.sideOf(e) * st.sign(r)
		delete(st.ref, e)
	}
	return st.sideOf(e)
}

// embed runs the embedding phase after a successful test and fills
// st.rotation with the clockwise neighbor order of every vertex.
func (st *lrState) embed() {
	// Apply the computed sides to the nesting order.
	for e := range st.oriented {
		st.nesting[e] *= st.sign(e)
	}
	st.orderByNesting()

	// Outgoing edges in nesting order form the initial clockwise rotation.
	st.rotation = make([][]int, st.n)
	for v := 0; v < st.n; v++ {
		st.rotation[v] = make([]int, 0, len(st.adj[v]))
		st.rotation[v] = append(st.rotation[v], st.orderedAdj[v]...)
	}

	st.leftRef = make([]int, st.n)
	st.rightRef = make([]int, st.n)
	for _, root := range st.roots {
		st.dfsEmbed(root)
	}
}

// dfsEmbed places the incoming half-edges: the tree edge first in the
// child's rotation, back edges next to the reference child at their target.
func (st *lrState) dfsEmbed(v int) {
	for _, w := range st.orderedAdj[v] {
		ei := oedge{v, w}
		if ei == st.parentEdge[w] { // tree edge
			st.insertFirst(w, v)
			st.leftRef[v] = w
			st.rightRef[v] = w
			st.dfsEmbed(w)
		} else { // back edge, w is an ancestor of v
			if st.sideOf(ei) == 1 {
				st.insertAfter(w, v, st.rightRef[w])
			} else {
				st.insertBefore(w, v, st.leftRef[w])
				st.leftRef[w] = v
			}
		}
	}
}

func (st *lrState) insertFirst(node, x int) {
	st.rotation[node] = append([]int{x}, st.rotation[node]...)
}

func (st *lrState) insertAfter(node, x, ref int) {
	r := st.rotation[node]
	for i, y := range r {
		if y == ref {
			r = append(r[:i+1], append([]int{x}, r[i+1:]...)...)
			st.rotation[node] = r
			return
		}
	}
	st.rotation[node] = append(r, x)
}

func (st *lrState) insertBefore(node, x, ref int) {
	r := st.rotation[node]
	for i, y := range r {
		if y == ref {
			r = append(r[:i], append([]int{x}, r[i:]...)...)
			st.rotation[node] = r
			return
		}
	}
	st.rotation[node] = append(r, x)
}
