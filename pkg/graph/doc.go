// Package graph provides the immutable undirected graph value type used by
// the analysis pipeline, together with the graph-description parser and the
// canonical serialization that cache fingerprints are computed from.
//
// # Model
//
// A Graph is a set of nodes (opaque string identifiers with an optional
// display label) and a set of undirected edges between distinct declared
// nodes. Graphs are simple: no self-loops, no duplicate edges. A Graph is
// constructed once and never mutated; all accessors return copies.
//
// # Description format
//
// Graph descriptions are plain text. Statements are separated by newlines or
// semicolons; '#' starts a comment that runs to the end of the line.
//
//	a - b        # undirected edge (endpoints are declared implicitly)
//	c            # isolated node
//	d: Display   # node with a display label
//
// Node identifiers may not contain whitespace, '-', ':' or ';'. A JSON
// object of the form {"nodes":[{"id":...,"label":...}],"edges":[...]} is
// accepted as an alternative encoding of the same model.
//
// # Canonical form
//
// Canonical returns a byte serialization that is identical for any two
// descriptions that parse to the same graph, regardless of statement order
// or edge direction. It is the input to cache fingerprinting.
package graph
