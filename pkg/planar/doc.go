// Package planar decides graph planarity and produces certificates for the
// decision.
//
// The planarity test is the left-right algorithm (de Fraysseix–Rosenstiehl,
// in Brandes' formulation): a DFS orientation assigns every edge a lowpoint
// and nesting depth, a second pass maintains a stack of conflict pairs of
// back-edge intervals, and a third pass turns the computed edge sides into a
// combinatorial embedding. The test runs in time linear in nodes plus edges.
//
// For a planar graph the certificate is an Embedding: the clockwise rotation
// of neighbors around every node in some planar drawing. For a non-planar
// graph the certificate is an Obstruction: a minimal non-planar subgraph of
// the input, obtained by deleting every edge whose removal preserves
// non-planarity. A minimal non-planar graph is a subdivision of K5 or K3,3.
//
// The package also provides the biconnected decomposition (Hopcroft–Tarjan)
// used to partition a graph's edges into blocks.
package planar
