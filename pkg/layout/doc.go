// Package layout assigns 2D display coordinates to graph nodes.
//
// Planar graphs get a straight-line drawing derived from their combinatorial
// embedding (a Tutte barycentric layout with the largest face as the outer
// boundary). Whenever that construction cannot place every node at a finite,
// distinct position — trees and near-trees degenerate under barycentric
// averaging — the package falls back to a deterministic force-directed
// layout. Non-planar graphs always use the force layout. Positions carry no
// guarantee beyond finiteness; repeated runs on the same graph produce
// identical coordinates.
package layout
