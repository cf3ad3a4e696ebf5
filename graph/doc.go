// Package graph holds the in-memory access graph: a typed node arena with a
// typed, bidirectional adjacency list, built from translated connector data.
//
// Every edge insertion writes the edge and its inverse, so traversal is a
// pure out-edge walk in either logical direction. Nodes carrying the same
// NodeName across connectors are merged at insertion; see the merge rules in
// merge.go. Once built, a Graph is immutable and safe for concurrent reads.
package graph
