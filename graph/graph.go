package graph

import (
	"fmt"
	"sort"

	"github.com/jettylabs/jetty"
)

// NodeIndex identifies a node inside one Graph. Indices are stable for the
// lifetime of the graph (nodes are never removed) but are not meaningful
// across graphs; use NodeName for durable identity.
type NodeIndex int

type edgeRef struct {
	to       NodeIndex
	edgeType EdgeType
}

type edgeKey struct {
	from     NodeIndex
	to       NodeIndex
	edgeType EdgeType
}

// Graph is the in-memory access graph: an arena of typed nodes plus a typed
// adjacency list. Writes happen during ingestion; after that the graph is
// read-only and safe for concurrent queries.
type Graph struct {
	nodes  []Node
	out    [][]edgeRef
	byName map[jetty.NodeName]NodeIndex
	edges  map[edgeKey]bool

	// effectivePermissions holds connector-reported grants keyed by user
	// then asset, attached after node ingestion.
	effectivePermissions jetty.SparseMatrix[jetty.NodeName, jetty.NodeName, []jetty.EffectivePermission]
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byName:               make(map[jetty.NodeName]NodeIndex),
		edges:                make(map[edgeKey]bool),
		effectivePermissions: make(jetty.SparseMatrix[jetty.NodeName, jetty.NodeName, []jetty.EffectivePermission]),
	}
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// AddNode inserts node, or merges it into the existing node with the same
// NodeName. Returns the node's index. Merging fails with ErrMergeConflict
// when the two records disagree on a scalar attribute.
func (g *Graph) AddNode(node Node) (NodeIndex, error) {
	name := node.NodeName()
	if idx, ok := g.byName[name]; ok {
		merged, err := g.nodes[idx].merge(node)
		if err != nil {
			return 0, fmt.Errorf("merging %s: %w", name, err)
		}
		g.nodes[idx] = merged
		return idx, nil
	}
	idx := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, node)
	g.out = append(g.out, nil)
	g.byName[name] = idx
	return idx, nil
}

// AddEdge inserts the edge and its inverse. Both endpoints must already be
// in the graph; a missing endpoint is an ErrNotFound. Duplicate insertions
// are ignored.
func (g *Graph) AddEdge(edge Edge) error {
	from, ok := g.byName[edge.From]
	if !ok {
		return fmt.Errorf("edge %s -[%s]-> %s: from: %w", edge.From, edge.Type, edge.To, ErrNotFound)
	}
	to, ok := g.byName[edge.To]
	if !ok {
		return fmt.Errorf("edge %s -[%s]-> %s: to: %w", edge.From, edge.Type, edge.To, ErrNotFound)
	}
	g.insertEdge(from, to, edge.Type)
	g.insertEdge(to, from, edge.Type.Inverse())
	return nil
}

func (g *Graph) insertEdge(from, to NodeIndex, t EdgeType) {
	key := edgeKey{from: from, to: to, edgeType: t}
	if g.edges[key] {
		return
	}
	g.edges[key] = true
	g.out[from] = append(g.out[from], edgeRef{to: to, edgeType: t})
}

// HasEdge reports whether the graph contains the given edge.
func (g *Graph) HasEdge(edge Edge) bool {
	from, ok := g.byName[edge.From]
	if !ok {
		return false
	}
	to, ok := g.byName[edge.To]
	if !ok {
		return false
	}
	return g.edges[edgeKey{from: from, to: to, edgeType: edge.Type}]
}

// Index returns the index of the node with the given name.
func (g *Graph) Index(name jetty.NodeName) (NodeIndex, error) {
	idx, ok := g.byName[name]
	if !ok {
		return 0, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	return idx, nil
}

// NodeAt returns the node at idx. Panics when idx is out of range; indices
// only come from this graph, so an out-of-range index is a caller bug.
func (g *Graph) NodeAt(idx NodeIndex) Node {
	return g.nodes[idx]
}

// GetNode returns the node with the given name.
func (g *Graph) GetNode(name jetty.NodeName) (Node, error) {
	idx, err := g.Index(name)
	if err != nil {
		return nil, err
	}
	return g.nodes[idx], nil
}

// Neighbors returns the targets of all out-edges from idx whose type passes
// the matcher. A nil matcher matches every edge.
func (g *Graph) Neighbors(idx NodeIndex, edgeMatcher func(EdgeType) bool) []NodeIndex {
	var out []NodeIndex
	for _, ref := range g.out[idx] {
		if edgeMatcher == nil || edgeMatcher(ref.edgeType) {
			out = append(out, ref.to)
		}
	}
	return out
}

// Nodes calls fn for every node in the graph, in insertion order.
func (g *Graph) Nodes(fn func(NodeIndex, Node) bool) {
	for i, node := range g.nodes {
		if !fn(NodeIndex(i), node) {
			return
		}
	}
}

// Edges calls fn for every directed edge in the graph, inverses included.
// Insertion order within a node, node insertion order overall.
func (g *Graph) Edges(fn func(Edge) bool) {
	for from, refs := range g.out {
		for _, ref := range refs {
			edge := Edge{
				From: g.nodes[from].NodeName(),
				To:   g.nodes[ref.to].NodeName(),
				Type: ref.edgeType,
			}
			if !fn(edge) {
				return
			}
		}
	}
}

// NodesOfKind returns the names of all nodes of the given kind, sorted for
// deterministic output.
func (g *Graph) NodesOfKind(kind jetty.NodeKind) []jetty.NodeName {
	var out []jetty.NodeName
	for _, node := range g.nodes {
		if node.Kind() == kind {
			out = append(out, node.NodeName())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// SetEffectivePermissions attaches connector-reported permissions for one
// user/asset pair, appending to any already recorded.
func (g *Graph) SetEffectivePermissions(user, asset jetty.NodeName, perms []jetty.EffectivePermission) {
	g.effectivePermissions.SetOrMerge(user, asset, perms,
		func(existing, incoming []jetty.EffectivePermission) []jetty.EffectivePermission {
			return append(existing, incoming...)
		})
}

// EffectivePermissions returns the connector-reported permissions for one
// user/asset pair.
func (g *Graph) EffectivePermissions(user, asset jetty.NodeName) []jetty.EffectivePermission {
	perms, _ := g.effectivePermissions.Get(user, asset)
	return perms
}

// EffectivePermissionUsers returns the users for whom the connectors
// reported any permissions, sorted.
func (g *Graph) EffectivePermissionUsers() []jetty.NodeName {
	out := make([]jetty.NodeName, 0, len(g.effectivePermissions))
	for user := range g.effectivePermissions {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// EffectivePermissionAssets returns the assets on which the connectors
// reported permissions for the given user, sorted.
func (g *Graph) EffectivePermissionAssets(user jetty.NodeName) []jetty.NodeName {
	row := g.effectivePermissions.Row(user)
	out := make([]jetty.NodeName, 0, len(row))
	for asset := range row {
		out = append(out, asset)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
