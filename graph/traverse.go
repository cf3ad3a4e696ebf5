package graph

import (
	"github.com/jettylabs/jetty"
)

// Traversal over the typed graph. Every walk is driven by three matchers:
// an edge matcher deciding which edges to follow, a passthrough matcher
// deciding which intermediate nodes the walk may continue through, and a
// target matcher deciding which reached nodes to collect. A nil matcher
// matches everything.

// EdgeMatcher selects which edge types a traversal follows.
type EdgeMatcher func(EdgeType) bool

// NodeMatcher selects nodes during a traversal.
type NodeMatcher func(Node) bool

// EdgeOfType returns a matcher that accepts exactly the given edge types.
func EdgeOfType(types ...EdgeType) EdgeMatcher {
	return func(t EdgeType) bool {
		for _, want := range types {
			if t == want {
				return true
			}
		}
		return false
	}
}

// NodeOfKind returns a matcher that accepts exactly the given node kinds.
func NodeOfKind(kinds ...jetty.NodeKind) NodeMatcher {
	return func(n Node) bool {
		for _, want := range kinds {
			if n.Kind() == want {
				return true
			}
		}
		return false
	}
}

// MatchingDescendants walks out from `from` along edges accepted by
// edgeMatcher and returns every reached node that passes targetMatcher at a
// depth in [minDepth, maxDepth]. The walk only continues through nodes that
// pass passthroughMatcher. Each node is visited at most once, so the walk
// terminates on cyclic graphs; maxDepth <= 0 means unbounded (capped at
// NodeCount-1, the longest possible simple path).
func (g *Graph) MatchingDescendants(
	from NodeIndex,
	edgeMatcher EdgeMatcher,
	passthroughMatcher NodeMatcher,
	targetMatcher NodeMatcher,
	minDepth, maxDepth int,
) []NodeIndex {
	if maxDepth <= 0 {
		maxDepth = g.NodeCount() - 1
	}
	visited := map[NodeIndex]bool{from: true}
	var results []NodeIndex
	g.matchingDescendants(from, edgeMatcher, passthroughMatcher, targetMatcher,
		minDepth, maxDepth, 1, visited, &results)
	return results
}

func (g *Graph) matchingDescendants(
	from NodeIndex,
	edgeMatcher EdgeMatcher,
	passthroughMatcher NodeMatcher,
	targetMatcher NodeMatcher,
	minDepth, maxDepth, depth int,
	visited map[NodeIndex]bool,
	results *[]NodeIndex,
) {
	if depth > maxDepth {
		return
	}
	for _, next := range g.Neighbors(from, edgeMatcher) {
		if visited[next] {
			continue
		}
		visited[next] = true
		node := g.nodes[next]
		if depth >= minDepth && (targetMatcher == nil || targetMatcher(node)) {
			*results = append(*results, next)
		}
		if passthroughMatcher == nil || passthroughMatcher(node) {
			g.matchingDescendants(next, edgeMatcher, passthroughMatcher, targetMatcher,
				minDepth, maxDepth, depth+1, visited, results)
		}
	}
}

// MatchingChildren returns the immediate neighbors of `from` reached along
// edges accepted by edgeMatcher that pass targetMatcher.
func (g *Graph) MatchingChildren(
	from NodeIndex,
	edgeMatcher EdgeMatcher,
	targetMatcher NodeMatcher,
) []NodeIndex {
	var results []NodeIndex
	for _, next := range g.Neighbors(from, edgeMatcher) {
		if targetMatcher == nil || targetMatcher(g.nodes[next]) {
			results = append(results, next)
		}
	}
	return results
}

// NodePath is one simple path through the graph, start node first.
type NodePath []NodeIndex

// Names resolves the path to NodeNames.
func (p NodePath) Names(g *Graph) []jetty.NodeName {
	names := make([]jetty.NodeName, len(p))
	for i, idx := range p {
		names[i] = g.nodes[idx].NodeName()
	}
	return names
}

// AllMatchingSimplePathsToDescendants enumerates every simple path from
// `from` to each target, grouped by target. Edges, passthrough nodes, depth
// bounds, and targets behave as in MatchingDescendants, except that the
// visited set is per-path: a node excluded from one path may still appear on
// another. Paths never repeat a node, so enumeration terminates on cyclic
// graphs.
func (g *Graph) AllMatchingSimplePathsToDescendants(
	from NodeIndex,
	edgeMatcher EdgeMatcher,
	passthroughMatcher NodeMatcher,
	targetMatcher NodeMatcher,
	minDepth, maxDepth int,
) map[NodeIndex][]NodePath {
	if maxDepth <= 0 {
		maxDepth = g.NodeCount() - 1
	}
	results := make(map[NodeIndex][]NodePath)
	onPath := map[NodeIndex]bool{from: true}
	path := NodePath{from}
	g.simplePaths(from, edgeMatcher, passthroughMatcher, targetMatcher,
		minDepth, maxDepth, 1, onPath, path, results)
	if len(results) == 0 {
		return nil
	}
	return results
}

func (g *Graph) simplePaths(
	from NodeIndex,
	edgeMatcher EdgeMatcher,
	passthroughMatcher NodeMatcher,
	targetMatcher NodeMatcher,
	minDepth, maxDepth, depth int,
	onPath map[NodeIndex]bool,
	path NodePath,
	results map[NodeIndex][]NodePath,
) {
	if depth > maxDepth {
		return
	}
	for _, next := range g.Neighbors(from, edgeMatcher) {
		if onPath[next] {
			continue
		}
		node := g.nodes[next]
		onPath[next] = true
		path = append(path, next)

		if depth >= minDepth && (targetMatcher == nil || targetMatcher(node)) {
			found := make(NodePath, len(path))
			copy(found, path)
			results[next] = append(results[next], found)
		}
		if passthroughMatcher == nil || passthroughMatcher(node) {
			g.simplePaths(next, edgeMatcher, passthroughMatcher, targetMatcher,
				minDepth, maxDepth, depth+1, onPath, path, results)
		}

		path = path[:len(path)-1]
		delete(onPath, next)
	}
}
