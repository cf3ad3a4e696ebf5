package graph

import (
	"github.com/jettylabs/jetty"
)

// Extract returns the neighborhood of a node as a new graph: every node
// within maxDepth edges of from (following all edge types), and every edge
// between two included nodes. maxDepth <= 0 means unbounded, which yields
// from's connected component. Indices in the extracted graph are its own;
// carry NodeNames across.
func (g *Graph) Extract(from jetty.NodeName, maxDepth int) (*Graph, error) {
	start, err := g.Index(from)
	if err != nil {
		return nil, err
	}
	if maxDepth <= 0 {
		maxDepth = g.NodeCount() - 1
	}

	included := map[NodeIndex]bool{start: true}
	frontier := []NodeIndex{start}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []NodeIndex
		for _, idx := range frontier {
			for _, neighbor := range g.Neighbors(idx, nil) {
				if included[neighbor] {
					continue
				}
				included[neighbor] = true
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	sub := New()
	for idx := range g.nodes {
		if !included[NodeIndex(idx)] {
			continue
		}
		if _, err := sub.AddNode(g.nodes[idx]); err != nil {
			return nil, err
		}
	}
	for idx, refs := range g.out {
		if !included[NodeIndex(idx)] {
			continue
		}
		for _, ref := range refs {
			if !included[ref.to] {
				continue
			}
			edge := Edge{
				From: g.nodes[idx].NodeName(),
				To:   g.nodes[ref.to].NodeName(),
				Type: ref.edgeType,
			}
			if err := sub.AddEdge(edge); err != nil {
				return nil, err
			}
		}
	}
	return sub, nil
}
