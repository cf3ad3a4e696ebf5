package permissions

import (
	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/graph"
)

// MembershipClosure returns every group reachable from start through
// MemberOf edges, transitively. start may be a user or a group; it appears
// in its own closure exactly when the membership graph cycles back to it.
// Each group enters the worklist once, so computation terminates on cyclic
// graphs and recomputing over an already-closed set adds nothing.
func MembershipClosure(g *graph.Graph, start graph.NodeIndex) []graph.NodeIndex {
	memberOf := graph.EdgeOfType(graph.MemberOf)
	inClosure := make(map[graph.NodeIndex]bool)
	var closure []graph.NodeIndex

	worklist := []graph.NodeIndex{start}
	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, parent := range g.Neighbors(current, memberOf) {
			if inClosure[parent] || g.NodeAt(parent).Kind() != jetty.KindGroup {
				continue
			}
			inClosure[parent] = true
			closure = append(closure, parent)
			worklist = append(worklist, parent)
		}
	}
	return closure
}

// UserMembershipClosure resolves a user by name and returns the NodeNames of
// every group in their membership closure.
func UserMembershipClosure(g *graph.Graph, user jetty.NodeName) ([]jetty.NodeName, error) {
	idx, err := g.Index(user)
	if err != nil {
		return nil, err
	}
	if _, err := g.UserIndex(idx); err != nil {
		return nil, err
	}
	closure := MembershipClosure(g, idx)
	names := make([]jetty.NodeName, len(closure))
	for i, c := range closure {
		names[i] = g.NodeAt(c).NodeName()
	}
	return names, nil
}
