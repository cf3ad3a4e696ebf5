package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
)

// Build assembles an access graph from translated connector data. Each batch
// is applied in two passes: all nodes first (merging records that share a
// NodeName), then all edges, so an edge can reference any node in its batch
// regardless of ordering. Default policies are expanded last since their
// target resolution traverses the asset hierarchy.
func Build(batches []connector.ProcessedConnectorData) (*Graph, error) {
	g := New()
	for _, batch := range batches {
		if err := g.addBatchNodes(batch); err != nil {
			return nil, err
		}
		if err := g.addBatchEdges(batch); err != nil {
			return nil, err
		}
	}
	// Default-policy expansion needs the full asset hierarchy in place, so it
	// runs after every batch has been applied.
	for _, batch := range batches {
		for _, dp := range batch.DefaultPolicies {
			if err := g.expandDefaultPolicy(dp); err != nil {
				return nil, err
			}
		}
	}
	for _, batch := range batches {
		for user, row := range batch.EffectivePermissions {
			for asset, perms := range row {
				g.SetEffectivePermissions(user, asset, perms)
			}
		}
	}
	return g, nil
}

func (g *Graph) addBatchNodes(batch connector.ProcessedConnectorData) error {
	for _, u := range batch.Users {
		node := UserNode{
			Name:             u.Name.Name(),
			Identifiers:      u.Identifiers,
			OtherIdentifiers: toSet(u.OtherIdentifiers),
			Metadata:         u.Metadata,
			Connectors:       map[jetty.ConnectorNamespace]bool{u.Connector: true},
		}
		if _, err := g.AddNode(node); err != nil {
			return err
		}
	}
	for _, grp := range batch.Groups {
		node := GroupNode{
			Name:       grp.Name.Name(),
			Origin:     grp.Name.Origin(),
			Metadata:   grp.Metadata,
			Connectors: map[jetty.ConnectorNamespace]bool{grp.Connector: true},
		}
		if _, err := g.AddNode(node); err != nil {
			return err
		}
	}
	for _, a := range batch.Assets {
		node := AssetNode{
			Cual:       a.Name.Cual(),
			AssetType:  a.AssetType,
			Metadata:   a.Metadata,
			Connectors: map[jetty.ConnectorNamespace]bool{a.Connector: true},
		}
		if _, err := g.AddNode(node); err != nil {
			return err
		}
	}
	for _, t := range batch.Tags {
		id, err := uuid.Parse(t.Name.Name())
		if err != nil {
			return fmt.Errorf("tag %q: parsing id: %w", t.TagName, err)
		}
		node := TagNode{
			ID:                   id,
			Name:                 t.TagName,
			Value:                t.Value,
			Description:          t.Description,
			PassThroughHierarchy: t.PassThroughHierarchy,
			PassThroughLineage:   t.PassThroughLineage,
			Connectors:           map[jetty.ConnectorNamespace]bool{t.Connector: true},
		}
		if _, err := g.AddNode(node); err != nil {
			return err
		}
	}
	for _, p := range batch.Policies {
		node := PolicyNode{
			Name:                 p.Name.Name(),
			Privileges:           toSet(p.Privileges),
			PassThroughHierarchy: p.PassThroughHierarchy,
			PassThroughLineage:   p.PassThroughLineage,
			Connectors:           map[jetty.ConnectorNamespace]bool{p.Connector: true},
		}
		if _, err := g.AddNode(node); err != nil {
			return err
		}
	}
	for _, dp := range batch.DefaultPolicies {
		node := DefaultPolicyNode{
			RootNode:     dp.RootNode,
			MatchingPath: dp.MatchingPath,
			TargetType:   dp.TargetType,
			Grantee:      dp.Grantee,
			Origin:       dp.Connector,
			Privileges:   toSet(dp.Privileges),
			Metadata:     dp.Metadata,
			Connectors:   map[jetty.ConnectorNamespace]bool{dp.Connector: true},
		}
		if _, err := g.AddNode(node); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) addBatchEdges(batch connector.ProcessedConnectorData) error {
	var edges []Edge
	for _, u := range batch.Users {
		edges = appendEdges(edges, u.Name, MemberOf, u.MemberOf)
		edges = appendEdges(edges, u.Name, GrantedBy, u.GrantedBy)
	}
	for _, grp := range batch.Groups {
		edges = appendEdges(edges, grp.Name, MemberOf, grp.MemberOf)
		edges = appendEdges(edges, grp.Name, Includes, grp.IncludesUsers)
		edges = appendEdges(edges, grp.Name, Includes, grp.IncludesGroups)
		edges = appendEdges(edges, grp.Name, GrantedBy, grp.GrantedBy)
	}
	for _, a := range batch.Assets {
		edges = appendEdges(edges, a.Name, GovernedBy, a.GovernedBy)
		edges = appendEdges(edges, a.Name, ChildOf, a.ChildOf)
		edges = appendEdges(edges, a.Name, ParentOf, a.ParentOf)
		edges = appendEdges(edges, a.Name, DerivedFrom, a.DerivedFrom)
		edges = appendEdges(edges, a.Name, DerivedTo, a.DerivedTo)
		edges = appendEdges(edges, a.Name, TaggedAs, a.TaggedAs)
	}
	for _, t := range batch.Tags {
		edges = appendEdges(edges, t.Name, AppliedTo, t.AppliedTo)
		edges = appendEdges(edges, t.Name, GovernedBy, t.GovernedBy)
	}
	for _, p := range batch.Policies {
		edges = appendEdges(edges, p.Name, Governs, p.GovernsAssets)
		edges = appendEdges(edges, p.Name, Governs, p.GovernsTags)
		edges = appendEdges(edges, p.Name, GrantedTo, p.GrantedToGroups)
		edges = appendEdges(edges, p.Name, GrantedTo, p.GrantedToUsers)
	}
	for _, edge := range edges {
		if err := g.AddEdge(edge); err != nil {
			return err
		}
	}
	return nil
}

// expandDefaultPolicy wires one default policy into the graph: an edge to
// its grantee plus a Governs edge to every asset its wildcard currently
// matches.
func (g *Graph) expandDefaultPolicy(dp connector.ProcessedDefaultPolicy) error {
	name := dp.Name
	if err := g.AddEdge(Edge{From: name, To: dp.Grantee, Type: GrantedTo}); err != nil {
		return err
	}
	targets, err := g.DefaultPolicyTargets(name)
	if err != nil {
		return fmt.Errorf("expanding %s: %w", name, err)
	}
	for _, target := range targets {
		if err := g.AddEdge(Edge{From: name, To: g.nodes[target].NodeName(), Type: Governs}); err != nil {
			return err
		}
	}
	return nil
}

func appendEdges(edges []Edge, from jetty.NodeName, t EdgeType, targets []jetty.NodeName) []Edge {
	for _, to := range targets {
		edges = append(edges, Edge{From: from, To: to, Type: t})
	}
	return edges
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
