package write

import (
	"fmt"
	"strings"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
)

// GroupDiff is one change to one group on one connector.
type GroupDiff struct {
	Group     jetty.NodeName
	Connector jetty.ConnectorNamespace
	Op        Op
	// AddMemberOf lists memberships to create. For OpAdd it is the group's
	// full desired membership.
	AddMemberOf []jetty.NodeName
	// RemoveMemberOf lists memberships to drop. Empty for OpAdd and
	// OpRemove.
	RemoveMemberOf []jetty.NodeName
}

// String renders the diff in plan style.
func (d GroupDiff) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s group: %s\n", d.Op, d.Group)
	if len(d.AddMemberOf) > 0 || len(d.RemoveMemberOf) > 0 {
		b.WriteString("  member of:\n")
	}
	for _, g := range d.AddMemberOf {
		fmt.Fprintf(&b, "    + %s\n", g)
	}
	for _, g := range d.RemoveMemberOf {
		fmt.Fprintf(&b, "    - %s\n", g)
	}
	return b.String()
}

// groupCapableConnectors returns the namespaces whose connectors can write
// groups, mapped to whether they support nested groups.
func groupCapableConnectors(manifests map[jetty.ConnectorNamespace]connector.Manifest) map[jetty.ConnectorNamespace]bool {
	out := make(map[jetty.ConnectorNamespace]bool)
	for ns, m := range manifests {
		if m.Capabilities.Groups != nil {
			out[ns] = m.Capabilities.Groups.Nested
		}
	}
	return out
}

// groupNodeNames maps each configured group to its per-connector NodeName,
// honoring identifier overrides.
func groupNodeNames(cfg []GroupConfig, connectors map[jetty.ConnectorNamespace]bool) map[string]map[jetty.ConnectorNamespace]jetty.NodeName {
	out := make(map[string]map[jetty.ConnectorNamespace]jetty.NodeName, len(cfg))
	for _, g := range cfg {
		perConnector := make(map[jetty.ConnectorNamespace]jetty.NodeName, len(connectors))
		for ns := range connectors {
			local := g.Name
			if override, ok := g.Identifiers[ns]; ok {
				local = override
			}
			perConnector[ns] = jetty.GroupName(local, ns)
		}
		out[g.Name] = perConnector
	}
	return out
}

// groupConfigState expands the configuration into one membership map per
// connector-scoped group. Connectors without nested-group support get an
// empty membership: their hierarchy is expressed through user membership
// flattening instead.
func groupConfigState(cfg []GroupConfig, connectors map[jetty.ConnectorNamespace]bool) map[jetty.NodeName]map[jetty.NodeName]bool {
	nameMap := groupNodeNames(cfg, connectors)
	state := make(map[jetty.NodeName]map[jetty.NodeName]bool)
	for _, g := range cfg {
		for ns, node := range nameMap[g.Name] {
			memberOf := make(map[jetty.NodeName]bool)
			if connectors[ns] {
				for _, parent := range g.MemberOf {
					memberOf[nameMap[parent][ns]] = true
				}
			}
			state[node] = memberOf
		}
	}
	return state
}

// groupEnvState reads the current membership map from the graph, restricted
// to groups originating on group-capable connectors.
func groupEnvState(g *graph.Graph, connectors map[jetty.ConnectorNamespace]bool) map[jetty.NodeName]map[jetty.NodeName]bool {
	state := make(map[jetty.NodeName]map[jetty.NodeName]bool)
	for _, name := range g.NodesOfKind(jetty.KindGroup) {
		if _, capable := connectors[name.Origin()]; !capable {
			continue
		}
		idx, err := g.Index(name)
		if err != nil {
			continue
		}
		memberOf := make(map[jetty.NodeName]bool)
		for _, parent := range g.MatchingChildren(idx, graph.EdgeOfType(graph.MemberOf), graph.NodeOfKind(jetty.KindGroup)) {
			memberOf[g.NodeAt(parent).NodeName()] = true
		}
		state[name] = memberOf
	}
	return state
}

// GroupDiffs compares configured groups against the graph and returns one
// diff per changed connector-scoped group, sorted by lowercased name.
// Diffing a configuration against the environment it just produced yields
// nothing.
func GroupDiffs(cfg []GroupConfig, g *graph.Graph, manifests map[jetty.ConnectorNamespace]connector.Manifest) []GroupDiff {
	connectors := groupCapableConnectors(manifests)
	configState := groupConfigState(cfg, connectors)
	envState := groupEnvState(g, connectors)

	var diffs []GroupDiff
	for group, desired := range configState {
		current, exists := envState[group]
		if exists {
			delete(envState, group)
			add, remove := SetDiff(desired, current, jetty.NodeName.String)
			if len(add) == 0 && len(remove) == 0 {
				continue
			}
			diffs = append(diffs, GroupDiff{
				Group:          group,
				Connector:      group.Origin(),
				Op:             OpModify,
				AddMemberOf:    add,
				RemoveMemberOf: remove,
			})
			continue
		}
		add, _ := SetDiff(desired, nil, jetty.NodeName.String)
		diffs = append(diffs, GroupDiff{
			Group:       group,
			Connector:   group.Origin(),
			Op:          OpAdd,
			AddMemberOf: add,
		})
	}
	// Whatever remains in the environment is not configured and goes away.
	for group := range envState {
		diffs = append(diffs, GroupDiff{
			Group:     group,
			Connector: group.Origin(),
			Op:        OpRemove,
		})
	}

	sortByLowerName(diffs, func(d GroupDiff) string { return d.Group.String() })
	return diffs
}
