package write

import (
	"fmt"
	"strings"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
)

// DefaultPolicyDiff is one change to one wildcard policy. The identity of a
// wildcard policy includes its root, path, target type, and grantee, so the
// only mutable attribute is the privilege set.
type DefaultPolicyDiff struct {
	Name      jetty.NodeName
	Connector jetty.ConnectorNamespace
	Op        Op

	AddPrivileges    []string
	RemovePrivileges []string
}

// String renders the diff in plan style.
func (d DefaultPolicyDiff) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s default policy: %s\n", d.Op, d.Name)
	writeSection(&b, "privileges", d.AddPrivileges, d.RemovePrivileges, func(p string) string { return p })
	return b.String()
}

// defaultPolicyConfigState expands the configuration into one privilege set
// per (root, path, type, grantee) identity. The connector comes from the root
// asset's cual.
func defaultPolicyConfigState(
	cfg Config,
	tr *translate.Translator,
	connectors map[jetty.ConnectorNamespace]bool,
) (map[jetty.NodeName]map[string]bool, map[jetty.NodeName]jetty.ConnectorNamespace, error) {
	groupNames := groupNodeNames(cfg.Groups, connectors)

	state := make(map[jetty.NodeName]map[string]bool)
	origins := make(map[jetty.NodeName]jetty.ConnectorNamespace)
	for _, dp := range cfg.DefaultPolicies {
		ns, err := tr.NamespaceOfCual(dp.RootAsset)
		if err != nil {
			return nil, nil, fmt.Errorf("default policy on %q: %w", dp.RootAsset, err)
		}
		if _, capable := connectors[ns]; !capable {
			return nil, nil, fmt.Errorf("default policy on %q: %w: connector %q cannot write default policies",
				dp.RootAsset, ErrUnsupportedCapability, ns)
		}
		root := jetty.AssetName(dp.RootAsset)
		for _, grp := range dp.GrantedToGroups {
			name := jetty.DefaultPolicyName(root, dp.Path, dp.TargetType, groupNames[grp][ns], ns)
			privileges := make(map[string]bool, len(dp.Privileges))
			for _, priv := range dp.Privileges {
				privileges[priv] = true
			}
			state[name] = privileges
			origins[name] = ns
		}
	}
	return state, origins, nil
}

// defaultPolicyEnvState reads the current wildcard policies from the graph.
func defaultPolicyEnvState(g *graph.Graph) (map[jetty.NodeName]map[string]bool, map[jetty.NodeName]jetty.ConnectorNamespace, error) {
	state := make(map[jetty.NodeName]map[string]bool)
	origins := make(map[jetty.NodeName]jetty.ConnectorNamespace)
	for _, name := range g.NodesOfKind(jetty.KindDefaultPolicy) {
		idx, err := g.Index(name)
		if err != nil {
			continue
		}
		dpi, err := g.DefaultPolicyIndex(idx)
		if err != nil {
			return nil, nil, err
		}
		node := g.DefaultPolicy(dpi)
		privileges := make(map[string]bool, len(node.Privileges))
		for priv := range node.Privileges {
			privileges[priv] = true
		}
		state[name] = privileges
		origins[name] = node.Origin
	}
	return state, origins, nil
}

// DefaultPolicyDiffs compares configured wildcard policies against the graph
// and returns one diff per change, sorted by lowercased name.
func DefaultPolicyDiffs(
	cfg Config,
	g *graph.Graph,
	tr *translate.Translator,
	manifests map[jetty.ConnectorNamespace]connector.Manifest,
) ([]DefaultPolicyDiff, error) {
	connectors := make(map[jetty.ConnectorNamespace]bool, len(manifests))
	for ns, m := range manifests {
		if m.Capabilities.DefaultPolicies {
			connectors[ns] = m.Capabilities.Groups != nil && m.Capabilities.Groups.Nested
		}
	}

	configState, configOrigins, err := defaultPolicyConfigState(cfg, tr, connectors)
	if err != nil {
		return nil, err
	}
	envState, envOrigins, err := defaultPolicyEnvState(g)
	if err != nil {
		return nil, err
	}

	var diffs []DefaultPolicyDiff
	for name, desired := range configState {
		diff := DefaultPolicyDiff{Name: name, Connector: configOrigins[name]}

		current, exists := envState[name]
		delete(envState, name)
		if exists {
			diff.Op = OpModify
		} else {
			diff.Op = OpAdd
		}
		diff.AddPrivileges, diff.RemovePrivileges = SetDiff(desired, current, func(p string) string { return p })

		if diff.Op == OpModify && len(diff.AddPrivileges) == 0 && len(diff.RemovePrivileges) == 0 {
			continue
		}
		diffs = append(diffs, diff)
	}

	for name := range envState {
		ns := envOrigins[name]
		if _, capable := connectors[ns]; !capable {
			continue
		}
		diffs = append(diffs, DefaultPolicyDiff{
			Name:      name,
			Connector: ns,
			Op:        OpRemove,
		})
	}

	sortByLowerName(diffs, func(d DefaultPolicyDiff) string { return d.Name.String() })
	return diffs, nil
}
