package write

import (
	"fmt"
	"strings"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
)

// PolicyDiff is one change to one policy on one connector. A policy governing
// assets on several platforms produces one diff per platform.
type PolicyDiff struct {
	Policy    jetty.NodeName
	Connector jetty.ConnectorNamespace
	Op        Op

	AddPrivileges    []string
	RemovePrivileges []string
	AddGoverns       []jetty.NodeName
	RemoveGoverns    []jetty.NodeName
	AddGrantedTo     []jetty.NodeName
	RemoveGrantedTo  []jetty.NodeName
}

// String renders the diff in plan style.
func (d PolicyDiff) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s policy: %s (%s)\n", d.Op, d.Policy, d.Connector)
	writeSection(&b, "privileges", d.AddPrivileges, d.RemovePrivileges, func(p string) string { return p })
	writeSection(&b, "governs", d.AddGoverns, d.RemoveGoverns, jetty.NodeName.String)
	writeSection(&b, "granted to", d.AddGrantedTo, d.RemoveGrantedTo, jetty.NodeName.String)
	return b.String()
}

func writeSection[T any](b *strings.Builder, header string, add, remove []T, name func(T) string) {
	if len(add) == 0 && len(remove) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", header)
	for _, v := range add {
		fmt.Fprintf(b, "    + %s\n", name(v))
	}
	for _, v := range remove {
		fmt.Fprintf(b, "    - %s\n", name(v))
	}
}

type policyKey struct {
	policy    jetty.NodeName
	connector jetty.ConnectorNamespace
}

type policyState struct {
	privileges map[string]bool
	governs    map[jetty.NodeName]bool
	grantedTo  map[jetty.NodeName]bool
}

func newPolicyState() policyState {
	return policyState{
		privileges: make(map[string]bool),
		governs:    make(map[jetty.NodeName]bool),
		grantedTo:  make(map[jetty.NodeName]bool),
	}
}

// policyConfigState expands each configured policy into per-connector states.
// The connectors a policy touches are derived from the cuals of its governed
// assets; a policy governing nothing has nowhere to live and is skipped.
func policyConfigState(cfg Config, tr *translate.Translator, connectors map[jetty.ConnectorNamespace]bool) (map[policyKey]policyState, error) {
	groupNames := groupNodeNames(cfg.Groups, connectors)

	state := make(map[policyKey]policyState)
	for _, p := range cfg.Policies {
		policy := jetty.PolicyName(p.Name)

		governsByNS := make(map[jetty.ConnectorNamespace]map[jetty.NodeName]bool)
		for _, cual := range p.GovernsAssets {
			ns, err := tr.NamespaceOfCual(cual)
			if err != nil {
				return nil, fmt.Errorf("policy %q: %w", p.Name, err)
			}
			if governsByNS[ns] == nil {
				governsByNS[ns] = make(map[jetty.NodeName]bool)
			}
			governsByNS[ns][jetty.AssetName(cual)] = true
		}

		for ns, governs := range governsByNS {
			entry := newPolicyState()
			entry.governs = governs
			for _, priv := range p.Privileges {
				entry.privileges[priv] = true
			}
			for _, grp := range p.GrantedToGroups {
				entry.grantedTo[groupNames[grp][ns]] = true
			}
			for _, u := range p.GrantedToUsers {
				entry.grantedTo[jetty.UserName(u)] = true
			}
			state[policyKey{policy: policy, connector: ns}] = entry
		}
	}
	return state, nil
}

// policyEnvState reads the current policies from the graph, split per
// connector by each governed asset's cual. Privileges and user grantees apply
// on every connector the policy touches; group grantees stay on the group's
// origin connector.
func policyEnvState(g *graph.Graph, tr *translate.Translator) (map[policyKey]policyState, error) {
	state := make(map[policyKey]policyState)
	for _, name := range g.NodesOfKind(jetty.KindPolicy) {
		idx, err := g.Index(name)
		if err != nil {
			continue
		}
		pi, err := g.PolicyIndex(idx)
		if err != nil {
			return nil, err
		}
		node := g.Policy(pi)

		governsByNS := make(map[jetty.ConnectorNamespace]map[jetty.NodeName]bool)
		for _, asset := range g.MatchingChildren(idx, graph.EdgeOfType(graph.Governs), graph.NodeOfKind(jetty.KindAsset)) {
			assetName := g.NodeAt(asset).NodeName()
			ns, err := tr.NamespaceOfCual(assetName.Cual())
			if err != nil {
				return nil, fmt.Errorf("policy %s: %w", name, err)
			}
			if governsByNS[ns] == nil {
				governsByNS[ns] = make(map[jetty.NodeName]bool)
			}
			governsByNS[ns][assetName] = true
		}

		grantees := g.MatchingChildren(idx, graph.EdgeOfType(graph.GrantedTo), graph.NodeOfKind(jetty.KindUser, jetty.KindGroup))
		for ns, governs := range governsByNS {
			entry := newPolicyState()
			entry.governs = governs
			for priv := range node.Privileges {
				entry.privileges[priv] = true
			}
			for _, grantee := range grantees {
				granteeName := g.NodeAt(grantee).NodeName()
				if granteeName.Kind() == jetty.KindGroup && granteeName.Origin() != ns {
					continue
				}
				entry.grantedTo[granteeName] = true
			}
			state[policyKey{policy: name, connector: ns}] = entry
		}
	}
	return state, nil
}

// PolicyDiffs compares configured policies against the graph and returns one
// diff per changed connector-scoped policy, sorted by lowercased name.
func PolicyDiffs(
	cfg Config,
	g *graph.Graph,
	tr *translate.Translator,
	manifests map[jetty.ConnectorNamespace]connector.Manifest,
) ([]PolicyDiff, error) {
	connectors := make(map[jetty.ConnectorNamespace]bool, len(manifests))
	for ns, m := range manifests {
		if m.Capabilities.Policies {
			connectors[ns] = m.Capabilities.Groups != nil && m.Capabilities.Groups.Nested
		}
	}

	configState, err := policyConfigState(cfg, tr, connectors)
	if err != nil {
		return nil, err
	}
	envState, err := policyEnvState(g, tr)
	if err != nil {
		return nil, err
	}

	var diffs []PolicyDiff
	for key, desired := range configState {
		if _, capable := connectors[key.connector]; !capable {
			return nil, fmt.Errorf("policy %s: %w: connector %q cannot write policies",
				key.policy, ErrUnsupportedCapability, key.connector)
		}
		diff := PolicyDiff{Policy: key.policy, Connector: key.connector}

		current, exists := envState[key]
		delete(envState, key)
		if exists {
			diff.Op = OpModify
		} else {
			diff.Op = OpAdd
		}
		diff.AddPrivileges, diff.RemovePrivileges = SetDiff(desired.privileges, current.privileges, func(p string) string { return p })
		diff.AddGoverns, diff.RemoveGoverns = SetDiff(desired.governs, current.governs, jetty.NodeName.String)
		diff.AddGrantedTo, diff.RemoveGrantedTo = SetDiff(desired.grantedTo, current.grantedTo, jetty.NodeName.String)

		if diff.Op == OpModify &&
			len(diff.AddPrivileges) == 0 && len(diff.RemovePrivileges) == 0 &&
			len(diff.AddGoverns) == 0 && len(diff.RemoveGoverns) == 0 &&
			len(diff.AddGrantedTo) == 0 && len(diff.RemoveGrantedTo) == 0 {
			continue
		}
		diffs = append(diffs, diff)
	}

	// Policies in the environment with no configuration counterpart go
	// away, but only on connectors the configuration manages.
	for key := range envState {
		if _, capable := connectors[key.connector]; !capable {
			continue
		}
		diffs = append(diffs, PolicyDiff{
			Policy:    key.policy,
			Connector: key.connector,
			Op:        OpRemove,
		})
	}

	sortByLowerName(diffs, func(d PolicyDiff) string {
		return d.Policy.String() + "\x00" + string(d.Connector)
	})
	return diffs, nil
}
