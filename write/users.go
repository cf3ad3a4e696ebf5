package write

import (
	"fmt"
	"strings"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
)

// LocalIdentity is one platform's name for a user.
type LocalIdentity struct {
	Connector jetty.ConnectorNamespace
	LocalName string
}

func (l LocalIdentity) String() string {
	return fmt.Sprintf("%s: %s", l.Connector, l.LocalName)
}

// UserDiff combines the identity changes and the membership changes for one
// user.
type UserDiff struct {
	User jetty.NodeName
	Op   Op
	// AddIdentities and RemoveIdentities change which local names resolve
	// to this user.
	AddIdentities    []LocalIdentity
	RemoveIdentities []LocalIdentity
	// AddMemberOf and RemoveMemberOf change the user's direct group
	// memberships, already connector-scoped and capability-flattened.
	AddMemberOf    []jetty.NodeName
	RemoveMemberOf []jetty.NodeName
}

// Connectors returns every namespace this diff touches, sorted.
func (d UserDiff) Connectors() []jetty.ConnectorNamespace {
	set := make(map[jetty.ConnectorNamespace]bool)
	for _, id := range d.AddIdentities {
		set[id.Connector] = true
	}
	for _, id := range d.RemoveIdentities {
		set[id.Connector] = true
	}
	for _, g := range d.AddMemberOf {
		set[g.Origin()] = true
	}
	for _, g := range d.RemoveMemberOf {
		set[g.Origin()] = true
	}
	out := make([]jetty.ConnectorNamespace, 0, len(set))
	for ns := range set {
		out = append(out, ns)
	}
	sortByLowerName(out, func(ns jetty.ConnectorNamespace) string { return string(ns) })
	return out
}

// ForConnector returns a copy of the diff restricted to one namespace.
func (d UserDiff) ForConnector(ns jetty.ConnectorNamespace) UserDiff {
	out := UserDiff{User: d.User, Op: d.Op}
	for _, id := range d.AddIdentities {
		if id.Connector == ns {
			out.AddIdentities = append(out.AddIdentities, id)
		}
	}
	for _, id := range d.RemoveIdentities {
		if id.Connector == ns {
			out.RemoveIdentities = append(out.RemoveIdentities, id)
		}
	}
	for _, g := range d.AddMemberOf {
		if g.Origin() == ns {
			out.AddMemberOf = append(out.AddMemberOf, g)
		}
	}
	for _, g := range d.RemoveMemberOf {
		if g.Origin() == ns {
			out.RemoveMemberOf = append(out.RemoveMemberOf, g)
		}
	}
	return out
}

// String renders the diff in plan style.
func (d UserDiff) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s user: %s\n", d.Op, d.User)
	for _, id := range d.AddIdentities {
		fmt.Fprintf(&b, "  + %s\n", id)
	}
	for _, id := range d.RemoveIdentities {
		fmt.Fprintf(&b, "  - %s\n", id)
	}
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

// identityConfigState maps each configured user to the local identities the
// configuration declares.
func identityConfigState(cfg Config) map[jetty.NodeName]map[LocalIdentity]bool {
	state := make(map[jetty.NodeName]map[LocalIdentity]bool, len(cfg.Users))
	for _, u := range cfg.Users {
		identities := make(map[LocalIdentity]bool, len(u.Identifiers))
		for ns, local := range u.Identifiers {
			identities[LocalIdentity{Connector: ns, LocalName: local}] = true
		}
		state[jetty.UserName(u.Name)] = identities
	}
	return state
}

// identityEnvState inverts the translator's local-user map: user NodeName to
// the set of local identities currently resolving to it.
func identityEnvState(tr *translate.Translator) map[jetty.NodeName]map[LocalIdentity]bool {
	state := make(map[jetty.NodeName]map[LocalIdentity]bool)
	for ns, locals := range tr.LocalUsers() {
		for local, user := range locals {
			if state[user] == nil {
				state[user] = make(map[LocalIdentity]bool)
			}
			state[user][LocalIdentity{Connector: ns, LocalName: local}] = true
		}
	}
	return state
}

// membershipConfigState expands each configured user's member_of into
// connector-scoped groups, one per group-capable connector the user has an
// identity on. Connectors without nested-group support get the flattened
// closure of the configured group hierarchy instead of the direct list.
func membershipConfigState(cfg Config, connectors map[jetty.ConnectorNamespace]bool) map[jetty.NodeName]map[jetty.NodeName]bool {
	nameMap := groupNodeNames(cfg.Groups, connectors)
	parentsOf := make(map[string][]string, len(cfg.Groups))
	for _, g := range cfg.Groups {
		parentsOf[g.Name] = g.MemberOf
	}

	state := make(map[jetty.NodeName]map[jetty.NodeName]bool, len(cfg.Users))
	for _, u := range cfg.Users {
		memberOf := make(map[jetty.NodeName]bool)
		for ns := range u.Identifiers {
			nested, capable := connectors[ns]
			if !capable {
				continue
			}
			groups := u.MemberOf
			if !nested {
				groups = flattenGroups(u.MemberOf, parentsOf)
			}
			for _, grp := range groups {
				memberOf[nameMap[grp][ns]] = true
			}
		}
		state[jetty.UserName(u.Name)] = memberOf
	}
	return state
}

// flattenGroups returns the groups plus every configured ancestor group,
// each at most once. Termination does not depend on the config being
// acyclic.
func flattenGroups(groups []string, parentsOf map[string][]string) []string {
	seen := make(map[string]bool)
	var out []string
	worklist := append([]string(nil), groups...)
	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if seen[current] {
			continue
		}
		seen[current] = true
		out = append(out, current)
		worklist = append(worklist, parentsOf[current]...)
	}
	return out
}

// membershipEnvState reads each user's direct memberships from the graph,
// restricted to groups on group-capable connectors.
func membershipEnvState(g *graph.Graph, connectors map[jetty.ConnectorNamespace]bool) map[jetty.NodeName]map[jetty.NodeName]bool {
	state := make(map[jetty.NodeName]map[jetty.NodeName]bool)
	for _, name := range g.NodesOfKind(jetty.KindUser) {
		idx, err := g.Index(name)
		if err != nil {
			continue
		}
		memberOf := make(map[jetty.NodeName]bool)
		for _, grp := range g.MatchingChildren(idx, graph.EdgeOfType(graph.MemberOf), graph.NodeOfKind(jetty.KindGroup)) {
			grpName := g.NodeAt(grp).NodeName()
			if _, capable := connectors[grpName.Origin()]; capable {
				memberOf[grpName] = true
			}
		}
		state[name] = memberOf
	}
	return state
}

// UserDiffs compares configured users against the environment: identity
// mappings against the translator, memberships against the graph. One diff
// per changed user, sorted by lowercased name.
func UserDiffs(
	cfg Config,
	g *graph.Graph,
	tr *translate.Translator,
	manifests map[jetty.ConnectorNamespace]connector.Manifest,
) ([]UserDiff, error) {
	connectors := groupCapableConnectors(manifests)
	identityConfig := identityConfigState(cfg)
	identityEnv := identityEnvState(tr)
	membershipConfig := membershipConfigState(cfg, connectors)
	membershipEnv := membershipEnvState(g, connectors)

	var diffs []UserDiff
	for user, desiredIdentities := range identityConfig {
		diff := UserDiff{User: user}

		currentIdentities, exists := identityEnv[user]
		delete(identityEnv, user)
		if exists {
			diff.Op = OpModify
		} else {
			diff.Op = OpAdd
		}
		diff.AddIdentities, diff.RemoveIdentities = SetDiff(desiredIdentities, currentIdentities, LocalIdentity.String)
		diff.AddMemberOf, diff.RemoveMemberOf = SetDiff(membershipConfig[user], membershipEnv[user], jetty.NodeName.String)

		if diff.Op == OpModify &&
			len(diff.AddIdentities) == 0 && len(diff.RemoveIdentities) == 0 &&
			len(diff.AddMemberOf) == 0 && len(diff.RemoveMemberOf) == 0 {
			continue
		}
		diffs = append(diffs, diff)
	}

	// Users known to the environment but absent from the config lose their
	// mappings.
	for user, identities := range identityEnv {
		remove, _ := SetDiff(identities, nil, LocalIdentity.String)
		diffs = append(diffs, UserDiff{
			User:             user,
			Op:               OpRemove,
			RemoveIdentities: remove,
		})
	}

	sortByLowerName(diffs, func(d UserDiff) string { return d.User.String() })
	return diffs, nil
}
