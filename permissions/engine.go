package permissions

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/graph"
)

// Reason strings attached to resolved permissions.
const (
	// ReasonUserDisabled is attached to every Deny for a platform-disabled
	// user.
	ReasonUserDisabled = "User is disabled"

	// ReasonMissingUsage is attached to every Deny when the user lacks a
	// usage grant on a containing scope of the asset.
	ReasonMissingUsage = "User does not have usage on the parent hierarchy."

	// ReasonExplicitGrant is attached to an Allow backed by a direct policy
	// grant.
	ReasonExplicitGrant = "Privilege explicitly granted."
)

// UsagePrivilege is the privilege name, compared case-insensitively, that
// represents usage rights on a containing scope.
const UsagePrivilege = "usage"

// PrivilegeCatalog lists the privileges applicable to each asset type. Deny
// short-circuits emit one Deny per applicable privilege; an asset type that
// lists a usage privilege requires usage grants on assets of that type when
// they contain the asset being checked.
type PrivilegeCatalog map[jetty.AssetType][]string

// Applicable returns the privileges applicable to an asset type, sorted.
func (c PrivilegeCatalog) Applicable(t jetty.AssetType) []string {
	privileges := append([]string(nil), c[t]...)
	sort.Strings(privileges)
	return privileges
}

// RequiresUsage reports whether assets of the given type gate access to the
// assets they contain.
func (c PrivilegeCatalog) RequiresUsage(t jetty.AssetType) bool {
	for _, p := range c[t] {
		if strings.EqualFold(p, UsagePrivilege) {
			return true
		}
	}
	return false
}

// Engine resolves effective permissions over a finished graph.
type Engine struct {
	g       *graph.Graph
	catalog PrivilegeCatalog
}

// NewEngine returns an engine over g. The catalog drives the Deny
// short-circuits; a nil catalog disables usage checking and produces empty
// Deny sets.
func NewEngine(g *graph.Graph, catalog PrivilegeCatalog) *Engine {
	return &Engine{g: g, catalog: catalog}
}

// Resolve computes the effective permissions of a user on an asset from the
// graph alone.
//
// Resolution order: a disabled user denies every applicable privilege; a
// missing usage grant on any containing scope denies every applicable
// privilege; otherwise each privilege granted by a policy governing the
// asset whose grantee is the user or a group in the user's membership
// closure yields one Allow. The result is sorted by privilege name.
func (e *Engine) Resolve(user, asset jetty.NodeName) ([]jetty.EffectivePermission, error) {
	userIdx, err := e.g.Index(user)
	if err != nil {
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	ui, err := e.g.UserIndex(userIdx)
	if err != nil {
		return nil, err
	}
	assetIdx, err := e.g.Index(asset)
	if err != nil {
		return nil, fmt.Errorf("resolving asset: %w", err)
	}
	ai, err := e.g.AssetIndex(assetIdx)
	if err != nil {
		return nil, err
	}
	assetType := e.g.Asset(ai).AssetType

	if e.g.User(ui).Disabled() {
		return e.denyAll(assetType, ReasonUserDisabled), nil
	}

	grantees := map[graph.NodeIndex]bool{userIdx: true}
	for _, grp := range MembershipClosure(e.g, userIdx) {
		grantees[grp] = true
	}

	if !e.hasUsageOnAncestors(assetIdx, grantees) {
		return e.denyAll(assetType, ReasonMissingUsage), nil
	}

	return e.collectGrants(assetIdx, grantees), nil
}

// Permissions returns connector-reported permissions for the pair when any
// connector supplied them, and falls back to graph resolution otherwise.
func (e *Engine) Permissions(user, asset jetty.NodeName) ([]jetty.EffectivePermission, error) {
	if reported := e.g.EffectivePermissions(user, asset); len(reported) > 0 {
		return reported, nil
	}
	return e.Resolve(user, asset)
}

func (e *Engine) denyAll(assetType jetty.AssetType, reason string) []jetty.EffectivePermission {
	applicable := e.catalog.Applicable(assetType)
	perms := make([]jetty.EffectivePermission, 0, len(applicable))
	for _, privilege := range applicable {
		perms = append(perms, jetty.NewEffectivePermission(privilege, jetty.Deny, reason))
	}
	return perms
}

// hasUsageOnAncestors checks that every containing scope that gates access
// carries at least one usage grant for one of the grantees.
func (e *Engine) hasUsageOnAncestors(assetIdx graph.NodeIndex, grantees map[graph.NodeIndex]bool) bool {
	ancestors := e.g.MatchingDescendants(
		assetIdx,
		graph.EdgeOfType(graph.ChildOf),
		graph.NodeOfKind(jetty.KindAsset),
		graph.NodeOfKind(jetty.KindAsset),
		1, 0,
	)
	for _, ancestor := range ancestors {
		scope := e.g.NodeAt(ancestor).(graph.AssetNode)
		if !e.catalog.RequiresUsage(scope.AssetType) {
			continue
		}
		if !e.hasPrivilegeGrant(ancestor, grantees, func(p string) bool {
			return strings.EqualFold(p, UsagePrivilege)
		}) {
			return false
		}
	}
	return true
}

func (e *Engine) hasPrivilegeGrant(assetIdx graph.NodeIndex, grantees map[graph.NodeIndex]bool, match func(string) bool) bool {
	for _, policy := range e.governingPolicies(assetIdx) {
		if !e.grantedToAny(policy, grantees) {
			continue
		}
		for privilege := range policyPrivileges(e.g.NodeAt(policy)) {
			if match(privilege) {
				return true
			}
		}
	}
	return false
}

// collectGrants aggregates Allow permissions from every policy governing the
// asset whose grantee set intersects grantees. Policies are scanned in name
// order; the first grant of a privilege is authoritative and later grants
// only accumulate reasons.
func (e *Engine) collectGrants(assetIdx graph.NodeIndex, grantees map[graph.NodeIndex]bool) []jetty.EffectivePermission {
	policies := e.governingPolicies(assetIdx)
	sort.Slice(policies, func(i, j int) bool {
		return e.g.NodeAt(policies[i]).NodeName().String() < e.g.NodeAt(policies[j]).NodeName().String()
	})

	byPrivilege := make(map[string]*jetty.EffectivePermission)
	for _, policy := range policies {
		if !e.grantedToAny(policy, grantees) {
			continue
		}
		name := e.g.NodeAt(policy).NodeName()
		privileges := setToSorted(policyPrivileges(e.g.NodeAt(policy)))
		for _, privilege := range privileges {
			if existing, ok := byPrivilege[privilege]; ok {
				existing.Reasons = append(existing.Reasons,
					fmt.Sprintf("Also granted by %s.", name))
				continue
			}
			perm := jetty.NewEffectivePermission(privilege, jetty.Allow, ReasonExplicitGrant)
			byPrivilege[privilege] = &perm
		}
	}

	out := make([]jetty.EffectivePermission, 0, len(byPrivilege))
	for _, privilege := range sortedKeys(byPrivilege) {
		out = append(out, *byPrivilege[privilege])
	}
	return out
}

// governingPolicies returns the policies and default policies directly
// governing the asset. Wildcard policies were expanded to Governs edges at
// build time, so no traversal beyond one hop is needed.
func (e *Engine) governingPolicies(assetIdx graph.NodeIndex) []graph.NodeIndex {
	return e.g.MatchingChildren(
		assetIdx,
		graph.EdgeOfType(graph.GovernedBy),
		graph.NodeOfKind(jetty.KindPolicy, jetty.KindDefaultPolicy),
	)
}

func (e *Engine) grantedToAny(policyIdx graph.NodeIndex, grantees map[graph.NodeIndex]bool) bool {
	for _, grantee := range e.g.Neighbors(policyIdx, func(t graph.EdgeType) bool { return t == graph.GrantedTo }) {
		if grantees[grantee] {
			return true
		}
	}
	return false
}

func policyPrivileges(node graph.Node) map[string]bool {
	switch p := node.(type) {
	case graph.PolicyNode:
		return p.Privileges
	case graph.DefaultPolicyNode:
		return p.Privileges
	default:
		return nil
	}
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]*jetty.EffectivePermission) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
