package jetty

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeKind discriminates the variants of NodeName and the node types in the
// access graph. The set is closed: query logic switches over it exhaustively.
type NodeKind int

// The node kinds in the access graph.
const (
	KindUser NodeKind = iota
	KindGroup
	KindAsset
	KindTag
	KindPolicy
	KindDefaultPolicy
)

// String returns the lowercase kind name.
func (k NodeKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindGroup:
		return "group"
	case KindAsset:
		return "asset"
	case KindTag:
		return "tag"
	case KindPolicy:
		return "policy"
	case KindDefaultPolicy:
		return "default policy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// NodeName is the stable logical identity of an entity in the access graph.
// It is a comparable value type; two NodeNames are the same identity exactly
// when they compare equal, and the graph maintains a bijection between
// NodeNames and graph indices.
//
// Construct NodeNames with the per-kind constructors (UserName, GroupName,
// AssetName, TagName, PolicyName, DefaultPolicyName); the zero NodeName is
// not a valid identity.
//
// Group identity is connector-scoped: the same logical group name may exist
// independently per platform, so a group's origin namespace is part of its
// identity. A default (wildcard) policy's identity is the combination of its
// root asset, matching path, target type, grantee, and origin.
type NodeName struct {
	kind NodeKind
	name string

	// Origin namespace. Set for groups and default policies.
	origin ConnectorNamespace

	// Default-policy fields.
	matchingPath string
	targetType   AssetType
	rootCual     Cual
	granteeKind  NodeKind
	granteeName  string
	granteeOrig  ConnectorNamespace
}

// UserName returns the NodeName of a user.
func UserName(name string) NodeName {
	return NodeName{kind: KindUser, name: name}
}

// GroupName returns the NodeName of a group that originated on the given
// connector.
func GroupName(name string, origin ConnectorNamespace) NodeName {
	return NodeName{kind: KindGroup, name: name, origin: origin}
}

// AssetName returns the NodeName of the asset identified by cual.
func AssetName(cual Cual) NodeName {
	return NodeName{kind: KindAsset, name: string(cual)}
}

// TagName returns the NodeName of the tag with the given id.
func TagName(id uuid.UUID) NodeName {
	return NodeName{kind: KindTag, name: id.String()}
}

// PolicyName returns the NodeName of a policy.
func PolicyName(name string) NodeName {
	return NodeName{kind: KindPolicy, name: name}
}

// DefaultPolicyName returns the NodeName of a wildcard policy rooted at the
// given asset, matching matchingPath (e.g. "*/**"), targeting assets of
// targetType, and granted to grantee (a user or group NodeName).
func DefaultPolicyName(root NodeName, matchingPath string, targetType AssetType, grantee NodeName, origin ConnectorNamespace) NodeName {
	return NodeName{
		kind:         KindDefaultPolicy,
		origin:       origin,
		matchingPath: matchingPath,
		targetType:   targetType,
		rootCual:     Cual(root.name),
		granteeKind:  grantee.kind,
		granteeName:  grantee.name,
		granteeOrig:  grantee.origin,
	}
}

// Kind returns the variant of the name.
func (n NodeName) Kind() NodeKind {
	return n.kind
}

// Name returns the plain name carried by user, group, policy, and tag names.
// For assets it returns the cual string.
func (n NodeName) Name() string {
	return n.name
}

// Origin returns the originating connector namespace for groups and default
// policies; it is empty for other kinds.
func (n NodeName) Origin() ConnectorNamespace {
	return n.origin
}

// Cual returns the asset locator. Meaningful only for asset names.
func (n NodeName) Cual() Cual {
	return Cual(n.name)
}

// MatchingPath returns a default policy's wildcard path.
func (n NodeName) MatchingPath() string {
	return n.matchingPath
}

// TargetType returns a default policy's target asset type.
func (n NodeName) TargetType() AssetType {
	return n.targetType
}

// RootNode returns a default policy's hierarchy root as an asset NodeName.
func (n NodeName) RootNode() NodeName {
	return AssetName(n.rootCual)
}

// Grantee returns a default policy's grantee (a user or group NodeName).
func (n NodeName) Grantee() NodeName {
	return NodeName{kind: n.granteeKind, name: n.granteeName, origin: n.granteeOrig}
}

// String returns the canonical identity string, stable across runs.
func (n NodeName) String() string {
	switch n.kind {
	case KindGroup:
		return fmt.Sprintf("group:%s::%s", n.origin, n.name)
	case KindDefaultPolicy:
		return fmt.Sprintf("default-policy:%s::%s::%s::%s::%s",
			n.origin, n.rootCual, n.matchingPath, n.targetType, n.Grantee())
	default:
		return fmt.Sprintf("%s:%s", n.kind, n.name)
	}
}
