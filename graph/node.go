package graph

import (
	"github.com/google/uuid"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
)

// Node is one entity in the access graph. The set of implementations is
// closed: UserNode, GroupNode, AssetNode, TagNode, PolicyNode, and
// DefaultPolicyNode. Query logic dispatches with a type switch or via Kind.
type Node interface {
	// NodeName returns the stable logical identity of the node.
	NodeName() jetty.NodeName
	// Kind returns the node's variant.
	Kind() jetty.NodeKind

	// merge combines this node with another record carrying the same
	// NodeName: set-like attributes are unioned, scalar disagreements are
	// an ErrMergeConflict. Sealed to keep the variant set closed.
	merge(other Node) (Node, error)
}

// UserNode is a person, merged across every platform that knows them.
type UserNode struct {
	Name             string
	Identifiers      map[jetty.UserIdentifier]string
	OtherIdentifiers map[string]bool
	Metadata         map[string]string
	Connectors       map[jetty.ConnectorNamespace]bool
}

// NodeName implements Node.
func (n UserNode) NodeName() jetty.NodeName { return jetty.UserName(n.Name) }

// Kind implements Node.
func (n UserNode) Kind() jetty.NodeKind { return jetty.KindUser }

// Disabled reports whether any platform reports the user as disabled.
func (n UserNode) Disabled() bool {
	return n.Metadata[connector.MetadataDisabled] == "true"
}

// GroupNode is a group or role on one platform.
type GroupNode struct {
	Name       string
	Origin     jetty.ConnectorNamespace
	Metadata   map[string]string
	Connectors map[jetty.ConnectorNamespace]bool
}

// NodeName implements Node.
func (n GroupNode) NodeName() jetty.NodeName { return jetty.GroupName(n.Name, n.Origin) }

// Kind implements Node.
func (n GroupNode) Kind() jetty.NodeKind { return jetty.KindGroup }

// AssetNode is a data asset, identified by its cual.
type AssetNode struct {
	Cual       jetty.Cual
	AssetType  jetty.AssetType
	Metadata   map[string]string
	Connectors map[jetty.ConnectorNamespace]bool
}

// NodeName implements Node.
func (n AssetNode) NodeName() jetty.NodeName { return jetty.AssetName(n.Cual) }

// Kind implements Node.
func (n AssetNode) Kind() jetty.NodeKind { return jetty.KindAsset }

// TagNode is a metadata tag that may propagate through the asset hierarchy
// and lineage.
type TagNode struct {
	ID          uuid.UUID
	Name        string
	Value       string
	Description string
	// PassThroughHierarchy propagates the tag to hierarchical descendants.
	PassThroughHierarchy bool
	// PassThroughLineage propagates the tag to lineage descendants.
	PassThroughLineage bool
	Connectors         map[jetty.ConnectorNamespace]bool
}

// NodeName implements Node.
func (n TagNode) NodeName() jetty.NodeName { return jetty.TagName(n.ID) }

// Kind implements Node.
func (n TagNode) Kind() jetty.NodeKind { return jetty.KindTag }

// PolicyNode is a set of privileges granted to agents over assets or tags.
type PolicyNode struct {
	Name       string
	Privileges map[string]bool
	// PassThroughHierarchy extends the policy to child assets.
	PassThroughHierarchy bool
	// PassThroughLineage extends the policy to derived assets.
	PassThroughLineage bool
	Connectors         map[jetty.ConnectorNamespace]bool
}

// NodeName implements Node.
func (n PolicyNode) NodeName() jetty.NodeName { return jetty.PolicyName(n.Name) }

// Kind implements Node.
func (n PolicyNode) Kind() jetty.NodeKind { return jetty.KindPolicy }

// DefaultPolicyNode is a wildcard policy: privileges granted over every
// asset of TargetType matched by MatchingPath under RootNode.
type DefaultPolicyNode struct {
	RootNode     jetty.NodeName
	MatchingPath string
	TargetType   jetty.AssetType
	Grantee      jetty.NodeName
	Origin       jetty.ConnectorNamespace
	Privileges   map[string]bool
	Metadata     map[string]string
	Connectors   map[jetty.ConnectorNamespace]bool
}

// NodeName implements Node.
func (n DefaultPolicyNode) NodeName() jetty.NodeName {
	return jetty.DefaultPolicyName(n.RootNode, n.MatchingPath, n.TargetType, n.Grantee, n.Origin)
}

// Kind implements Node.
func (n DefaultPolicyNode) Kind() jetty.NodeKind { return jetty.KindDefaultPolicy }
