package connector

import (
	"github.com/jettylabs/jetty"
)

// ProcessedConnectorData is connector data after translation: every
// reference is a global jetty.NodeName. This is the only shape the graph
// ingests. Batches from multiple connectors are merged sequentially, one
// batch fully applied before the next begins.
type ProcessedConnectorData struct {
	Users           []ProcessedUser
	Groups          []ProcessedGroup
	Assets          []ProcessedAsset
	Tags            []ProcessedTag
	Policies        []ProcessedPolicy
	DefaultPolicies []ProcessedDefaultPolicy

	// EffectivePermissions carries platform-resolved permissions with both
	// axes rewritten to NodeNames.
	EffectivePermissions jetty.SparseMatrix[jetty.NodeName, jetty.NodeName, []jetty.EffectivePermission]
}

// ProcessedUser is a user record with resolved references.
type ProcessedUser struct {
	Name             jetty.NodeName
	Identifiers      map[jetty.UserIdentifier]string
	OtherIdentifiers []string
	Metadata         map[string]string
	MemberOf         []jetty.NodeName
	GrantedBy        []jetty.NodeName
	Connector        jetty.ConnectorNamespace
}

// ProcessedGroup is a group record with resolved references.
type ProcessedGroup struct {
	Name           jetty.NodeName
	Metadata       map[string]string
	MemberOf       []jetty.NodeName
	IncludesUsers  []jetty.NodeName
	IncludesGroups []jetty.NodeName
	GrantedBy      []jetty.NodeName
	Connector      jetty.ConnectorNamespace
}

// ProcessedAsset is an asset record with resolved references.
type ProcessedAsset struct {
	Name        jetty.NodeName
	AssetType   jetty.AssetType
	Metadata    map[string]string
	GovernedBy  []jetty.NodeName
	ChildOf     []jetty.NodeName
	ParentOf    []jetty.NodeName
	DerivedFrom []jetty.NodeName
	DerivedTo   []jetty.NodeName
	TaggedAs    []jetty.NodeName
	Connector   jetty.ConnectorNamespace
}

// ProcessedTag is a tag record with resolved references.
type ProcessedTag struct {
	Name                 jetty.NodeName
	TagName              string
	Value                string
	Description          string
	PassThroughHierarchy bool
	PassThroughLineage   bool
	AppliedTo            []jetty.NodeName
	GovernedBy           []jetty.NodeName
	Connector            jetty.ConnectorNamespace
}

// ProcessedPolicy is a policy record with resolved references.
type ProcessedPolicy struct {
	Name                 jetty.NodeName
	Privileges           []string
	GovernsAssets        []jetty.NodeName
	GovernsTags          []jetty.NodeName
	GrantedToGroups      []jetty.NodeName
	GrantedToUsers       []jetty.NodeName
	PassThroughHierarchy bool
	PassThroughLineage   bool
	Connector            jetty.ConnectorNamespace
}

// ProcessedDefaultPolicy is a wildcard policy record with resolved
// references. Name carries the full wildcard identity; RootNode, Grantee and
// the path/type fields are duplicated for convenient access.
type ProcessedDefaultPolicy struct {
	Name         jetty.NodeName
	RootNode     jetty.NodeName
	MatchingPath string
	TargetType   jetty.AssetType
	Grantee      jetty.NodeName
	Privileges   []string
	Metadata     map[string]string
	Connector    jetty.ConnectorNamespace
}
