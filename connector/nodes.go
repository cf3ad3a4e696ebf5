package connector

import (
	"github.com/jettylabs/jetty"
)

// MetadataDisabled is the user metadata key under which connectors report a
// platform-disabled account ("true" when the user cannot log in). The
// permission engine short-circuits every check for such users.
const MetadataDisabled = "disabled"

// ConnectorData is one connector's full view of its platform: typed node
// records plus the relationships between them, all expressed in the
// connector's local identifiers and implicitly scoped to its namespace.
type ConnectorData struct {
	Users           []User
	Groups          []Group
	Assets          []Asset
	Tags            []Tag
	Policies        []Policy
	DefaultPolicies []DefaultPolicy

	// CualPrefix is the scheme-and-authority prefix this connector stamps on
	// the cuals of the assets it owns. The translator maps it back to the
	// connector's namespace.
	CualPrefix string

	// EffectivePermissions optionally carries permissions the platform has
	// already resolved, keyed by local user name and asset cual.
	EffectivePermissions jetty.SparseMatrix[string, jetty.Cual, []jetty.EffectivePermission]
}

// User is user data provided by a connector. Name is whatever the platform
// calls the person; identity resolution happens in the translator.
type User struct {
	Name string
	// Identifiers carries cross-platform identifiers (email, full name) used
	// to resolve the same person across connectors.
	Identifiers map[jetty.UserIdentifier]string
	// OtherIdentifiers are additional opaque identifiers for the user.
	OtherIdentifiers []string
	// Metadata keys should be namespaced by the connector (e.g. "snow::login").
	Metadata map[string]string
	// MemberOf lists local names of groups this user belongs to.
	MemberOf []string
	// GrantedBy lists local names of policies granted to this user.
	GrantedBy []string
}

// Group is group data provided by a connector.
type Group struct {
	Name     string
	Metadata map[string]string
	// MemberOf lists local names of groups this group belongs to.
	MemberOf []string
	// IncludesUsers lists local names of member users.
	IncludesUsers []string
	// IncludesGroups lists local names of member groups.
	IncludesGroups []string
	// GrantedBy lists local names of policies granted to this group.
	GrantedBy []string
}

// Asset is asset data provided by a connector. Relationships reference other
// assets by cual so they can cross connector boundaries.
type Asset struct {
	Cual      jetty.Cual
	AssetType jetty.AssetType
	Metadata  map[string]string
	// GovernedBy lists local names of policies governing this asset.
	GovernedBy []string
	// ChildOf lists cuals of hierarchical parents.
	ChildOf []jetty.Cual
	// ParentOf lists cuals of hierarchical children.
	ParentOf []jetty.Cual
	// DerivedFrom lists cuals of lineage sources.
	DerivedFrom []jetty.Cual
	// DerivedTo lists cuals of lineage descendants.
	DerivedTo []jetty.Cual
	// TaggedAs lists ids of tags applied to this asset.
	TaggedAs []string
}

// Tag is tag data provided by a connector or the tag configuration.
type Tag struct {
	ID          string
	Name        string
	Value       string
	Description string
	// PassThroughHierarchy applies the tag to hierarchical descendants of
	// tagged assets.
	PassThroughHierarchy bool
	// PassThroughLineage applies the tag to lineage descendants of tagged
	// assets.
	PassThroughLineage bool
	// AppliedTo lists cuals of assets the tag is applied to.
	AppliedTo []jetty.Cual
	// GovernedBy lists local names of policies governing this tag.
	GovernedBy []string
}

// Policy is policy data provided by a connector: a set of privileges granted
// to agents over assets.
type Policy struct {
	Name       string
	Privileges []string
	// GovernsAssets lists cuals of assets the policy governs.
	GovernsAssets []jetty.Cual
	// GovernsTags lists ids of tags the policy governs.
	GovernsTags []string
	// GrantedToGroups lists local names of grantee groups.
	GrantedToGroups []string
	// GrantedToUsers lists local names of grantee users.
	GrantedToUsers []string
	// PassThroughHierarchy extends the policy to child assets.
	PassThroughHierarchy bool
	// PassThroughLineage extends the policy to derived assets.
	PassThroughLineage bool
}

// GranteeKind distinguishes user and group grantees on default policies.
type GranteeKind int

// Grantee kinds.
const (
	GranteeUser GranteeKind = iota
	GranteeGroup
)

// DefaultPolicy is a wildcard policy provided by a connector or the asset
// configuration: privileges granted over every asset of TargetType matched
// by WildcardPath under RootAsset.
type DefaultPolicy struct {
	RootAsset    jetty.Cual
	WildcardPath string
	TargetType   jetty.AssetType
	GranteeKind  GranteeKind
	// Grantee is the local name of the grantee user or group.
	Grantee    string
	Privileges []string
	Metadata   map[string]string
}
