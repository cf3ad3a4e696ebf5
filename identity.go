package jetty

// ConnectorNamespace is the user-chosen label identifying one configured
// connection to a platform. All connector-scoped identities (group origins,
// local identifier mappings, diff routing) are keyed by it.
type ConnectorNamespace string

// String returns the namespace label.
func (n ConnectorNamespace) String() string {
	return string(n)
}

// AssetType is a connector-reported asset classification ("table", "view",
// "workbook", ...). Wildcard policies target one asset type.
type AssetType string

// String returns the asset type name.
func (t AssetType) String() string {
	return string(t)
}

// UserIdentifier is the kind of a cross-platform user identifier. Connectors
// report identifiers keyed by kind so that the same person can be resolved
// across platforms that name them differently.
type UserIdentifier string

// Identifier kinds reported by connectors.
const (
	IdentifierEmail     UserIdentifier = "email"
	IdentifierFullName  UserIdentifier = "full_name"
	IdentifierFirstName UserIdentifier = "first_name"
	IdentifierLastName  UserIdentifier = "last_name"
)
