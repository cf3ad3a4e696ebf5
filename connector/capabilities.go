package connector

// GroupWriteCapability describes a connector's ability to write groups.
type GroupWriteCapability struct {
	// Nested reports whether the platform supports groups as members of
	// groups. When false, the reconciliation engine flattens a group's
	// member_of to the closure of ancestor groups before diffing.
	Nested bool
}

// WriteCapabilities declares what a connector's write-back layer can apply.
// The reconciliation engine consults these flags before building config
// state, so no connector is handed a diff it cannot express.
type WriteCapabilities struct {
	// Groups is non-nil when the connector can create and modify groups.
	Groups *GroupWriteCapability
	// Users reports whether the connector can modify user group membership.
	Users bool
	// Policies reports whether the connector can write policies.
	Policies bool
	// DefaultPolicies reports whether the connector can write wildcard
	// policies.
	DefaultPolicies bool
}

// Manifest describes one configured connector to the core.
type Manifest struct {
	// Capabilities declares the connector's write-back abilities.
	Capabilities WriteCapabilities
}
