// Package jetty provides the shared vocabulary for the Jetty access
// governance engine: stable node identities, asset locators, connector
// namespaces, and effective-permission values.
//
// # Core Concepts
//
// Jetty maintains a unified model of "who can do what, on which data asset"
// across heterogeneous data platforms. Each configured connection to a
// platform is identified by a ConnectorNamespace. Entities discovered on
// those platforms (users, groups, assets, tags, policies) are identified by
// a NodeName, the stable logical identity used everywhere in the engine:
//
//	alice := jetty.UserName("alice@example.com")
//	eng := jetty.GroupName("engineering", "snow")
//	orders := jetty.AssetName(jetty.Cual("snowflake://acct/db/schema/orders"))
//
// NodeNames are comparable value types and safe to use as map keys. The
// canonical string form (NodeName.String) is stable across runs and is the
// key the graph's identity bijection is built on.
//
// # Assets
//
// A Cual (Connector Universal Asset Locator) is a canonical URI-like string
// that uniquely identifies a data asset across connectors. The prefix of a
// cual (scheme plus authority) maps to the connector namespace that owns the
// asset.
//
// # Effective Permissions
//
// An EffectivePermission is a resolved fact about a user's access to an
// asset: a privilege name, an Allow/Deny mode, and the ordered reasons the
// resolution holds. Raw platform grants are inputs; effective permissions
// are what the permission engine reports.
//
// # Package Layout
//
// The domain packages build on this one:
//
//   - connector: the data contract connectors fulfil (ConnectorData batches)
//   - graph: the access graph store and traversal engine
//   - permissions: the effective-permission engine and access queries
//   - translate: global-to-local identifier translation
//   - write: desired-state reconciliation and diff generation
//   - snapshot: the cached graph snapshot codec
package jetty
