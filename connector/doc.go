// Package connector defines the contract between the access-graph core and
// the platform connectors that feed it.
//
// A connector fetches users, groups, assets, tags, and policies from one
// platform and hands the core a ConnectorData batch in which every reference
// is a connector-local string (a Snowflake role name, a Tableau LUID, ...).
// The translate package rewrites those batches into ProcessedConnectorData,
// where every reference is a global jetty.NodeName, which is what the graph
// ingests.
//
// The core never assumes a transport or encoding for batches; how a
// connector obtains its data (REST pagination, SQL, XML lineage extraction)
// is entirely its own business.
//
// Write-back capability is declared, not discovered: each connector's
// Manifest carries WriteCapabilities that the reconciliation engine consults
// before building config state, so a platform that cannot nest groups is
// never asked to.
package connector
