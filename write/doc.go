// Package write reconciles desired-state configuration against the access
// graph. It parses and validates the configuration documents, computes one
// diff set per entity kind (groups, users, policies, default policies), and
// localizes the result so each connector receives changes in its own
// identifiers.
//
// Diffing is idempotent: comparing a configuration against the environment it
// just produced yields nothing. Every diff list is sorted by lowercased name
// so repeated runs print identically.
package write
