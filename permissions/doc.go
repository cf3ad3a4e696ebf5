// Package permissions answers access questions over a finished access graph:
// which privileges a user effectively holds on an asset, which assets and
// tags a user can reach, and which users can reach an asset.
//
// Resolution is purely functional over the graph. Deny short-circuits
// (disabled user, missing usage on a containing scope) are evaluated before
// allow grants and are never reconsidered once fired.
package permissions
