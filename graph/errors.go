package graph

import "errors"

// Sentinel errors for graph operations. These indicate lookup and ingestion
// problems, not traversal failures: cycle safety in the traversal and
// closure algorithms is guaranteed by construction and never surfaces as an
// error. None of these ever panics the process.
var (
	// ErrNotFound is returned when a NodeName has no entry in the graph.
	ErrNotFound = errors.New("jetty/graph: node not found")

	// ErrTypeMismatch is returned when a typed index is constructed over a
	// node of the wrong kind.
	ErrTypeMismatch = errors.New("jetty/graph: node kind mismatch")

	// ErrMergeConflict is returned when two ingested records for the same
	// NodeName disagree on a scalar attribute that cannot be unioned.
	ErrMergeConflict = errors.New("jetty/graph: conflicting node attributes")

	// ErrInvalidWildcard is returned when a default policy's matching path
	// cannot be parsed.
	ErrInvalidWildcard = errors.New("jetty/graph: invalid wildcard path")
)

// IsNotFoundErr returns true if err is or wraps ErrNotFound.
func IsNotFoundErr(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTypeMismatchErr returns true if err is or wraps ErrTypeMismatch.
func IsTypeMismatchErr(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsMergeConflictErr returns true if err is or wraps ErrMergeConflict.
func IsMergeConflictErr(err error) bool {
	return errors.Is(err, ErrMergeConflict)
}

// IsInvalidWildcardErr returns true if err is or wraps ErrInvalidWildcard.
func IsInvalidWildcardErr(err error) bool {
	return errors.Is(err, ErrInvalidWildcard)
}
