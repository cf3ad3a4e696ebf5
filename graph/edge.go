package graph

import (
	"fmt"

	"github.com/jettylabs/jetty"
)

// EdgeType is the relationship kind on a graph edge. Every type has an
// inverse, and every insertion writes both directions, so traversal never
// computes an inverse at query time.
type EdgeType int

// Edge types. MemberOf/Includes form the group hierarchy (may legally be
// cyclic at the raw-edge level); ChildOf/ParentOf form the asset hierarchy;
// DerivedFrom/DerivedTo form data lineage; GrantedBy/GrantedTo and
// GovernedBy/Governs attach policies to agents and assets; TaggedAs/
// AppliedTo attach tags to assets.
const (
	MemberOf EdgeType = iota
	Includes
	ChildOf
	ParentOf
	DerivedFrom
	DerivedTo
	GrantedBy
	GrantedTo
	GovernedBy
	Governs
	TaggedAs
	AppliedTo
)

// Inverse returns the paired edge type.
func (t EdgeType) Inverse() EdgeType {
	switch t {
	case MemberOf:
		return Includes
	case Includes:
		return MemberOf
	case ChildOf:
		return ParentOf
	case ParentOf:
		return ChildOf
	case DerivedFrom:
		return DerivedTo
	case DerivedTo:
		return DerivedFrom
	case GrantedBy:
		return GrantedTo
	case GrantedTo:
		return GrantedBy
	case GovernedBy:
		return Governs
	case Governs:
		return GovernedBy
	case TaggedAs:
		return AppliedTo
	case AppliedTo:
		return TaggedAs
	default:
		panic(fmt.Sprintf("unknown edge type %d", int(t)))
	}
}

// String returns the edge type name.
func (t EdgeType) String() string {
	switch t {
	case MemberOf:
		return "member of"
	case Includes:
		return "includes"
	case ChildOf:
		return "child of"
	case ParentOf:
		return "parent of"
	case DerivedFrom:
		return "derived from"
	case DerivedTo:
		return "derived to"
	case GrantedBy:
		return "granted by"
	case GrantedTo:
		return "granted to"
	case GovernedBy:
		return "governed by"
	case Governs:
		return "governs"
	case TaggedAs:
		return "tagged as"
	case AppliedTo:
		return "applied to"
	default:
		return fmt.Sprintf("edge(%d)", int(t))
	}
}

// Edge is a typed, directed connection between two nodes, identified by
// their NodeNames. Used during ingestion; inside the graph edges are stored
// by index.
type Edge struct {
	From jetty.NodeName
	To   jetty.NodeName
	Type EdgeType
}
