package graph

import (
	"fmt"
)

// Attribute merging. When two ingested records carry the same NodeName, the
// graph keeps a single node whose attributes are the union of both records:
// sets and maps are unioned, scalars must agree. A disagreement on a scalar
// (or on an existing map key) is an ErrMergeConflict; merging never
// overwrites data.

// mergeScalar returns a when a and b agree, and an ErrMergeConflict naming
// the field when they do not.
func mergeScalar[T comparable](field string, a, b T) (T, error) {
	if a != b {
		var zero T
		return zero, fmt.Errorf("%w: field %s: %v != %v", ErrMergeConflict, field, a, b)
	}
	return a, nil
}

// mergeSet returns the union of two sets.
func mergeSet[K comparable](a, b map[K]bool) map[K]bool {
	merged := make(map[K]bool, len(a)+len(b))
	for k := range a {
		merged[k] = true
	}
	for k := range b {
		merged[k] = true
	}
	return merged
}

// mergeMap returns the union of two maps, failing when a shared key carries
// different values.
func mergeMap[K, V comparable](field string, a, b map[K]V) (map[K]V, error) {
	merged := make(map[K]V, len(a)+len(b))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range b {
		if existing, ok := merged[k]; ok && existing != v {
			return nil, fmt.Errorf("%w: field %s, key %v: %v != %v", ErrMergeConflict, field, k, existing, v)
		}
		merged[k] = v
	}
	return merged, nil
}

func (n UserNode) merge(other Node) (Node, error) {
	o, ok := other.(UserNode)
	if !ok {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrMergeConflict, other.Kind(), n.Kind())
	}
	name, err := mergeScalar("UserNode.Name", n.Name, o.Name)
	if err != nil {
		return nil, err
	}
	identifiers, err := mergeMap("UserNode.Identifiers", n.Identifiers, o.Identifiers)
	if err != nil {
		return nil, err
	}
	metadata, err := mergeMap("UserNode.Metadata", n.Metadata, o.Metadata)
	if err != nil {
		return nil, err
	}
	return UserNode{
		Name:             name,
		Identifiers:      identifiers,
		OtherIdentifiers: mergeSet(n.OtherIdentifiers, o.OtherIdentifiers),
		Metadata:         metadata,
		Connectors:       mergeSet(n.Connectors, o.Connectors),
	}, nil
}

func (n GroupNode) merge(other Node) (Node, error) {
	o, ok := other.(GroupNode)
	if !ok {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrMergeConflict, other.Kind(), n.Kind())
	}
	name, err := mergeScalar("GroupNode.Name", n.Name, o.Name)
	if err != nil {
		return nil, err
	}
	origin, err := mergeScalar("GroupNode.Origin", n.Origin, o.Origin)
	if err != nil {
		return nil, err
	}
	metadata, err := mergeMap("GroupNode.Metadata", n.Metadata, o.Metadata)
	if err != nil {
		return nil, err
	}
	return GroupNode{
		Name:       name,
		Origin:     origin,
		Metadata:   metadata,
		Connectors: mergeSet(n.Connectors, o.Connectors),
	}, nil
}

func (n AssetNode) merge(other Node) (Node, error) {
	o, ok := other.(AssetNode)
	if !ok {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrMergeConflict, other.Kind(), n.Kind())
	}
	cual, err := mergeScalar("AssetNode.Cual", n.Cual, o.Cual)
	if err != nil {
		return nil, err
	}
	assetType, err := mergeScalar("AssetNode.AssetType", n.AssetType, o.AssetType)
	if err != nil {
		return nil, err
	}
	metadata, err := mergeMap("AssetNode.Metadata", n.Metadata, o.Metadata)
	if err != nil {
		return nil, err
	}
	return AssetNode{
		Cual:       cual,
		AssetType:  assetType,
		Metadata:   metadata,
		Connectors: mergeSet(n.Connectors, o.Connectors),
	}, nil
}

func (n TagNode) merge(other Node) (Node, error) {
	o, ok := other.(TagNode)
	if !ok {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrMergeConflict, other.Kind(), n.Kind())
	}
	name, err := mergeScalar("TagNode.Name", n.Name, o.Name)
	if err != nil {
		return nil, err
	}
	value, err := mergeScalar("TagNode.Value", n.Value, o.Value)
	if err != nil {
		return nil, err
	}
	hierarchy, err := mergeScalar("TagNode.PassThroughHierarchy", n.PassThroughHierarchy, o.PassThroughHierarchy)
	if err != nil {
		return nil, err
	}
	lineage, err := mergeScalar("TagNode.PassThroughLineage", n.PassThroughLineage, o.PassThroughLineage)
	if err != nil {
		return nil, err
	}
	description := n.Description
	if description == "" {
		description = o.Description
	}
	return TagNode{
		ID:                   n.ID,
		Name:                 name,
		Value:                value,
		Description:          description,
		PassThroughHierarchy: hierarchy,
		PassThroughLineage:   lineage,
		Connectors:           mergeSet(n.Connectors, o.Connectors),
	}, nil
}

func (n PolicyNode) merge(other Node) (Node, error) {
	o, ok := other.(PolicyNode)
	if !ok {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrMergeConflict, other.Kind(), n.Kind())
	}
	name, err := mergeScalar("PolicyNode.Name", n.Name, o.Name)
	if err != nil {
		return nil, err
	}
	hierarchy, err := mergeScalar("PolicyNode.PassThroughHierarchy", n.PassThroughHierarchy, o.PassThroughHierarchy)
	if err != nil {
		return nil, err
	}
	lineage, err := mergeScalar("PolicyNode.PassThroughLineage", n.PassThroughLineage, o.PassThroughLineage)
	if err != nil {
		return nil, err
	}
	return PolicyNode{
		Name:                 name,
		Privileges:           mergeSet(n.Privileges, o.Privileges),
		PassThroughHierarchy: hierarchy,
		PassThroughLineage:   lineage,
		Connectors:           mergeSet(n.Connectors, o.Connectors),
	}, nil
}

func (n DefaultPolicyNode) merge(other Node) (Node, error) {
	o, ok := other.(DefaultPolicyNode)
	if !ok {
		return nil, fmt.Errorf("%w: cannot merge %s into %s", ErrMergeConflict, other.Kind(), n.Kind())
	}
	// Root, path, type, grantee and origin are all part of the identity, so
	// two records with the same NodeName can only disagree on privileges and
	// metadata.
	metadata, err := mergeMap("DefaultPolicyNode.Metadata", n.Metadata, o.Metadata)
	if err != nil {
		return nil, err
	}
	return DefaultPolicyNode{
		RootNode:     n.RootNode,
		MatchingPath: n.MatchingPath,
		TargetType:   n.TargetType,
		Grantee:      n.Grantee,
		Origin:       n.Origin,
		Privileges:   mergeSet(n.Privileges, o.Privileges),
		Metadata:     metadata,
		Connectors:   mergeSet(n.Connectors, o.Connectors),
	}, nil
}
