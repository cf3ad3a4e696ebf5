package graph

import (
	"fmt"

	"github.com/jettylabs/jetty"
)

// Typed indices. A raw NodeIndex says nothing about what it points to; the
// wrappers below are only constructed after a kind check, so code holding a
// UserIndex can fetch the UserNode without re-asserting.

// UserIndex points at a UserNode.
type UserIndex struct{ idx NodeIndex }

// GroupIndex points at a GroupNode.
type GroupIndex struct{ idx NodeIndex }

// AssetIndex points at an AssetNode.
type AssetIndex struct{ idx NodeIndex }

// TagIndex points at a TagNode.
type TagIndex struct{ idx NodeIndex }

// PolicyIndex points at a PolicyNode.
type PolicyIndex struct{ idx NodeIndex }

// DefaultPolicyIndex points at a DefaultPolicyNode.
type DefaultPolicyIndex struct{ idx NodeIndex }

func (i UserIndex) Index() NodeIndex          { return i.idx }
func (i GroupIndex) Index() NodeIndex         { return i.idx }
func (i AssetIndex) Index() NodeIndex         { return i.idx }
func (i TagIndex) Index() NodeIndex           { return i.idx }
func (i PolicyIndex) Index() NodeIndex        { return i.idx }
func (i DefaultPolicyIndex) Index() NodeIndex { return i.idx }

func (g *Graph) kindMismatch(idx NodeIndex, want jetty.NodeKind) error {
	return fmt.Errorf("%w: %s is a %s, not a %s",
		ErrTypeMismatch, g.nodes[idx].NodeName(), g.nodes[idx].Kind(), want)
}

// UserIndex asserts that idx points at a user.
func (g *Graph) UserIndex(idx NodeIndex) (UserIndex, error) {
	if g.nodes[idx].Kind() != jetty.KindUser {
		return UserIndex{}, g.kindMismatch(idx, jetty.KindUser)
	}
	return UserIndex{idx: idx}, nil
}

// GroupIndex asserts that idx points at a group.
func (g *Graph) GroupIndex(idx NodeIndex) (GroupIndex, error) {
	if g.nodes[idx].Kind() != jetty.KindGroup {
		return GroupIndex{}, g.kindMismatch(idx, jetty.KindGroup)
	}
	return GroupIndex{idx: idx}, nil
}

// AssetIndex asserts that idx points at an asset.
func (g *Graph) AssetIndex(idx NodeIndex) (AssetIndex, error) {
	if g.nodes[idx].Kind() != jetty.KindAsset {
		return AssetIndex{}, g.kindMismatch(idx, jetty.KindAsset)
	}
	return AssetIndex{idx: idx}, nil
}

// TagIndex asserts that idx points at a tag.
func (g *Graph) TagIndex(idx NodeIndex) (TagIndex, error) {
	if g.nodes[idx].Kind() != jetty.KindTag {
		return TagIndex{}, g.kindMismatch(idx, jetty.KindTag)
	}
	return TagIndex{idx: idx}, nil
}

// PolicyIndex asserts that idx points at a policy.
func (g *Graph) PolicyIndex(idx NodeIndex) (PolicyIndex, error) {
	if g.nodes[idx].Kind() != jetty.KindPolicy {
		return PolicyIndex{}, g.kindMismatch(idx, jetty.KindPolicy)
	}
	return PolicyIndex{idx: idx}, nil
}

// DefaultPolicyIndex asserts that idx points at a default policy.
func (g *Graph) DefaultPolicyIndex(idx NodeIndex) (DefaultPolicyIndex, error) {
	if g.nodes[idx].Kind() != jetty.KindDefaultPolicy {
		return DefaultPolicyIndex{}, g.kindMismatch(idx, jetty.KindDefaultPolicy)
	}
	return DefaultPolicyIndex{idx: idx}, nil
}

// User returns the user node at i.
func (g *Graph) User(i UserIndex) UserNode { return g.nodes[i.idx].(UserNode) }

// Group returns the group node at i.
func (g *Graph) Group(i GroupIndex) GroupNode { return g.nodes[i.idx].(GroupNode) }

// Asset returns the asset node at i.
func (g *Graph) Asset(i AssetIndex) AssetNode { return g.nodes[i.idx].(AssetNode) }

// Tag returns the tag node at i.
func (g *Graph) Tag(i TagIndex) TagNode { return g.nodes[i.idx].(TagNode) }

// Policy returns the policy node at i.
func (g *Graph) Policy(i PolicyIndex) PolicyNode { return g.nodes[i.idx].(PolicyNode) }

// DefaultPolicy returns the default policy node at i.
func (g *Graph) DefaultPolicy(i DefaultPolicyIndex) DefaultPolicyNode {
	return g.nodes[i.idx].(DefaultPolicyNode)
}
