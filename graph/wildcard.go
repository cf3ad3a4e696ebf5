package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jettylabs/jetty"
)

// wildcardDetails is a parsed default-policy matching path.
type wildcardDetails struct {
	// depth is the hierarchy level at which the wildcard terminates,
	// relative to the policy's root asset.
	depth int
	// openEnded is true for paths ending in "**": the match covers the
	// terminal level and everything below it. A closed path ("*") matches
	// exactly one level.
	openEnded bool
}

// parseWildcard parses a matching path such as "*/**". Each segment must be
// "*", except the last, which may be "*" or "**". Leading and trailing
// slashes are ignored.
func parseWildcard(path string) (wildcardDetails, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(path, "/"), "/")
	if trimmed == "" {
		return wildcardDetails{}, fmt.Errorf("%w: %q", ErrInvalidWildcard, path)
	}
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		if part == "**" && i == len(parts)-1 {
			continue
		}
		return wildcardDetails{}, fmt.Errorf("%w: %q: segment %q", ErrInvalidWildcard, path, part)
	}
	return wildcardDetails{
		depth:     len(parts),
		openEnded: parts[len(parts)-1] == "**",
	}, nil
}

// DefaultPolicyTargets resolves a wildcard policy to the concrete assets it
// covers: the asset-hierarchy descendants of the policy's root that sit at
// the depth its matching path names (and below, for an open-ended path) and
// carry the policy's target type. Returned sorted by name.
func (g *Graph) DefaultPolicyTargets(defaultPolicy jetty.NodeName) ([]NodeIndex, error) {
	if defaultPolicy.Kind() != jetty.KindDefaultPolicy {
		return nil, fmt.Errorf("%w: %s is not a default policy", ErrTypeMismatch, defaultPolicy)
	}
	details, err := parseWildcard(defaultPolicy.MatchingPath())
	if err != nil {
		return nil, err
	}
	rootIdx, err := g.Index(defaultPolicy.RootNode())
	if err != nil {
		return nil, fmt.Errorf("default policy root: %w", err)
	}

	targetType := defaultPolicy.TargetType()
	maxDepth := details.depth
	if details.openEnded {
		maxDepth = 0
	}
	targets := g.MatchingDescendants(
		rootIdx,
		EdgeOfType(ParentOf),
		NodeOfKind(jetty.KindAsset),
		func(n Node) bool {
			asset, ok := n.(AssetNode)
			return ok && asset.AssetType == targetType
		},
		details.depth,
		maxDepth,
	)
	sort.Slice(targets, func(i, j int) bool {
		return g.nodes[targets[i]].NodeName().String() < g.nodes[targets[j]].NodeName().String()
	})
	return targets, nil
}
