package permissions

import (
	"sort"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/graph"
)

// UserAccessibleAssets returns the assets the user can reach with at least
// one Allow, keyed by asset name, with only the Allow permissions retained.
func (e *Engine) UserAccessibleAssets(user jetty.NodeName) (map[jetty.NodeName][]jetty.EffectivePermission, error) {
	out := make(map[jetty.NodeName][]jetty.EffectivePermission)
	for _, asset := range e.g.NodesOfKind(jetty.KindAsset) {
		perms, err := e.Permissions(user, asset)
		if err != nil {
			return nil, err
		}
		if allowed := allowOnly(perms); len(allowed) > 0 {
			out[asset] = allowed
		}
	}
	return out, nil
}

// UsersWithAccessToAsset returns the users holding at least one Allow on the
// asset, keyed by user name, with only the Allow permissions retained.
func (e *Engine) UsersWithAccessToAsset(asset jetty.NodeName) (map[jetty.NodeName][]jetty.EffectivePermission, error) {
	out := make(map[jetty.NodeName][]jetty.EffectivePermission)
	for _, user := range e.g.NodesOfKind(jetty.KindUser) {
		perms, err := e.Permissions(user, asset)
		if err != nil {
			return nil, err
		}
		if allowed := allowOnly(perms); len(allowed) > 0 {
			out[user] = allowed
		}
	}
	return out, nil
}

// TagsForAsset returns every tag that applies to the asset: tags applied
// directly, tags inherited from hierarchical ancestors that pass through
// hierarchy, and tags inherited from lineage sources that pass through
// lineage. Sorted by name.
func TagsForAsset(g *graph.Graph, asset jetty.NodeName) ([]jetty.NodeName, error) {
	assetIdx, err := g.Index(asset)
	if err != nil {
		return nil, err
	}
	if _, err := g.AssetIndex(assetIdx); err != nil {
		return nil, err
	}

	tagSet := make(map[jetty.NodeName]bool)
	collect := func(indices []graph.NodeIndex) {
		for _, idx := range indices {
			tagSet[g.NodeAt(idx).NodeName()] = true
		}
	}

	// Directly applied tags sit one TaggedAs hop away.
	collect(g.MatchingDescendants(
		assetIdx,
		graph.EdgeOfType(graph.TaggedAs),
		graph.NodeOfKind(jetty.KindAsset),
		graph.NodeOfKind(jetty.KindTag),
		1, 1,
	))
	// Tags inherited through the hierarchy: walk up ChildOf through assets,
	// then across TaggedAs; minimum depth 2 excludes the direct hop.
	collect(g.MatchingDescendants(
		assetIdx,
		graph.EdgeOfType(graph.ChildOf, graph.TaggedAs),
		graph.NodeOfKind(jetty.KindAsset),
		func(n graph.Node) bool {
			tag, ok := n.(graph.TagNode)
			return ok && tag.PassThroughHierarchy
		},
		2, 0,
	))
	// Tags inherited through lineage: walk DerivedFrom instead.
	collect(g.MatchingDescendants(
		assetIdx,
		graph.EdgeOfType(graph.DerivedFrom, graph.TaggedAs),
		graph.NodeOfKind(jetty.KindAsset),
		func(n graph.Node) bool {
			tag, ok := n.(graph.TagNode)
			return ok && tag.PassThroughLineage
		},
		2, 0,
	))

	tags := make([]jetty.NodeName, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].String() < tags[j].String() })
	return tags, nil
}

// UserAccessibleTags returns the tags on the user's accessible assets,
// keyed by tag, each with the sorted list of accessible assets carrying it.
func (e *Engine) UserAccessibleTags(user jetty.NodeName) (map[jetty.NodeName][]jetty.NodeName, error) {
	assets, err := e.UserAccessibleAssets(user)
	if err != nil {
		return nil, err
	}
	out := make(map[jetty.NodeName][]jetty.NodeName)
	for asset := range assets {
		tags, err := TagsForAsset(e.g, asset)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			out[tag] = append(out[tag], asset)
		}
	}
	for tag := range out {
		assets := out[tag]
		sort.Slice(assets, func(i, j int) bool { return assets[i].String() < assets[j].String() })
	}
	return out, nil
}

func allowOnly(perms []jetty.EffectivePermission) []jetty.EffectivePermission {
	var allowed []jetty.EffectivePermission
	for _, p := range perms {
		if p.Mode == jetty.Allow {
			allowed = append(allowed, p)
		}
	}
	return allowed
}
