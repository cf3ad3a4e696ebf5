package translate

import (
	"fmt"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
)

// ToProcessed rewrites every local reference in the batches to a global
// NodeName, producing the one shape the graph ingests. A reference to an
// entity the translator never saw is an ErrMissingConnectorMapping; lineage
// references to unknown connectors are skipped instead, since lineage
// legitimately crosses into platforms that are not configured.
func (t *Translator) ToProcessed(batches []Batch) (connector.ProcessedConnectorData, error) {
	result := connector.ProcessedConnectorData{
		EffectivePermissions: jetty.SparseMatrix[jetty.NodeName, jetty.NodeName, []jetty.EffectivePermission]{},
	}
	for _, b := range batches {
		if err := t.processBatch(&result, b); err != nil {
			return connector.ProcessedConnectorData{}, fmt.Errorf("translating %q: %w", b.Namespace, err)
		}
	}
	return result, nil
}

func (t *Translator) processBatch(result *connector.ProcessedConnectorData, b Batch) error {
	ns := b.Namespace
	for _, u := range b.Data.Users {
		name, err := t.ToGlobalUser(ns, u.Name)
		if err != nil {
			return err
		}
		memberOf, err := t.groupRefs(ns, u.MemberOf)
		if err != nil {
			return err
		}
		grantedBy, err := t.policyRefs(ns, u.GrantedBy)
		if err != nil {
			return err
		}
		result.Users = append(result.Users, connector.ProcessedUser{
			Name:             name,
			Identifiers:      u.Identifiers,
			OtherIdentifiers: u.OtherIdentifiers,
			Metadata:         u.Metadata,
			MemberOf:         memberOf,
			GrantedBy:        grantedBy,
			Connector:        ns,
		})
	}
	for _, g := range b.Data.Groups {
		memberOf, err := t.groupRefs(ns, g.MemberOf)
		if err != nil {
			return err
		}
		includesUsers, err := t.userRefs(ns, g.IncludesUsers)
		if err != nil {
			return err
		}
		includesGroups, err := t.groupRefs(ns, g.IncludesGroups)
		if err != nil {
			return err
		}
		grantedBy, err := t.policyRefs(ns, g.GrantedBy)
		if err != nil {
			return err
		}
		result.Groups = append(result.Groups, connector.ProcessedGroup{
			Name:           jetty.GroupName(g.Name, ns),
			Metadata:       g.Metadata,
			MemberOf:       memberOf,
			IncludesUsers:  includesUsers,
			IncludesGroups: includesGroups,
			GrantedBy:      grantedBy,
			Connector:      ns,
		})
	}
	for _, a := range b.Data.Assets {
		governedBy, err := t.policyRefs(ns, a.GovernedBy)
		if err != nil {
			return err
		}
		childOf, err := t.assetRefs(a.ChildOf)
		if err != nil {
			return err
		}
		parentOf, err := t.assetRefs(a.ParentOf)
		if err != nil {
			return err
		}
		result.Assets = append(result.Assets, connector.ProcessedAsset{
			Name:        jetty.AssetName(a.Cual),
			AssetType:   a.AssetType,
			Metadata:    a.Metadata,
			GovernedBy:  governedBy,
			ChildOf:     childOf,
			ParentOf:    parentOf,
			DerivedFrom: t.knownAssetRefs(a.DerivedFrom),
			DerivedTo:   t.knownAssetRefs(a.DerivedTo),
			TaggedAs:    t.tagRefs(a.TaggedAs),
			Connector:   ns,
		})
	}
	for _, tag := range b.Data.Tags {
		appliedTo, err := t.assetRefs(tag.AppliedTo)
		if err != nil {
			return err
		}
		governedBy, err := t.policyRefs(ns, tag.GovernedBy)
		if err != nil {
			return err
		}
		result.Tags = append(result.Tags, connector.ProcessedTag{
			Name:                 jetty.TagName(TagID(tag.ID)),
			TagName:              tag.Name,
			Value:                tag.Value,
			Description:          tag.Description,
			PassThroughHierarchy: tag.PassThroughHierarchy,
			PassThroughLineage:   tag.PassThroughLineage,
			AppliedTo:            appliedTo,
			GovernedBy:           governedBy,
			Connector:            ns,
		})
	}
	for _, p := range b.Data.Policies {
		governsAssets, err := t.assetRefs(p.GovernsAssets)
		if err != nil {
			return err
		}
		grantedToGroups, err := t.groupRefs(ns, p.GrantedToGroups)
		if err != nil {
			return err
		}
		grantedToUsers, err := t.userRefs(ns, p.GrantedToUsers)
		if err != nil {
			return err
		}
		result.Policies = append(result.Policies, connector.ProcessedPolicy{
			Name:                 jetty.PolicyName(p.Name),
			Privileges:           p.Privileges,
			GovernsAssets:        governsAssets,
			GovernsTags:          t.tagRefs(p.GovernsTags),
			GrantedToGroups:      grantedToGroups,
			GrantedToUsers:       grantedToUsers,
			PassThroughHierarchy: p.PassThroughHierarchy,
			PassThroughLineage:   p.PassThroughLineage,
			Connector:            ns,
		})
	}
	for _, dp := range b.Data.DefaultPolicies {
		root := jetty.AssetName(dp.RootAsset)
		var grantee jetty.NodeName
		var err error
		switch dp.GranteeKind {
		case connector.GranteeGroup:
			grantee = jetty.GroupName(dp.Grantee, ns)
		case connector.GranteeUser:
			grantee, err = t.ToGlobalUser(ns, dp.Grantee)
			if err != nil {
				return err
			}
		}
		result.DefaultPolicies = append(result.DefaultPolicies, connector.ProcessedDefaultPolicy{
			Name:         jetty.DefaultPolicyName(root, dp.WildcardPath, dp.TargetType, grantee, ns),
			RootNode:     root,
			MatchingPath: dp.WildcardPath,
			TargetType:   dp.TargetType,
			Grantee:      grantee,
			Privileges:   dp.Privileges,
			Metadata:     dp.Metadata,
			Connector:    ns,
		})
	}
	for localUser, row := range b.Data.EffectivePermissions {
		user, err := t.ToGlobalUser(ns, localUser)
		if err != nil {
			return err
		}
		for cual, perms := range row {
			result.EffectivePermissions.SetOrMerge(user, jetty.AssetName(cual), perms,
				func(existing, incoming []jetty.EffectivePermission) []jetty.EffectivePermission {
					return append(existing, incoming...)
				})
		}
	}
	return nil
}

func (t *Translator) userRefs(ns jetty.ConnectorNamespace, locals []string) ([]jetty.NodeName, error) {
	var out []jetty.NodeName
	for _, local := range locals {
		name, err := t.ToGlobalUser(ns, local)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

func (t *Translator) groupRefs(ns jetty.ConnectorNamespace, locals []string) ([]jetty.NodeName, error) {
	var out []jetty.NodeName
	for _, local := range locals {
		name, ok := t.localToGlobal.groups.Get(ns, local)
		if !ok {
			return nil, fmt.Errorf("%w: group %q in %q", ErrMissingConnectorMapping, local, ns)
		}
		out = append(out, name)
	}
	return out, nil
}

func (t *Translator) policyRefs(ns jetty.ConnectorNamespace, locals []string) ([]jetty.NodeName, error) {
	var out []jetty.NodeName
	for _, local := range locals {
		name, ok := t.localToGlobal.policies.Get(ns, local)
		if !ok {
			return nil, fmt.Errorf("%w: policy %q in %q", ErrMissingConnectorMapping, local, ns)
		}
		out = append(out, name)
	}
	return out, nil
}

// assetRefs validates that each cual's prefix belongs to a configured
// connector before turning it into an asset name.
func (t *Translator) assetRefs(cuals []jetty.Cual) ([]jetty.NodeName, error) {
	var out []jetty.NodeName
	for _, c := range cuals {
		if _, err := t.NamespaceOfCual(c); err != nil {
			return nil, err
		}
		out = append(out, jetty.AssetName(c))
	}
	return out, nil
}

// knownAssetRefs keeps only cuals whose prefix belongs to a configured
// connector. Used for lineage, which may reference unconfigured platforms.
func (t *Translator) knownAssetRefs(cuals []jetty.Cual) []jetty.NodeName {
	var out []jetty.NodeName
	for _, c := range cuals {
		if _, err := t.NamespaceOfCual(c); err != nil {
			continue
		}
		out = append(out, jetty.AssetName(c))
	}
	return out
}

func (t *Translator) tagRefs(localIDs []string) []jetty.NodeName {
	out := make([]jetty.NodeName, 0, len(localIDs))
	for _, id := range localIDs {
		out = append(out, jetty.TagName(TagID(id)))
	}
	return out
}
