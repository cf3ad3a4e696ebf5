package translate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
)

func TestToProcessed_RewritesReferences(t *testing.T) {
	batches := []translate.Batch{{
		Namespace: "snow",
		Data: connector.ConnectorData{
			CualPrefix: "snowflake://acct",
			Users: []connector.User{{
				Name:        "ISAAC",
				Identifiers: map[jetty.UserIdentifier]string{jetty.IdentifierEmail: "isaac@allen.dev"},
				MemberOf:    []string{"ANALYSTS"},
			}},
			Groups: []connector.Group{{
				Name:          "ANALYSTS",
				IncludesUsers: []string{"ISAAC"},
				GrantedBy:     []string{"READ_FINANCE"},
			}},
			Assets: []connector.Asset{
				{
					Cual:      "snowflake://acct/finance",
					AssetType: "database",
					ParentOf:  []jetty.Cual{"snowflake://acct/finance/reports"},
				},
				{
					Cual:      "snowflake://acct/finance/reports",
					AssetType: "schema",
					ChildOf:   []jetty.Cual{"snowflake://acct/finance"},
					// Lineage into a platform nobody configured.
					DerivedTo: []jetty.Cual{"bigquery://project/dataset"},
					TaggedAs:  []string{"tag-pii"},
				},
			},
			Tags: []connector.Tag{{
				ID:        "tag-pii",
				Name:      "pii",
				AppliedTo: []jetty.Cual{"snowflake://acct/finance/reports"},
			}},
			Policies: []connector.Policy{{
				Name:            "READ_FINANCE",
				Privileges:      []string{"SELECT"},
				GovernsAssets:   []jetty.Cual{"snowflake://acct/finance"},
				GrantedToGroups: []string{"ANALYSTS"},
			}},
		},
	}}
	tr := translate.NewTranslator(batches, nil)

	processed, err := tr.ToProcessed(batches)
	require.NoError(t, err)

	require.Len(t, processed.Users, 1)
	require.Equal(t, jetty.UserName("isaac@allen.dev"), processed.Users[0].Name)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("ANALYSTS", "snow")}, processed.Users[0].MemberOf)

	require.Len(t, processed.Groups, 1)
	require.Equal(t, []jetty.NodeName{jetty.UserName("isaac@allen.dev")}, processed.Groups[0].IncludesUsers)
	require.Equal(t, []jetty.NodeName{jetty.PolicyName("READ_FINANCE")}, processed.Groups[0].GrantedBy)

	require.Len(t, processed.Assets, 2)
	reports := processed.Assets[1]
	require.Equal(t, jetty.AssetName("snowflake://acct/finance/reports"), reports.Name)
	require.Equal(t, []jetty.NodeName{jetty.TagName(translate.TagID("tag-pii"))}, reports.TaggedAs)
	// The unconfigured lineage target is dropped, not an error.
	require.Empty(t, reports.DerivedTo)

	// The output feeds the graph builder directly.
	g, err := graph.Build([]connector.ProcessedConnectorData{processed})
	require.NoError(t, err)
	require.True(t, g.HasEdge(graph.Edge{
		From: jetty.UserName("isaac@allen.dev"),
		To:   jetty.GroupName("ANALYSTS", "snow"),
		Type: graph.MemberOf,
	}))
}

func TestToProcessed_UnknownReference(t *testing.T) {
	batches := []translate.Batch{{
		Namespace: "snow",
		Data: connector.ConnectorData{
			CualPrefix: "snowflake://acct",
			Users: []connector.User{{
				Name:     "ISAAC",
				MemberOf: []string{"GHOSTS"},
			}},
		},
	}}
	tr := translate.NewTranslator(batches, nil)

	_, err := tr.ToProcessed(batches)
	require.Error(t, err)
	require.True(t, translate.IsMissingConnectorMappingErr(err))
}

func TestToProcessed_EffectivePermissionAxes(t *testing.T) {
	perms := jetty.SparseMatrix[string, jetty.Cual, []jetty.EffectivePermission]{}
	perms.Set("ISAAC", "snowflake://acct/finance", []jetty.EffectivePermission{
		jetty.NewEffectivePermission("SELECT", jetty.Allow, "granted directly"),
	})
	batches := []translate.Batch{{
		Namespace: "snow",
		Data: connector.ConnectorData{
			CualPrefix: "snowflake://acct",
			Users: []connector.User{{
				Name:        "ISAAC",
				Identifiers: map[jetty.UserIdentifier]string{jetty.IdentifierEmail: "isaac@allen.dev"},
			}},
			Assets:               []connector.Asset{{Cual: "snowflake://acct/finance", AssetType: "database"}},
			EffectivePermissions: perms,
		},
	}}
	tr := translate.NewTranslator(batches, nil)

	processed, err := tr.ToProcessed(batches)
	require.NoError(t, err)

	got, ok := processed.EffectivePermissions.Get(
		jetty.UserName("isaac@allen.dev"),
		jetty.AssetName("snowflake://acct/finance"),
	)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, "SELECT", got[0].Privilege)
}
