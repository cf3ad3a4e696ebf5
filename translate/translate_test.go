package translate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/translate"
)

func fixtureBatches() []translate.Batch {
	return []translate.Batch{
		{
			Namespace: "snow",
			Data: connector.ConnectorData{
				CualPrefix: "snowflake://acct",
				Users: []connector.User{
					{
						Name:        "ISAAC",
						Identifiers: map[jetty.UserIdentifier]string{jetty.IdentifierEmail: "isaac@allen.dev"},
					},
					{Name: "SVC_LOADER"},
				},
				Groups:   []connector.Group{{Name: "ANALYSTS"}},
				Policies: []connector.Policy{{Name: "READ_FINANCE", Privileges: []string{"SELECT"}}},
				Tags:     []connector.Tag{{ID: "tag-pii", Name: "pii"}},
			},
		},
		{
			Namespace: "tab",
			Data: connector.ConnectorData{
				CualPrefix: "tableau://site",
				Users: []connector.User{
					{
						Name:        "isaac.allen",
						Identifiers: map[jetty.UserIdentifier]string{jetty.IdentifierEmail: "isaac@allen.dev"},
					},
				},
			},
		},
	}
}

func TestNewTranslator_IdentityResolution(t *testing.T) {
	tr := translate.NewTranslator(fixtureBatches(), nil)

	// Email identifier wins over the local name, unifying the user across
	// both platforms.
	snow, err := tr.ToGlobalUser("snow", "ISAAC")
	require.NoError(t, err)
	tab, err := tr.ToGlobalUser("tab", "isaac.allen")
	require.NoError(t, err)
	require.Equal(t, jetty.UserName("isaac@allen.dev"), snow)
	require.Equal(t, snow, tab)

	// No email: the local name is the identity.
	svc, err := tr.ToGlobalUser("snow", "SVC_LOADER")
	require.NoError(t, err)
	require.Equal(t, jetty.UserName("SVC_LOADER"), svc)
}

func TestNewTranslator_ConfigOverrideWins(t *testing.T) {
	overrides := translate.IdentityOverrides{
		"snow": {"ISAAC": jetty.UserName("isaac")},
	}
	tr := translate.NewTranslator(fixtureBatches(), overrides)

	name, err := tr.ToGlobalUser("snow", "ISAAC")
	require.NoError(t, err)
	require.Equal(t, jetty.UserName("isaac"), name)

	// The override is per-namespace: tab still resolves by email.
	tab, err := tr.ToGlobalUser("tab", "isaac.allen")
	require.NoError(t, err)
	require.Equal(t, jetty.UserName("isaac@allen.dev"), tab)
}

func TestToLocal(t *testing.T) {
	tr := translate.NewTranslator(fixtureBatches(), nil)

	local, err := tr.ToLocal(jetty.UserName("isaac@allen.dev"), "snow")
	require.NoError(t, err)
	require.Equal(t, "ISAAC", local)

	local, err = tr.ToLocal(jetty.UserName("isaac@allen.dev"), "tab")
	require.NoError(t, err)
	require.Equal(t, "isaac.allen", local)

	local, err = tr.ToLocal(jetty.PolicyName("READ_FINANCE"), "snow")
	require.NoError(t, err)
	require.Equal(t, "READ_FINANCE", local)

	local, err = tr.ToLocal(jetty.TagName(translate.TagID("tag-pii")), "snow")
	require.NoError(t, err)
	require.Equal(t, "tag-pii", local)

	// Groups translate to their plain name even without a mapping, since a
	// diff may create them.
	local, err = tr.ToLocal(jetty.GroupName("new_team", "snow"), "snow")
	require.NoError(t, err)
	require.Equal(t, "new_team", local)

	// Assets translate to their cual.
	local, err = tr.ToLocal(jetty.AssetName("snowflake://acct/db"), "snow")
	require.NoError(t, err)
	require.Equal(t, "snowflake://acct/db", local)
}

func TestToLocal_MissingMapping(t *testing.T) {
	tr := translate.NewTranslator(fixtureBatches(), nil)

	_, err := tr.ToLocal(jetty.UserName("nobody"), "snow")
	require.Error(t, err)
	require.True(t, translate.IsMissingConnectorMappingErr(err))

	_, err = tr.ToLocal(jetty.UserName("isaac@allen.dev"), "bigquery")
	require.Error(t, err)
	require.True(t, translate.IsMissingConnectorMappingErr(err))
}

func TestNamespaceOfCual(t *testing.T) {
	tr := translate.NewTranslator(fixtureBatches(), nil)

	ns, err := tr.NamespaceOfCual("snowflake://acct/db/schema")
	require.NoError(t, err)
	require.Equal(t, jetty.ConnectorNamespace("snow"), ns)

	_, err = tr.NamespaceOfCual("bigquery://project/dataset")
	require.Error(t, err)
	require.True(t, translate.IsMissingConnectorMappingErr(err))
}

func TestTagID_Deterministic(t *testing.T) {
	require.Equal(t, translate.TagID("tag-pii"), translate.TagID("tag-pii"))
	require.NotEqual(t, translate.TagID("tag-pii"), translate.TagID("tag-phi"))
}
