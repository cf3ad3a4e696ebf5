package write_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
	"github.com/jettylabs/jetty/write"
)

// fixtureBatches is one warehouse connector: two users, a small group
// hierarchy, a three-level asset tree, one policy, and one wildcard policy.
func fixtureBatches() []translate.Batch {
	return []translate.Batch{{
		Namespace: "snow",
		Data: connector.ConnectorData{
			CualPrefix: "snowflake://acct",
			Users: []connector.User{
				{
					Name: "isaac",
					Identifiers: map[jetty.UserIdentifier]string{
						jetty.IdentifierEmail: "isaac@allen.dev",
					},
					MemberOf: []string{"analysts"},
				},
				{Name: "mallory"},
			},
			Groups: []connector.Group{
				{Name: "analysts", MemberOf: []string{"admins"}},
				{Name: "admins"},
			},
			Assets: []connector.Asset{
				{
					Cual:      "snowflake://acct/db",
					AssetType: "database",
					ParentOf:  []jetty.Cual{"snowflake://acct/db/schema"},
				},
				{
					Cual:      "snowflake://acct/db/schema",
					AssetType: "schema",
					ChildOf:   []jetty.Cual{"snowflake://acct/db"},
					ParentOf:  []jetty.Cual{"snowflake://acct/db/schema/table"},
				},
				{
					Cual:      "snowflake://acct/db/schema/table",
					AssetType: "table",
					ChildOf:   []jetty.Cual{"snowflake://acct/db/schema"},
				},
			},
			Policies: []connector.Policy{{
				Name:            "read_tables",
				Privileges:      []string{"select"},
				GovernsAssets:   []jetty.Cual{"snowflake://acct/db/schema/table"},
				GrantedToGroups: []string{"analysts"},
			}},
			DefaultPolicies: []connector.DefaultPolicy{{
				RootAsset:    "snowflake://acct/db",
				WildcardPath: "*",
				TargetType:   "schema",
				GranteeKind:  connector.GranteeGroup,
				Grantee:      "analysts",
				Privileges:   []string{"usage"},
			}},
		},
	}}
}

func fixtureEnv(t *testing.T) (*graph.Graph, *translate.Translator) {
	t.Helper()
	tr := translate.NewTranslator(fixtureBatches(), nil)
	processed, err := tr.ToProcessed(fixtureBatches())
	require.NoError(t, err)
	g, err := graph.Build([]connector.ProcessedConnectorData{processed})
	require.NoError(t, err)
	return g, tr
}

func fixtureManifests(nested bool) map[jetty.ConnectorNamespace]connector.Manifest {
	return map[jetty.ConnectorNamespace]connector.Manifest{
		"snow": {
			Capabilities: connector.WriteCapabilities{
				Groups:          &connector.GroupWriteCapability{Nested: nested},
				Users:           true,
				Policies:        true,
				DefaultPolicies: true,
			},
		},
	}
}

// fixtureConfig mirrors the environment fixtureBatches produces.
func fixtureConfig() write.Config {
	return write.Config{
		Groups: []write.GroupConfig{
			{Name: "analysts", MemberOf: []string{"admins"}},
			{Name: "admins"},
		},
		Users: []write.UserConfig{
			{
				Name:        "isaac@allen.dev",
				Identifiers: map[jetty.ConnectorNamespace]string{"snow": "isaac"},
				MemberOf:    []string{"analysts"},
			},
			{
				Name:        "mallory",
				Identifiers: map[jetty.ConnectorNamespace]string{"snow": "mallory"},
			},
		},
		Policies: []write.PolicyConfig{{
			Name:            "read_tables",
			Privileges:      []string{"select"},
			GovernsAssets:   []jetty.Cual{"snowflake://acct/db/schema/table"},
			GrantedToGroups: []string{"analysts"},
		}},
		DefaultPolicies: []write.DefaultPolicyConfig{{
			RootAsset:       "snowflake://acct/db",
			Path:            "*",
			TargetType:      "schema",
			GrantedToGroups: []string{"analysts"},
			Privileges:      []string{"usage"},
		}},
	}
}

func TestSetDiff(t *testing.T) {
	desired := map[string]bool{"a": true, "b": true, "c": true}
	current := map[string]bool{"b": true, "c": true, "d": true}
	add, remove := write.SetDiff(desired, current, func(s string) string { return s })
	require.Equal(t, []string{"a"}, add)
	require.Equal(t, []string{"d"}, remove)
}

func TestSetDiff_SortedOutput(t *testing.T) {
	desired := map[string]bool{"z": true, "a": true, "m": true}
	add, remove := write.SetDiff(desired, nil, func(s string) string { return s })
	require.Equal(t, []string{"a", "m", "z"}, add)
	require.Empty(t, remove)
}

func TestGetDiffs_Idempotent(t *testing.T) {
	g, tr := fixtureEnv(t)
	diffs, err := write.GetDiffs(fixtureConfig(), g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.True(t, diffs.Empty(), "config matching the environment must diff to nothing:\n%s", diffs)
}

func TestGroupDiffs_AddModifyRemove(t *testing.T) {
	g, _ := fixtureEnv(t)
	cfg := fixtureConfig()
	// New group, changed membership, and admins dropped entirely.
	cfg.Groups = []write.GroupConfig{
		{Name: "analysts"},
		{Name: "ds", MemberOf: []string{"analysts"}},
	}

	diffs := write.GroupDiffs(cfg.Groups, g, fixtureManifests(true))
	require.Len(t, diffs, 3)

	require.Equal(t, jetty.GroupName("admins", "snow"), diffs[0].Group)
	require.Equal(t, write.OpRemove, diffs[0].Op)

	require.Equal(t, jetty.GroupName("analysts", "snow"), diffs[1].Group)
	require.Equal(t, write.OpModify, diffs[1].Op)
	require.Empty(t, diffs[1].AddMemberOf)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("admins", "snow")}, diffs[1].RemoveMemberOf)

	require.Equal(t, jetty.GroupName("ds", "snow"), diffs[2].Group)
	require.Equal(t, write.OpAdd, diffs[2].Op)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("analysts", "snow")}, diffs[2].AddMemberOf)
	require.Equal(t, jetty.ConnectorNamespace("snow"), diffs[2].Connector)
}

func TestGroupDiffs_IdentifierOverride(t *testing.T) {
	g, _ := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Groups = append(cfg.Groups, write.GroupConfig{
		Name:        "engineering",
		Identifiers: map[jetty.ConnectorNamespace]string{"snow": "ENG_RL"},
	})

	diffs := write.GroupDiffs(cfg.Groups, g, fixtureManifests(true))
	require.Len(t, diffs, 1)
	require.Equal(t, write.OpAdd, diffs[0].Op)
	require.Equal(t, jetty.GroupName("ENG_RL", "snow"), diffs[0].Group)
}

func TestUserDiffs_IdentityChanges(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	// mallory gone, nate new.
	cfg.Users = []write.UserConfig{
		cfg.Users[0],
		{Name: "nate@allen.dev", Identifiers: map[jetty.ConnectorNamespace]string{"snow": "nate"}},
	}

	diffs, err := write.UserDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	require.Equal(t, jetty.UserName("mallory"), diffs[0].User)
	require.Equal(t, write.OpRemove, diffs[0].Op)
	require.Equal(t, []write.LocalIdentity{{Connector: "snow", LocalName: "mallory"}}, diffs[0].RemoveIdentities)

	require.Equal(t, jetty.UserName("nate@allen.dev"), diffs[1].User)
	require.Equal(t, write.OpAdd, diffs[1].Op)
	require.Equal(t, []write.LocalIdentity{{Connector: "snow", LocalName: "nate"}}, diffs[1].AddIdentities)
}

func TestUserDiffs_MembershipChange(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Users[0].MemberOf = []string{"admins"}

	diffs, err := write.UserDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	require.Equal(t, jetty.UserName("isaac@allen.dev"), diffs[0].User)
	require.Equal(t, write.OpModify, diffs[0].Op)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("admins", "snow")}, diffs[0].AddMemberOf)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("analysts", "snow")}, diffs[0].RemoveMemberOf)
}

func TestUserDiffs_FlattensWithoutNestedGroups(t *testing.T) {
	g, tr := fixtureEnv(t)

	// Without nested-group support the configured hierarchy collapses onto
	// the user: isaac must join admins directly, not through analysts.
	diffs, err := write.UserDiffs(fixtureConfig(), g, tr, fixtureManifests(false))
	require.NoError(t, err)

	var isaac *write.UserDiff
	for i := range diffs {
		if diffs[i].User == jetty.UserName("isaac@allen.dev") {
			isaac = &diffs[i]
		}
	}
	require.NotNil(t, isaac)
	require.Equal(t, write.OpModify, isaac.Op)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("admins", "snow")}, isaac.AddMemberOf)
	require.Empty(t, isaac.RemoveMemberOf)
}

func TestPolicyDiffs_PrivilegeChange(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Policies[0].Privileges = []string{"insert", "select"}

	diffs, err := write.PolicyDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	require.Equal(t, jetty.PolicyName("read_tables"), diffs[0].Policy)
	require.Equal(t, jetty.ConnectorNamespace("snow"), diffs[0].Connector)
	require.Equal(t, write.OpModify, diffs[0].Op)
	require.Equal(t, []string{"insert"}, diffs[0].AddPrivileges)
	require.Empty(t, diffs[0].RemovePrivileges)
	require.Empty(t, diffs[0].AddGoverns)
	require.Empty(t, diffs[0].AddGrantedTo)
}

func TestPolicyDiffs_AddAndRemove(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Policies = []write.PolicyConfig{{
		Name:            "write_tables",
		Privileges:      []string{"insert"},
		GovernsAssets:   []jetty.Cual{"snowflake://acct/db/schema/table"},
		GrantedToGroups: []string{"admins"},
	}}

	diffs, err := write.PolicyDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.Len(t, diffs, 2)

	require.Equal(t, jetty.PolicyName("read_tables"), diffs[0].Policy)
	require.Equal(t, write.OpRemove, diffs[0].Op)

	require.Equal(t, jetty.PolicyName("write_tables"), diffs[1].Policy)
	require.Equal(t, write.OpAdd, diffs[1].Op)
	require.Equal(t, []string{"insert"}, diffs[1].AddPrivileges)
	require.Equal(t, []jetty.NodeName{jetty.AssetName("snowflake://acct/db/schema/table")}, diffs[1].AddGoverns)
	require.Equal(t, []jetty.NodeName{jetty.GroupName("admins", "snow")}, diffs[1].AddGrantedTo)
}

func TestPolicyDiffs_UnknownCualPrefix(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Policies[0].GovernsAssets = []jetty.Cual{"bigquery://project/dataset"}

	_, err := write.PolicyDiffs(cfg, g, tr, fixtureManifests(true))
	require.Error(t, err)
	require.True(t, translate.IsMissingConnectorMappingErr(err))
}

func TestDefaultPolicyDiffs_PrivilegeChange(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.DefaultPolicies[0].Privileges = []string{"monitor", "usage"}

	diffs, err := write.DefaultPolicyDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	require.Equal(t, write.OpModify, diffs[0].Op)
	require.Equal(t, jetty.ConnectorNamespace("snow"), diffs[0].Connector)
	require.Equal(t, []string{"monitor"}, diffs[0].AddPrivileges)
	require.Empty(t, diffs[0].RemovePrivileges)
}

func TestDefaultPolicyDiffs_RemoveUnconfigured(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.DefaultPolicies = nil

	diffs, err := write.DefaultPolicyDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.Len(t, diffs, 1)
	require.Equal(t, write.OpRemove, diffs[0].Op)
	require.Equal(t, jetty.GroupName("analysts", "snow"), diffs[0].Name.Grantee())
}

func TestSplitByConnector(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Groups = append(cfg.Groups, write.GroupConfig{Name: "ds"})
	cfg.Users[0].MemberOf = append(cfg.Users[0].MemberOf, "ds")

	diffs, err := write.GetDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)
	require.False(t, diffs.Empty())

	split := diffs.SplitByConnector()
	require.Len(t, split, 1)
	snow := split["snow"]
	require.Len(t, snow.Groups, 1)
	require.Len(t, snow.Users, 1)
}

func TestLocalize(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Groups = append(cfg.Groups, write.GroupConfig{Name: "ds", MemberOf: []string{"analysts"}})
	cfg.Users[0].MemberOf = []string{"analysts", "ds"}
	cfg.Policies[0].GrantedToGroups = []string{"analysts", "ds"}

	diffs, err := write.GetDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)

	local, err := write.Localize(diffs, tr)
	require.NoError(t, err)
	require.Len(t, local, 1)
	snow := local["snow"]

	require.Len(t, snow.Groups, 1)
	require.Equal(t, "ds", snow.Groups[0].Group)
	require.Equal(t, []string{"analysts"}, snow.Groups[0].AddMemberOf)

	require.Len(t, snow.Users, 1)
	require.Equal(t, "isaac", snow.Users[0].User)
	require.Equal(t, []string{"ds"}, snow.Users[0].AddMemberOf)

	require.Len(t, snow.Policies, 1)
	require.Equal(t, "read_tables", snow.Policies[0].Policy)
	require.Equal(t, []string{"ds"}, snow.Policies[0].AddGrantedTo)
}

func TestGlobalDiffsString_PlanStyle(t *testing.T) {
	g, tr := fixtureEnv(t)
	cfg := fixtureConfig()
	cfg.Groups = append(cfg.Groups, write.GroupConfig{Name: "ds", MemberOf: []string{"analysts"}})

	diffs, err := write.GetDiffs(cfg, g, tr, fixtureManifests(true))
	require.NoError(t, err)

	out := diffs.String()
	require.Contains(t, out, "+ group: group:snow::ds\n")
	require.Contains(t, out, "  member of:\n")
	require.Contains(t, out, "    + group:snow::analysts\n")
}
