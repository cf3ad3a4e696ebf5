package permissions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/permissions"
)

var warehouseCatalog = permissions.PrivilegeCatalog{
	"database": {"usage"},
	"schema":   {"usage"},
	"table":    {"select", "insert"},
}

// warehouseFixture builds a hierarchy db -> schema -> table with isaac in
// the analysts group. Policies: usage on db and schema for analysts, and
// read_tables (select) on the table for analysts.
func warehouseFixture(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()

	addNode := func(n graph.Node) {
		t.Helper()
		_, err := g.AddNode(n)
		require.NoError(t, err)
	}
	addEdge := func(from, to jetty.NodeName, et graph.EdgeType) {
		t.Helper()
		require.NoError(t, g.AddEdge(graph.Edge{From: from, To: to, Type: et}))
	}

	addNode(graph.UserNode{Name: "isaac"})
	addNode(graph.GroupNode{Name: "analysts", Origin: "snow"})
	addNode(graph.AssetNode{Cual: "snowflake://acct/db", AssetType: "database"})
	addNode(graph.AssetNode{Cual: "snowflake://acct/db/schema", AssetType: "schema"})
	addNode(graph.AssetNode{Cual: "snowflake://acct/db/schema/table", AssetType: "table"})
	addNode(graph.PolicyNode{Name: "use_db", Privileges: map[string]bool{"usage": true}})
	addNode(graph.PolicyNode{Name: "use_schema", Privileges: map[string]bool{"USAGE": true}})
	addNode(graph.PolicyNode{Name: "read_tables", Privileges: map[string]bool{"select": true}})

	analysts := jetty.GroupName("analysts", "snow")
	addEdge(jetty.UserName("isaac"), analysts, graph.MemberOf)
	addEdge(jetty.AssetName("snowflake://acct/db"), jetty.AssetName("snowflake://acct/db/schema"), graph.ParentOf)
	addEdge(jetty.AssetName("snowflake://acct/db/schema"), jetty.AssetName("snowflake://acct/db/schema/table"), graph.ParentOf)
	addEdge(jetty.PolicyName("use_db"), jetty.AssetName("snowflake://acct/db"), graph.Governs)
	addEdge(jetty.PolicyName("use_schema"), jetty.AssetName("snowflake://acct/db/schema"), graph.Governs)
	addEdge(jetty.PolicyName("read_tables"), jetty.AssetName("snowflake://acct/db/schema/table"), graph.Governs)
	addEdge(jetty.PolicyName("use_db"), analysts, graph.GrantedTo)
	addEdge(jetty.PolicyName("use_schema"), analysts, graph.GrantedTo)
	addEdge(jetty.PolicyName("read_tables"), analysts, graph.GrantedTo)
	return g
}

func TestResolve_GrantThroughGroup(t *testing.T) {
	g := warehouseFixture(t)
	e := permissions.NewEngine(g, warehouseCatalog)

	perms, err := e.Resolve(jetty.UserName("isaac"), jetty.AssetName("snowflake://acct/db/schema/table"))
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, "select", perms[0].Privilege)
	require.Equal(t, jetty.Allow, perms[0].Mode)
	require.Equal(t, []string{permissions.ReasonExplicitGrant}, perms[0].Reasons)
}

func TestResolve_DisabledUserDeniesEverything(t *testing.T) {
	g := warehouseFixture(t)
	_, err := g.AddNode(graph.UserNode{
		Name:     "isaac",
		Metadata: map[string]string{connector.MetadataDisabled: "true"},
	})
	require.NoError(t, err)
	e := permissions.NewEngine(g, warehouseCatalog)

	perms, err := e.Resolve(jetty.UserName("isaac"), jetty.AssetName("snowflake://acct/db/schema/table"))
	require.NoError(t, err)
	require.Len(t, perms, 2)
	for _, p := range perms {
		require.Equal(t, jetty.Deny, p.Mode)
		require.Equal(t, []string{permissions.ReasonUserDisabled}, p.Reasons)
	}
	require.Equal(t, "insert", perms[0].Privilege)
	require.Equal(t, "select", perms[1].Privilege)
}

func TestResolve_MissingUsageOnScope(t *testing.T) {
	g := warehouseFixture(t)
	// A second user with the table grant but no usage anywhere.
	_, err := g.AddNode(graph.UserNode{Name: "mallory"})
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(graph.Edge{
		From: jetty.PolicyName("read_tables"),
		To:   jetty.UserName("mallory"),
		Type: graph.GrantedTo,
	}))
	e := permissions.NewEngine(g, warehouseCatalog)

	perms, err := e.Resolve(jetty.UserName("mallory"), jetty.AssetName("snowflake://acct/db/schema/table"))
	require.NoError(t, err)
	require.Len(t, perms, 2)
	for _, p := range perms {
		require.Equal(t, jetty.Deny, p.Mode)
		require.Equal(t, []string{permissions.ReasonMissingUsage}, p.Reasons)
	}
}

func TestResolve_UsageCheckIsCaseInsensitive(t *testing.T) {
	// use_schema carries "USAGE" rather than "usage"; the fixture resolves
	// anyway, which is the whole point of this test.
	g := warehouseFixture(t)
	e := permissions.NewEngine(g, warehouseCatalog)

	perms, err := e.Resolve(jetty.UserName("isaac"), jetty.AssetName("snowflake://acct/db/schema/table"))
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, jetty.Allow, perms[0].Mode)
}

func TestResolve_ReasonsAccumulate(t *testing.T) {
	g := warehouseFixture(t)
	_, err := g.AddNode(graph.PolicyNode{Name: "also_read", Privileges: map[string]bool{"select": true}})
	require.NoError(t, err)
	require.NoError(t, g.AddEdge(graph.Edge{
		From: jetty.PolicyName("also_read"),
		To:   jetty.AssetName("snowflake://acct/db/schema/table"),
		Type: graph.Governs,
	}))
	require.NoError(t, g.AddEdge(graph.Edge{
		From: jetty.PolicyName("also_read"),
		To:   jetty.GroupName("analysts", "snow"),
		Type: graph.GrantedTo,
	}))
	e := permissions.NewEngine(g, warehouseCatalog)

	perms, err := e.Resolve(jetty.UserName("isaac"), jetty.AssetName("snowflake://acct/db/schema/table"))
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, jetty.Allow, perms[0].Mode)
	require.Len(t, perms[0].Reasons, 2)
	require.Equal(t, permissions.ReasonExplicitGrant, perms[0].Reasons[0])
}

func TestResolve_NoGrantNoPermissions(t *testing.T) {
	g := warehouseFixture(t)
	e := permissions.NewEngine(g, warehouseCatalog)

	// isaac holds usage on the schema but no privilege on it.
	perms, err := e.Resolve(jetty.UserName("isaac"), jetty.AssetName("snowflake://acct/db/schema"))
	require.NoError(t, err)
	for _, p := range perms {
		require.NotEqual(t, jetty.Deny, p.Mode)
	}
}

func TestResolve_UnknownUser(t *testing.T) {
	g := warehouseFixture(t)
	e := permissions.NewEngine(g, warehouseCatalog)

	_, err := e.Resolve(jetty.UserName("nobody"), jetty.AssetName("snowflake://acct/db"))
	require.Error(t, err)
	require.True(t, graph.IsNotFoundErr(err))
}

func TestPermissions_PrefersConnectorReported(t *testing.T) {
	g := warehouseFixture(t)
	user := jetty.UserName("isaac")
	asset := jetty.AssetName("snowflake://acct/db/schema/table")
	g.SetEffectivePermissions(user, asset, []jetty.EffectivePermission{
		jetty.NewEffectivePermission("select", jetty.Deny, "masked by row policy"),
	})
	e := permissions.NewEngine(g, warehouseCatalog)

	perms, err := e.Permissions(user, asset)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	require.Equal(t, jetty.Deny, perms[0].Mode)
	require.Equal(t, []string{"masked by row policy"}, perms[0].Reasons)
}

func TestMembershipClosure_Cycle(t *testing.T) {
	g := graph.New()
	for _, name := range []string{"a", "b"} {
		_, err := g.AddNode(graph.GroupNode{Name: name, Origin: "snow"})
		require.NoError(t, err)
	}
	require.NoError(t, g.AddEdge(graph.Edge{
		From: jetty.GroupName("a", "snow"), To: jetty.GroupName("b", "snow"), Type: graph.MemberOf,
	}))
	require.NoError(t, g.AddEdge(graph.Edge{
		From: jetty.GroupName("b", "snow"), To: jetty.GroupName("a", "snow"), Type: graph.MemberOf,
	}))

	for _, start := range []string{"a", "b"} {
		idx, err := g.Index(jetty.GroupName(start, "snow"))
		require.NoError(t, err)
		closure := permissions.MembershipClosure(g, idx)
		var names []string
		for _, c := range closure {
			names = append(names, g.NodeAt(c).NodeName().String())
		}
		require.ElementsMatch(t, []string{"group:snow::a", "group:snow::b"}, names)
	}
}
