package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jettylabs/jetty"
)

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	// Create temp file
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "custom.yaml")
	err := os.WriteFile(tmpFile, []byte("access_config: test.yaml"), 0o644)
	require.NoError(t, err)

	path, err := findConfigFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, tmpFile, path)
}

func TestFindConfigFile_ExplicitPathNotFound(t *testing.T) {
	_, err := findConfigFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestFindConfigFile_AutoDiscovery(t *testing.T) {
	// Create directory structure with .git and jetty.yaml
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "jetty.yaml")
	err = os.WriteFile(configPath, []byte("access_config: test.yaml"), 0o644)
	require.NoError(t, err)

	// Create nested directory
	nested := filepath.Join(root, "deep", "nested")
	err = os.MkdirAll(nested, 0o755)
	require.NoError(t, err)

	// Change to nested directory
	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(nested)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath)
}

func TestFindConfigFile_StopsAtGitRoot(t *testing.T) {
	// Config above .git should not be found
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "jetty.yaml"), []byte("access_config: above.yaml"), 0o644)
	require.NoError(t, err)

	project := filepath.Join(root, "project")
	err = os.MkdirAll(project, 0o755)
	require.NoError(t, err)
	err = os.Mkdir(filepath.Join(project, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(project)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path) // Should not find config above .git
}

func TestLoadConfig_Defaults(t *testing.T) {
	// Create directory with .git but no config
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	cfg, configPath, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, configPath)

	// Check defaults
	assert.Equal(t, "jetty_config.yaml", cfg.AccessConfig)
	assert.Equal(t, ".", cfg.ProjectDir)
	assert.Equal(t, filepath.Join(".", ".jetty", "data", "jetty_graph"), cfg.SnapshotPath())
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "jetty.yaml")
	err = os.WriteFile(configPath, []byte(`
access_config: access/jetty_config.yaml
connectors:
  snow:
    groups: true
    nested_groups: true
    users: true
    policies: true
  tab:
    groups: true
privileges:
  table: [select, insert]
  schema: [usage]
`), 0o644)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	cfg, foundPath, err := LoadConfig("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(foundPath)
	assert.Equal(t, expectedPath, actualPath)

	// ProjectDir anchors to the config file's directory.
	assert.Equal(t, filepath.Dir(configPath), cfg.ProjectDir)
	assert.Equal(t, filepath.Join(cfg.ProjectDir, "access", "jetty_config.yaml"), cfg.AccessConfigPath())

	manifests := cfg.Manifests()
	require.Contains(t, manifests, jetty.ConnectorNamespace("snow"))
	snow := manifests["snow"]
	require.NotNil(t, snow.Capabilities.Groups)
	assert.True(t, snow.Capabilities.Groups.Nested)
	assert.True(t, snow.Capabilities.Users)
	assert.True(t, snow.Capabilities.Policies)
	assert.False(t, snow.Capabilities.DefaultPolicies)

	tab := manifests["tab"]
	require.NotNil(t, tab.Capabilities.Groups)
	assert.False(t, tab.Capabilities.Groups.Nested)

	assert.Equal(t, map[jetty.ConnectorNamespace]bool{"snow": true, "tab": true}, cfg.Namespaces())

	catalog := cfg.Catalog()
	assert.Equal(t, []string{"insert", "select"}, catalog.Applicable("table"))
	assert.True(t, catalog.RequiresUsage("schema"))
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "jetty.yaml")
	err = os.WriteFile(configPath, []byte("access_config: file.yaml"), 0o644)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	// Set env var
	t.Setenv("JETTY_ACCESS_CONFIG", "env.yaml")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	// Env should override file
	assert.Equal(t, "env.yaml", cfg.AccessConfig)
}

func TestSnapshotPath_ExplicitOverride(t *testing.T) {
	cfg := &Config{ProjectDir: "/proj", Snapshot: "cache/graph"}
	assert.Equal(t, filepath.Join("/proj", "cache", "graph"), cfg.SnapshotPath())

	cfg.Snapshot = "/abs/graph"
	assert.Equal(t, "/abs/graph", cfg.SnapshotPath())

	cfg.Snapshot = ""
	assert.Equal(t, filepath.Join("/proj", ".jetty", "data", "jetty_graph"), cfg.SnapshotPath())
}

func TestManifests_NoGroupSupport(t *testing.T) {
	cfg := &Config{Connectors: map[string]ConnectorConfig{
		"dbt": {Users: true},
	}}
	m := cfg.Manifests()["dbt"]
	assert.Nil(t, m.Capabilities.Groups)
	assert.True(t, m.Capabilities.Users)
}
