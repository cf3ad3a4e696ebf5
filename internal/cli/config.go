package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/permissions"
	"github.com/jettylabs/jetty/snapshot"
)

const (
	maxWalkDepth = 25
)

// Config represents the project configuration from jetty.yaml.
type Config struct {
	// ProjectDir anchors relative paths; defaults to the directory holding
	// the config file, or the working directory when there is none.
	ProjectDir string `mapstructure:"project_dir"`

	// AccessConfig is the desired-state document the diff command compares
	// against the environment.
	AccessConfig string `mapstructure:"access_config"`

	// Snapshot overrides the default snapshot location.
	Snapshot string `mapstructure:"snapshot"`

	// Connectors declares the configured connections and their write
	// capabilities, keyed by namespace.
	Connectors map[string]ConnectorConfig `mapstructure:"connectors"`

	// Privileges maps an asset type to the privileges applicable to it,
	// feeding the permission engine's catalog.
	Privileges map[string][]string `mapstructure:"privileges"`
}

// ConnectorConfig holds one connector's settings.
type ConnectorConfig struct {
	Groups          bool `mapstructure:"groups"`
	NestedGroups    bool `mapstructure:"nested_groups"`
	Users           bool `mapstructure:"users"`
	Policies        bool `mapstructure:"policies"`
	DefaultPolicies bool `mapstructure:"default_policies"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults.
//
// Returns the loaded config, the path to the config file (empty if none
// found), and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("JETTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.ProjectDir == "" {
		if configPath != "" {
			cfg.ProjectDir = filepath.Dir(configPath)
		} else {
			cfg.ProjectDir = "."
		}
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project_dir", "")
	v.SetDefault("access_config", "jetty_config.yaml")
	v.SetDefault("snapshot", "")
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for jetty.yaml or jetty.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range []string{"jetty.yaml", "jetty.yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at the repo boundary.
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil // No config found, use defaults
}

// SnapshotPath returns the effective snapshot location, with the explicit
// setting taking precedence over the default project path.
func (c *Config) SnapshotPath() string {
	if c.Snapshot != "" {
		return c.resolved(c.Snapshot)
	}
	return snapshot.Path(c.ProjectDir)
}

// AccessConfigPath returns the effective desired-state document location.
func (c *Config) AccessConfigPath() string {
	return c.resolved(c.AccessConfig)
}

func (c *Config) resolved(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ProjectDir, path)
}

// Namespaces returns the set of configured connector namespaces.
func (c *Config) Namespaces() map[jetty.ConnectorNamespace]bool {
	out := make(map[jetty.ConnectorNamespace]bool, len(c.Connectors))
	for ns := range c.Connectors {
		out[jetty.ConnectorNamespace(ns)] = true
	}
	return out
}

// Manifests builds the write-capability manifests the reconciliation engine
// consults, one per configured connector.
func (c *Config) Manifests() map[jetty.ConnectorNamespace]connector.Manifest {
	out := make(map[jetty.ConnectorNamespace]connector.Manifest, len(c.Connectors))
	for ns, cc := range c.Connectors {
		capabilities := connector.WriteCapabilities{
			Users:           cc.Users,
			Policies:        cc.Policies,
			DefaultPolicies: cc.DefaultPolicies,
		}
		if cc.Groups {
			capabilities.Groups = &connector.GroupWriteCapability{Nested: cc.NestedGroups}
		}
		out[jetty.ConnectorNamespace(ns)] = connector.Manifest{Capabilities: capabilities}
	}
	return out
}

// Catalog builds the privilege catalog for the permission engine.
func (c *Config) Catalog() permissions.PrivilegeCatalog {
	out := make(permissions.PrivilegeCatalog, len(c.Privileges))
	for assetType, privileges := range c.Privileges {
		out[jetty.AssetType(assetType)] = privileges
	}
	return out
}
