package write

import (
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/jettylabs/jetty"
)

// Desired-state configuration documents. Each document is YAML keyed by
// logical name, with per-connector identifier overrides where a platform
// calls the entity something else.

// GroupConfig declares one group: its Jetty-level name, which groups it
// belongs to, and optional platform-specific names.
type GroupConfig struct {
	Name string `json:"name"`
	// Identifiers maps a connector namespace to the group's name on that
	// platform. Connectors without an entry use Name as-is.
	Identifiers map[jetty.ConnectorNamespace]string `json:"identifiers,omitempty"`
	// MemberOf lists Jetty-level names of groups this group belongs to.
	MemberOf []string `json:"member_of,omitempty"`
}

// UserConfig declares one user: the global identity and the local names the
// platforms know them by.
type UserConfig struct {
	Name string `json:"name"`
	// Identifiers maps a connector namespace to the user's local name there.
	Identifiers map[jetty.ConnectorNamespace]string `json:"identifiers,omitempty"`
	// MemberOf lists Jetty-level names of groups the user belongs to.
	MemberOf []string `json:"member_of,omitempty"`
}

// PolicyConfig declares one policy.
type PolicyConfig struct {
	Name       string   `json:"name"`
	Privileges []string `json:"privileges,omitempty"`
	// GovernsAssets lists cuals of governed assets.
	GovernsAssets []jetty.Cual `json:"governs_assets,omitempty"`
	// GrantedToGroups lists Jetty-level group names.
	GrantedToGroups []string `json:"granted_to_groups,omitempty"`
	// GrantedToUsers lists Jetty-level user names.
	GrantedToUsers []string `json:"granted_to_users,omitempty"`
}

// DefaultPolicyConfig declares one wildcard policy.
type DefaultPolicyConfig struct {
	RootAsset jetty.Cual `json:"root_asset"`
	// Path is the wildcard matching path, e.g. "*/**".
	Path       string          `json:"path"`
	TargetType jetty.AssetType `json:"target_type"`
	// GrantedToGroups lists Jetty-level group names.
	GrantedToGroups []string `json:"granted_to_groups,omitempty"`
	Privileges      []string `json:"privileges,omitempty"`
}

// Config is the complete parsed desired state.
type Config struct {
	Groups          []GroupConfig         `json:"groups,omitempty"`
	Users           []UserConfig          `json:"users,omitempty"`
	Policies        []PolicyConfig        `json:"policies,omitempty"`
	DefaultPolicies []DefaultPolicyConfig `json:"default_policies,omitempty"`
}

// ParseConfig unmarshals a desired-state document.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks referential integrity across the whole configuration and
// returns every problem found, not just the first. namespaces is the set of
// configured connectors.
func (c Config) Validate(namespaces map[jetty.ConnectorNamespace]bool) error {
	var problems ValidationErrors

	groupNames := make(map[string]bool, len(c.Groups))
	for _, g := range c.Groups {
		if g.Name == "" {
			problems = append(problems, fmt.Errorf("group with empty name"))
			continue
		}
		if groupNames[g.Name] {
			problems = append(problems, fmt.Errorf("duplicate group %q", g.Name))
		}
		groupNames[g.Name] = true
	}
	for _, g := range c.Groups {
		for _, parent := range g.MemberOf {
			if !groupNames[parent] {
				problems = append(problems, fmt.Errorf("group %q is member of undeclared group %q", g.Name, parent))
			}
		}
		for ns := range g.Identifiers {
			if !namespaces[ns] {
				problems = append(problems, fmt.Errorf("group %q names unknown connector %q", g.Name, ns))
			}
		}
	}

	userNames := make(map[string]bool, len(c.Users))
	for _, u := range c.Users {
		if u.Name == "" {
			problems = append(problems, fmt.Errorf("user with empty name"))
			continue
		}
		if userNames[u.Name] {
			problems = append(problems, fmt.Errorf("duplicate user %q", u.Name))
		}
		userNames[u.Name] = true
		for _, grp := range u.MemberOf {
			if !groupNames[grp] {
				problems = append(problems, fmt.Errorf("user %q is member of undeclared group %q", u.Name, grp))
			}
		}
		for ns := range u.Identifiers {
			if !namespaces[ns] {
				problems = append(problems, fmt.Errorf("user %q names unknown connector %q", u.Name, ns))
			}
		}
	}

	policyNames := make(map[string]bool, len(c.Policies))
	for _, p := range c.Policies {
		if p.Name == "" {
			problems = append(problems, fmt.Errorf("policy with empty name"))
			continue
		}
		if policyNames[p.Name] {
			problems = append(problems, fmt.Errorf("duplicate policy %q", p.Name))
		}
		policyNames[p.Name] = true
		for _, grp := range p.GrantedToGroups {
			if !groupNames[grp] {
				problems = append(problems, fmt.Errorf("policy %q granted to undeclared group %q", p.Name, grp))
			}
		}
		for _, u := range p.GrantedToUsers {
			if !userNames[u] {
				problems = append(problems, fmt.Errorf("policy %q granted to undeclared user %q", p.Name, u))
			}
		}
	}

	for _, dp := range c.DefaultPolicies {
		if dp.RootAsset == "" {
			problems = append(problems, fmt.Errorf("default policy with empty root asset"))
		}
		for _, grp := range dp.GrantedToGroups {
			if !groupNames[grp] {
				problems = append(problems, fmt.Errorf("default policy on %q granted to undeclared group %q", dp.RootAsset, grp))
			}
		}
	}

	return problems.ErrOrNil()
}
