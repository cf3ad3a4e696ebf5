package write

import (
	"sort"
	"strings"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
)

// Op is the kind of change a diff describes.
type Op int

// Diff operations.
const (
	OpAdd Op = iota
	OpRemove
	OpModify
)

// String returns the plan-style marker for the operation.
func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpRemove:
		return "-"
	case OpModify:
		return "~"
	default:
		return "?"
	}
}

// GlobalDiffs is one run's complete set of changes, expressed in global
// NodeNames. Produced once per invocation and consumed immediately.
type GlobalDiffs struct {
	Groups          []GroupDiff
	Users           []UserDiff
	Policies        []PolicyDiff
	DefaultPolicies []DefaultPolicyDiff
}

// Empty reports whether the batch carries no changes.
func (d GlobalDiffs) Empty() bool {
	return len(d.Groups) == 0 && len(d.Users) == 0 &&
		len(d.Policies) == 0 && len(d.DefaultPolicies) == 0
}

// GetDiffs compares the desired configuration against the environment state
// derived from the graph and returns every change needed to reconcile them.
// The configuration must already be validated.
func GetDiffs(
	cfg Config,
	g *graph.Graph,
	tr *translate.Translator,
	manifests map[jetty.ConnectorNamespace]connector.Manifest,
) (GlobalDiffs, error) {
	groupDiffs := GroupDiffs(cfg.Groups, g, manifests)
	userDiffs, err := UserDiffs(cfg, g, tr, manifests)
	if err != nil {
		return GlobalDiffs{}, err
	}
	policyDiffs, err := PolicyDiffs(cfg, g, tr, manifests)
	if err != nil {
		return GlobalDiffs{}, err
	}
	dpDiffs, err := DefaultPolicyDiffs(cfg, g, tr, manifests)
	if err != nil {
		return GlobalDiffs{}, err
	}
	return GlobalDiffs{
		Groups:          groupDiffs,
		Users:           userDiffs,
		Policies:        policyDiffs,
		DefaultPolicies: dpDiffs,
	}, nil
}

// SplitByConnector regroups the batch by the namespace each diff applies to.
func (d GlobalDiffs) SplitByConnector() map[jetty.ConnectorNamespace]GlobalDiffs {
	out := make(map[jetty.ConnectorNamespace]GlobalDiffs)
	for _, gd := range d.Groups {
		entry := out[gd.Connector]
		entry.Groups = append(entry.Groups, gd)
		out[gd.Connector] = entry
	}
	for _, ud := range d.Users {
		for _, ns := range ud.Connectors() {
			entry := out[ns]
			entry.Users = append(entry.Users, ud.ForConnector(ns))
			out[ns] = entry
		}
	}
	for _, pd := range d.Policies {
		entry := out[pd.Connector]
		entry.Policies = append(entry.Policies, pd)
		out[pd.Connector] = entry
	}
	for _, dpd := range d.DefaultPolicies {
		entry := out[dpd.Connector]
		entry.DefaultPolicies = append(entry.DefaultPolicies, dpd)
		out[dpd.Connector] = entry
	}
	return out
}

// String renders the whole batch in plan style.
func (d GlobalDiffs) String() string {
	var b strings.Builder
	for _, gd := range d.Groups {
		b.WriteString(gd.String())
	}
	for _, ud := range d.Users {
		b.WriteString(ud.String())
	}
	for _, pd := range d.Policies {
		b.WriteString(pd.String())
	}
	for _, dpd := range d.DefaultPolicies {
		b.WriteString(dpd.String())
	}
	return b.String()
}

// sortByLowerName orders diffs by the lowercased string form of their
// subject for stable output.
func sortByLowerName[T any](diffs []T, name func(T) string) {
	sort.Slice(diffs, func(i, j int) bool {
		return strings.ToLower(name(diffs[i])) < strings.ToLower(name(diffs[j]))
	})
}
