package write

import (
	"fmt"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/translate"
)

// Local diffs are the connector-facing form of a reconciliation run: every
// NodeName rewritten to the string the target platform uses. Connectors turn
// these into platform-specific mutation calls.

// LocalGroupDiff is a group change in connector-local names.
type LocalGroupDiff struct {
	Group          string
	Op             Op
	AddMemberOf    []string
	RemoveMemberOf []string
}

// LocalUserDiff is a user membership change in connector-local names.
type LocalUserDiff struct {
	User           string
	Op             Op
	AddMemberOf    []string
	RemoveMemberOf []string
}

// LocalPolicyDiff is a policy change in connector-local names. Governed
// assets stay as cual strings, which every connector can resolve.
type LocalPolicyDiff struct {
	Policy           string
	Op               Op
	AddPrivileges    []string
	RemovePrivileges []string
	AddGoverns       []string
	RemoveGoverns    []string
	AddGrantedTo     []string
	RemoveGrantedTo  []string
}

// LocalDefaultPolicyDiff is a wildcard policy change in connector-local
// names. Wildcard policies have no local identifier, so the identity travels
// as its components.
type LocalDefaultPolicyDiff struct {
	Root             string
	Path             string
	TargetType       jetty.AssetType
	Grantee          string
	Op               Op
	AddPrivileges    []string
	RemovePrivileges []string
}

// LocalDiffs is one connector's share of a reconciliation run.
type LocalDiffs struct {
	Groups          []LocalGroupDiff
	Users           []LocalUserDiff
	Policies        []LocalPolicyDiff
	DefaultPolicies []LocalDefaultPolicyDiff
}

// Empty reports whether the batch carries no changes.
func (d LocalDiffs) Empty() bool {
	return len(d.Groups) == 0 && len(d.Users) == 0 &&
		len(d.Policies) == 0 && len(d.DefaultPolicies) == 0
}

// Localize splits the batch by connector and rewrites every NodeName to that
// connector's local identifier.
func Localize(d GlobalDiffs, tr *translate.Translator) (map[jetty.ConnectorNamespace]LocalDiffs, error) {
	out := make(map[jetty.ConnectorNamespace]LocalDiffs)
	for ns, global := range d.SplitByConnector() {
		local, err := localizeConnector(global, tr, ns)
		if err != nil {
			return nil, fmt.Errorf("localizing diffs for %q: %w", ns, err)
		}
		out[ns] = local
	}
	return out, nil
}

func localizeConnector(d GlobalDiffs, tr *translate.Translator, ns jetty.ConnectorNamespace) (LocalDiffs, error) {
	var out LocalDiffs
	for _, gd := range d.Groups {
		add, err := localizeNames(gd.AddMemberOf, tr, ns)
		if err != nil {
			return LocalDiffs{}, err
		}
		remove, err := localizeNames(gd.RemoveMemberOf, tr, ns)
		if err != nil {
			return LocalDiffs{}, err
		}
		out.Groups = append(out.Groups, LocalGroupDiff{
			Group:          gd.Group.Name(),
			Op:             gd.Op,
			AddMemberOf:    add,
			RemoveMemberOf: remove,
		})
	}
	for _, ud := range d.Users {
		local, ok := localUserName(ud, tr, ns)
		if !ok {
			// The user has no identity on this connector; the only
			// possible change here is membership, which needs one.
			if len(ud.AddMemberOf) > 0 || len(ud.RemoveMemberOf) > 0 {
				return LocalDiffs{}, fmt.Errorf("user %s has no identity on this connector", ud.User)
			}
			continue
		}
		add, err := localizeNames(ud.AddMemberOf, tr, ns)
		if err != nil {
			return LocalDiffs{}, err
		}
		remove, err := localizeNames(ud.RemoveMemberOf, tr, ns)
		if err != nil {
			return LocalDiffs{}, err
		}
		out.Users = append(out.Users, LocalUserDiff{
			User:           local,
			Op:             ud.Op,
			AddMemberOf:    add,
			RemoveMemberOf: remove,
		})
	}
	for _, pd := range d.Policies {
		local := LocalPolicyDiff{
			Policy:           pd.Policy.Name(),
			Op:               pd.Op,
			AddPrivileges:    pd.AddPrivileges,
			RemovePrivileges: pd.RemovePrivileges,
		}
		var err error
		if local.AddGoverns, err = localizeNames(pd.AddGoverns, tr, ns); err != nil {
			return LocalDiffs{}, err
		}
		if local.RemoveGoverns, err = localizeNames(pd.RemoveGoverns, tr, ns); err != nil {
			return LocalDiffs{}, err
		}
		if local.AddGrantedTo, err = localizeNames(pd.AddGrantedTo, tr, ns); err != nil {
			return LocalDiffs{}, err
		}
		if local.RemoveGrantedTo, err = localizeNames(pd.RemoveGrantedTo, tr, ns); err != nil {
			return LocalDiffs{}, err
		}
		out.Policies = append(out.Policies, local)
	}
	for _, dpd := range d.DefaultPolicies {
		grantee, err := tr.ToLocal(dpd.Name.Grantee(), ns)
		if err != nil {
			return LocalDiffs{}, err
		}
		out.DefaultPolicies = append(out.DefaultPolicies, LocalDefaultPolicyDiff{
			Root:             string(dpd.Name.RootNode().Cual()),
			Path:             dpd.Name.MatchingPath(),
			TargetType:       dpd.Name.TargetType(),
			Grantee:          grantee,
			Op:               dpd.Op,
			AddPrivileges:    dpd.AddPrivileges,
			RemovePrivileges: dpd.RemovePrivileges,
		})
	}
	return out, nil
}

// localUserName resolves the connector-local name of the user a diff is
// about. A user being introduced to the connector in this very diff is not in
// the translator yet; their new identity mapping supplies the name.
func localUserName(ud UserDiff, tr *translate.Translator, ns jetty.ConnectorNamespace) (string, bool) {
	for _, id := range ud.AddIdentities {
		if id.Connector == ns {
			return id.LocalName, true
		}
	}
	if local, err := tr.ToLocal(ud.User, ns); err == nil {
		return local, true
	}
	for _, id := range ud.RemoveIdentities {
		if id.Connector == ns {
			return id.LocalName, true
		}
	}
	return "", false
}

func localizeNames(names []jetty.NodeName, tr *translate.Translator, ns jetty.ConnectorNamespace) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		local, err := tr.ToLocal(name, ns)
		if err != nil {
			return nil, err
		}
		out = append(out, local)
	}
	return out, nil
}
