// Package translate maps between connector-local identifiers and global
// NodeNames. The mapping is built once from every connector's raw data and
// is used in both directions: ingestion rewrites local references to
// NodeNames, and diff output rewrites NodeNames back to whatever each
// platform calls the entity.
package translate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/connector"
)

// Batch pairs one connector's raw data with its configured namespace.
type Batch struct {
	Data      connector.ConnectorData
	Namespace jetty.ConnectorNamespace
}

// IdentityOverrides maps, per namespace, a connector-local user name to the
// global identity declared in configuration. Overrides win over every other
// resolution rule.
type IdentityOverrides map[jetty.ConnectorNamespace]map[string]jetty.NodeName

// Translator holds the bidirectional identifier maps. Build it with
// NewTranslator; the zero value translates nothing.
type Translator struct {
	globalToLocal globalToLocal
	localToGlobal localToGlobal

	cualPrefixToNamespace map[string]jetty.ConnectorNamespace
	namespaceToCualPrefix map[jetty.ConnectorNamespace]string
}

type globalToLocal struct {
	users    jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]
	groups   jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]
	policies jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]
	tags     jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]
}

type localToGlobal struct {
	users    jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]
	groups   jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]
	policies jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]
	tags     jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]
}

// NewTranslator builds the identifier maps from every connector's data.
//
// User identity resolution, in priority order: a configured override for the
// local name; the user's email identifier; the local name itself. Groups and
// policies map by local name; tags get a deterministic UUID derived from
// their local id, so the same tag resolves to the same NodeName across runs.
func NewTranslator(batches []Batch, overrides IdentityOverrides) *Translator {
	t := &Translator{
		globalToLocal: globalToLocal{
			users:    jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]{},
			groups:   jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]{},
			policies: jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]{},
			tags:     jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]{},
		},
		localToGlobal: localToGlobal{
			users:    jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]{},
			groups:   jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]{},
			policies: jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]{},
			tags:     jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]{},
		},
		cualPrefixToNamespace: map[string]jetty.ConnectorNamespace{},
		namespaceToCualPrefix: map[jetty.ConnectorNamespace]string{},
	}
	for _, b := range batches {
		if b.Data.CualPrefix != "" {
			t.cualPrefixToNamespace[b.Data.CualPrefix] = b.Namespace
			t.namespaceToCualPrefix[b.Namespace] = b.Data.CualPrefix
		}
	}
	for _, b := range batches {
		t.resolveUsers(b, overrides[b.Namespace])
		t.resolveGroups(b)
		t.resolvePolicies(b)
		t.resolveTags(b)
	}
	return t
}

func (t *Translator) resolveUsers(b Batch, overrides map[string]jetty.NodeName) {
	for _, u := range b.Data.Users {
		var name jetty.NodeName
		switch {
		case overrides[u.Name] != (jetty.NodeName{}):
			name = overrides[u.Name]
		case u.Identifiers[jetty.IdentifierEmail] != "":
			name = jetty.UserName(u.Identifiers[jetty.IdentifierEmail])
		default:
			name = jetty.UserName(u.Name)
		}
		t.localToGlobal.users.Set(b.Namespace, u.Name, name)
		t.globalToLocal.users.Set(b.Namespace, name, u.Name)
	}
}

func (t *Translator) resolveGroups(b Batch) {
	for _, g := range b.Data.Groups {
		name := jetty.GroupName(g.Name, b.Namespace)
		t.localToGlobal.groups.Set(b.Namespace, g.Name, name)
		t.globalToLocal.groups.Set(b.Namespace, name, g.Name)
	}
}

func (t *Translator) resolvePolicies(b Batch) {
	for _, p := range b.Data.Policies {
		name := jetty.PolicyName(p.Name)
		t.localToGlobal.policies.Set(b.Namespace, p.Name, name)
		t.globalToLocal.policies.Set(b.Namespace, name, p.Name)
	}
}

func (t *Translator) resolveTags(b Batch) {
	for _, tag := range b.Data.Tags {
		name := jetty.TagName(TagID(tag.ID))
		t.localToGlobal.tags.Set(b.Namespace, tag.ID, name)
		t.globalToLocal.tags.Set(b.Namespace, name, tag.ID)
	}
}

// TagID derives the stable UUID of a tag from its connector-local id.
func TagID(localID string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(localID))
}

// NamespaceOfCual returns the namespace of the connector whose prefix the
// cual carries.
func (t *Translator) NamespaceOfCual(cual jetty.Cual) (jetty.ConnectorNamespace, error) {
	ns, ok := t.cualPrefixToNamespace[cual.Prefix()]
	if !ok {
		return "", fmt.Errorf("%w: cual prefix %q", ErrMissingConnectorMapping, cual.Prefix())
	}
	return ns, nil
}

// CualPrefix returns the cual prefix registered for a namespace.
func (t *Translator) CualPrefix(namespace jetty.ConnectorNamespace) (string, error) {
	prefix, ok := t.namespaceToCualPrefix[namespace]
	if !ok {
		return "", fmt.Errorf("%w: namespace %q has no cual prefix", ErrMissingConnectorMapping, namespace)
	}
	return prefix, nil
}

// ToGlobalUser returns the NodeName a connector-local user name resolves to.
func (t *Translator) ToGlobalUser(namespace jetty.ConnectorNamespace, local string) (jetty.NodeName, error) {
	name, ok := t.localToGlobal.users.Get(namespace, local)
	if !ok {
		return jetty.NodeName{}, fmt.Errorf("%w: user %q in %q", ErrMissingConnectorMapping, local, namespace)
	}
	return name, nil
}

// ToLocal returns the connector-local identifier of a NodeName in the given
// namespace.
//
// Users, policies, and tags go through the ingestion-built maps. Groups
// translate to their plain name: a diff may create a group that no platform
// knows yet, so group translation cannot require an existing mapping. Assets
// translate to their cual, which is already universal. Default policies have
// no local name.
func (t *Translator) ToLocal(name jetty.NodeName, namespace jetty.ConnectorNamespace) (string, error) {
	switch name.Kind() {
	case jetty.KindUser:
		local, ok := t.globalToLocal.users.Get(namespace, name)
		if !ok {
			return "", fmt.Errorf("%w: %s in %q", ErrMissingConnectorMapping, name, namespace)
		}
		return local, nil
	case jetty.KindGroup:
		return name.Name(), nil
	case jetty.KindAsset:
		return string(name.Cual()), nil
	case jetty.KindPolicy:
		local, ok := t.globalToLocal.policies.Get(namespace, name)
		if !ok {
			return "", fmt.Errorf("%w: %s in %q", ErrMissingConnectorMapping, name, namespace)
		}
		return local, nil
	case jetty.KindTag:
		local, ok := t.globalToLocal.tags.Get(namespace, name)
		if !ok {
			return "", fmt.Errorf("%w: %s in %q", ErrMissingConnectorMapping, name, namespace)
		}
		return local, nil
	case jetty.KindDefaultPolicy:
		return "", nil
	default:
		return "", fmt.Errorf("%w: unknown kind for %s", ErrMissingConnectorMapping, name)
	}
}

// LocalUsers returns every (namespace, local name) pair and the NodeName it
// resolves to, for identity diffing.
func (t *Translator) LocalUsers() map[jetty.ConnectorNamespace]map[string]jetty.NodeName {
	out := make(map[jetty.ConnectorNamespace]map[string]jetty.NodeName, len(t.localToGlobal.users))
	for namespace, row := range t.localToGlobal.users {
		m := make(map[string]jetty.NodeName, len(row))
		for local, name := range row {
			m[local] = name
		}
		out[namespace] = m
	}
	return out
}
