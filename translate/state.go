package translate

import (
	"github.com/jettylabs/jetty"
)

// State is the serializable form of a Translator. Only the local-to-global
// direction is persisted; the reverse maps are rebuilt by inversion on load.
type State struct {
	Users    map[jetty.ConnectorNamespace]map[string]jetty.NodeName `cbor:"users"`
	Groups   map[jetty.ConnectorNamespace]map[string]jetty.NodeName `cbor:"groups"`
	Policies map[jetty.ConnectorNamespace]map[string]jetty.NodeName `cbor:"policies"`
	Tags     map[jetty.ConnectorNamespace]map[string]jetty.NodeName `cbor:"tags"`

	CualPrefixes map[jetty.ConnectorNamespace]string `cbor:"cual_prefixes"`
}

// State exports the translator's mappings for snapshotting.
func (t *Translator) State() State {
	return State{
		Users:        copyMatrix(t.localToGlobal.users),
		Groups:       copyMatrix(t.localToGlobal.groups),
		Policies:     copyMatrix(t.localToGlobal.policies),
		Tags:         copyMatrix(t.localToGlobal.tags),
		CualPrefixes: copyMap(t.namespaceToCualPrefix),
	}
}

// FromState rebuilds a Translator from a snapshotted state.
func FromState(s State) *Translator {
	t := &Translator{
		globalToLocal: globalToLocal{
			users:    invertMatrix(s.Users),
			groups:   invertMatrix(s.Groups),
			policies: invertMatrix(s.Policies),
			tags:     invertMatrix(s.Tags),
		},
		localToGlobal: localToGlobal{
			users:    toMatrix(s.Users),
			groups:   toMatrix(s.Groups),
			policies: toMatrix(s.Policies),
			tags:     toMatrix(s.Tags),
		},
		cualPrefixToNamespace: make(map[string]jetty.ConnectorNamespace, len(s.CualPrefixes)),
		namespaceToCualPrefix: copyMap(s.CualPrefixes),
	}
	for ns, prefix := range s.CualPrefixes {
		t.cualPrefixToNamespace[prefix] = ns
	}
	return t
}

func copyMatrix(m jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]) map[jetty.ConnectorNamespace]map[string]jetty.NodeName {
	out := make(map[jetty.ConnectorNamespace]map[string]jetty.NodeName, len(m))
	for ns, row := range m {
		inner := make(map[string]jetty.NodeName, len(row))
		for local, name := range row {
			inner[local] = name
		}
		out[ns] = inner
	}
	return out
}

func toMatrix(m map[jetty.ConnectorNamespace]map[string]jetty.NodeName) jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName] {
	out := jetty.SparseMatrix[jetty.ConnectorNamespace, string, jetty.NodeName]{}
	for ns, row := range m {
		for local, name := range row {
			out.Set(ns, local, name)
		}
	}
	return out
}

func invertMatrix(m map[jetty.ConnectorNamespace]map[string]jetty.NodeName) jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string] {
	out := jetty.SparseMatrix[jetty.ConnectorNamespace, jetty.NodeName, string]{}
	for ns, row := range m {
		for local, name := range row {
			out.Set(ns, name, local)
		}
	}
	return out
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
