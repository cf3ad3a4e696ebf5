// Package snapshot persists a built graph and translator between runs.
// Ingestion is the expensive part of a run; when the connector configuration
// has not changed since the last run, loading the snapshot skips it entirely.
//
// The on-disk format is deterministic CBOR compressed with zstd. A hash of
// the inputs that produced the snapshot travels with it so callers can
// detect staleness instead of serving outdated state.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/jettylabs/jetty"
	"github.com/jettylabs/jetty/graph"
	"github.com/jettylabs/jetty/translate"
)

// formatVersion is bumped on any incompatible change to the wire layout.
// Version mismatches are treated as staleness, not corruption.
const formatVersion = 1

// ErrStale is returned when the snapshot on disk was produced from different
// inputs, or by an incompatible version, and must be rebuilt.
var ErrStale = errors.New("jetty/snapshot: snapshot is stale")

// IsStaleErr returns true if err is or wraps ErrStale.
func IsStaleErr(err error) bool {
	return errors.Is(err, ErrStale)
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode

	// Shared across calls; both are safe for concurrent use.
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("snapshot: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("snapshot: zstd decoder initialization failed: " + err.Error())
	}
}

// Snapshot is one run's persisted state.
type Snapshot struct {
	Graph      *graph.Graph
	Translator *translate.Translator
	// InputHash identifies the inputs the snapshot was built from; see Hash.
	InputHash string
}

type fileState struct {
	Version   int             `cbor:"version"`
	InputHash string          `cbor:"input_hash"`
	Graph     graphState      `cbor:"graph"`
	Translate translate.State `cbor:"translate"`
}

type edgeState struct {
	From jetty.NodeName `cbor:"f"`
	To   jetty.NodeName `cbor:"t"`
	Type graph.EdgeType `cbor:"e"`
}

type permissionState struct {
	User        jetty.NodeName              `cbor:"user"`
	Asset       jetty.NodeName              `cbor:"asset"`
	Permissions []jetty.EffectivePermission `cbor:"permissions"`
}

type graphState struct {
	Users           []graph.UserNode          `cbor:"users,omitempty"`
	Groups          []graph.GroupNode         `cbor:"groups,omitempty"`
	Assets          []graph.AssetNode         `cbor:"assets,omitempty"`
	Tags            []graph.TagNode           `cbor:"tags,omitempty"`
	Policies        []graph.PolicyNode        `cbor:"policies,omitempty"`
	DefaultPolicies []graph.DefaultPolicyNode `cbor:"default_policies,omitempty"`

	Edges       []edgeState       `cbor:"edges,omitempty"`
	Permissions []permissionState `cbor:"permissions,omitempty"`
}

// Hash derives the staleness key from the inputs that feed a snapshot,
// typically the serialized connector configuration documents. Order matters.
func Hash(inputs ...[]byte) string {
	h := sha256.New()
	for _, in := range inputs {
		h.Write(in)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Path returns the snapshot location inside a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, ".jetty", "data", "jetty_graph")
}

// Write serializes the snapshot and atomically replaces the file at path.
func Write(path string, s Snapshot) error {
	state := fileState{
		Version:   formatVersion,
		InputHash: s.InputHash,
		Graph:     exportGraph(s.Graph),
		Translate: s.Translator.State(),
	}
	encoded, err := encMode.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	compressed := zstdEncoder.EncodeAll(encoded, nil)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// Stale reports whether the snapshot was built from different inputs than
// the ones hashing to inputHash.
func (s Snapshot) Stale(inputHash string) bool {
	return s.InputHash != inputHash
}

// Read loads the snapshot at path. An incompatible format version is
// ErrStale; the caller falls back to a full ingestion. Input staleness is the
// caller's call, via Stale, since only the caller knows the current inputs.
func Read(path string) (Snapshot, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading snapshot: %w", err)
	}
	encoded, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decompressing snapshot: %w", err)
	}
	var state fileState
	if err := decMode.Unmarshal(encoded, &state); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	if state.Version != formatVersion {
		return Snapshot{}, fmt.Errorf("%w: format version %d, want %d", ErrStale, state.Version, formatVersion)
	}

	g, err := importGraph(state.Graph)
	if err != nil {
		return Snapshot{}, fmt.Errorf("rebuilding graph: %w", err)
	}
	return Snapshot{
		Graph:      g,
		Translator: translate.FromState(state.Translate),
		InputHash:  state.InputHash,
	}, nil
}

func exportGraph(g *graph.Graph) graphState {
	var state graphState
	g.Nodes(func(_ graph.NodeIndex, node graph.Node) bool {
		switch n := node.(type) {
		case graph.UserNode:
			state.Users = append(state.Users, n)
		case graph.GroupNode:
			state.Groups = append(state.Groups, n)
		case graph.AssetNode:
			state.Assets = append(state.Assets, n)
		case graph.TagNode:
			state.Tags = append(state.Tags, n)
		case graph.PolicyNode:
			state.Policies = append(state.Policies, n)
		case graph.DefaultPolicyNode:
			state.DefaultPolicies = append(state.DefaultPolicies, n)
		}
		return true
	})
	g.Edges(func(e graph.Edge) bool {
		state.Edges = append(state.Edges, edgeState{From: e.From, To: e.To, Type: e.Type})
		return true
	})
	for _, user := range g.EffectivePermissionUsers() {
		for _, asset := range g.EffectivePermissionAssets(user) {
			state.Permissions = append(state.Permissions, permissionState{
				User:        user,
				Asset:       asset,
				Permissions: g.EffectivePermissions(user, asset),
			})
		}
	}
	return state
}

func importGraph(state graphState) (*graph.Graph, error) {
	g := graph.New()
	addNode := func(n graph.Node) error {
		_, err := g.AddNode(n)
		return err
	}
	for _, n := range state.Users {
		if err := addNode(n); err != nil {
			return nil, err
		}
	}
	for _, n := range state.Groups {
		if err := addNode(n); err != nil {
			return nil, err
		}
	}
	for _, n := range state.Assets {
		if err := addNode(n); err != nil {
			return nil, err
		}
	}
	for _, n := range state.Tags {
		if err := addNode(n); err != nil {
			return nil, err
		}
	}
	for _, n := range state.Policies {
		if err := addNode(n); err != nil {
			return nil, err
		}
	}
	for _, n := range state.DefaultPolicies {
		if err := addNode(n); err != nil {
			return nil, err
		}
	}
	// Every edge was saved in both directions; AddEdge re-creates the pair
	// and deduplicates, so replay is harmless.
	for _, e := range state.Edges {
		if err := g.AddEdge(graph.Edge{From: e.From, To: e.To, Type: e.Type}); err != nil {
			return nil, err
		}
	}
	for _, p := range state.Permissions {
		g.SetEffectivePermissions(p.User, p.Asset, p.Permissions)
	}
	return g, nil
}
