package jetty

import "github.com/fxamacker/cbor/v2"

// nodeNameWire is the serialized form of a NodeName. Integer keys keep the
// snapshot compact; omitted fields decode to their zero values, so a wire
// record only carries what its kind uses.
type nodeNameWire struct {
	Kind          NodeKind           `cbor:"1,keyasint"`
	Name          string             `cbor:"2,keyasint,omitempty"`
	Origin        ConnectorNamespace `cbor:"3,keyasint,omitempty"`
	MatchingPath  string             `cbor:"4,keyasint,omitempty"`
	TargetType    AssetType          `cbor:"5,keyasint,omitempty"`
	RootCual      Cual               `cbor:"6,keyasint,omitempty"`
	GranteeKind   NodeKind           `cbor:"7,keyasint,omitempty"`
	GranteeName   string             `cbor:"8,keyasint,omitempty"`
	GranteeOrigin ConnectorNamespace `cbor:"9,keyasint,omitempty"`
}

// MarshalCBOR implements cbor.Marshaler so NodeNames survive snapshot
// round-trips despite their unexported fields.
func (n NodeName) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(nodeNameWire{
		Kind:          n.kind,
		Name:          n.name,
		Origin:        n.origin,
		MatchingPath:  n.matchingPath,
		TargetType:    n.targetType,
		RootCual:      n.rootCual,
		GranteeKind:   n.granteeKind,
		GranteeName:   n.granteeName,
		GranteeOrigin: n.granteeOrig,
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (n *NodeName) UnmarshalCBOR(data []byte) error {
	var w nodeNameWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return err
	}
	*n = NodeName{
		kind:         w.Kind,
		name:         w.Name,
		origin:       w.Origin,
		matchingPath: w.MatchingPath,
		targetType:   w.TargetType,
		rootCual:     w.RootCual,
		granteeKind:  w.GranteeKind,
		granteeName:  w.GranteeName,
		granteeOrig:  w.GranteeOrigin,
	}
	return nil
}
