package jetty

// PermissionMode is the resolution of an effective permission. A Deny is a
// positive fact, distinguishable from the absence of any information about a
// privilege.
type PermissionMode int

// Permission modes.
const (
	Allow PermissionMode = iota
	Deny
)

// String returns "Allow" or "Deny".
func (m PermissionMode) String() string {
	if m == Deny {
		return "Deny"
	}
	return "Allow"
}

// EffectivePermission is a resolved (privilege, mode, reasons) fact about a
// user's access to an asset, as opposed to a raw platform grant. Multiple
// effective permissions may exist per (user, asset) pair, one per privilege
// name.
type EffectivePermission struct {
	// Privilege is the platform privilege name ("SELECT", "OWNERSHIP", ...).
	Privilege string `json:"privilege"`
	// Mode records whether the privilege is in force or positively denied.
	Mode PermissionMode `json:"mode"`
	// Reasons explains the resolution, in order of application.
	Reasons []string `json:"reasons"`
}

// NewEffectivePermission builds an EffectivePermission.
func NewEffectivePermission(privilege string, mode PermissionMode, reasons ...string) EffectivePermission {
	return EffectivePermission{Privilege: privilege, Mode: mode, Reasons: reasons}
}
