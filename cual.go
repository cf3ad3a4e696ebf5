package jetty

import "strings"

// Cual is a Connector Universal Asset Locator: a canonical URI-like string
// uniquely identifying a data asset across connectors, such as
// "snowflake://account/database/schema/table".
type Cual string

// String returns the locator string.
func (c Cual) String() string {
	return string(c)
}

// Prefix returns the scheme-and-authority prefix of the cual
// ("snowflake://account" for the example above), or the empty string when
// the cual has no scheme. The prefix is what the translator maps to a
// connector namespace.
func (c Cual) Prefix() string {
	s := string(c)
	i := strings.Index(s, "://")
	if i < 0 {
		return ""
	}
	rest := s[i+len("://"):]
	if j := strings.IndexByte(rest, '/'); j >= 0 {
		return s[:i+len("://")+j]
	}
	return s
}

// Path returns the asset path below the prefix, split on "/". An empty cual
// or a bare prefix yields no components.
func (c Cual) Path() []string {
	s := string(c)
	if i := strings.Index(s, "://"); i >= 0 {
		rest := s[i+len("://"):]
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			s = rest[j+1:]
		} else {
			s = ""
		}
	}
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}
