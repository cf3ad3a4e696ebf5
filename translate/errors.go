package translate

import "errors"

// ErrMissingConnectorMapping is returned when a NodeName has no local
// identifier recorded for a namespace, or a cual prefix matches no
// configured connector. It signals a configuration or connector-coverage
// gap, never a panic.
var ErrMissingConnectorMapping = errors.New("jetty/translate: no connector mapping")

// IsMissingConnectorMappingErr returns true if err is or wraps
// ErrMissingConnectorMapping.
func IsMissingConnectorMappingErr(err error) bool {
	return errors.Is(err, ErrMissingConnectorMapping)
}
