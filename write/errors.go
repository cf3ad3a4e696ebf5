package write

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedCapability is returned when a diff targets a connector whose
// manifest cannot apply it. It indicates a bug in state construction: the
// engine consults capabilities before building config state, so a correctly
// built diff never trips it.
var ErrUnsupportedCapability = errors.New("jetty/write: connector does not support this write")

// IsUnsupportedCapabilityErr returns true if err is or wraps
// ErrUnsupportedCapability.
func IsUnsupportedCapabilityErr(err error) bool {
	return errors.Is(err, ErrUnsupportedCapability)
}

// ValidationErrors collects every problem found in the desired-state
// configuration so the user sees one complete report instead of fixing
// problems one run at a time.
type ValidationErrors []error

// Error implements error, one problem per line.
func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, err := range v {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d configuration problem(s):\n  %s", len(v), strings.Join(msgs, "\n  "))
}

// ErrOrNil returns the collection as an error, or nil when empty.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidationErr returns true if err is a ValidationErrors aggregate.
func IsValidationErr(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}
