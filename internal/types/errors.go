package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput marks a precondition violation: absent, empty or
// wrong-shaped input to an agent or the coordinator. It is the only
// error kind the audit pipeline raises on its own.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInput builds an error tagged with ErrInvalidInput that names the
// component whose precondition failed.
func InvalidInput(component, format string, args ...any) error {
	msg := strings.TrimSpace(fmt.Sprintf(format, args...))
	if component = strings.TrimSpace(component); component != "" {
		if msg == "" {
			return fmt.Errorf("%w: %s", ErrInvalidInput, component)
		}
		return fmt.Errorf("%w: %s: %s", ErrInvalidInput, component, msg)
	}
	if msg == "" {
		return ErrInvalidInput
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// IsInvalidInput reports whether err carries the ErrInvalidInput marker.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
