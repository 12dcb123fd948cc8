package device

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device ID does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrExists is returned when creating a device with an ID that already exists.
	ErrExists = errors.New("device: already exists")

	// ErrInvalidType is returned when a device type is not recognised.
	ErrInvalidType = errors.New("device: invalid type")

	// ErrOutOfRange is returned when a setter rejects a value that is
	// outside the field's allowed range or domain.
	ErrOutOfRange = errors.New("device: value out of range")
)

// ValidationError reports why a record was rejected. Reasons holds
// every failure found, not just the first, so a single round trip tells
// the sender everything that is wrong with its payload.
type ValidationError struct {
	Reasons []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "device: invalid data: " + strings.Join(e.Reasons, "; ")
}

// FormatReasons renders a reasons list the way the router logs it.
func FormatReasons(reasons []string) string {
	return fmt.Sprintf("[%s]", strings.Join(reasons, ", "))
}
