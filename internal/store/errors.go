/**
 * @description
 * Error taxonomy for storage tiers.
 *
 * ErrUnavailable marks transient connectivity loss: the tier chain skips the
 * tier for the rest of the request and logs a warning. ErrCorrupt marks a
 * stored payload that no longer decodes: the tier is treated as a miss and
 * the error is logged. Neither propagates to callers of the cache facade.
 */

package store

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable indicates the underlying store could not be reached.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrCorrupt indicates a stored payload could not be decoded.
	ErrCorrupt = errors.New("backend data corrupt")
)

// BackendError wraps a tier failure with enough context for degradation
// logging. It matches ErrUnavailable or ErrCorrupt via errors.Is.
type BackendError struct {
	Backend string // tier name, e.g. "redis"
	Op      string // "read", "write" or "probe"
	Kind    error  // ErrUnavailable or ErrCorrupt
	Cause   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Backend, e.Op, e.Kind, e.Cause)
}

func (e *BackendError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

// errProbe is the cause recorded when a tier fails its availability probe.
var errProbe = errors.New("availability probe failed")

func unavailable(backend, op string, cause error) error {
	return &BackendError{Backend: backend, Op: op, Kind: ErrUnavailable, Cause: cause}
}

func corrupt(backend, op string, cause error) error {
	return &BackendError{Backend: backend, Op: op, Kind: ErrCorrupt, Cause: cause}
}
