package sandbox

import (
	"errors"
	"fmt"
)

// Sanitized failures returned to callers. Full diagnostics (captured
// stderr, resolved paths) are logged, never returned.
var (
	// ErrToolNotInstalled means the container runtime binary could not
	// be found on the host.
	ErrToolNotInstalled = errors.New("optimization tool is not installed")
	// ErrTimedOut means the optimizer exceeded its wall-clock budget
	// and was terminated.
	ErrTimedOut = errors.New("optimization timed out")
	// ErrOptimizeFailed is the generic failure for an optimizer that
	// exited abnormally for any other reason.
	ErrOptimizeFailed = errors.New("optimization failed")
)

// ValidationError reports a job that was rejected before any external
// process started.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
