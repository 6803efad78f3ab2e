// Package syncerrs provides the structured error type shared across syncd:
// every error surfaced by a core component carries one of a small, fixed
// set of Kinds so callers can branch on failure class without string
// matching.
package syncerrs

import "fmt"

// Kind classifies a SyncError into one of the five disjoint error
// categories the system distinguishes.
type Kind string

const (
	// KindBadRequest marks a request the watcher engine rejects for its
	// path: already watched, already covered by a watched ancestor, not
	// watched, or not resolvable to an absolute path.
	KindBadRequest Kind = "BAD_REQUEST"
	// KindProjectInitError marks a failure constructing a Project (e.g.
	// a root that cannot be resolved or is not a directory).
	KindProjectInitError Kind = "PROJECT_INIT_ERROR"
	// KindScanError marks a failure walking or hashing a watched root.
	KindScanError Kind = "SCAN_ERROR"
	// KindProtocolError marks a control-channel framing or decode
	// failure.
	KindProtocolError Kind = "PROTOCOL_ERROR"
	// KindSupervisorError marks a failure in the daemon supervisor's
	// own lifecycle (pid file, socket, log redirection).
	KindSupervisorError Kind = "SUPERVISOR_ERROR"
)

// SyncError is the structured error type used throughout syncd.
type SyncError struct {
	Kind    Kind
	Message string
	Cause   error
	Detail  string
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *SyncError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is comparisons against a Kind-only sentinel built via
// New(kind, "", nil).
func (e *SyncError) Is(target error) bool {
	t, ok := target.(*SyncError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a SyncError of the given kind.
func New(kind Kind, message string, cause error) *SyncError {
	return &SyncError{Kind: kind, Message: message, Cause: cause}
}

// WithDetail attaches free-form context and returns the error for
// chaining.
func (e *SyncError) WithDetail(detail string) *SyncError {
	e.Detail = detail
	return e
}

// BadRequest builds a KindBadRequest error.
func BadRequest(message string, cause error) *SyncError {
	return New(KindBadRequest, message, cause)
}

// ProjectInitError builds a KindProjectInitError error.
func ProjectInitError(message string, cause error) *SyncError {
	return New(KindProjectInitError, message, cause)
}

// ScanError builds a KindScanError error.
func ScanError(message string, cause error) *SyncError {
	return New(KindScanError, message, cause)
}

// ProtocolError builds a KindProtocolError error.
func ProtocolError(message string, cause error) *SyncError {
	return New(KindProtocolError, message, cause)
}

// SupervisorError builds a KindSupervisorError error.
func SupervisorError(message string, cause error) *SyncError {
	return New(KindSupervisorError, message, cause)
}

// Is reports whether err is a SyncError of the given Kind.
func Is(err error, kind Kind) bool {
	se, ok := err.(*SyncError)
	if !ok {
		return false
	}
	return se.Kind == kind
}
