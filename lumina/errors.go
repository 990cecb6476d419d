package lumina

import "fmt"

// ConfigurationError reports a failed local precondition (missing tenant,
// missing resource id, malformed operation shape). It is raised before any
// network attempt and is never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "lumina: " + e.Message
}

func newConfigurationError(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidReferenceError reports a malformed, forward, or self reference
// token inside an operation batch. The batch is never submitted.
type InvalidReferenceError struct {
	Token    string // the offending token, e.g. "$2.id"
	OpIndex  int    // index of the operation containing the token
	RefIndex int    // index the token points at
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("lumina: operation %d references %q: index %d is not an earlier operation",
		e.OpIndex, e.Token, e.RefIndex)
}

// TransportError reports a backend rejection or an unreachable backend for
// an otherwise well-formed request. It carries the backend's error body when
// one was decodable.
type TransportError struct {
	StatusCode    int
	Message       string
	Category      string
	CorrelationID string
	Err           error // non-nil when the request never produced a response
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return "lumina: request failed: " + e.Err.Error()
	}
	if e.Message != "" {
		return fmt.Sprintf("lumina: backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("lumina: backend returned %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TransactionError reports that the backend could not complete an operation
// batch atomically. The caller must assume zero side effects occurred; the
// failing step is not identifiable from the client side.
type TransactionError struct {
	Message       string
	CorrelationID string
}

func (e *TransactionError) Error() string {
	return "lumina: transaction failed: " + e.Message
}
