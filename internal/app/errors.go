package app

import "fmt"

// ValidationError rejects a submission before any I/O happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps a request that never produced a usable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError carries a non-2xx response or an explicit error status body.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (HTTP %d)", e.StatusCode)
}

// EmptyResultError marks a success response whose paper body was empty.
type EmptyResultError struct {
	DocumentID string
}

func (e *EmptyResultError) Error() string {
	return "generation succeeded but returned empty content"
}

// PersistenceError wraps a failed local or remote snapshot write. It is
// logged and swallowed; the next mutation retries.
type PersistenceError struct {
	Target string // "local" or "remote"
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s snapshot: %v", e.Target, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
