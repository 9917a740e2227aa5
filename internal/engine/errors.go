package engine

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable is returned when a query reaches a store that was never
// loaded or has already been closed.
var ErrStoreUnavailable = errors.New("grade store is not available")

// QueryExecutionError reports a failed detail, summary or autocomplete query.
// Callers surface it as a server error; it is never retried.
type QueryExecutionError struct {
	Op  string
	Err error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Op, e.Err)
}

func (e *QueryExecutionError) Unwrap() error {
	return e.Err
}

// StartupError reports that the store could not be populated from its source.
// It is fatal: no request may be served without a loaded store.
type StartupError struct {
	Source string
	Err    error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("failed to load grade records from %s: %v", e.Source, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// IsQueryExecutionError reports whether err wraps a QueryExecutionError.
func IsQueryExecutionError(err error) bool {
	var qe *QueryExecutionError
	return errors.As(err, &qe)
}
