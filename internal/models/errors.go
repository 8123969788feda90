package models

import (
	"errors"
	"fmt"
)

// ErrEmptyIndex is returned when Q&A is attempted against an index with no
// chunks. The completion service is never invoked in this case.
var ErrEmptyIndex = errors.New("similarity index is empty")

// ServiceError wraps a failure from an external embedding or completion
// service. Service failures abort only the invoking operation and are
// surfaced verbatim; they are never retried automatically.
type ServiceError struct {
	Service string // "embedding" or "completion"
	Err     error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s service unavailable: %v", e.Service, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsServiceUnavailable reports whether err is (or wraps) a ServiceError.
func IsServiceUnavailable(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}

// CloneError is a repository clone failure; it terminates the analysis
// session for that repo.
type CloneError struct {
	URL string
	Err error
}

func (e *CloneError) Error() string {
	return fmt.Sprintf("clone failed for %s: %v", e.URL, e.Err)
}

func (e *CloneError) Unwrap() error { return e.Err }
