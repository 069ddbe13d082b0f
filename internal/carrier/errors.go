package carrier

import (
	"errors"
	"net/http"
)

var (
	ErrAuthentication    = errors.New("carrier authentication failed")
	ErrAddressValidation = errors.New("address validation failed")
	ErrRateLookup        = errors.New("failed to get pricing")
	ErrLabelCreation     = errors.New("failed to create label")
)

// Error is a failed carrier call. Kind is one of the sentinel errors above;
// Message is the carrier's own explanation when it sent one.
type Error struct {
	Kind       error
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// Rejected reports whether the carrier refused the request itself, as opposed
// to an auth, transport or server failure.
func (e *Error) Rejected() bool {
	if errors.Is(e.Kind, ErrAuthentication) {
		return false
	}

	return e.StatusCode >= http.StatusBadRequest &&
		e.StatusCode < http.StatusInternalServerError &&
		e.StatusCode != http.StatusUnauthorized &&
		e.StatusCode != http.StatusForbidden
}
