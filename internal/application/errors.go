package application

import "errors"

var (
	// ErrNotFound is returned when the requested reservation does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a reservation overlaps another one in the same room on the same date.
	ErrConflict = errors.New("application: conflict")
	// ErrMissingFields is returned when a required reservation field is empty.
	ErrMissingFields = errors.New("application: missing required fields")
	// ErrUnknownRoom is returned when the room id is not part of the catalog.
	ErrUnknownRoom = errors.New("application: unknown room")
	// ErrUnknownCompany is returned when the company is not part of the catalog.
	ErrUnknownCompany = errors.New("application: unknown company")
	// ErrUnauthenticated is returned when a session token is missing or invalid.
	ErrUnauthenticated = errors.New("application: unauthenticated")
	// ErrSessionExpired is returned when a session token is past its expiry.
	ErrSessionExpired = errors.New("application: session expired")
	// ErrInvalidCredentials is returned when the admin password does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrStoreUnavailable is returned when the reservation store fails. The cause is logged, not returned.
	ErrStoreUnavailable = errors.New("application: store unavailable")
)

// ValidationError captures field level validation issues that callers can surface to users.
// Cause holds the first rule that failed and is reachable through errors.Is.
type ValidationError struct {
	FieldErrors map[string]string
	Cause       error
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if v.Cause != nil {
		return "validation failed: " + v.Cause.Error()
	}
	return "validation failed"
}

// Unwrap exposes the failed rule.
func (v *ValidationError) Unwrap() error {
	if v == nil {
		return nil
	}
	return v.Cause
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && (len(v.FieldErrors) > 0 || v.Cause != nil)
}

// add records a field level validation error. The first cause wins.
func (v *ValidationError) add(field string, cause error) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = cause.Error()
	if v.Cause == nil {
		v.Cause = cause
	}
}

func invalid(field string, cause error) *ValidationError {
	v := &ValidationError{}
	v.add(field, cause)
	return v
}
