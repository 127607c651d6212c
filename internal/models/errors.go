package models

import "errors"

// Error taxonomy shared by repositories, services and handlers. Callers wrap
// these with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("not authorized")
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("event is at full capacity")
	ErrAlreadyJoined    = errors.New("user already joined this event")
	ErrNotJoined        = errors.New("user has not joined this event")
	ErrConflict         = errors.New("conflicting update")
)

// ErrorCode returns the stable machine-readable code for err, used in API
// error envelopes.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnauthorized):
		return "authorization_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrAlreadyJoined):
		return "already_joined"
	case errors.Is(err, ErrNotJoined):
		return "not_joined"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal_error"
	}
}
