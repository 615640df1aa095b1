package appointments

import "errors"

var (
	// ErrInvalidDate is returned when the booking date cannot be parsed.
	ErrInvalidDate = errors.New("invalid appointment date")

	// ErrPastDate is returned when the booking date is before today.
	ErrPastDate = errors.New("appointment date is in the past")

	// ErrCapacityExceeded is returned when the day already holds the
	// configured maximum number of appointments.
	ErrCapacityExceeded = errors.New("no remaining capacity for that date")

	// ErrBusy is returned when the per-date boundary could not be
	// acquired within the bounded wait. Safe to retry.
	ErrBusy = errors.New("booking busy, try again")

	// ErrMissingOwner is returned when the booking has no account.
	ErrMissingOwner = errors.New("owner account is required")

	// ErrNotFound is returned when an appointment id does not exist.
	ErrNotFound = errors.New("appointment not found")
)

// Admission reason codes surfaced to transport layers.
const (
	CodeInvalidDate      = "InvalidDate"
	CodePastDate         = "PastDate"
	CodeCapacityExceeded = "CapacityExceeded"
	CodeBusy             = "Busy"
	CodePersistence      = "PersistenceFailure"
)

// ReasonCode maps an admission error to its stable reason code.
// Unknown errors map to PersistenceFailure, the generic storage surface.
func ReasonCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrMissingOwner):
		return CodeInvalidDate
	case errors.Is(err, ErrPastDate):
		return CodePastDate
	case errors.Is(err, ErrCapacityExceeded):
		return CodeCapacityExceeded
	case errors.Is(err, ErrBusy):
		return CodeBusy
	default:
		return CodePersistence
	}
}
