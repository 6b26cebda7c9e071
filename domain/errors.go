package domain

import (
	"errors"
	"fmt"
)

// Sentinels for the ledger and reservation stores.
var (
	ErrAvailabilityNotFound  = errors.New("availability record not found")
	ErrAvailabilityExists    = errors.New("availability record already exists for that room and date")
	ErrInsufficientInventory = errors.New("not enough available units")
	ErrReservationNotFound   = errors.New("reservation not found")
)

// ValidationError covers bad input: inverted or past date ranges, zero
// guests, malformed quantities.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConflictError is the 409 family: room unavailable, duplicate ledger row.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string {
	return e.Message
}

// InvalidTransitionError is returned when a state-changing call does not
// meet its precondition.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// UpstreamUnavailableError marks a failed cross-service call. During
// reservation creation it is recovered locally through the fallback scan and
// never reaches the caller.
type UpstreamUnavailableError struct {
	Service string
	Err     error
}

func (e UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("%s is not available: %v", e.Service, e.Err)
}

func (e UpstreamUnavailableError) Unwrap() error {
	return e.Err
}

func NewRoomUnavailable(roomID string) error {
	return ConflictError{Message: fmt.Sprintf("room %s is not available for the requested dates", roomID)}
}
