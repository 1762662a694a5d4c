package schedule

import (
	"errors"
	"fmt"

	"scheduling-server/internal/models"
)

var (
	// ErrNotFound is returned when the referenced appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotAllowed is returned when the requester lacks rights for the
	// requested operation on this appointment.
	ErrNotAllowed = errors.New("not authorized for this appointment")

	// ErrSlotConflict is returned when the requested slot overlaps an
	// existing non-cancelled appointment for the same doctor and date.
	ErrSlotConflict = errors.New("slot already booked for this doctor")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidTimeError reports a malformed time-of-day value.
type InvalidTimeError struct {
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("invalid time of day %q, expected HH:MM", e.Value)
}

// InvalidStateError reports a transition that is illegal from the
// appointment's current status.
type InvalidStateError struct {
	Status models.AppointmentStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("transition not permitted from status %q", e.Status)
}
