package schedule

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"scheduling-server/internal/models"
)

// Store is the persistence boundary beneath the lifecycle service. Insert
// and Move are responsible for serializing slot allocation per doctor and
// date, returning ErrSlotConflict for the losing writer. Move and Transition
// re-verify the current status on the row loaded under their transaction, so
// a status check made on an earlier read cannot be invalidated by an
// interleaved writer.
type Store interface {
	Insert(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Appointment, error)
	Move(ctx context.Context, id, date, startTime, endTime string) (*models.Appointment, error)
	Transition(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	FindByRole(ctx context.Context, userID string, role models.Role) ([]models.Appointment, error)
}

// Notifier is informed after a lifecycle operation has been persisted.
// Notification is fire-and-forget: implementations must not block and their
// failures never roll back the operation.
type Notifier interface {
	AppointmentBooked(appt *models.Appointment)
	AppointmentRescheduled(appt *models.Appointment)
	AppointmentCancelled(appt *models.Appointment)
}

// Actor identifies the authenticated caller of a lifecycle operation. It is
// built from verified token claims, never from request payload fields.
type Actor struct {
	UserID string
	Role   models.Role
}

// Service enforces the appointment state machine and scheduling rules. It is
// the only place business rules live; handlers above it translate transport,
// the store below it only persists.
type Service struct {
	store    Store
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates an appointment lifecycle service.
func NewService(store Store, notifier Notifier, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "schedule").Logger(),
		now:      time.Now,
	}
}

// BookInput carries the caller-supplied fields for a new appointment.
type BookInput struct {
	PatientID string
	DoctorID  string
	Date      string
	StartTime string
	Type      models.AppointmentType
	Notes     string
}

// Book creates a new appointment in status "scheduled". Patients may only
// book for themselves; doctors and admins may book on behalf of a patient.
// The end time is derived from the start time, never taken from the caller.
func (s *Service) Book(ctx context.Context, in BookInput, actor Actor) (*models.Appointment, error) {
	if actor.Role == models.RolePatient && in.PatientID != actor.UserID {
		return nil, ErrNotAllowed
	}
	if !models.ValidAppointmentType(in.Type) {
		return nil, &ValidationError{Field: "type", Message: "must be regular, follow-up or emergency"}
	}

	date, start, end, err := s.validateSlot(in.Date, in.StartTime)
	if err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      date,
		StartTime: start.String(),
		EndTime:   end.String(),
		Type:      in.Type,
		Status:    models.StatusScheduled,
		Notes:     in.Notes,
		CreatedBy: actor.UserID,
	}

	created, err := s.store.Insert(ctx, appt)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", created.ID).
		Str("doctor_id", created.DoctorID).
		Str("date", created.Date).
		Str("start_time", created.StartTime).
		Msg("appointment booked")
	s.notifier.AppointmentBooked(created)
	return created, nil
}

// Reschedule moves a scheduled appointment to a new date and start time.
// Only the owning patient or an admin may reschedule; the status is left
// untouched.
func (s *Service) Reschedule(ctx context.Context, id, newDate, newStartTime string, actor Actor) (*models.Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.ownsAsPatient(appt) && actor.Role != models.RoleAdmin {
		return nil, ErrNotAllowed
	}
	if appt.Status != models.StatusScheduled {
		return nil, &InvalidStateError{Status: appt.Status}
	}

	date, start, end, err := s.validateSlot(newDate, newStartTime)
	if err != nil {
		return nil, err
	}

	moved, err := s.store.Move(ctx, appt.ID, date, start.String(), end.String())
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", moved.ID).
		Str("date", moved.Date).
		Str("start_time", moved.StartTime).
		Msg("appointment rescheduled")
	s.notifier.AppointmentRescheduled(moved)
	return moved, nil
}

// Cancel moves a scheduled appointment to the terminal "cancelled" status.
// Only the owning patient or an admin may cancel. Cancelling an already
// terminal appointment fails before any mutation.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor) error {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.ownsAsPatient(appt) && actor.Role != models.RoleAdmin {
		return ErrNotAllowed
	}
	if appt.Status != models.StatusScheduled {
		return &InvalidStateError{Status: appt.Status}
	}

	cancelled, err := s.store.Transition(ctx, appt.ID, models.StatusScheduled, models.StatusCancelled)
	if err != nil {
		return err
	}

	s.logger.Info().Str("appointment_id", cancelled.ID).Msg("appointment cancelled")
	s.notifier.AppointmentCancelled(cancelled)
	return nil
}

// UpdateStatus marks a scheduled appointment completed or no-show. This is
// operational tooling for the appointment's doctor or an admin; cancellation
// goes through Cancel.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.AppointmentStatus, actor Actor) (*models.Appointment, error) {
	if status != models.StatusCompleted && status != models.StatusNoShow {
		return nil, &ValidationError{Field: "status", Message: "must be completed or no-show"}
	}

	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.attendsAsDoctor(appt) && actor.Role != models.RoleAdmin {
		return nil, ErrNotAllowed
	}
	if appt.Status != models.StatusScheduled {
		return nil, &InvalidStateError{Status: appt.Status}
	}

	updated, err := s.store.Transition(ctx, appt.ID, models.StatusScheduled, status)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("appointment_id", updated.ID).
		Str("status", string(updated.Status)).
		Msg("appointment status updated")
	return updated, nil
}

// List returns the appointments visible to the actor, ordered ascending by
// (date, start time). Patients see their own, doctors see their own, admins
// see all.
func (s *Service) List(ctx context.Context, actor Actor) ([]models.Appointment, error) {
	return s.store.FindByRole(ctx, actor.UserID, actor.Role)
}

// Get returns a single appointment. Only the involved patient, the involved
// doctor, or an admin may read it.
func (s *Service) Get(ctx context.Context, id string, actor Actor) (*models.Appointment, error) {
	appt, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.ownsAsPatient(appt) && !actor.attendsAsDoctor(appt) && actor.Role != models.RoleAdmin {
		return nil, ErrNotAllowed
	}
	return appt, nil
}

// validateSlot checks the requested date and start time and derives the end
// time. The date must not be before the current calendar date; the slot must
// not cross midnight.
func (s *Service) validateSlot(dateStr, startStr string) (string, TimeOfDay, TimeOfDay, error) {
	date, err := ParseDate(dateStr)
	if err != nil {
		return "", TimeOfDay{}, TimeOfDay{}, err
	}
	if date.Before(s.today()) {
		return "", TimeOfDay{}, TimeOfDay{}, &ValidationError{Field: "date", Message: "must not be in the past"}
	}

	start, err := ParseTimeOfDay(startStr)
	if err != nil {
		return "", TimeOfDay{}, TimeOfDay{}, err
	}
	if CrossesMidnight(start) {
		return "", TimeOfDay{}, TimeOfDay{}, &ValidationError{Field: "startTime", Message: "slot may not cross midnight"}
	}

	return date.Format(dateLayout), start, DeriveEndTime(start), nil
}

// today truncates the clock to the current local calendar date.
func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (a Actor) ownsAsPatient(appt *models.Appointment) bool {
	return a.Role == models.RolePatient && a.UserID == appt.PatientID
}

func (a Actor) attendsAsDoctor(appt *models.Appointment) bool {
	return a.Role == models.RoleDoctor && a.UserID == appt.DoctorID
}
