package notify

import (
	"github.com/rs/zerolog"

	"scheduling-server/internal/models"
)

// LogNotifier records appointment lifecycle events through the structured
// log. Delivery to patients and doctors (mail, SMS) is handled by a separate
// system that tails these events; a failure to emit never reaches the
// caller.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier writing to logger.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify").Logger()}
}

func (n *LogNotifier) AppointmentBooked(appt *models.Appointment) {
	n.event("appointment.booked", appt)
}

func (n *LogNotifier) AppointmentRescheduled(appt *models.Appointment) {
	n.event("appointment.rescheduled", appt)
}

func (n *LogNotifier) AppointmentCancelled(appt *models.Appointment) {
	n.event("appointment.cancelled", appt)
}

func (n *LogNotifier) event(name string, appt *models.Appointment) {
	n.logger.Info().
		Str("event", name).
		Str("appointment_id", appt.ID).
		Str("patient_id", appt.PatientID).
		Str("doctor_id", appt.DoctorID).
		Str("date", appt.Date).
		Str("start_time", appt.StartTime).
		Msg("appointment event")
}
