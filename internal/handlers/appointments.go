package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scheduling-server/internal/middleware"
	"scheduling-server/internal/models"
	"scheduling-server/internal/schedule"
	"scheduling-server/internal/utils"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	Service *schedule.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *schedule.Service) *AppointmentHandler {
	return &AppointmentHandler{Service: service}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment. The end time is derived server-side and cannot be supplied.
type CreateAppointmentRequest struct {
	DoctorID  string                 `json:"doctorId" binding:"required,uuid"`
	PatientID string                 `json:"patientId" binding:"omitempty,uuid"` // Defaults to the authenticated patient
	Date      string                 `json:"date" binding:"required"`
	StartTime string                 `json:"startTime" binding:"required"`
	Type      models.AppointmentType `json:"type" binding:"required,oneof=regular follow-up emergency"`
	Notes     string                 `json:"notes"`
}

// CreateAppointment handles booking a new appointment.
// Patients book for themselves; doctors and admins book on behalf of a patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	patientID := req.PatientID
	if patientID == "" {
		if actor.Role != models.RolePatient {
			utils.BadRequest(c, "patientId is required when booking on behalf of a patient")
			return
		}
		patientID = actor.UserID
	}

	appointment, err := h.Service.Book(c.Request.Context(), schedule.BookInput{
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		StartTime: req.StartTime,
		Type:      req.Type,
		Notes:     req.Notes,
	}, actor)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment)
}

// GetAppointmentsForUser handles fetching appointments for the logged-in
// user. Patients see their own, doctors see their own, admins see all;
// results are ordered by date then start time.
func (h *AppointmentHandler) GetAppointmentsForUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointments, err := h.Service.List(c.Request.Context(), actor)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment by its ID.
// Accessible by the involved patient, the involved doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
}

// RescheduleAppointment moves a scheduled appointment to a new slot.
// Only the owning patient or an admin may reschedule.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), req.Date, req.StartTime, actor)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// CancelAppointment cancels a scheduled appointment. Irreversible.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if err := h.Service.Cancel(c.Request.Context(), c.Param("id"), actor); err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", nil)
}

// UpdateAppointmentStatusRequest represents the request body for marking an
// appointment completed or no-show.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=completed no-show"`
}

// UpdateAppointmentStatus marks a scheduled appointment completed or
// no-show. Cancellation goes through CancelAppointment instead.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actor, ok := actorFromContext(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appointment, err := h.Service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, actor)
	if err != nil {
		respondScheduleError(c, err)
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// actorFromContext builds the scheduling actor from the verified token
// claims placed in the context by the auth middleware.
func actorFromContext(c *gin.Context) (schedule.Actor, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		return schedule.Actor{}, false
	}
	role, ok := middleware.GetUserRoleFromContext(c)
	if !ok {
		return schedule.Actor{}, false
	}
	return schedule.Actor{UserID: userID, Role: role}, true
}

// respondScheduleError maps scheduling errors onto HTTP responses. Business
// errors carry their specific reason; anything unrecognized is treated as an
// infrastructure failure and rendered generically.
func respondScheduleError(c *gin.Context, err error) {
	var validationErr *schedule.ValidationError
	var timeErr *schedule.InvalidTimeError
	var stateErr *schedule.InvalidStateError

	switch {
	case errors.As(err, &validationErr):
		utils.BadRequest(c, validationErr.Error())
	case errors.As(err, &timeErr):
		utils.BadRequest(c, timeErr.Error())
	case errors.Is(err, schedule.ErrNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.As(err, &stateErr):
		utils.Conflict(c, stateErr.Error())
	case errors.Is(err, schedule.ErrSlotConflict):
		utils.Conflict(c, "The requested slot is already booked for this doctor.")
	case errors.Is(err, schedule.ErrNotAllowed):
		utils.Forbidden(c, "You are not authorized to perform this action on this appointment.")
	default:
		utils.InternalServerError(c, "An unexpected error occurred. Please try again later.")
	}
}
