package routes

import (
	"github.com/gin-gonic/gin"

	"scheduling-server/internal/config"
	"scheduling-server/internal/handlers"
	"scheduling-server/internal/middleware"
	"scheduling-server/internal/models"
	"scheduling-server/internal/schedule"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, service *schedule.Service, cfg *config.Config) {
	appointmentHandler := handlers.NewAppointmentHandler(service)

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		appointmentRoutes := private.Group("/appointments")
		{
			// Patients book for themselves; doctors/admins book on behalf of a patient
			appointmentRoutes.POST("",
				middleware.RoleAuthMiddleware(models.RolePatient, models.RoleDoctor, models.RoleAdmin),
				appointmentHandler.CreateAppointment)

			// Role-scoped listing, ordered by (date, start time)
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)

			// Specific appointment access (involved patient, involved doctor, or admin)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)

			// Reschedule (owning patient or admin; authorization inside the service)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)

			// Cancel (owning patient or admin; authorization inside the service)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)

			// Operational status updates: completed / no-show
			appointmentRoutes.PATCH("/:id/status",
				middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin),
				appointmentHandler.UpdateAppointmentStatus)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
