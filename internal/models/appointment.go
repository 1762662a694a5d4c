package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no-show"
)

// Terminal reports whether s permits no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// AppointmentType represents the kind of visit being booked
type AppointmentType string

const (
	TypeRegular   AppointmentType = "regular"
	TypeFollowUp  AppointmentType = "follow-up"
	TypeEmergency AppointmentType = "emergency"
)

// ValidAppointmentType reports whether t is one of the known visit types.
func ValidAppointmentType(t AppointmentType) bool {
	switch t {
	case TypeRegular, TypeFollowUp, TypeEmergency:
		return true
	}
	return false
}

// Appointment represents one booked half-hour slot for a patient/doctor pair.
// Date is a calendar date (YYYY-MM-DD); StartTime and EndTime are naive local
// times of day (HH:MM). EndTime is always derived from StartTime, never
// supplied directly by a caller.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index:idx_doctor_day,priority:1" json:"doctorId"`
	Date      string            `gorm:"size:10;index:idx_doctor_day,priority:2" json:"date"`
	StartTime string            `gorm:"size:5" json:"startTime"`
	EndTime   string            `gorm:"size:5" json:"endTime"`
	Type      AppointmentType   `gorm:"size:20" json:"type"`
	Status    AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Notes     string            `gorm:"type:text" json:"notes"`
	CreatedBy string            `gorm:"size:36" json:"createdBy"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
