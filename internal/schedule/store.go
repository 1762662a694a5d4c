package schedule

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"scheduling-server/internal/models"
)

// mysqlDeadlock is ER_LOCK_DEADLOCK, raised for the victim of a lock-wait
// cycle.
const mysqlDeadlock = 1213

// GormStore persists appointments through an injected gorm handle. It holds
// no business rules beyond serializing slot allocation and status
// transitions: Insert and Move lock the doctor's bookings for the target
// date so that concurrent writers on the same slot resolve to exactly one
// winner, and Move and Transition verify the current status under the same
// transaction as the write.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Insert persists a new appointment, assigning its id and timestamps, and
// returns ErrSlotConflict if the slot overlaps an existing non-cancelled
// appointment for the same doctor and date.
func (g *GormStore) Insert(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	err := g.inTx(ctx, func(tx *gorm.DB) error {
		if err := ensureSlotFree(tx, appt.DoctorID, appt.Date, appt.StartTime, ""); err != nil {
			return err
		}
		return tx.Create(appt).Error
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Update applies only the supplied fields to the appointment and refreshes
// its updated_at timestamp. Status changes go through Transition instead so
// the current status is verified under the transaction.
func (g *GormStore) Update(ctx context.Context, id string, fields map[string]interface{}) (*models.Appointment, error) {
	var appt models.Appointment
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			return translateNotFound(err)
		}
		return tx.Model(&appt).Updates(fields).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Move reslots an appointment onto a new date and time range, applying the
// same conflict serialization as Insert. Only scheduled appointments may
// move; the status is re-checked on the row loaded under the transaction,
// so a cancel landing after the caller's own read still wins. The moving
// row itself is excluded from the overlap check.
func (g *GormStore) Move(ctx context.Context, id, date, startTime, endTime string) (*models.Appointment, error) {
	var appt models.Appointment
	err := g.inTx(ctx, func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			return translateNotFound(err)
		}
		if appt.Status != models.StatusScheduled {
			return &InvalidStateError{Status: appt.Status}
		}
		if err := ensureSlotFree(tx, appt.DoctorID, date, startTime, appt.ID); err != nil {
			return err
		}
		return tx.Model(&appt).Updates(map[string]interface{}{
			"date":       date,
			"start_time": startTime,
			"end_time":   endTime,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// Transition flips the appointment's status from an expected current value,
// verified on the row loaded under the transaction. A row whose status no
// longer matches — a concurrent cancel or completion got there first —
// fails with InvalidStateError, keeping terminal states terminal.
func (g *GormStore) Transition(ctx context.Context, id string, from, to models.AppointmentStatus) (*models.Appointment, error) {
	var appt models.Appointment
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&appt, "id = ?", id).Error; err != nil {
			return translateNotFound(err)
		}
		if appt.Status != from {
			return &InvalidStateError{Status: appt.Status}
		}
		return tx.Model(&appt).Updates(map[string]interface{}{
			"status": to,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

// FindByID fetches a single appointment.
func (g *GormStore) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	if err := g.db.WithContext(ctx).First(&appt, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &appt, nil
}

// FindByRole returns the appointments visible to the given user, ordered
// ascending by (date, start_time). Patients are filtered to their own rows,
// doctors to theirs, admins see everything.
func (g *GormStore) FindByRole(ctx context.Context, userID string, role models.Role) ([]models.Appointment, error) {
	query := g.db.WithContext(ctx).Order("date asc, start_time asc")
	switch role {
	case models.RolePatient:
		query = query.Where("patient_id = ?", userID)
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	case models.RoleAdmin:
		// unfiltered
	default:
		return nil, ErrNotAllowed
	}

	var appts []models.Appointment
	if err := query.Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// inTx runs fn in a transaction, retrying once when MySQL picks it as a
// deadlock victim. Two bookings of a previously empty slot acquire
// compatible gap locks from the range scan and then deadlock on insert; the
// rerun sees the winner's committed row and reports ErrSlotConflict instead
// of an infrastructure failure.
func (g *GormStore) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := g.db.WithContext(ctx).Transaction(fn)
	if isDeadlock(err) {
		err = g.db.WithContext(ctx).Transaction(fn)
	}
	return err
}

func isDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDeadlock
}

// ensureSlotFree locks the doctor's non-cancelled bookings for the date and
// rejects the requested start time if its interval overlaps any of them.
// excludeID skips the row being moved during a reschedule.
func ensureSlotFree(tx *gorm.DB, doctorID, date, startTime, excludeID string) error {
	start, err := ParseTimeOfDay(startTime)
	if err != nil {
		return err
	}
	requested := NewSlot(start)

	query := tx.Where("doctor_id = ? AND date = ? AND status <> ?",
		doctorID, date, models.StatusCancelled)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	// SQLite (used in tests) serializes writers with a database-level lock
	// and rejects FOR UPDATE syntax.
	if tx.Dialector.Name() == "mysql" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var existing []models.Appointment
	if err := query.Find(&existing).Error; err != nil {
		return err
	}
	for _, other := range existing {
		otherStart, err := ParseTimeOfDay(other.StartTime)
		if err != nil {
			return err
		}
		if Overlaps(requested, NewSlot(otherStart)) {
			return ErrSlotConflict
		}
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
