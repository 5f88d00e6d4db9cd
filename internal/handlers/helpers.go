package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/usecase/usage"
)

// paramID parses a uuid path parameter, answering 400 when malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
		return uuid.Nil, false
	}
	return id, true
}

// fail answers with the status matching err. Storage and unknown errors are
// logged with the request logger first.
func fail(c *gin.Context, op string, err error) {
	if httperr.IsStorage(err) || !httperr.IsKnown(err) {
		logger.FromContext(c).Error(op+" failed", zap.Error(err))
	}
	httperr.FromError(c, err)
}

// UsageGuard enforces the plan limits on rows a salon adds.
type UsageGuard interface {
	EnsureCanAdd(ctx context.Context, salonID uuid.UUID, r usage.Resource) error
	Execute(ctx context.Context, salonID uuid.UUID) (*usage.Report, error)
	Report(ctx context.Context, salonID uuid.UUID) (*usage.Report, error)
}

// refreshUsage re-evaluates limits after an insert so warnings are raised.
// Failures are logged, the insert already happened.
func refreshUsage(c *gin.Context, g UsageGuard, salonID uuid.UUID) {
	if g == nil {
		return
	}
	if _, err := g.Execute(c.Request.Context(), salonID); err != nil {
		logger.FromContext(c).Warn("usage check failed", zap.Error(err))
	}
}

func publishRow(
	c *gin.Context,
	bus realtime.Publisher,
	table realtime.Table,
	op realtime.Op,
	salonID uuid.UUID,
	rowID uuid.UUID,
) {
	if bus == nil {
		return
	}
	bus.Publish(c.Request.Context(), realtime.Change{
		SalonID: salonID,
		Table:   table,
		Op:      op,
		RowID:   rowID,
		At:      time.Now().UTC(),
	})
}

// auditRow records action on an entity of the caller's salon.
func auditRow(
	c *gin.Context,
	d *audit.Dispatcher,
	salonID uuid.UUID,
	action string,
	entity string,
	entityID uuid.UUID,
	meta any,
) {
	if d == nil {
		return
	}
	userID := middleware.UserID(c)
	d.Dispatch(audit.Event{
		SalonID:  salonID,
		UserID:   &userID,
		Actor:    middleware.Actor(c),
		Action:   action,
		Entity:   entity,
		EntityID: &entityID,
		Metadata: meta,
	})
}

// hasActiveVisit reports whether an appointment matching column = id is on
// the premises. Such rows hold a kennel and cannot be removed.
func hasActiveVisit(tx *gorm.DB, salonID uuid.UUID, column string, id uuid.UUID) (bool, error) {
	var count int64
	err := tx.Model(&models.Appointment{}).
		Where("salon_id = ? AND "+column+" = ? AND status IN ?", salonID, id, appointment.OccupyingStatuses()).
		Count(&count).Error
	return count > 0, err
}

// removeAppointments deletes the appointments matching column = id together
// with their line items. Payments keep their appointment id as history.
func removeAppointments(tx *gorm.DB, salonID uuid.UUID, column string, id uuid.UUID) error {
	ids := tx.Model(&models.Appointment{}).
		Select("id").
		Where("salon_id = ? AND "+column+" = ?", salonID, id)

	if err := tx.Where("appointment_id IN (?)", ids).
		Delete(&models.AppointmentService{}).Error; err != nil {
		return err
	}
	return tx.Where("salon_id = ? AND "+column+" = ?", salonID, id).
		Delete(&models.Appointment{}).Error
}
