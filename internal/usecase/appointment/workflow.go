package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/metrics"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

// ======================================================
// Shared workflow plumbing
// ======================================================

// transition is what a committed workflow step produced.
type transition struct {
	ap       *models.Appointment
	from     domain.Status
	occupied *models.Kennel
	released *models.Kennel
}

// releaseHeldKennel frees the kennel ap holds, if any. A kennel that no
// longer points at ap is left untouched.
func releaseHeldKennel(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
) (*models.Kennel, error) {

	if ap.KennelNumber == nil || *ap.KennelNumber == "" {
		return nil, nil
	}

	k, err := tx.LockKennelByNumber(ctx, ap.SalonID, *ap.KennelNumber)
	if err != nil {
		if httperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !kennel.HeldBy(*k, ap.ID) {
		return nil, nil
	}

	if err := tx.ReleaseKennel(ctx, ap.SalonID, k.KennelNumber, ap.ID); err != nil {
		return nil, err
	}

	k.IsOccupied = false
	k.CurrentAppointmentID = nil
	return k, nil
}

// complete runs a completing command (check-out or payment) and releases the
// kennel in the same transaction.
func complete(
	ctx context.Context,
	tx domain.Repository,
	ap *models.Appointment,
	cmd domain.Command,
) (*transition, error) {

	from, err := domain.Apply(ap, cmd)
	if err != nil {
		return nil, err
	}

	if err := tx.UpdateAppointment(ctx, ap); err != nil {
		return nil, err
	}

	released, err := releaseHeldKennel(ctx, tx, ap)
	if err != nil {
		return nil, err
	}

	return &transition{ap: ap, from: from, released: released}, nil
}

// ------------------------------------------------------
// After commit
// ------------------------------------------------------

func (t *transition) changes(at time.Time) []realtime.Change {
	out := []realtime.Change{{
		SalonID:   t.ap.SalonID,
		Table:     realtime.TableAppointments,
		Op:        realtime.OpUpdate,
		RowID:     t.ap.ID,
		Status:    t.ap.Status,
		OldStatus: string(t.from),
		At:        at,
	}}

	for _, k := range []*models.Kennel{t.occupied, t.released} {
		if k == nil {
			continue
		}
		out = append(out, realtime.Change{
			SalonID: k.SalonID,
			Table:   realtime.TableKennels,
			Op:      realtime.OpUpdate,
			RowID:   k.ID,
			At:      at,
		})
	}
	return out
}

// committed records metrics, publishes the change feed and logs the step.
func committed(
	ctx context.Context,
	bus realtime.Publisher,
	op domain.Operation,
	t *transition,
) {
	metrics.RecordTransition(string(op), string(t.from), t.ap.Status)

	salonID := t.ap.SalonID.String()
	if t.occupied != nil {
		metrics.KennelOccupied(1)
	}
	if t.released != nil {
		metrics.KennelOccupied(-1)
	}

	publish(ctx, bus, t.changes(time.Now())...)

	logger.Get().Info("appointment transition",
		zap.String("operation", string(op)),
		zap.String("salon_id", salonID),
		zap.String("appointment_id", t.ap.ID.String()),
		zap.String("from", string(t.from)),
		zap.String("to", t.ap.Status),
	)
}

func publish(ctx context.Context, bus realtime.Publisher, changes ...realtime.Change) {
	if bus == nil || len(changes) == 0 {
		return
	}
	for _, c := range changes {
		metrics.RealtimePublished(string(c.Table))
	}
	bus.Publish(ctx, changes...)
}

// rejected counts business rejections per operation and returns err.
func rejected(op domain.Operation, err error) error {
	var be httperr.BusinessError
	if errors.As(err, &be) {
		metrics.RecordRejected(string(op), be.Code)
	}
	return err
}

func dispatch(
	d *audit.Dispatcher,
	salonID uuid.UUID,
	actor string,
	action string,
	appointmentID uuid.UUID,
	metadata any,
) {
	if d == nil {
		return
	}
	id := appointmentID
	d.Dispatch(audit.Event{
		SalonID:  salonID,
		Actor:    actor,
		Action:   action,
		Entity:   "appointment",
		EntityID: &id,
		Metadata: metadata,
	})
}
