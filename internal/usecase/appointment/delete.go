package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

var ErrInKennel = httperr.ErrBusiness("appointment_in_kennel")

type DeleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewDeleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *DeleteAppointment {
	return &DeleteAppointment{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute removes the appointment and its line items. An appointment that
// still holds a kennel must be checked out or cancelled first.
func (uc *DeleteAppointment) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
	actor string,
) error {

	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := tx.LockAppointment(ctx, salonID, appointmentID)
		if err != nil {
			return err
		}

		if domain.Status(ap.Status).Occupying() && ap.KennelNumber != nil {
			k, err := tx.LockKennelByNumber(ctx, salonID, *ap.KennelNumber)
			if err != nil && !httperr.IsNotFound(err) {
				return err
			}
			if k != nil && kennel.HeldBy(*k, ap.ID) {
				return ErrInKennel
			}
		}

		return tx.DeleteAppointment(ctx, salonID, appointmentID)
	})
	if err != nil {
		return rejected("delete", err)
	}

	publish(ctx, uc.bus, realtime.Change{
		SalonID: salonID,
		Table:   realtime.TableAppointments,
		Op:      realtime.OpDelete,
		RowID:   appointmentID,
		At:      time.Now(),
	})

	dispatch(uc.audit, salonID, actor, "appointment_deleted", appointmentID, nil)

	return nil
}
