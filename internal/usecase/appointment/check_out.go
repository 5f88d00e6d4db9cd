package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
)

type CheckOutInput struct {
	SalonID       uuid.UUID
	AppointmentID uuid.UUID
	Actor         string

	// Force hands the pet back from any in-salon status.
	Force bool
}

type CheckOut struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewCheckOut(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *CheckOut {
	return &CheckOut{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute completes the appointment at pickup and frees its kennel.
func (uc *CheckOut) Execute(
	ctx context.Context,
	in CheckOutInput,
) (*models.Appointment, error) {

	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	cmd := domain.CheckOut{
		Actor: in.Actor,
		At:    timezone.NowIn(salon.Timezone),
		Force: in.Force,
	}

	var result *transition

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := tx.LockAppointment(ctx, in.SalonID, in.AppointmentID)
		if err != nil {
			return err
		}

		result, err = complete(ctx, tx, ap, cmd)
		return err
	})
	if err != nil {
		return nil, rejected(cmd.Operation(), err)
	}

	committed(ctx, uc.bus, cmd.Operation(), result)

	dispatch(uc.audit, in.SalonID, in.Actor, "appointment_checked_out", result.ap.ID, map[string]any{
		"forced":          in.Force,
		"released_kennel": result.released != nil,
	})

	return result.ap, nil
}
