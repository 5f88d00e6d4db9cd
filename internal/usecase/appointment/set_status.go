package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

type SetStatus struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewSetStatus(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *SetStatus {
	return &SetStatus{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute confirms, holds or cancels an appointment. Leaving an in-salon
// status frees the kennel; the kennel number stays on the appointment as
// history.
func (uc *SetStatus) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
	status string,
	actor string,
) (*models.Appointment, error) {

	cmd := domain.ChangeStatus{To: domain.Status(status)}

	var result *transition

	err := uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := tx.LockAppointment(ctx, salonID, appointmentID)
		if err != nil {
			return err
		}

		from, err := domain.Apply(ap, cmd)
		if err != nil {
			return err
		}

		if err := tx.UpdateAppointment(ctx, ap); err != nil {
			return err
		}

		result = &transition{ap: ap, from: from}

		if domain.ReleasesKennel(from, cmd.To) {
			result.released, err = releaseHeldKennel(ctx, tx, ap)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, rejected(cmd.Operation(), err)
	}

	committed(ctx, uc.bus, cmd.Operation(), result)

	dispatch(uc.audit, salonID, actor, "appointment_status_changed", result.ap.ID, map[string]any{
		"from": result.from,
		"to":   result.ap.Status,
	})

	return result.ap, nil
}
