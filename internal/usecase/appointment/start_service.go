package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

type StartService struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewStartService(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *StartService {
	return &StartService{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute moves a checked-in pet onto the grooming table.
func (uc *StartService) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
	actor string,
) (*models.Appointment, error) {
	return step(ctx, uc.repo, uc.bus, uc.audit, salonID, appointmentID, actor,
		domain.StartService{}, "appointment_service_started")
}

// step runs a status-only transition that touches no kennel.
func step(
	ctx context.Context,
	repo domain.Repository,
	bus realtime.Publisher,
	auditor *audit.Dispatcher,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
	actor string,
	cmd domain.Command,
	action string,
) (*models.Appointment, error) {

	var result *transition

	err := repo.WithinTx(ctx, func(tx domain.Repository) error {
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
		return nil
	})
	if err != nil {
		return nil, rejected(cmd.Operation(), err)
	}

	committed(ctx, bus, cmd.Operation(), result)
	dispatch(auditor, salonID, actor, action, result.ap.ID, nil)

	return result.ap, nil
}
