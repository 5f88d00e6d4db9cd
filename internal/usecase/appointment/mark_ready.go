package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

type MarkReady struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewMarkReady(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *MarkReady {
	return &MarkReady{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute flags the pet as waiting for its owner.
func (uc *MarkReady) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
	actor string,
) (*models.Appointment, error) {
	return step(ctx, uc.repo, uc.bus, uc.audit, salonID, appointmentID, actor,
		domain.MarkReady{}, "appointment_ready_for_pickup")
}
