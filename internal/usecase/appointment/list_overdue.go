package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/dto"
	"github.com/BruksfildServices01/groomer-scheduler/internal/metrics"
)

const DefaultOverdueHours = 8

// ListOverdue finds pets that have been in the salon longer than the
// threshold.
type ListOverdue struct {
	repo  domain.Repository
	hours int
	now   func() time.Time
}

func NewListOverdue(
	repo domain.Repository,
	hours int,
) *ListOverdue {
	if hours <= 0 {
		hours = DefaultOverdueHours
	}
	return &ListOverdue{
		repo:  repo,
		hours: hours,
		now:   time.Now,
	}
}

func (uc *ListOverdue) Execute(
	ctx context.Context,
	salonID uuid.UUID,
) ([]dto.OverdueAppointmentDTO, error) {

	now := uc.now()
	cutoff := now.Add(-time.Duration(uc.hours) * time.Hour).UTC()

	appointments, err := uc.repo.ListCheckedInBefore(ctx, salonID, cutoff)
	if err != nil {
		return nil, err
	}

	out := make([]dto.OverdueAppointmentDTO, 0, len(appointments))
	for _, ap := range appointments {
		if ap.CheckInTime == nil {
			continue
		}
		out = append(out, dto.OverdueAppointmentDTO{
			ID:           ap.ID,
			Status:       ap.Status,
			ClientName:   ap.Client.Name,
			ClientPhone:  ap.Client.Phone,
			PetName:      ap.Pet.Name,
			KennelNumber: ap.KennelNumber,
			CheckInTime:  *ap.CheckInTime,
			HoursInSalon: now.Sub(*ap.CheckInTime).Hours(),
		})
	}

	metrics.SetOverdue(salonID.String(), len(out))

	return out, nil
}
