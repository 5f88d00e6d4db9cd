package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/dto"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
)

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(
	repo domain.Repository,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo: repo,
	}
}

// Execute lists one salon day. date is YYYY-MM-DD in the salon timezone;
// empty means today.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	date string,
) ([]dto.AppointmentListDTO, error) {

	salon, err := uc.repo.GetSalonByID(ctx, salonID)
	if err != nil {
		return nil, err
	}

	if date == "" {
		date = timezone.NowIn(salon.Timezone).Format("2006-01-02")
	}

	start, end, err := timezone.DayBounds(date, salon.Timezone)
	if err != nil {
		return nil, ErrInvalidDateTime
	}

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		salonID,
		start,
		end,
	)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, toListDTO(ap))
	}

	return out, nil
}

func toListDTO(ap models.Appointment) dto.AppointmentListDTO {
	services := make([]string, 0, len(ap.Services))
	for _, s := range ap.Services {
		services = append(services, s.Service.Name)
	}

	return dto.AppointmentListDTO{
		ID:           ap.ID,
		ScheduledAt:  ap.ScheduledAt,
		EndsAt:       ap.ScheduledAt.Add(time.Duration(ap.DurationMinutes) * time.Minute),
		Status:       ap.Status,
		ClientName:   ap.Client.Name,
		PetName:      ap.Pet.Name,
		PetSize:      ap.Pet.Size,
		Services:     services,
		TotalPrice:   ap.TotalPrice,
		KennelNumber: ap.KennelNumber,
		CheckInTime:  ap.CheckInTime,
	}
}
