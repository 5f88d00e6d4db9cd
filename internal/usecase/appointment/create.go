package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
	"github.com/BruksfildServices01/groomer-scheduler/internal/usecase/usage"
)

var (
	ErrInvalidDateTime  = httperr.ErrBusiness("invalid_date_or_time")
	ErrServicesRequired = httperr.ErrBusiness("services_required")
	ErrPetNotOwned      = httperr.ErrBusiness("pet_not_owned_by_client")
	ErrInvalidDuration  = httperr.ErrBusiness("invalid_duration")
)

// LimitChecker refuses a new row once the salon plan is exhausted.
type LimitChecker interface {
	EnsureCanAdd(ctx context.Context, salonID uuid.UUID, r usage.Resource) error
}

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	SalonID  uuid.UUID
	ClientID uuid.UUID
	PetID    uuid.UUID

	// Date (YYYY-MM-DD) and Time (HH:MM) in the salon timezone.
	Date string
	Time string

	ServiceIDs []uuid.UUID

	// Zero means the sum of the service durations.
	DurationMinutes int

	Notes string
	Actor string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo   domain.Repository
	audit  *audit.Dispatcher
	bus    realtime.Publisher
	limits LimitChecker
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
	limits LimitChecker,
) *CreateAppointment {
	return &CreateAppointment{
		repo:   repo,
		audit:  audit,
		bus:    bus,
		limits: limits,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Salon + plan limit
	// --------------------------------------------------
	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	if uc.limits != nil {
		if err := uc.limits.EnsureCanAdd(ctx, in.SalonID, usage.ResourceAppointments); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 2️⃣ Date / time in the salon timezone
	// --------------------------------------------------
	scheduledAt, err := parseSchedule(in.Date, in.Time, salon.Timezone)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 3️⃣ Client + pet
	// --------------------------------------------------
	if _, err := uc.repo.GetClient(ctx, in.SalonID, in.ClientID); err != nil {
		return nil, err
	}

	pet, err := uc.repo.GetPet(ctx, in.SalonID, in.PetID)
	if err != nil {
		return nil, err
	}
	if pet.ClientID != in.ClientID {
		return nil, ErrPetNotOwned
	}

	if in.DurationMinutes < 0 {
		return nil, ErrInvalidDuration
	}

	// --------------------------------------------------
	// 4️⃣ Services (price snapshot) + persist
	// --------------------------------------------------
	var ap *models.Appointment

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		items, total, duration, err := snapshotServices(ctx, tx, in.SalonID, in.ServiceIDs)
		if err != nil {
			return err
		}
		if in.DurationMinutes > 0 {
			duration = in.DurationMinutes
		}

		ap = &models.Appointment{
			SalonID:         in.SalonID,
			ClientID:        in.ClientID,
			PetID:           in.PetID,
			ScheduledAt:     scheduledAt,
			DurationMinutes: duration,
			TotalPrice:      total,
			Status:          string(domain.InitialStatus()),
			Notes:           strings.TrimSpace(in.Notes),
			Services:        items,
		}

		// appointment row and line items commit together
		return tx.CreateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.bus, realtime.Change{
		SalonID: in.SalonID,
		Table:   realtime.TableAppointments,
		Op:      realtime.OpInsert,
		RowID:   ap.ID,
		Status:  ap.Status,
		At:      time.Now(),
	})

	dispatch(uc.audit, in.SalonID, in.Actor, "appointment_created", ap.ID, nil)

	return ap, nil
}

func parseSchedule(date, clock, tz string) (time.Time, error) {
	t, err := time.ParseInLocation(
		"2006-01-02 15:04",
		strings.TrimSpace(date)+" "+strings.TrimSpace(clock),
		timezone.Location(tz),
	)
	if err != nil {
		return time.Time{}, ErrInvalidDateTime
	}
	return t, nil
}

// snapshotServices loads the catalog entries in request order and copies
// their current price into line items.
func snapshotServices(
	ctx context.Context,
	repo domain.Repository,
	salonID uuid.UUID,
	ids []uuid.UUID,
) ([]models.AppointmentService, decimal.Decimal, int, error) {

	if len(ids) == 0 {
		return nil, decimal.Zero, 0, ErrServicesRequired
	}

	services, err := repo.GetServices(ctx, salonID, ids)
	if err != nil {
		return nil, decimal.Zero, 0, err
	}

	byID := make(map[uuid.UUID]models.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}

	items := make([]models.AppointmentService, 0, len(ids))
	total := decimal.Zero
	duration := 0

	for _, id := range ids {
		s := byID[id]
		items = append(items, models.AppointmentService{
			ServiceID: s.ID,
			Price:     s.Price,
		})
		total = total.Add(s.Price)
		duration += s.DurationMinutes
	}

	return items, total, duration, nil
}
