package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
)

// UpdateAppointmentInput changes only the fields that are set.
type UpdateAppointmentInput struct {
	SalonID       uuid.UUID
	AppointmentID uuid.UUID

	Date *string
	Time *string

	DurationMinutes *int

	// Non-nil replaces every line item.
	ServiceIDs []uuid.UUID

	Actor string
}

type UpdateAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewUpdateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *UpdateAppointment {
	return &UpdateAppointment{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := tx.LockAppointment(ctx, in.SalonID, in.AppointmentID)
		if err != nil {
			return err
		}

		if err := domain.Guard(domain.Status(ap.Status), domain.OpEdit); err != nil {
			return err
		}

		// --------------------------------------------------
		// Schedule
		// --------------------------------------------------
		if in.Date != nil || in.Time != nil {
			loc := ap.ScheduledAt.In(timezone.Location(salon.Timezone))
			date := loc.Format("2006-01-02")
			clock := loc.Format("15:04")
			if in.Date != nil {
				date = *in.Date
			}
			if in.Time != nil {
				clock = *in.Time
			}

			ap.ScheduledAt, err = parseSchedule(date, clock, salon.Timezone)
			if err != nil {
				return err
			}
		}

		// --------------------------------------------------
		// Line items
		// --------------------------------------------------
		if in.ServiceIDs != nil {
			items, total, duration, err := snapshotServices(ctx, tx, in.SalonID, in.ServiceIDs)
			if err != nil {
				return err
			}
			if err := tx.ReplaceServices(ctx, ap.ID, items); err != nil {
				return err
			}
			ap.TotalPrice = total
			ap.DurationMinutes = duration
		}

		if in.DurationMinutes != nil {
			if *in.DurationMinutes <= 0 {
				return ErrInvalidDuration
			}
			ap.DurationMinutes = *in.DurationMinutes
		}

		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, rejected(domain.OpEdit, err)
	}

	ap, err := uc.repo.GetAppointment(ctx, in.SalonID, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	publish(ctx, uc.bus, realtime.Change{
		SalonID: in.SalonID,
		Table:   realtime.TableAppointments,
		Op:      realtime.OpUpdate,
		RowID:   ap.ID,
		Status:  ap.Status,
		At:      time.Now(),
	})

	dispatch(uc.audit, in.SalonID, in.Actor, "appointment_updated", ap.ID, nil)

	return ap, nil
}
