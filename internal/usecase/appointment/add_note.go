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

type AddNote struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewAddNote(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *AddNote {
	return &AddNote{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute appends a timestamped entry to the appointment notes. The status is
// not touched, so notes can be added to completed appointments too.
func (uc *AddNote) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
	text string,
	actor string,
) (*models.Appointment, error) {

	salon, err := uc.repo.GetSalonByID(ctx, salonID)
	if err != nil {
		return nil, err
	}
	at := timezone.NowIn(salon.Timezone)

	var ap *models.Appointment

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		locked, err := tx.LockAppointment(ctx, salonID, appointmentID)
		if err != nil {
			return err
		}

		notes, err := domain.AppendNote(locked.Notes, text, at)
		if err != nil {
			return err
		}
		locked.Notes = notes

		if err := tx.UpdateAppointment(ctx, locked); err != nil {
			return err
		}
		ap = locked
		return nil
	})
	if err != nil {
		return nil, rejected("add_note", err)
	}

	publish(ctx, uc.bus, realtime.Change{
		SalonID: salonID,
		Table:   realtime.TableAppointments,
		Op:      realtime.OpUpdate,
		RowID:   ap.ID,
		Status:  ap.Status,
		At:      time.Now(),
	})

	dispatch(uc.audit, salonID, actor, "appointment_note_added", ap.ID, nil)

	return ap, nil
}
