package appointment

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CheckInInput struct {
	SalonID       uuid.UUID
	AppointmentID uuid.UUID

	KennelNumber *string
	KennelNotes  *string

	Actor string
}

// ======================================================
// USE CASE
// ======================================================

type CheckIn struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewCheckIn(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *CheckIn {
	return &CheckIn{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// ======================================================
// EXECUTE
// ======================================================

// Execute marks the pet as arrived and, when a kennel is named, assigns it.
// The appointment update and the kennel occupation commit together.
func (uc *CheckIn) Execute(
	ctx context.Context,
	in CheckInInput,
) (*models.Appointment, error) {

	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	cmd := domain.CheckIn{
		KennelNumber: in.KennelNumber,
		KennelNotes:  in.KennelNotes,
		Actor:        in.Actor,
		At:           timezone.NowIn(salon.Timezone),
	}

	var result *transition

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {

		// --------------------------------------------------
		// 1️⃣ Appointment (locked)
		// --------------------------------------------------
		ap, err := tx.LockAppointment(ctx, in.SalonID, in.AppointmentID)
		if err != nil {
			return err
		}

		// --------------------------------------------------
		// 2️⃣ Guard + transition
		// --------------------------------------------------
		from, err := domain.Apply(ap, cmd)
		if err != nil {
			return err
		}

		result = &transition{ap: ap, from: from}

		// --------------------------------------------------
		// 3️⃣ Kennel (locked)
		// --------------------------------------------------
		number, ok := cmd.Kennel()
		if ok {
			k, err := tx.LockKennelByNumber(ctx, in.SalonID, number)
			if err != nil {
				return err
			}
			if !kennel.FreeFor(*k, ap.ID) {
				return kennel.ErrOccupied
			}

			// store the number as registered, whatever case staff typed
			registered := k.KennelNumber
			ap.KennelNumber = &registered

			if !kennel.Compatible(ap.Pet.Size, k.KennelSize) {
				logger.Get().Warn("kennel size does not fit pet",
					zap.String("appointment_id", ap.ID.String()),
					zap.String("kennel_number", k.KennelNumber),
					zap.String("kennel_size", k.KennelSize),
				)
			}

			if !k.IsOccupied {
				if err := tx.OccupyKennel(ctx, k, ap.ID); err != nil {
					return err
				}
				result.occupied = k
			}
		}

		// --------------------------------------------------
		// 4️⃣ Persist
		// --------------------------------------------------
		return tx.UpdateAppointment(ctx, ap)
	})
	if err != nil {
		return nil, rejected(domain.OpCheckIn, err)
	}

	committed(ctx, uc.bus, domain.OpCheckIn, result)

	dispatch(uc.audit, in.SalonID, in.Actor, "appointment_checked_in", result.ap.ID, map[string]any{
		"kennel_number": result.ap.KennelNumber,
	})

	return result.ap, nil
}
