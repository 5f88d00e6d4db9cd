package kennel

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

// AppointmentReader loads an appointment with its pet.
type AppointmentReader interface {
	GetAppointment(ctx context.Context, salonID, appointmentID uuid.UUID) (*models.Appointment, error)
}

// ======================================================
// LIST AVAILABLE
// ======================================================

type ListAvailable struct {
	kennels      domain.Repository
	appointments AppointmentReader
}

func NewListAvailable(
	kennels domain.Repository,
	appointments AppointmentReader,
) *ListAvailable {
	return &ListAvailable{
		kennels:      kennels,
		appointments: appointments,
	}
}

// Execute lists the kennels an appointment may be checked into: free ones
// and the one it already holds, filtered by the pet's size. uuid.Nil means
// no appointment, so every free kennel is offered.
func (uc *ListAvailable) Execute(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
) ([]models.Kennel, error) {

	var petSize *string
	if appointmentID != uuid.Nil {
		ap, err := uc.appointments.GetAppointment(ctx, salonID, appointmentID)
		if err != nil {
			return nil, err
		}
		petSize = ap.Pet.Size
	}

	kennels, err := uc.kennels.ListKennels(ctx, salonID)
	if err != nil {
		return nil, err
	}

	return domain.Available(kennels, appointmentID, petSize), nil
}

// ======================================================
// ADMIN
// ======================================================

type KennelInput struct {
	KennelNumber string
	KennelSize   string
	Notes        string
}

func (in KennelInput) normalize() (KennelInput, error) {
	in.KennelNumber = strings.TrimSpace(in.KennelNumber)
	if in.KennelNumber == "" || len(in.KennelNumber) > 20 {
		return in, domain.ErrInvalidNumber
	}

	size := domain.SizeMedium
	if strings.TrimSpace(in.KennelSize) != "" {
		s, ok := domain.ParseSize(in.KennelSize)
		if !ok {
			return in, domain.ErrInvalidSize
		}
		size = s
	}
	in.KennelSize = string(size)
	in.Notes = strings.TrimSpace(in.Notes)
	return in, nil
}

type Manage struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewManage(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *Manage {
	return &Manage{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

func (uc *Manage) List(ctx context.Context, salonID uuid.UUID) ([]models.Kennel, error) {
	return uc.repo.ListKennels(ctx, salonID)
}

func (uc *Manage) Create(
	ctx context.Context,
	salonID uuid.UUID,
	in KennelInput,
	actor string,
) (*models.Kennel, error) {

	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	k := &models.Kennel{
		SalonID:      salonID,
		KennelNumber: in.KennelNumber,
		KennelSize:   in.KennelSize,
		Notes:        in.Notes,
	}
	if err := uc.repo.CreateKennel(ctx, k); err != nil {
		return nil, err
	}

	uc.after(ctx, k, realtime.OpInsert, "kennel_created", actor)
	return k, nil
}

// Update edits number, size and notes. Occupied kennels are frozen so the
// number an appointment points at cannot move under it.
func (uc *Manage) Update(
	ctx context.Context,
	salonID uuid.UUID,
	kennelID uuid.UUID,
	in KennelInput,
	actor string,
) (*models.Kennel, error) {

	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	k, err := uc.repo.GetKennel(ctx, salonID, kennelID)
	if err != nil {
		return nil, err
	}
	if k.IsOccupied {
		return nil, domain.ErrOccupied
	}

	k.KennelNumber = in.KennelNumber
	k.KennelSize = in.KennelSize
	k.Notes = in.Notes

	if err := uc.repo.UpdateKennel(ctx, k); err != nil {
		return nil, err
	}

	uc.after(ctx, k, realtime.OpUpdate, "kennel_updated", actor)
	return k, nil
}

func (uc *Manage) Delete(
	ctx context.Context,
	salonID uuid.UUID,
	kennelID uuid.UUID,
	actor string,
) error {

	if err := uc.repo.DeleteKennel(ctx, salonID, kennelID); err != nil {
		return err
	}

	uc.after(ctx, &models.Kennel{ID: kennelID, SalonID: salonID}, realtime.OpDelete, "kennel_deleted", actor)
	return nil
}

func (uc *Manage) after(
	ctx context.Context,
	k *models.Kennel,
	op realtime.Op,
	action string,
	actor string,
) {
	if uc.bus != nil {
		uc.bus.Publish(ctx, realtime.Change{
			SalonID: k.SalonID,
			Table:   realtime.TableKennels,
			Op:      op,
			RowID:   k.ID,
			At:      time.Now(),
		})
	}

	if uc.audit != nil {
		id := k.ID
		uc.audit.Dispatch(audit.Event{
			SalonID:  k.SalonID,
			Actor:    actor,
			Action:   action,
			Entity:   "kennel",
			EntityID: &id,
			Metadata: map[string]any{
				"kennel_number": k.KennelNumber,
			},
		})
	}
}
