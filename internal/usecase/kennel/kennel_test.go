package kennel

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/groomer-scheduler/internal/db/dbtest"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

func numbers(kennels []models.Kennel) []string {
	out := make([]string, 0, len(kennels))
	for _, k := range kennels {
		out = append(out, k.KennelNumber)
	}
	return out
}

func TestListAvailable_FiltersByPetSizeAndOccupancy(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	ctx := context.Background()

	ap := f.Appointment(t, db, "scheduled")

	other := uuid.New()
	require.NoError(t, db.Model(&f.Kennels[2]).Updates(map[string]any{
		"is_occupied":            true,
		"current_appointment_id": other,
	}).Error)

	uc := NewListAvailable(
		repository.NewKennelGormRepository(db),
		repository.NewAppointmentGormRepository(db),
	)

	// medium dog: K2 (medium) only, K3 (large) is taken
	kennels, err := uc.Execute(ctx, f.Salon.ID, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"K2"}, numbers(kennels))

	// no appointment: every free kennel
	kennels, err = uc.Execute(ctx, f.Salon.ID, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"K1", "K2"}, numbers(kennels))
}

func TestListAvailable_OffersKennelHeldByAppointment(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	ctx := context.Background()

	ap := f.Appointment(t, db, "checked_in")
	require.NoError(t, db.Model(&f.Kennels[2]).Updates(map[string]any{
		"is_occupied":            true,
		"current_appointment_id": ap.ID,
	}).Error)

	uc := NewListAvailable(
		repository.NewKennelGormRepository(db),
		repository.NewAppointmentGormRepository(db),
	)

	kennels, err := uc.Execute(ctx, f.Salon.ID, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"K2", "K3"}, numbers(kennels))
}

func TestManage_CreateUpdateDelete(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	ctx := context.Background()

	bus := realtime.NewBus()
	sub := bus.Subscribe(f.Salon.ID, realtime.TableKennels)
	defer sub.Close()

	uc := NewManage(repository.NewKennelGormRepository(db), nil, bus)

	_, err := uc.Create(ctx, f.Salon.ID, KennelInput{KennelNumber: "  "}, "Maria")
	assert.ErrorIs(t, err, domain.ErrInvalidNumber)

	_, err = uc.Create(ctx, f.Salon.ID, KennelInput{KennelNumber: "K9", KennelSize: "huge"}, "Maria")
	assert.ErrorIs(t, err, domain.ErrInvalidSize)

	k, err := uc.Create(ctx, f.Salon.ID, KennelInput{KennelNumber: "K9", KennelSize: "Extra Large"}, "Maria")
	require.NoError(t, err)
	assert.Equal(t, "extra_large", k.KennelSize)

	change := <-sub.C
	assert.Equal(t, realtime.OpInsert, change.Op)

	_, err = uc.Create(ctx, f.Salon.ID, KennelInput{KennelNumber: "k9"}, "Maria")
	assert.ErrorIs(t, err, domain.ErrNumberTaken)

	k, err = uc.Update(ctx, f.Salon.ID, k.ID, KennelInput{KennelNumber: "K10", KennelSize: "large"}, "Maria")
	require.NoError(t, err)
	assert.Equal(t, "K10", k.KennelNumber)

	require.NoError(t, uc.Delete(ctx, f.Salon.ID, k.ID, "Maria"))

	kennels, err := uc.List(ctx, f.Salon.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"K1", "K2", "K3"}, numbers(kennels))
}

func TestManage_OccupiedKennelIsFrozen(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	ctx := context.Background()

	holder := uuid.New()
	require.NoError(t, db.Model(&f.Kennels[0]).Updates(map[string]any{
		"is_occupied":            true,
		"current_appointment_id": holder,
	}).Error)

	uc := NewManage(repository.NewKennelGormRepository(db), nil, nil)

	_, err := uc.Update(ctx, f.Salon.ID, f.Kennels[0].ID, KennelInput{KennelNumber: "K1", KennelSize: "large"}, "Maria")
	assert.ErrorIs(t, err, domain.ErrOccupied)

	assert.ErrorIs(t, uc.Delete(ctx, f.Salon.ID, f.Kennels[0].ID, "Maria"), domain.ErrOccupied)

	_, err = uc.Update(ctx, f.Salon.ID, uuid.New(), KennelInput{KennelNumber: "K1"}, "Maria")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
