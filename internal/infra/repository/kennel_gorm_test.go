package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/groomer-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

func TestKennelRepo_ListOrderedByNumber(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewKennelGormRepository(db)

	kennels, err := repo.ListKennels(context.Background(), f.Salon.ID)
	require.NoError(t, err)

	var numbers []string
	for _, k := range kennels {
		numbers = append(numbers, k.KennelNumber)
	}
	assert.Equal(t, []string{"K1", "K2", "K3"}, numbers)
}

func TestKennelRepo_NumberIsUniquePerSalon(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	other := dbtest.Seed(t, db)
	repo := NewKennelGormRepository(db)
	ctx := context.Background()

	err := repo.CreateKennel(ctx, &models.Kennel{SalonID: f.Salon.ID, KennelNumber: "k1", KennelSize: "small"})
	assert.ErrorIs(t, err, kennel.ErrNumberTaken)

	assert.NoError(t, repo.CreateKennel(ctx, &models.Kennel{SalonID: other.Salon.ID, KennelNumber: "K4", KennelSize: "small"}))

	k2 := f.Kennels[1]
	k2.KennelNumber = "K3"
	assert.ErrorIs(t, repo.UpdateKennel(ctx, &k2), kennel.ErrNumberTaken)

	k2.KennelNumber = "K2"
	k2.Notes = "near the dryer"
	require.NoError(t, repo.UpdateKennel(ctx, &k2))

	got, err := repo.GetKennel(ctx, f.Salon.ID, k2.ID)
	require.NoError(t, err)
	assert.Equal(t, "near the dryer", got.Notes)
}

func TestKennelRepo_DeleteRefusedWhileOccupied(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewKennelGormRepository(db)
	ctx := context.Background()

	held := f.Kennels[0]
	holder := uuid.New()
	require.NoError(t, db.Model(&held).Updates(map[string]any{
		"is_occupied":            true,
		"current_appointment_id": holder,
	}).Error)

	assert.ErrorIs(t, repo.DeleteKennel(ctx, f.Salon.ID, held.ID), kennel.ErrOccupied)
	assert.ErrorIs(t, repo.DeleteKennel(ctx, f.Salon.ID, uuid.New()), kennel.ErrNotFound)

	require.NoError(t, repo.DeleteKennel(ctx, f.Salon.ID, f.Kennels[2].ID))
	_, err := repo.GetKennel(ctx, f.Salon.ID, f.Kennels[2].ID)
	assert.ErrorIs(t, err, kennel.ErrNotFound)
}

func TestKennelRepo_CountOccupied(t *testing.T) {
	db := dbtest.Open(t)
	a := dbtest.Seed(t, db)
	b := dbtest.Seed(t, db)
	repo := NewKennelGormRepository(db)
	ctx := context.Background()

	n, err := repo.CountOccupied(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for _, k := range []models.Kennel{a.Kennels[0], b.Kennels[2]} {
		require.NoError(t, db.Model(&models.Kennel{}).Where("id = ?", k.ID).Update("is_occupied", true).Error)
	}

	n, err = repo.CountOccupied(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
