package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

func TestAppointmentRepo_CreateAndGet(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	ap := &models.Appointment{
		SalonID:         f.Salon.ID,
		ClientID:        f.Client.ID,
		PetID:           f.Pet.ID,
		ScheduledAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		TotalPrice:      decimal.NewFromInt(40),
		Status:          string(domain.StatusScheduled),
		Services: []models.AppointmentService{
			{ServiceID: f.Service.ID, Price: f.Service.Price},
		},
	}
	require.NoError(t, repo.CreateAppointment(ctx, ap))

	got, err := repo.GetAppointment(ctx, f.Salon.ID, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rex", got.Pet.Name)
	assert.Equal(t, "Ana Souza", got.Client.Name)
	require.Len(t, got.Services, 1)
	assert.Equal(t, "Bath", got.Services[0].Service.Name)
	assert.True(t, got.Services[0].Price.Equal(decimal.NewFromInt(40)))
}

func TestAppointmentRepo_OtherSalonIsNotFound(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	other := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	ap := f.Appointment(t, db, "scheduled")

	_, err := repo.GetAppointment(ctx, other.Salon.ID, ap.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetPet(ctx, other.Salon.ID, f.Pet.ID)
	assert.True(t, httperr.IsNotFound(err))

	_, err = repo.LockKennelByNumber(ctx, other.Salon.ID, "K9")
	assert.ErrorIs(t, err, kennel.ErrNotFound)
}

func TestAppointmentRepo_GetServicesRequiresAll(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	services, err := repo.GetServices(ctx, f.Salon.ID, []uuid.UUID{f.Service.ID, f.Service.ID})
	require.NoError(t, err)
	assert.Len(t, services, 1)

	_, err = repo.GetServices(ctx, f.Salon.ID, []uuid.UUID{f.Service.ID, uuid.New()})
	assert.True(t, httperr.IsNotFound(err))
}

func TestAppointmentRepo_OccupyAndConditionalRelease(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	holder := f.Appointment(t, db, "checked_in")

	k, err := repo.LockKennelByNumber(ctx, f.Salon.ID, "K2")
	require.NoError(t, err)
	require.NoError(t, repo.OccupyKennel(ctx, k, holder.ID))

	// a stale release from another appointment leaves the kennel alone
	require.NoError(t, repo.ReleaseKennel(ctx, f.Salon.ID, "K2", uuid.New()))

	var stored models.Kennel
	require.NoError(t, db.First(&stored, "id = ?", k.ID).Error)
	assert.True(t, stored.IsOccupied)
	require.NotNil(t, stored.CurrentAppointmentID)
	assert.Equal(t, holder.ID, *stored.CurrentAppointmentID)

	require.NoError(t, repo.ReleaseKennel(ctx, f.Salon.ID, "K2", holder.ID))

	var after models.Kennel
	require.NoError(t, db.First(&after, "id = ?", k.ID).Error)
	assert.False(t, after.IsOccupied)
	assert.Nil(t, after.CurrentAppointmentID)
}

func TestAppointmentRepo_KennelNumberIgnoresCase(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	holder := f.Appointment(t, db, "checked_in")

	k, err := repo.LockKennelByNumber(ctx, f.Salon.ID, "k2")
	require.NoError(t, err)
	assert.Equal(t, "K2", k.KennelNumber)
	require.NoError(t, repo.OccupyKennel(ctx, k, holder.ID))

	require.NoError(t, repo.ReleaseKennel(ctx, f.Salon.ID, "k2", holder.ID))

	var after models.Kennel
	require.NoError(t, db.First(&after, "id = ?", k.ID).Error)
	assert.False(t, after.IsOccupied)
}

func TestAppointmentRepo_WithinTxRollsBack(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	ap := f.Appointment(t, db, "scheduled")

	err := repo.WithinTx(ctx, func(tx domain.Repository) error {
		locked, err := tx.LockAppointment(ctx, f.Salon.ID, ap.ID)
		if err != nil {
			return err
		}
		locked.Status = string(domain.StatusCheckedIn)
		if err := tx.UpdateAppointment(ctx, locked); err != nil {
			return err
		}
		return domain.ErrInvalidState
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err := repo.GetAppointment(ctx, f.Salon.ID, ap.ID)
	require.NoError(t, err)
	assert.Equal(t, "scheduled", got.Status)
}

func TestAppointmentRepo_CreateRollsBackWithoutLineItems(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	// two line items sharing an id make the second insert fail
	dup := uuid.New()
	ap := &models.Appointment{
		SalonID:         f.Salon.ID,
		ClientID:        f.Client.ID,
		PetID:           f.Pet.ID,
		ScheduledAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		TotalPrice:      decimal.NewFromInt(80),
		Status:          string(domain.StatusScheduled),
		Services: []models.AppointmentService{
			{ID: dup, ServiceID: f.Service.ID, Price: f.Service.Price},
			{ID: dup, ServiceID: f.Service.ID, Price: f.Service.Price},
		},
	}

	err := repo.WithinTx(ctx, func(tx domain.Repository) error {
		return tx.CreateAppointment(ctx, ap)
	})
	require.Error(t, err)
	assert.True(t, httperr.IsStorage(err))

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Where("salon_id = ?", f.Salon.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.AppointmentService{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAppointmentRepo_WithinTxWrapsUnknownErrors(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewAppointmentGormRepository(db)

	boom := errors.New("boom")
	err := repo.WithinTx(context.Background(), func(tx domain.Repository) error {
		return boom
	})
	assert.True(t, httperr.IsStorage(err))
	assert.ErrorIs(t, err, boom)
}

func TestAppointmentRepo_ReplaceAndDelete(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	ap := f.Appointment(t, db, "scheduled")

	items := []models.AppointmentService{
		{ServiceID: f.Service.ID, Price: decimal.NewFromInt(40)},
		{ServiceID: f.Service.ID, Price: decimal.NewFromInt(15)},
	}
	require.NoError(t, repo.ReplaceServices(ctx, ap.ID, items))
	require.NoError(t, repo.ReplaceServices(ctx, ap.ID, items[:1]))

	var count int64
	db.Model(&models.AppointmentService{}).Where("appointment_id = ?", ap.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	require.NoError(t, repo.DeleteAppointment(ctx, f.Salon.ID, ap.ID))
	db.Model(&models.AppointmentService{}).Where("appointment_id = ?", ap.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	assert.ErrorIs(t, repo.DeleteAppointment(ctx, f.Salon.ID, ap.ID), domain.ErrNotFound)
}

func TestAppointmentRepo_ListCheckedInBefore(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	repo := NewAppointmentGormRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	old := now.Add(-10 * time.Hour)
	recent := now.Add(-1 * time.Hour)

	stale := f.Appointment(t, db, "in_progress")
	require.NoError(t, db.Model(&stale).Update("check_in_time", old).Error)

	fresh := f.Appointment(t, db, "checked_in")
	require.NoError(t, db.Model(&fresh).Update("check_in_time", recent).Error)

	done := f.Appointment(t, db, "completed")
	require.NoError(t, db.Model(&done).Update("check_in_time", old).Error)

	apps, err := repo.ListCheckedInBefore(ctx, f.Salon.ID, now.Add(-8*time.Hour))
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, stale.ID, apps[0].ID)
}
