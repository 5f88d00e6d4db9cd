package usage

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/groomer-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

func addClients(t *testing.T, f dbtest.Fixture, n int, create func(any) error) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, create(&models.Client{SalonID: f.Salon.ID, Name: fmt.Sprintf("client %d", i)}))
	}
}

func TestPlanLimits(t *testing.T) {
	name, l := PlanLimits("Basic")
	assert.Equal(t, "basic", name)
	assert.Equal(t, 500, l.Clients)

	name, l = PlanLimits("enterprise")
	assert.Equal(t, "free", name)
	assert.Equal(t, 100, l.Appointments)

	_, l = PlanLimits("pro")
	assert.Equal(t, Unlimited, l.Pets)
	assert.False(t, reached(10_000, l.Pets))
}

func TestCheckUsage_WarnsAtEightyPercent(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	addClients(t, f, 39, func(v any) error { return db.Create(v).Error })

	bus := realtime.NewBus()
	sub := bus.Subscribe(f.Salon.ID, realtime.TableNotifications)
	defer sub.Close()

	uc := NewCheckUsage(db, bus)
	report, err := uc.Execute(context.Background(), f.Salon.ID)
	require.NoError(t, err)

	assert.Equal(t, 40, report.Usage.Clients)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, ResourceClients, report.Warnings[0].Resource)
	assert.Equal(t, 80, report.Warnings[0].Percentage)
	assert.Empty(t, report.LimitsReached)
	assert.True(t, report.CanAdd[ResourceClients])

	var notes []models.Notification
	require.NoError(t, db.Where("salon_id = ?", f.Salon.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, "usage_warning", notes[0].Type)
	assert.Equal(t, "Clients Usage Warning", notes[0].Title)

	change := <-sub.C
	assert.Equal(t, realtime.TableNotifications, change.Table)
}

func TestCheckUsage_LimitReachedBlocksCreation(t *testing.T) {
	db := dbtest.Open(t)
	f := dbtest.Seed(t, db)
	addClients(t, f, 49, func(v any) error { return db.Create(v).Error })

	uc := NewCheckUsage(db, nil)
	ctx := context.Background()

	report, err := uc.Report(ctx, f.Salon.ID)
	require.NoError(t, err)
	assert.Equal(t, []Resource{ResourceClients}, report.LimitsReached)
	assert.False(t, report.CanAdd[ResourceClients])
	assert.True(t, report.CanAdd[ResourcePets])

	assert.ErrorIs(t, uc.EnsureCanAdd(ctx, f.Salon.ID, ResourceClients), ErrLimitReached)
	assert.NoError(t, uc.EnsureCanAdd(ctx, f.Salon.ID, ResourceAppointments))

	require.NoError(t, db.Model(&f.Salon).Update("plan", "pro").Error)
	assert.NoError(t, uc.EnsureCanAdd(ctx, f.Salon.ID, ResourceClients))
}
