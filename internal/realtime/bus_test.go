package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, s *Subscription) (Change, bool) {
	t.Helper()
	select {
	case c, ok := <-s.C:
		return c, ok
	case <-time.After(200 * time.Millisecond):
		return Change{}, false
	}
}

func TestBus_DeliversOnlyToSameSalonAndTable(t *testing.T) {
	bus := NewBus()
	salonA := uuid.New()
	salonB := uuid.New()

	kennels := bus.Subscribe(salonA, TableKennels)
	defer kennels.Close()
	all := bus.Subscribe(salonA)
	defer all.Close()
	other := bus.Subscribe(salonB)
	defer other.Close()

	row := uuid.New()
	bus.Publish(context.Background(),
		Change{SalonID: salonA, Table: TableAppointments, Op: OpUpdate, RowID: row, Status: "checked_in"},
		Change{SalonID: salonA, Table: TableKennels, Op: OpUpdate, RowID: row},
	)

	c, ok := receive(t, kennels)
	require.True(t, ok)
	assert.Equal(t, TableKennels, c.Table)
	_, ok = receive(t, kennels)
	assert.False(t, ok)

	c, ok = receive(t, all)
	require.True(t, ok)
	assert.Equal(t, TableAppointments, c.Table)
	c, ok = receive(t, all)
	require.True(t, ok)
	assert.Equal(t, TableKennels, c.Table)

	_, ok = receive(t, other)
	assert.False(t, ok)
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	bus := NewBus()
	s := bus.Subscribe(uuid.New())
	s.Close()
	s.Close()

	_, ok := <-s.C
	assert.False(t, ok)
	assert.Empty(t, bus.subs)
}

func TestInvalidates(t *testing.T) {
	assert.Contains(t, Invalidates(TableKennels), ViewKennels)
	assert.Contains(t, Invalidates(TableAppointments), ViewDashboard)
	// appointment rows embed client and pet names
	assert.Contains(t, Invalidates(TablePets), ViewAppointments)
	assert.Nil(t, Invalidates(Table("unknown")))
}

func TestParseTable(t *testing.T) {
	tbl, ok := ParseTable(" Kennels ")
	assert.True(t, ok)
	assert.Equal(t, TableKennels, tbl)

	_, ok = ParseTable("users")
	assert.False(t, ok)
}
