package appointment

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

func newAppointment(status Status) *models.Appointment {
	return &models.Appointment{Status: string(status)}
}

func TestApply_HappyPath(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	kennel := "K2"
	ap := newAppointment(StatusScheduled)

	_, err := Apply(ap, CheckIn{KennelNumber: &kennel, Actor: "Ana", At: now})
	require.NoError(t, err)
	assert.Equal(t, string(StatusCheckedIn), ap.Status)
	assert.Equal(t, "Ana", *ap.CheckedInBy)
	assert.Equal(t, now, *ap.CheckInTime)
	assert.Equal(t, "K2", *ap.KennelNumber)

	_, err = Apply(ap, StartService{})
	require.NoError(t, err)
	assert.Equal(t, string(StatusInProgress), ap.Status)

	_, err = Apply(ap, MarkReady{})
	require.NoError(t, err)
	assert.Equal(t, string(StatusReadyForPickup), ap.Status)

	from, err := Apply(ap, CheckOut{Actor: "Bruno", At: now.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, StatusReadyForPickup, from)
	assert.Equal(t, string(StatusCompleted), ap.Status)
	assert.Equal(t, "Bruno", *ap.CheckedOutBy)
}

func TestApply_CompletedRejectsEveryTransition(t *testing.T) {
	cmds := []Command{
		CheckIn{Actor: "Ana"},
		StartService{},
		MarkReady{},
		CheckOut{Actor: "Ana"},
		CheckOut{Actor: "Ana", Force: true},
		ChangeStatus{To: StatusCancelled},
		ChangeStatus{To: StatusConfirmed},
		ChangeStatus{To: StatusOnHold},
	}

	for _, cmd := range cmds {
		ap := newAppointment(StatusCompleted)
		_, err := Apply(ap, cmd)
		assert.ErrorIs(t, err, ErrInvalidState, "op=%s", cmd.Operation())
		assert.Equal(t, string(StatusCompleted), ap.Status)
		assert.Nil(t, ap.CheckInTime)
	}
}

func TestApply_PaymentBypassesGuard(t *testing.T) {
	for _, st := range []Status{StatusScheduled, StatusOnHold, StatusCompleted} {
		ap := newAppointment(st)
		_, err := Apply(ap, PaymentReceived{Amount: decimal.NewFromInt(40)})
		require.NoError(t, err)
		assert.Equal(t, string(StatusCompleted), ap.Status)
		assert.True(t, ap.TotalPrice.Equal(decimal.NewFromInt(40)))
	}
}

func TestApply_WrongSourceState(t *testing.T) {
	ap := newAppointment(StatusScheduled)
	_, err := Apply(ap, StartService{})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ap = newAppointment(StatusInProgress)
	_, err = Apply(ap, CheckOut{Actor: "Ana"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = Apply(ap, CheckOut{Actor: "Ana", Force: true})
	assert.NoError(t, err)
}

func TestApply_ChangeStatusValidatesTarget(t *testing.T) {
	ap := newAppointment(StatusScheduled)
	_, err := Apply(ap, ChangeStatus{To: StatusInProgress})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, string(StatusScheduled), ap.Status)
}

func TestAppendNote_KeepsPreviousEntries(t *testing.T) {
	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	notes, err := AppendNote("", "nervous with dryers", t1)
	require.NoError(t, err)
	notes, err = AppendNote(notes, " owner late ", t2)
	require.NoError(t, err)

	assert.Equal(t, "[2026-03-01 09:00] nervous with dryers\n\n[2026-03-01 10:00] owner late", notes)

	_, err = AppendNote(notes, "   ", t2)
	assert.ErrorIs(t, err, ErrInvalidNote)
}

func TestReleasesKennel(t *testing.T) {
	assert.True(t, ReleasesKennel(StatusInProgress, StatusCancelled))
	assert.False(t, ReleasesKennel(StatusCheckedIn, StatusInProgress))
	assert.False(t, ReleasesKennel(StatusScheduled, StatusCancelled))
}

func TestCheckIn_WithoutKennelClearsStaleNumber(t *testing.T) {
	stale := "K7"
	ap := &models.Appointment{Status: string(StatusConfirmed), KennelNumber: &stale}

	_, err := Apply(ap, CheckIn{Actor: "Ana", At: time.Now()})
	require.NoError(t, err)
	assert.Nil(t, ap.KennelNumber)

	blank := "  "
	_, ok := CheckIn{KennelNumber: &blank}.Kennel()
	assert.False(t, ok)
}
