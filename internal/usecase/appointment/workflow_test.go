package appointment

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/db/dbtest"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/payment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	kenneluc "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/kennel"
)

const actor = "Maria Groomer"

type env struct {
	db    *gorm.DB
	f     dbtest.Fixture
	repo  *repository.AppointmentGormRepository
	bus   *realtime.Bus
	audit *audit.Dispatcher
	ctx   context.Context
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger.Set(zap.NewNop())

	db := dbtest.Open(t)
	d := audit.NewDispatcher(audit.New(db))
	t.Cleanup(d.Close)

	return &env{
		db:    db,
		f:     dbtest.Seed(t, db),
		repo:  repository.NewAppointmentGormRepository(db),
		bus:   realtime.NewBus(),
		audit: d,
		ctx:   context.Background(),
	}
}

func (e *env) reload(t *testing.T, id uuid.UUID) models.Appointment {
	t.Helper()
	var ap models.Appointment
	require.NoError(t, e.db.First(&ap, "id = ?", id).Error)
	return ap
}

func (e *env) kennel(t *testing.T, number string) models.Kennel {
	t.Helper()
	var k models.Kennel
	require.NoError(t, e.db.First(&k, "salon_id = ? AND kennel_number = ?", e.f.Salon.ID, number).Error)
	return k
}

func (e *env) checkIn(t *testing.T, id uuid.UUID, number string) (*models.Appointment, error) {
	t.Helper()
	in := CheckInInput{SalonID: e.f.Salon.ID, AppointmentID: id, Actor: actor}
	if number != "" {
		in.KennelNumber = &number
	}
	return NewCheckIn(e.repo, e.audit, e.bus).Execute(e.ctx, in)
}

func (e *env) checkOut(t *testing.T, id uuid.UUID, force bool) (*models.Appointment, error) {
	t.Helper()
	return NewCheckOut(e.repo, e.audit, e.bus).Execute(e.ctx, CheckOutInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: id,
		Actor:         actor,
		Force:         force,
	})
}

// ======================================================
// Full visit
// ======================================================

func TestWorkflow_FullVisit(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	sub := e.bus.Subscribe(e.f.Salon.ID)
	defer sub.Close()

	available, err := kenneluc.NewListAvailable(
		repository.NewKennelGormRepository(e.db),
		e.repo,
	).Execute(e.ctx, e.f.Salon.ID, ap.ID)
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, "K2", available[0].KennelNumber)
	assert.Equal(t, "K3", available[1].KennelNumber)

	got, err := e.checkIn(t, ap.ID, "K2")
	require.NoError(t, err)
	assert.Equal(t, "checked_in", got.Status)
	require.NotNil(t, got.CheckedInBy)
	assert.Equal(t, actor, *got.CheckedInBy)
	assert.NotNil(t, got.CheckInTime)

	k2 := e.kennel(t, "K2")
	assert.True(t, k2.IsOccupied)
	require.NotNil(t, k2.CurrentAppointmentID)
	assert.Equal(t, ap.ID, *k2.CurrentAppointmentID)

	// appointment + kennel changes, appointment first
	c := <-sub.C
	assert.Equal(t, realtime.TableAppointments, c.Table)
	assert.Equal(t, "scheduled", c.OldStatus)
	assert.Equal(t, "checked_in", c.Status)
	c = <-sub.C
	assert.Equal(t, realtime.TableKennels, c.Table)
	assert.Equal(t, k2.ID, c.RowID)

	got, err = NewStartService(e.repo, e.audit, e.bus).Execute(e.ctx, e.f.Salon.ID, ap.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", got.Status)

	got, err = NewMarkReady(e.repo, e.audit, e.bus).Execute(e.ctx, e.f.Salon.ID, ap.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, "ready_for_pickup", got.Status)

	got, err = e.checkOut(t, ap.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, got.CheckedOutBy)
	assert.Equal(t, actor, *got.CheckedOutBy)

	k2 = e.kennel(t, "K2")
	assert.False(t, k2.IsOccupied)
	assert.Nil(t, k2.CurrentAppointmentID)

	// the appointment keeps its kennel number as history
	stored := e.reload(t, ap.ID)
	require.NotNil(t, stored.KennelNumber)
	assert.Equal(t, "K2", *stored.KennelNumber)
}

func TestWorkflow_KennelReusedAfterCheckOut(t *testing.T) {
	e := newEnv(t)
	first := e.f.Appointment(t, e.db, "confirmed")
	second := e.f.Appointment(t, e.db, "scheduled")

	_, err := e.checkIn(t, first.ID, "K3")
	require.NoError(t, err)

	_, err = e.checkIn(t, second.ID, "K3")
	assert.ErrorIs(t, err, kennel.ErrOccupied)
	assert.Equal(t, "scheduled", e.reload(t, second.ID).Status)

	_, err = e.checkOut(t, first.ID, true)
	require.NoError(t, err)

	_, err = e.checkIn(t, second.ID, "K3")
	require.NoError(t, err)

	k3 := e.kennel(t, "K3")
	require.NotNil(t, k3.CurrentAppointmentID)
	assert.Equal(t, second.ID, *k3.CurrentAppointmentID)
}

func TestWorkflow_ConcurrentCheckInsIntoSameKennel(t *testing.T) {
	e := newEnv(t)
	a := e.f.Appointment(t, e.db, "scheduled")
	b := e.f.Appointment(t, e.db, "scheduled")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = e.checkIn(t, id, "K2")
		}(i, id)
	}
	wg.Wait()

	var ok, occupied int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, kennel.ErrOccupied):
			occupied++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, occupied)
}

func TestWorkflow_CheckInIncompatibleKennelStillAssigns(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	// medium dog into a small kennel: offered lists exclude it, but the
	// engine does not refuse
	_, err := e.checkIn(t, ap.ID, "K1")
	require.NoError(t, err)
	assert.True(t, e.kennel(t, "K1").IsOccupied)
}

func TestWorkflow_CheckInUnknownKennel(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	_, err := e.checkIn(t, ap.ID, "K99")
	assert.ErrorIs(t, err, kennel.ErrNotFound)
	assert.Equal(t, "scheduled", e.reload(t, ap.ID).Status)
}

func TestWorkflow_CheckInKennelNumberIgnoresCase(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	got, err := e.checkIn(t, ap.ID, " k2 ")
	require.NoError(t, err)
	require.NotNil(t, got.KennelNumber)
	assert.Equal(t, "K2", *got.KennelNumber)

	k := e.kennel(t, "K2")
	assert.True(t, k.IsOccupied)
	require.NotNil(t, k.CurrentAppointmentID)
	assert.Equal(t, ap.ID, *k.CurrentAppointmentID)

	// the admin side sees the same kennel as taken
	_, err = kenneluc.NewManage(repository.NewKennelGormRepository(e.db), e.audit, e.bus).
		Create(e.ctx, e.f.Salon.ID, kenneluc.KennelInput{KennelNumber: "k2"}, actor)
	assert.ErrorIs(t, err, kennel.ErrNumberTaken)
}

func TestWorkflow_CheckInWithoutKennel(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	got, err := e.checkIn(t, ap.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "checked_in", got.Status)
	assert.Nil(t, got.KennelNumber)
}

// ======================================================
// Completed guard
// ======================================================

func TestWorkflow_CompletedRejectsEveryTransition(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "completed")
	salonID := e.f.Salon.ID

	calls := map[string]func() error{
		"check_in": func() error {
			_, err := e.checkIn(t, ap.ID, "K2")
			return err
		},
		"start_service": func() error {
			_, err := NewStartService(e.repo, e.audit, e.bus).Execute(e.ctx, salonID, ap.ID, actor)
			return err
		},
		"mark_ready": func() error {
			_, err := NewMarkReady(e.repo, e.audit, e.bus).Execute(e.ctx, salonID, ap.ID, actor)
			return err
		},
		"check_out": func() error {
			_, err := e.checkOut(t, ap.ID, false)
			return err
		},
		"force_check_out": func() error {
			_, err := e.checkOut(t, ap.ID, true)
			return err
		},
		"set_status": func() error {
			_, err := NewSetStatus(e.repo, e.audit, e.bus).Execute(e.ctx, salonID, ap.ID, "cancelled", actor)
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), domain.ErrInvalidState)
			assert.Equal(t, "completed", e.reload(t, ap.ID).Status)
		})
	}

	assert.False(t, e.kennel(t, "K2").IsOccupied)
}

func TestWorkflow_WrongSourceState(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	_, err := NewMarkReady(e.repo, e.audit, e.bus).Execute(e.ctx, e.f.Salon.ID, ap.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = e.checkOut(t, ap.ID, false)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// force only applies to pets in the salon
	_, err = e.checkOut(t, ap.ID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Equal(t, "scheduled", e.reload(t, ap.ID).Status)
}

func TestWorkflow_OtherSalonCannotTouchAppointment(t *testing.T) {
	e := newEnv(t)
	other := dbtest.Seed(t, e.db)
	ap := e.f.Appointment(t, e.db, "scheduled")

	_, err := NewCheckIn(e.repo, e.audit, e.bus).Execute(e.ctx, CheckInInput{
		SalonID:       other.Salon.ID,
		AppointmentID: ap.ID,
		Actor:         actor,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// the other salon's kennel number is not visible either
	number := "K1"
	require.NoError(t, e.db.Where("salon_id = ? AND kennel_number = ?", e.f.Salon.ID, "K1").Delete(&models.Kennel{}).Error)
	_, err = NewCheckIn(e.repo, e.audit, e.bus).Execute(e.ctx, CheckInInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: ap.ID,
		KennelNumber:  &number,
		Actor:         actor,
	})
	assert.ErrorIs(t, err, kennel.ErrNotFound)
}

func TestWorkflow_MissingActor(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	_, err := NewCheckIn(e.repo, e.audit, e.bus).Execute(e.ctx, CheckInInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: ap.ID,
	})
	assert.ErrorIs(t, err, domain.ErrMissingActor)
}

// ======================================================
// Set status
// ======================================================

func TestSetStatus_CancelReleasesKennel(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	_, err := e.checkIn(t, ap.ID, "K2")
	require.NoError(t, err)

	got, err := NewSetStatus(e.repo, e.audit, e.bus).Execute(e.ctx, e.f.Salon.ID, ap.ID, "cancelled", actor)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)

	assert.False(t, e.kennel(t, "K2").IsOccupied)
}

func TestSetStatus_RejectsWorkflowStatuses(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	for _, status := range []string{"checked_in", "completed", "bogus"} {
		_, err := NewSetStatus(e.repo, e.audit, e.bus).Execute(e.ctx, e.f.Salon.ID, ap.ID, status, actor)
		assert.ErrorIs(t, err, domain.ErrInvalidStatus, status)
	}

	got, err := NewSetStatus(e.repo, e.audit, e.bus).Execute(e.ctx, e.f.Salon.ID, ap.ID, "confirmed", actor)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)
}

// ======================================================
// Notes
// ======================================================

func TestAddNote_AppendsInOrder(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "completed")
	uc := NewAddNote(e.repo, e.audit, e.bus)

	_, err := uc.Execute(e.ctx, e.f.Salon.ID, ap.ID, "nervous with dryers", actor)
	require.NoError(t, err)
	got, err := uc.Execute(e.ctx, e.f.Salon.ID, ap.ID, "owner picked up late", actor)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}\] nervous with dryers\n\n\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}\] owner picked up late$`)
	assert.Regexp(t, pattern, got.Notes)
	assert.Equal(t, got.Notes, e.reload(t, ap.ID).Notes)
	assert.Equal(t, "completed", got.Status)

	_, err = uc.Execute(e.ctx, e.f.Salon.ID, ap.ID, "   ", actor)
	assert.ErrorIs(t, err, domain.ErrInvalidNote)
}

// ======================================================
// Payment
// ======================================================

func TestRecordPayment_CompletesFromAnyState(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")
	amount := decimal.RequireFromString("55.90")

	p, err := NewRecordPayment(e.repo, e.audit, e.bus).Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: &ap.ID,
		Amount:        amount,
		Method:        "cash",
		Actor:         actor,
	})
	require.NoError(t, err)
	assert.Equal(t, "completed", p.PaymentStatus)

	stored := e.reload(t, ap.ID)
	assert.Equal(t, "completed", stored.Status)
	assert.True(t, stored.TotalPrice.Equal(amount))
}

func TestRecordPayment_OnCompletedAppointmentUpdatesTotal(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "completed")

	_, err := NewRecordPayment(e.repo, e.audit, e.bus).Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: &ap.ID,
		Amount:        decimal.NewFromInt(70),
		Method:        "card",
		Actor:         actor,
	})
	require.NoError(t, err)
	assert.True(t, e.reload(t, ap.ID).TotalPrice.Equal(decimal.NewFromInt(70)))
}

func TestRecordPayment_ReleasesKennel(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")

	_, err := e.checkIn(t, ap.ID, "K3")
	require.NoError(t, err)

	_, err = NewRecordPayment(e.repo, e.audit, e.bus).Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: &ap.ID,
		Amount:        decimal.NewFromInt(40),
		Method:        "stripe",
		Actor:         actor,
	})
	require.NoError(t, err)

	assert.Equal(t, "completed", e.reload(t, ap.ID).Status)
	assert.False(t, e.kennel(t, "K3").IsOccupied)
}

func TestRecordPayment_Validation(t *testing.T) {
	e := newEnv(t)
	ap := e.f.Appointment(t, e.db, "scheduled")
	uc := NewRecordPayment(e.repo, e.audit, e.bus)

	_, err := uc.Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: &ap.ID,
		Amount:        decimal.Zero,
		Method:        "cash",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidPayment)

	_, err = uc.Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: &ap.ID,
		Amount:        decimal.NewFromInt(10),
		Method:        "barter",
	})
	assert.ErrorIs(t, err, payment.ErrInvalidPayment)

	missing := uuid.New()
	_, err = uc.Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		AppointmentID: &missing,
		Amount:        decimal.NewFromInt(10),
		Method:        "cash",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	var count int64
	e.db.Model(&models.Payment{}).Count(&count)
	assert.Zero(t, count)
	assert.Equal(t, "scheduled", e.reload(t, ap.ID).Status)
}

func TestRecordPayment_WalkInAndDuplicateTransaction(t *testing.T) {
	e := newEnv(t)
	uc := NewRecordPayment(e.repo, e.audit, e.bus)
	txID := "pi_123"

	first, err := uc.Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		Amount:        decimal.NewFromInt(25),
		Method:        "stripe",
		TransactionID: &txID,
	})
	require.NoError(t, err)
	assert.Nil(t, first.AppointmentID)

	again, err := uc.Execute(e.ctx, RecordPaymentInput{
		SalonID:       e.f.Salon.ID,
		Amount:        decimal.NewFromInt(25),
		Method:        "stripe",
		TransactionID: &txID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var count int64
	e.db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
