package appointment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/payment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/metrics"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
)

type RecordPaymentInput struct {
	SalonID uuid.UUID

	// Nil records a walk-in payment with no appointment.
	AppointmentID *uuid.UUID

	Amount        decimal.Decimal
	Method        string
	TransactionID *string
	Notes         string

	Actor string
}

type RecordPayment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	bus   realtime.Publisher
}

func NewRecordPayment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	bus realtime.Publisher,
) *RecordPayment {
	return &RecordPayment{
		repo:  repo,
		audit: audit,
		bus:   bus,
	}
}

// Execute stores a completed payment. A linked appointment is closed from
// whatever state it is in, its total set to the amount paid and its kennel
// released, all in the payment's transaction.
func (uc *RecordPayment) Execute(
	ctx context.Context,
	in RecordPaymentInput,
) (*models.Payment, error) {

	method, err := payment.Validate(in.Amount, in.Method)
	if err != nil {
		return nil, rejected(domain.OpPaymentReceived, err)
	}

	p := &models.Payment{
		SalonID:       in.SalonID,
		AppointmentID: in.AppointmentID,
		Amount:        in.Amount,
		PaymentMethod: string(method),
		PaymentStatus: string(payment.StatusCompleted),
		TransactionID: in.TransactionID,
		Notes:         strings.TrimSpace(in.Notes),
		PaymentDate:   time.Now(),
	}

	var (
		result    *transition
		duplicate *models.Payment
	)

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		// a redelivered gateway event must not record twice
		if in.TransactionID != nil && *in.TransactionID != "" {
			existing, err := tx.FindPaymentByTransaction(ctx, in.SalonID, *in.TransactionID)
			if err != nil {
				return err
			}
			if existing != nil {
				duplicate = existing
				return nil
			}
		}

		if in.AppointmentID != nil {
			ap, err := tx.LockAppointment(ctx, in.SalonID, *in.AppointmentID)
			if err != nil {
				return err
			}

			result, err = complete(ctx, tx, ap, domain.PaymentReceived{Amount: in.Amount})
			if err != nil {
				return err
			}
		}

		return tx.CreatePayment(ctx, p)
	})
	if err != nil {
		return nil, rejected(domain.OpPaymentReceived, err)
	}
	if duplicate != nil {
		return duplicate, nil
	}

	metrics.RecordPayment(string(method))

	publish(ctx, uc.bus, realtime.Change{
		SalonID: in.SalonID,
		Table:   realtime.TablePayments,
		Op:      realtime.OpInsert,
		RowID:   p.ID,
		Status:  p.PaymentStatus,
		At:      p.PaymentDate,
	})

	if result != nil {
		committed(ctx, uc.bus, domain.OpPaymentReceived, result)
		dispatch(uc.audit, in.SalonID, in.Actor, "appointment_paid", result.ap.ID, map[string]any{
			"payment_id": p.ID,
			"amount":     p.Amount.StringFixed(2),
			"method":     p.PaymentMethod,
		})
	}

	return p, nil
}
