package appointment

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Command is one workflow step. Apply runs the guard before any mutation.
type Command interface {
	Operation() Operation
	validate() error
	apply(ap *models.Appointment)
}

// Apply guards and applies cmd to ap, returning the status ap had before.
func Apply(ap *models.Appointment, cmd Command) (Status, error) {
	from := Status(ap.Status)

	if err := Guard(from, cmd.Operation()); err != nil {
		return from, err
	}
	if err := cmd.validate(); err != nil {
		return from, err
	}

	cmd.apply(ap)
	return from, nil
}

// CheckIn moves a scheduled or confirmed appointment to checked_in.
type CheckIn struct {
	KennelNumber *string
	KennelNotes  *string
	Actor        string
	At           time.Time
}

func (CheckIn) Operation() Operation { return OpCheckIn }

func (c CheckIn) validate() error {
	if strings.TrimSpace(c.Actor) == "" {
		return ErrMissingActor
	}
	return nil
}

func (c CheckIn) apply(ap *models.Appointment) {
	at := c.At
	actor := c.Actor

	ap.Status = string(StatusCheckedIn)
	ap.CheckInTime = &at
	ap.CheckedInBy = &actor

	// a number left over from an earlier stay is not held anymore
	ap.KennelNumber = nil
	ap.KennelNotes = nil

	if number, ok := c.Kennel(); ok {
		ap.KennelNumber = &number
		ap.KennelNotes = c.KennelNotes
	}
}

// Kennel returns the requested kennel number, if any.
func (c CheckIn) Kennel() (string, bool) {
	if c.KennelNumber == nil {
		return "", false
	}
	number := strings.TrimSpace(*c.KennelNumber)
	return number, number != ""
}

type StartService struct{}

func (StartService) Operation() Operation { return OpStartService }
func (StartService) validate() error      { return nil }

func (StartService) apply(ap *models.Appointment) {
	ap.Status = string(StatusInProgress)
}

type MarkReady struct{}

func (MarkReady) Operation() Operation { return OpMarkReady }
func (MarkReady) validate() error      { return nil }

func (MarkReady) apply(ap *models.Appointment) {
	ap.Status = string(StatusReadyForPickup)
}

// CheckOut completes the appointment at pickup. Force allows pickup from any
// occupying status, not only ready_for_pickup.
type CheckOut struct {
	Actor string
	At    time.Time
	Force bool
}

func (c CheckOut) Operation() Operation {
	if c.Force {
		return OpForceCheckOut
	}
	return OpCheckOut
}

func (c CheckOut) validate() error {
	if strings.TrimSpace(c.Actor) == "" {
		return ErrMissingActor
	}
	return nil
}

func (c CheckOut) apply(ap *models.Appointment) {
	at := c.At
	actor := c.Actor

	ap.Status = string(StatusCompleted)
	ap.CheckOutTime = &at
	ap.CheckedOutBy = &actor
}

// PaymentReceived closes the appointment from any state and records the paid
// amount as its total.
type PaymentReceived struct {
	Amount decimal.Decimal
}

func (PaymentReceived) Operation() Operation { return OpPaymentReceived }

func (p PaymentReceived) validate() error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (p PaymentReceived) apply(ap *models.Appointment) {
	ap.Status = string(StatusCompleted)
	ap.TotalPrice = p.Amount
}

// ChangeStatus is the administrative confirm / hold / cancel.
type ChangeStatus struct {
	To Status
}

func (ChangeStatus) Operation() Operation { return OpSetStatus }

func (c ChangeStatus) validate() error {
	switch c.To {
	case StatusConfirmed, StatusOnHold, StatusCancelled:
		return nil
	}
	return ErrInvalidStatus
}

func (c ChangeStatus) apply(ap *models.Appointment) {
	ap.Status = string(c.To)
}

// ReleasesKennel reports whether moving from one status to another leaves the
// kennel without a legitimate occupant.
func ReleasesKennel(from, to Status) bool {
	return from.Occupying() && !to.Occupying()
}
