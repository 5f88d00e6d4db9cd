package appointment

import "github.com/BruksfildServices01/groomer-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled      Status = "scheduled"
	StatusConfirmed      Status = "confirmed"
	StatusOnHold         Status = "on_hold"
	StatusCheckedIn      Status = "checked_in"
	StatusInProgress     Status = "in_progress"
	StatusReadyForPickup Status = "ready_for_pickup"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

var allStatuses = []Status{
	StatusScheduled,
	StatusConfirmed,
	StatusOnHold,
	StatusCheckedIn,
	StatusInProgress,
	StatusReadyForPickup,
	StatusCompleted,
	StatusCancelled,
}

func (s Status) Valid() bool {
	for _, st := range allStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// Occupying reports whether an appointment in this status may hold a kennel.
func (s Status) Occupying() bool {
	switch s {
	case StatusCheckedIn, StatusInProgress, StatusReadyForPickup:
		return true
	}
	return false
}

func OccupyingStatuses() []string {
	return []string{
		string(StatusCheckedIn),
		string(StatusInProgress),
		string(StatusReadyForPickup),
	}
}

func InitialStatus() Status {
	return StatusScheduled
}

// ===============================
// Errors
// ===============================

var (
	ErrInvalidState      = httperr.ErrBusiness("invalid_state")
	ErrInvalidTransition = httperr.ErrBusiness("invalid_transition")
	ErrInvalidStatus     = httperr.ErrBusiness("invalid_status")
	ErrInvalidNote       = httperr.ErrBusiness("invalid_note")
	ErrMissingActor      = httperr.ErrBusiness("missing_actor")
	ErrInvalidAmount     = httperr.ErrBusiness("invalid_amount")
	ErrNotFound          = httperr.ErrNotFound("appointment_not_found")
)

// ===============================
// Transitions
// ===============================

type Operation string

const (
	OpCheckIn         Operation = "check_in"
	OpStartService    Operation = "start_service"
	OpMarkReady       Operation = "mark_ready"
	OpCheckOut        Operation = "check_out"
	OpForceCheckOut   Operation = "force_check_out"
	OpSetStatus       Operation = "set_status"
	OpEdit            Operation = "edit"
	OpPaymentReceived Operation = "payment_received"
)

// allowedFrom lists the source states of each operation. A nil entry means
// any state that passes the completed guard.
var allowedFrom = map[Operation][]Status{
	OpCheckIn:       {StatusScheduled, StatusConfirmed},
	OpStartService:  {StatusCheckedIn},
	OpMarkReady:     {StatusInProgress},
	OpCheckOut:      {StatusReadyForPickup},
	OpForceCheckOut: {StatusCheckedIn, StatusInProgress, StatusReadyForPickup},
	OpSetStatus:     nil,
	OpEdit:          nil,
}

// Guard is the single gate every transition passes through. Completed
// appointments reject everything except a payment.
func Guard(current Status, op Operation) error {
	if op == OpPaymentReceived {
		return nil
	}
	if current == StatusCompleted {
		return ErrInvalidState
	}

	from, ok := allowedFrom[op]
	if !ok {
		return ErrInvalidTransition
	}
	if from == nil {
		return nil
	}
	for _, st := range from {
		if st == current {
			return nil
		}
	}
	return ErrInvalidTransition
}
