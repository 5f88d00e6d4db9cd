package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

// Repository is the tenant store seen by the workflow engine. Every lookup is
// scoped by salon; a row of another salon is reported as not found.
type Repository interface {
	// -------- Transaction --------
	WithinTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Salon --------
	GetSalonByID(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Salon, error)

	// -------- Client / Pet / Service --------
	GetClient(
		ctx context.Context,
		salonID uuid.UUID,
		clientID uuid.UUID,
	) (*models.Client, error)

	GetPet(
		ctx context.Context,
		salonID uuid.UUID,
		petID uuid.UUID,
	) (*models.Pet, error)

	GetServices(
		ctx context.Context,
		salonID uuid.UUID,
		serviceIDs []uuid.UUID,
	) ([]models.Service, error)

	// -------- Appointment --------
	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	GetAppointment(
		ctx context.Context,
		salonID uuid.UUID,
		appointmentID uuid.UUID,
	) (*models.Appointment, error)

	// LockAppointment reads the row FOR UPDATE. Only meaningful inside WithinTx.
	LockAppointment(
		ctx context.Context,
		salonID uuid.UUID,
		appointmentID uuid.UUID,
	) (*models.Appointment, error)

	UpdateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	ReplaceServices(
		ctx context.Context,
		appointmentID uuid.UUID,
		items []models.AppointmentService,
	) error

	DeleteAppointment(
		ctx context.Context,
		salonID uuid.UUID,
		appointmentID uuid.UUID,
	) error

	ListAppointmentsForPeriod(
		ctx context.Context,
		salonID uuid.UUID,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	ListCheckedInBefore(
		ctx context.Context,
		salonID uuid.UUID,
		cutoff time.Time,
	) ([]models.Appointment, error)

	// -------- Kennel occupancy --------
	LockKennelByNumber(
		ctx context.Context,
		salonID uuid.UUID,
		kennelNumber string,
	) (*models.Kennel, error)

	OccupyKennel(
		ctx context.Context,
		kennel *models.Kennel,
		appointmentID uuid.UUID,
	) error

	ReleaseKennel(
		ctx context.Context,
		salonID uuid.UUID,
		kennelNumber string,
		appointmentID uuid.UUID,
	) error

	// -------- Payment --------
	CreatePayment(
		ctx context.Context,
		p *models.Payment,
	) error

	// FindPaymentByTransaction returns nil, nil when no payment carries the id.
	FindPaymentByTransaction(
		ctx context.Context,
		salonID uuid.UUID,
		transactionID string,
	) (*models.Payment, error)
}
