package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/groomer-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/metrics"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// notFoundOr maps gorm.ErrRecordNotFound to the given not-found error and
// wraps anything else as a storage failure.
func notFoundOr(op string, err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return httperr.ErrStorage(op, err)
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *AppointmentGormRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	defer metrics.TrackDBOperation("transaction")(time.Now())

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
	if err == nil {
		return nil
	}

	var (
		be httperr.BusinessError
		nf httperr.NotFoundError
	)
	if errors.As(err, &be) || errors.As(err, &nf) {
		return err
	}
	return httperr.ErrStorage("transaction", err)
}

// --------------------------------------------------
// Salon
// --------------------------------------------------

func (r *AppointmentGormRepository) GetSalonByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, "id = ?", id).Error; err != nil {
		return nil, notFoundOr("get_salon", err, httperr.ErrNotFound("salon_not_found"))
	}
	return &salon, nil
}

// --------------------------------------------------
// Client / Pet / Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetClient(
	ctx context.Context,
	salonID uuid.UUID,
	clientID uuid.UUID,
) (*models.Client, error) {

	var client models.Client
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", clientID, salonID).
		First(&client).Error; err != nil {
		return nil, notFoundOr("get_client", err, httperr.ErrNotFound("client_not_found"))
	}
	return &client, nil
}

func (r *AppointmentGormRepository) GetPet(
	ctx context.Context,
	salonID uuid.UUID,
	petID uuid.UUID,
) (*models.Pet, error) {

	var pet models.Pet
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", petID, salonID).
		First(&pet).Error; err != nil {
		return nil, notFoundOr("get_pet", err, httperr.ErrNotFound("pet_not_found"))
	}
	return &pet, nil
}

func (r *AppointmentGormRepository) GetServices(
	ctx context.Context,
	salonID uuid.UUID,
	serviceIDs []uuid.UUID,
) ([]models.Service, error) {

	if len(serviceIDs) == 0 {
		return []models.Service{}, nil
	}

	var services []models.Service
	if err := r.db.WithContext(ctx).
		Where("salon_id = ? AND id IN ?", salonID, serviceIDs).
		Find(&services).Error; err != nil {
		return nil, httperr.ErrStorage("get_services", err)
	}

	if len(services) != len(uniqueIDs(serviceIDs)) {
		return nil, httperr.ErrNotFound("service_not_found")
	}
	return services, nil
}

func uniqueIDs(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Omit(clause.Associations).Create(ap).Error; err != nil {
			return httperr.ErrStorage("create_appointment", err)
		}

		if len(ap.Services) == 0 {
			return nil
		}
		for i := range ap.Services {
			ap.Services[i].AppointmentID = ap.ID
		}
		if err := db.Omit(clause.Associations).Create(&ap.Services).Error; err != nil {
			return httperr.ErrStorage("create_appointment_services", err)
		}
		return nil
	})
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Pet").
		Preload("Services.Service").
		Where("id = ? AND salon_id = ?", appointmentID, salonID).
		First(&ap).Error; err != nil {
		return nil, notFoundOr("get_appointment", err, domain.ErrNotFound)
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) LockAppointment(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND salon_id = ?", appointmentID, salonID).
		First(&ap).Error; err != nil {
		return nil, notFoundOr("lock_appointment", err, domain.ErrNotFound)
	}

	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", ap.PetID, salonID).
		First(&ap.Pet).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.ErrStorage("lock_appointment_pet", err)
	}

	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Save(ap).Error; err != nil {
		return httperr.ErrStorage("update_appointment", err)
	}
	return nil
}

func (r *AppointmentGormRepository) ReplaceServices(
	ctx context.Context,
	appointmentID uuid.UUID,
	items []models.AppointmentService,
) error {

	db := r.db.WithContext(ctx)

	if err := db.
		Where("appointment_id = ?", appointmentID).
		Delete(&models.AppointmentService{}).Error; err != nil {
		return httperr.ErrStorage("clear_appointment_services", err)
	}

	if len(items) == 0 {
		return nil
	}

	for i := range items {
		items[i].AppointmentID = appointmentID
	}
	if err := db.Omit(clause.Associations).Create(&items).Error; err != nil {
		return httperr.ErrStorage("insert_appointment_services", err)
	}
	return nil
}

func (r *AppointmentGormRepository) DeleteAppointment(
	ctx context.Context,
	salonID uuid.UUID,
	appointmentID uuid.UUID,
) error {

	db := r.db.WithContext(ctx)

	res := db.
		Where("id = ? AND salon_id = ?", appointmentID, salonID).
		Delete(&models.Appointment{})
	if res.Error != nil {
		return httperr.ErrStorage("delete_appointment", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	if err := db.
		Where("appointment_id = ?", appointmentID).
		Delete(&models.AppointmentService{}).Error; err != nil {
		return httperr.ErrStorage("delete_appointment_services", err)
	}
	return nil
}

func (r *AppointmentGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	salonID uuid.UUID,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Pet").
		Preload("Services.Service").
		Where(
			"salon_id = ? AND scheduled_at >= ? AND scheduled_at < ?",
			salonID,
			start,
			end,
		).
		Order("scheduled_at ASC").
		Find(&apps).Error

	if err != nil {
		return nil, httperr.ErrStorage("list_appointments", err)
	}

	return apps, nil
}

func (r *AppointmentGormRepository) ListCheckedInBefore(
	ctx context.Context,
	salonID uuid.UUID,
	cutoff time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment

	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Pet").
		Where(
			"salon_id = ? AND status IN ? AND check_in_time IS NOT NULL AND check_in_time < ?",
			salonID,
			domain.OccupyingStatuses(),
			cutoff,
		).
		Order("check_in_time ASC").
		Find(&apps).Error

	if err != nil {
		return nil, httperr.ErrStorage("list_overdue", err)
	}

	return apps, nil
}

// --------------------------------------------------
// Kennel occupancy
// --------------------------------------------------

func (r *AppointmentGormRepository) LockKennelByNumber(
	ctx context.Context,
	salonID uuid.UUID,
	kennelNumber string,
) (*models.Kennel, error) {

	var k models.Kennel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("salon_id = ? AND LOWER(kennel_number) = ?", salonID, strings.ToLower(kennelNumber)).
		First(&k).Error; err != nil {
		return nil, notFoundOr("lock_kennel", err, kennel.ErrNotFound)
	}
	return &k, nil
}

func (r *AppointmentGormRepository) OccupyKennel(
	ctx context.Context,
	k *models.Kennel,
	appointmentID uuid.UUID,
) error {

	if err := r.db.WithContext(ctx).
		Model(&models.Kennel{}).
		Where("id = ? AND salon_id = ?", k.ID, k.SalonID).
		Updates(map[string]any{
			"is_occupied":            true,
			"current_appointment_id": appointmentID,
		}).Error; err != nil {
		return httperr.ErrStorage("occupy_kennel", err)
	}

	k.IsOccupied = true
	k.CurrentAppointmentID = &appointmentID
	return nil
}

// ReleaseKennel frees the kennel only while appointmentID still holds it, so a
// stale release never evicts a newer occupant.
func (r *AppointmentGormRepository) ReleaseKennel(
	ctx context.Context,
	salonID uuid.UUID,
	kennelNumber string,
	appointmentID uuid.UUID,
) error {

	if err := r.db.WithContext(ctx).
		Model(&models.Kennel{}).
		Where(
			"salon_id = ? AND LOWER(kennel_number) = ? AND current_appointment_id = ?",
			salonID,
			strings.ToLower(kennelNumber),
			appointmentID,
		).
		Updates(map[string]any{
			"is_occupied":            false,
			"current_appointment_id": nil,
		}).Error; err != nil {
		return httperr.ErrStorage("release_kennel", err)
	}
	return nil
}

// --------------------------------------------------
// Payment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreatePayment(
	ctx context.Context,
	p *models.Payment,
) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return httperr.ErrStorage("create_payment", err)
	}
	return nil
}

func (r *AppointmentGormRepository) FindPaymentByTransaction(
	ctx context.Context,
	salonID uuid.UUID,
	transactionID string,
) (*models.Payment, error) {

	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND transaction_id = ?", salonID, transactionID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, httperr.ErrStorage("find_payment", err)
	}
	return &p, nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
