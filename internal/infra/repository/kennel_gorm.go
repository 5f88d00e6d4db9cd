package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

type KennelGormRepository struct {
	db *gorm.DB
}

func NewKennelGormRepository(db *gorm.DB) *KennelGormRepository {
	return &KennelGormRepository{db: db}
}

func (r *KennelGormRepository) ListKennels(
	ctx context.Context,
	salonID uuid.UUID,
) ([]models.Kennel, error) {

	var kennels []models.Kennel
	if err := r.db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("kennel_number ASC").
		Find(&kennels).Error; err != nil {
		return nil, httperr.ErrStorage("list_kennels", err)
	}
	return kennels, nil
}

func (r *KennelGormRepository) GetKennel(
	ctx context.Context,
	salonID uuid.UUID,
	kennelID uuid.UUID,
) (*models.Kennel, error) {

	var k models.Kennel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", kennelID, salonID).
		First(&k).Error; err != nil {
		return nil, notFoundOr("get_kennel", err, kennel.ErrNotFound)
	}
	return &k, nil
}

func (r *KennelGormRepository) CreateKennel(
	ctx context.Context,
	k *models.Kennel,
) error {

	taken, err := r.numberTaken(ctx, k.SalonID, k.KennelNumber, uuid.Nil)
	if err != nil {
		return err
	}
	if taken {
		return kennel.ErrNumberTaken
	}

	if err := r.db.WithContext(ctx).Create(k).Error; err != nil {
		return httperr.ErrStorage("create_kennel", err)
	}
	return nil
}

func (r *KennelGormRepository) UpdateKennel(
	ctx context.Context,
	k *models.Kennel,
) error {

	taken, err := r.numberTaken(ctx, k.SalonID, k.KennelNumber, k.ID)
	if err != nil {
		return err
	}
	if taken {
		return kennel.ErrNumberTaken
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Kennel{}).
		Where("id = ? AND salon_id = ? AND is_occupied = ?", k.ID, k.SalonID, false).
		Updates(map[string]any{
			"kennel_number": k.KennelNumber,
			"kennel_size":   k.KennelSize,
			"notes":         k.Notes,
		}).Error; err != nil {
		return httperr.ErrStorage("update_kennel", err)
	}
	return nil
}

func (r *KennelGormRepository) DeleteKennel(
	ctx context.Context,
	salonID uuid.UUID,
	kennelID uuid.UUID,
) error {

	res := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ? AND is_occupied = ?", kennelID, salonID, false).
		Delete(&models.Kennel{})
	if res.Error != nil {
		return httperr.ErrStorage("delete_kennel", res.Error)
	}
	if res.RowsAffected == 0 {
		// either gone or occupied; tell them apart for the caller
		if _, err := r.GetKennel(ctx, salonID, kennelID); err != nil {
			return err
		}
		return kennel.ErrOccupied
	}
	return nil
}

// CountOccupied counts occupied kennels across every salon.
func (r *KennelGormRepository) CountOccupied(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Kennel{}).
		Where("is_occupied = ?", true).
		Count(&count).Error; err != nil {
		return 0, httperr.ErrStorage("count_occupied_kennels", err)
	}
	return count, nil
}

func (r *KennelGormRepository) numberTaken(
	ctx context.Context,
	salonID uuid.UUID,
	number string,
	exceptID uuid.UUID,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Kennel{}).
		Where("salon_id = ? AND LOWER(kennel_number) = ? AND id <> ?", salonID, strings.ToLower(number), exceptID).
		Count(&count).Error; err != nil {
		return false, httperr.ErrStorage("check_kennel_number", err)
	}
	return count > 0, nil
}

// Compile-time check
var _ kennel.Repository = (*KennelGormRepository)(nil)
