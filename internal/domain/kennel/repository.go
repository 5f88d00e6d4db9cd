package kennel

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
)

// Repository covers administrative kennel CRUD. Occupancy is written only by
// the appointment workflow.
type Repository interface {
	ListKennels(ctx context.Context, salonID uuid.UUID) ([]models.Kennel, error)
	GetKennel(ctx context.Context, salonID, kennelID uuid.UUID) (*models.Kennel, error)
	CreateKennel(ctx context.Context, k *models.Kennel) error
	UpdateKennel(ctx context.Context, k *models.Kennel) error
	DeleteKennel(ctx context.Context, salonID, kennelID uuid.UUID) error
}
