package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation asks someone to join a salon's staff with a given role.
type Invitation struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID uuid.UUID `gorm:"type:uuid;index;not null" json:"salon_id"`

	Email     string     `gorm:"size:100;index;not null" json:"email"`
	Role      string     `gorm:"size:20;not null;default:'staff'" json:"role"`
	Status    string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	InvitedBy uuid.UUID  `gorm:"type:uuid;not null" json:"invited_by"`
	ExpiresAt *time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
