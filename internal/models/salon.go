package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Salon is the tenant. Every other row carries its ID.
type Salon struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Slug     string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Phone    string    `gorm:"size:20" json:"phone"`
	Address  string    `gorm:"size:255" json:"address"`
	Timezone string    `gorm:"size:64" json:"timezone"`
	Plan     string    `gorm:"size:20;default:'free'" json:"plan"`
	LogoURL  string    `gorm:"size:500" json:"logo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Salon) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
