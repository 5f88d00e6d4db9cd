package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Kennel struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_kennel_salon_number" json:"salon_id"`

	KennelNumber string `gorm:"size:20;not null;uniqueIndex:idx_kennel_salon_number" json:"kennel_number"`
	KennelSize   string `gorm:"size:20;not null;default:'medium'" json:"kennel_size"`

	IsOccupied           bool       `gorm:"not null;default:false" json:"is_occupied"`
	CurrentAppointmentID *uuid.UUID `gorm:"type:uuid" json:"current_appointment_id"`

	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (k *Kennel) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}
