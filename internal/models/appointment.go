package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SalonID uuid.UUID `gorm:"type:uuid;index;not null" json:"salon_id"`

	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`
	Client   Client    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"client"`

	PetID uuid.UUID `gorm:"type:uuid;index;not null" json:"pet_id"`
	Pet   Pet       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"pet"`

	ScheduledAt     time.Time       `gorm:"index" json:"scheduled_at"`
	DurationMinutes int             `json:"duration_minutes"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(10,2)" json:"total_price"`

	Status string `gorm:"size:20;default:'scheduled';index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	CheckInTime  *time.Time `json:"check_in_time"`
	CheckedInBy  *string    `gorm:"size:100" json:"checked_in_by"`
	CheckOutTime *time.Time `json:"check_out_time"`
	CheckedOutBy *string    `gorm:"size:100" json:"checked_out_by"`

	KennelNumber *string `gorm:"size:20" json:"kennel_number"`
	KennelNotes  *string `gorm:"type:text" json:"kennel_notes"`

	Services []AppointmentService `gorm:"constraint:OnDelete:CASCADE;" json:"appointment_services"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
