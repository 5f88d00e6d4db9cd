package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment rows are append-only.
type Payment struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"salon_id"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id"`

	Amount        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus string          `gorm:"size:20;not null;default:'completed'" json:"payment_status"`
	TransactionID *string         `gorm:"size:255" json:"transaction_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	PaymentDate   time.Time       `json:"payment_date"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
