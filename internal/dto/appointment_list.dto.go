package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentListDTO struct {
	ID           uuid.UUID       `json:"id"`
	ScheduledAt  time.Time       `json:"scheduled_at"`
	EndsAt       time.Time       `json:"ends_at"`
	Status       string          `json:"status"`
	ClientName   string          `json:"client_name"`
	PetName      string          `json:"pet_name"`
	PetSize      *string         `json:"pet_size"`
	Services     []string        `json:"services"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	KennelNumber *string         `json:"kennel_number"`
	CheckInTime  *time.Time      `json:"check_in_time"`
}

type OverdueAppointmentDTO struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	ClientName   string    `json:"client_name"`
	ClientPhone  string    `json:"client_phone"`
	PetName      string    `json:"pet_name"`
	KennelNumber *string   `json:"kennel_number"`
	CheckInTime  time.Time `json:"check_in_time"`
	HoursInSalon float64   `json:"hours_in_salon"`
}
