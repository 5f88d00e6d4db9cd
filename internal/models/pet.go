package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Pet struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SalonID  uuid.UUID `gorm:"type:uuid;index;not null" json:"salon_id"`
	ClientID uuid.UUID `gorm:"type:uuid;index;not null" json:"client_id"`

	Name    string   `gorm:"size:100;not null" json:"name"`
	PetType string   `gorm:"size:50" json:"pet_type"`
	Breed   string   `gorm:"size:100" json:"breed"`
	Size    *string  `gorm:"size:20" json:"size"`
	Age     *int     `json:"age"`
	Weight  *float64 `json:"weight"`

	Notes               string     `gorm:"type:text" json:"notes"`
	GroomingNotes       string     `gorm:"type:text" json:"grooming_notes"`
	SpecialInstructions string     `gorm:"type:text" json:"special_instructions"`
	MedicalConditions   string     `gorm:"type:text" json:"medical_conditions"`
	IsVaccinated        bool       `json:"is_vaccinated"`
	VaccinationDate     *time.Time `json:"vaccination_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Pet) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
