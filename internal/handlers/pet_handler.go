package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/domain/kennel"
	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/usecase/usage"
)

type PetHandler struct {
	db    *gorm.DB
	usage UsageGuard
	bus   realtime.Publisher
	audit *audit.Dispatcher
}

func NewPetHandler(
	db *gorm.DB,
	usage UsageGuard,
	bus realtime.Publisher,
	audit *audit.Dispatcher,
) *PetHandler {
	return &PetHandler{db: db, usage: usage, bus: bus, audit: audit}
}

type CreatePetRequest struct {
	ClientID string   `json:"client_id" binding:"required"`
	Name     string   `json:"name" binding:"required"`
	PetType  string   `json:"pet_type"`
	Breed    string   `json:"breed"`
	Size     *string  `json:"size"`
	Age      *int     `json:"age"`
	Weight   *float64 `json:"weight"`

	Notes               string `json:"notes"`
	GroomingNotes       string `json:"grooming_notes"`
	SpecialInstructions string `json:"special_instructions"`
	MedicalConditions   string `json:"medical_conditions"`
	IsVaccinated        bool   `json:"is_vaccinated"`

	// YYYY-MM-DD
	VaccinationDate *string `json:"vaccination_date"`
}

type UpdatePetRequest struct {
	ClientID *string  `json:"client_id"`
	Name     *string  `json:"name"`
	PetType  *string  `json:"pet_type"`
	Breed    *string  `json:"breed"`
	Size     *string  `json:"size"`
	Age      *int     `json:"age"`
	Weight   *float64 `json:"weight"`

	Notes               *string `json:"notes"`
	GroomingNotes       *string `json:"grooming_notes"`
	SpecialInstructions *string `json:"special_instructions"`
	MedicalConditions   *string `json:"medical_conditions"`
	IsVaccinated        *bool   `json:"is_vaccinated"`

	// YYYY-MM-DD, empty clears
	VaccinationDate *string `json:"vaccination_date"`
}

// ======================================================
// LIST PETS
// ======================================================
func (h *PetHandler) List(c *gin.Context) {
	salonID := middleware.SalonID(c)

	q := h.db.Where("salon_id = ?", salonID)

	if raw := strings.TrimSpace(c.Query("client_id")); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_client_id", "Invalid client id.")
			return
		}
		q = q.Where("client_id = ?", clientID)
	}

	var pets []models.Pet
	if err := q.Order("name ASC").Find(&pets).Error; err != nil {
		httperr.Internal(c, "failed_to_list_pets", "Could not list pets.")
		return
	}

	c.JSON(http.StatusOK, pets)
}

// ======================================================
// CREATE PET
// ======================================================
func (h *PetHandler) Create(c *gin.Context) {
	salonID := middleware.SalonID(c)

	var req CreatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		httperr.BadRequest(c, "invalid_client_id", "Invalid client id.")
		return
	}

	if !h.clientExists(c, salonID, clientID) {
		return
	}

	size, ok := petSize(c, req.Size)
	if !ok {
		return
	}
	vaccinated, ok := vaccinationDate(c, req.VaccinationDate)
	if !ok {
		return
	}

	if h.usage != nil {
		if err := h.usage.EnsureCanAdd(c.Request.Context(), salonID, usage.ResourcePets); err != nil {
			fail(c, "create pet", err)
			return
		}
	}

	pet := models.Pet{
		SalonID:             salonID,
		ClientID:            clientID,
		Name:                strings.TrimSpace(req.Name),
		PetType:             req.PetType,
		Breed:               req.Breed,
		Size:                size,
		Age:                 req.Age,
		Weight:              req.Weight,
		Notes:               req.Notes,
		GroomingNotes:       req.GroomingNotes,
		SpecialInstructions: req.SpecialInstructions,
		MedicalConditions:   req.MedicalConditions,
		IsVaccinated:        req.IsVaccinated,
		VaccinationDate:     vaccinated,
	}

	if err := h.db.Create(&pet).Error; err != nil {
		httperr.Internal(c, "failed_to_create_pet", "Could not create the pet.")
		return
	}

	publishRow(c, h.bus, realtime.TablePets, realtime.OpInsert, salonID, pet.ID)
	auditRow(c, h.audit, salonID, "pet_created", "pet", pet.ID, nil)
	refreshUsage(c, h.usage, salonID)

	c.JSON(http.StatusCreated, pet)
}

// ======================================================
// UPDATE PET
// ======================================================
func (h *PetHandler) Update(c *gin.Context) {
	salonID := middleware.SalonID(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdatePetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var pet models.Pet
	if err := h.db.
		Where("id = ? AND salon_id = ?", id, salonID).
		First(&pet).Error; err != nil {

		httperr.NotFound(c, "pet_not_found", "Pet not found.")
		return
	}

	if req.ClientID != nil {
		clientID, err := uuid.Parse(*req.ClientID)
		if err != nil {
			httperr.BadRequest(c, "invalid_client_id", "Invalid client id.")
			return
		}
		if !h.clientExists(c, salonID, clientID) {
			return
		}
		pet.ClientID = clientID
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Name is required.")
			return
		}
		pet.Name = name
	}

	if req.Size != nil {
		size, ok := petSize(c, req.Size)
		if !ok {
			return
		}
		pet.Size = size
	}

	if req.VaccinationDate != nil {
		vaccinated, ok := vaccinationDate(c, req.VaccinationDate)
		if !ok {
			return
		}
		pet.VaccinationDate = vaccinated
	}

	if req.PetType != nil {
		pet.PetType = *req.PetType
	}
	if req.Breed != nil {
		pet.Breed = *req.Breed
	}
	if req.Age != nil {
		pet.Age = req.Age
	}
	if req.Weight != nil {
		pet.Weight = req.Weight
	}
	if req.Notes != nil {
		pet.Notes = *req.Notes
	}
	if req.GroomingNotes != nil {
		pet.GroomingNotes = *req.GroomingNotes
	}
	if req.SpecialInstructions != nil {
		pet.SpecialInstructions = *req.SpecialInstructions
	}
	if req.MedicalConditions != nil {
		pet.MedicalConditions = *req.MedicalConditions
	}
	if req.IsVaccinated != nil {
		pet.IsVaccinated = *req.IsVaccinated
	}

	if err := h.db.Model(&pet).Select("*").Omit("id", "salon_id", "created_at").
		Updates(&pet).Error; err != nil {

		httperr.Internal(c, "failed_to_update_pet", "Could not update the pet.")
		return
	}

	publishRow(c, h.bus, realtime.TablePets, realtime.OpUpdate, salonID, pet.ID)
	auditRow(c, h.audit, salonID, "pet_updated", "pet", pet.ID, nil)

	c.JSON(http.StatusOK, pet)
}

// ======================================================
// DELETE PET
// ======================================================
// Delete removes the pet with its appointments, unless it is on the premises.
func (h *PetHandler) Delete(c *gin.Context) {
	salonID := middleware.SalonID(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var pet models.Pet
		if err := tx.
			Where("id = ? AND salon_id = ?", id, salonID).
			First(&pet).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("pet_not_found")
			}
			return httperr.ErrStorage("get_pet", err)
		}

		active, err := hasActiveVisit(tx, salonID, "pet_id", id)
		if err != nil {
			return httperr.ErrStorage("count_active_visits", err)
		}
		if active {
			return httperr.ErrBusiness("pet_has_active_visit")
		}

		if err := removeAppointments(tx, salonID, "pet_id", id); err != nil {
			return httperr.ErrStorage("delete_pet_appointments", err)
		}
		if err := tx.Delete(&pet).Error; err != nil {
			return httperr.ErrStorage("delete_pet", err)
		}
		return nil
	})
	if err != nil {
		fail(c, "delete pet", err)
		return
	}

	publishRow(c, h.bus, realtime.TablePets, realtime.OpDelete, salonID, id)
	auditRow(c, h.audit, salonID, "pet_deleted", "pet", id, nil)

	c.Status(http.StatusNoContent)
}

func (h *PetHandler) clientExists(c *gin.Context, salonID, clientID uuid.UUID) bool {
	var count int64
	if err := h.db.Model(&models.Client{}).
		Where("id = ? AND salon_id = ?", clientID, salonID).
		Count(&count).Error; err != nil {
		fail(c, "find client", httperr.ErrStorage("count_clients", err))
		return false
	}
	if count == 0 {
		httperr.NotFound(c, "client_not_found", "Client not found.")
		return false
	}
	return true
}

// petSize stores sizes canonical; anything else is rejected. Blank clears.
func petSize(c *gin.Context, raw *string) (*string, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	s, ok := kennel.ParseSize(*raw)
	if !ok {
		httperr.BadRequest(c, "invalid_pet_size", "Size must be small, medium, large or extra_large.")
		return nil, false
	}
	v := string(s)
	return &v, true
}

func vaccinationDate(c *gin.Context, raw *string) (*time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, true
	}
	d, err := time.Parse("2006-01-02", strings.TrimSpace(*raw))
	if err != nil {
		httperr.BadRequest(c, "invalid_vaccination_date", "Use YYYY-MM-DD.")
		return nil, false
	}
	return &d, true
}
