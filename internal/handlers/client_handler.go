package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/realtime"
	"github.com/BruksfildServices01/groomer-scheduler/internal/usecase/usage"
	"github.com/BruksfildServices01/groomer-scheduler/internal/validators"
)

type ClientHandler struct {
	db    *gorm.DB
	usage UsageGuard
	bus   realtime.Publisher
	audit *audit.Dispatcher
}

func NewClientHandler(
	db *gorm.DB,
	usage UsageGuard,
	bus realtime.Publisher,
	audit *audit.Dispatcher,
) *ClientHandler {
	return &ClientHandler{db: db, usage: usage, bus: bus, audit: audit}
}

type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

type UpdateClientRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

// ======================================================
// LIST CLIENTS
// ======================================================
func (h *ClientHandler) List(c *gin.Context) {
	salonID := middleware.SalonID(c)

	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	q := h.db.Where("salon_id = ?", salonID)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var clients []models.Client
	if err := q.
		Preload("Pets").
		Order("created_at DESC").
		Find(&clients).Error; err != nil {

		httperr.Internal(c, "failed_to_list_clients", "Could not list clients.")
		return
	}

	c.JSON(http.StatusOK, clients)
}

// ======================================================
// CREATE CLIENT
// ======================================================
func (h *ClientHandler) Create(c *gin.Context) {
	salonID := middleware.SalonID(c)

	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		httperr.BadRequest(c, "invalid_name", "Name is required.")
		return
	}

	if h.usage != nil {
		if err := h.usage.EnsureCanAdd(c.Request.Context(), salonID, usage.ResourceClients); err != nil {
			fail(c, "create client", err)
			return
		}
	}

	client := models.Client{
		SalonID: salonID,
		Name:    name,
		Email:   validators.NormalizeEmail(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Notes:   req.Notes,
	}

	if err := h.db.Create(&client).Error; err != nil {
		httperr.Internal(c, "failed_to_create_client", "Could not create the client.")
		return
	}

	publishRow(c, h.bus, realtime.TableClients, realtime.OpInsert, salonID, client.ID)
	auditRow(c, h.audit, salonID, "client_created", "client", client.ID, nil)
	refreshUsage(c, h.usage, salonID)

	c.JSON(http.StatusCreated, client)
}

// ======================================================
// UPDATE CLIENT
// ======================================================
func (h *ClientHandler) Update(c *gin.Context) {
	salonID := middleware.SalonID(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	var client models.Client
	if err := h.db.
		Where("id = ? AND salon_id = ?", id, salonID).
		First(&client).Error; err != nil {

		httperr.NotFound(c, "client_not_found", "Client not found.")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Name is required.")
			return
		}
		client.Name = name
	}
	if req.Email != nil {
		client.Email = validators.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		client.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		client.Address = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := h.db.
		Model(&client).
		Select("name", "email", "phone", "address", "notes").
		Updates(&client).Error; err != nil {

		httperr.Internal(c, "failed_to_update_client", "Could not update the client.")
		return
	}

	publishRow(c, h.bus, realtime.TableClients, realtime.OpUpdate, salonID, client.ID)
	auditRow(c, h.audit, salonID, "client_updated", "client", client.ID, nil)

	c.JSON(http.StatusOK, client)
}

// ======================================================
// DELETE CLIENT
// ======================================================
// Delete removes the client with their pets and appointments. A client whose
// pet is on the premises is kept.
func (h *ClientHandler) Delete(c *gin.Context) {
	salonID := middleware.SalonID(c)

	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		var client models.Client
		if err := tx.
			Where("id = ? AND salon_id = ?", id, salonID).
			First(&client).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return httperr.ErrNotFound("client_not_found")
			}
			return httperr.ErrStorage("get_client", err)
		}

		active, err := hasActiveVisit(tx, salonID, "client_id", id)
		if err != nil {
			return httperr.ErrStorage("count_active_visits", err)
		}
		if active {
			return httperr.ErrBusiness("client_has_active_visit")
		}

		if err := removeAppointments(tx, salonID, "client_id", id); err != nil {
			return httperr.ErrStorage("delete_client_appointments", err)
		}
		if err := tx.Where("client_id = ? AND salon_id = ?", id, salonID).
			Delete(&models.Pet{}).Error; err != nil {
			return httperr.ErrStorage("delete_client_pets", err)
		}
		if err := tx.Delete(&client).Error; err != nil {
			return httperr.ErrStorage("delete_client", err)
		}
		return nil
	})
	if err != nil {
		fail(c, "delete client", err)
		return
	}

	publishRow(c, h.bus, realtime.TableClients, realtime.OpDelete, salonID, id)
	auditRow(c, h.audit, salonID, "client_deleted", "client", id, nil)

	c.Status(http.StatusNoContent)
}
