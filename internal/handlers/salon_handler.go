package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/audit"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/timezone"
)

// LogoUploader stores a salon logo and returns its public URL.
type LogoUploader interface {
	Upload(ctx context.Context, salonID uuid.UUID, r io.Reader) (string, error)
}

type SalonHandler struct {
	db    *gorm.DB
	logos LogoUploader
	audit *audit.Dispatcher
}

func NewSalonHandler(db *gorm.DB, logos LogoUploader, audit *audit.Dispatcher) *SalonHandler {
	return &SalonHandler{db: db, logos: logos, audit: audit}
}

type UpdateSalonRequest struct {
	Name     *string `json:"name"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Timezone *string `json:"timezone"`
}

func (h *SalonHandler) load(c *gin.Context) (*models.Salon, bool) {
	var salon models.Salon
	if err := h.db.First(&salon, "id = ?", middleware.SalonID(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "salon_not_found", "Salon not found.")
			return nil, false
		}
		httperr.Internal(c, "failed_to_get_salon", "Could not load the salon.")
		return nil, false
	}
	return &salon, true
}

func (h *SalonHandler) GetMeSalon(c *gin.Context) {
	salon, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, salon)
}

func (h *SalonHandler) UpdateMeSalon(c *gin.Context) {
	salon, ok := h.load(c)
	if !ok {
		return
	}

	var req UpdateSalonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			httperr.BadRequest(c, "invalid_name", "Name is required.")
			return
		}
		salon.Name = name
	}
	if req.Phone != nil {
		salon.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		salon.Address = strings.TrimSpace(*req.Address)
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		salon.Timezone = *req.Timezone
	}

	if err := h.db.Save(salon).Error; err != nil {
		httperr.Internal(c, "failed_to_update_salon", "Could not save the salon.")
		return
	}

	h.dispatch(c, salon.ID, "salon_updated", req)
	c.JSON(http.StatusOK, salon)
}

// UploadLogo takes a multipart "logo" file.
func (h *SalonHandler) UploadLogo(c *gin.Context) {
	if h.logos == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "logo_storage_disabled", "Logo storage is not configured.")
		return
	}

	salon, ok := h.load(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("logo")
	if err != nil {
		httperr.BadRequest(c, "missing_logo", "Send the image in the \"logo\" field.")
		return
	}
	f, err := fh.Open()
	if err != nil {
		httperr.BadRequest(c, "invalid_image", "Could not read the uploaded file.")
		return
	}
	defer f.Close()

	url, err := h.logos.Upload(c.Request.Context(), salon.ID, f)
	if err != nil {
		fail(c, "upload logo", err)
		return
	}

	salon.LogoURL = url
	if err := h.db.Model(salon).Update("logo_url", url).Error; err != nil {
		httperr.Internal(c, "failed_to_update_salon", "Could not save the salon.")
		return
	}

	h.dispatch(c, salon.ID, "salon_logo_updated", map[string]any{"logo_url": url})
	c.JSON(http.StatusOK, salon)
}

func (h *SalonHandler) dispatch(c *gin.Context, salonID uuid.UUID, action string, meta any) {
	auditRow(c, h.audit, salonID, action, "salon", salonID, meta)
}
