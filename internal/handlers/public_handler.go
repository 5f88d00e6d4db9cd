package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	"github.com/BruksfildServices01/groomer-scheduler/internal/validators"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db *gorm.DB
}

func NewPublicHandler(db *gorm.DB) *PublicHandler {
	return &PublicHandler{db: db}
}

////////////////////////////////////////////////////////
// SALON PAGE
////////////////////////////////////////////////////////

// Salon shows the public profile of a salon and its active services.
func (h *PublicHandler) Salon(c *gin.Context) {
	slug := validators.NormalizeSlug(c.Param("slug"))

	var salon models.Salon
	if err := h.db.Where("slug = ?", slug).First(&salon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.NotFound(c, "salon_not_found", "Salon not found.")
			return
		}
		httperr.Internal(c, "failed_to_get_salon", "Could not load the salon.")
		return
	}

	var services []models.Service
	if err := h.db.
		Where("salon_id = ? AND active = ?", salon.ID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {

		httperr.Internal(c, "failed_to_list_services", "Could not list services.")
		return
	}

	list := make([]gin.H, 0, len(services))
	for _, s := range services {
		list = append(list, gin.H{
			"id":               s.ID,
			"name":             s.Name,
			"description":      s.Description,
			"duration_minutes": s.DurationMinutes,
			"price":            s.Price,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"salon": gin.H{
			"name":     salon.Name,
			"slug":     salon.Slug,
			"phone":    salon.Phone,
			"address":  salon.Address,
			"timezone": salon.Timezone,
			"logo_url": salon.LogoURL,
		},
		"services": list,
	})
}
