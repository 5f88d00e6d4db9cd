package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	ucKennel "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/kennel"
)

type KennelHandler struct {
	manage    *ucKennel.Manage
	available *ucKennel.ListAvailable
}

func NewKennelHandler(manage *ucKennel.Manage, available *ucKennel.ListAvailable) *KennelHandler {
	return &KennelHandler{manage: manage, available: available}
}

type KennelRequest struct {
	KennelNumber string `json:"kennel_number" binding:"required"`
	KennelSize   string `json:"kennel_size"`
	Notes        string `json:"notes"`
}

func (r KennelRequest) input() ucKennel.KennelInput {
	return ucKennel.KennelInput{
		KennelNumber: r.KennelNumber,
		KennelSize:   r.KennelSize,
		Notes:        r.Notes,
	}
}

func (h *KennelHandler) List(c *gin.Context) {
	kennels, err := h.manage.List(c.Request.Context(), middleware.SalonID(c))
	if err != nil {
		fail(c, "list kennels", err)
		return
	}
	c.JSON(http.StatusOK, kennels)
}

func (h *KennelHandler) Create(c *gin.Context) {
	var req KennelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	k, err := h.manage.Create(c.Request.Context(), middleware.SalonID(c), req.input(), middleware.Actor(c))
	if err != nil {
		fail(c, "create kennel", err)
		return
	}
	c.JSON(http.StatusCreated, k)
}

func (h *KennelHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req KennelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	k, err := h.manage.Update(c.Request.Context(), middleware.SalonID(c), id, req.input(), middleware.Actor(c))
	if err != nil {
		fail(c, "update kennel", err)
		return
	}
	c.JSON(http.StatusOK, k)
}

func (h *KennelHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.manage.Delete(c.Request.Context(), middleware.SalonID(c), id, middleware.Actor(c)); err != nil {
		fail(c, "delete kennel", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Available lists free kennels. On /appointments/:id/kennels the list is
// narrowed to sizes that fit the appointment's pet.
func (h *KennelHandler) Available(c *gin.Context) {
	appointmentID := uuid.Nil
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			return
		}
		appointmentID = id
	}

	kennels, err := h.available.Execute(c.Request.Context(), middleware.SalonID(c), appointmentID)
	if err != nil {
		fail(c, "list available kennels", err)
		return
	}
	c.JSON(http.StatusOK, kennels)
}
