package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/appointment"
)

type PaymentHandler struct {
	db     *gorm.DB
	record *ucAppointment.RecordPayment
}

func NewPaymentHandler(db *gorm.DB, record *ucAppointment.RecordPayment) *PaymentHandler {
	return &PaymentHandler{db: db, record: record}
}

type RecordPaymentRequest struct {
	AppointmentID *string         `json:"appointment_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	TransactionID *string         `json:"transaction_id"`
	Notes         string          `json:"notes"`
}

func (h *PaymentHandler) Record(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	in := ucAppointment.RecordPaymentInput{
		SalonID:       middleware.SalonID(c),
		Amount:        req.Amount,
		Method:        req.PaymentMethod,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		Actor:         middleware.Actor(c),
	}

	if req.AppointmentID != nil && *req.AppointmentID != "" {
		id, err := uuid.Parse(*req.AppointmentID)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
			return
		}
		in.AppointmentID = &id
	}

	p, err := h.record.Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, "record payment", err)
		return
	}

	httpresp.Created(c, p)
}

// List pages through payments, newest first. from/to are YYYY-MM-DD.
func (h *PaymentHandler) List(c *gin.Context) {
	salonID := middleware.SalonID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := h.db.Model(&models.Payment{}).Where("salon_id = ?", salonID)

	if method := c.Query("method"); method != "" {
		q = q.Where("payment_method = ?", method)
	}

	if raw := c.Query("appointment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
			return
		}
		q = q.Where("appointment_id = ?", id)
	}

	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		q = q.Where("payment_date >= ?", from)
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		q = q.Where("payment_date < ?", to.Add(24*time.Hour))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "payment_count_failed", "Could not count payments.")
		return
	}

	var payments []models.Payment
	if err := q.
		Order("payment_date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&payments).Error; err != nil {

		httperr.Internal(c, "payment_list_failed", "Could not list payments.")
		return
	}

	httpresp.Page(c, page, limit, total, payments)
}
