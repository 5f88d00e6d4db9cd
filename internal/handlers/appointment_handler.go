package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/groomer-scheduler/internal/httperr"
	"github.com/BruksfildServices01/groomer-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/groomer-scheduler/internal/middleware"
	ucAppointment "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

// AppointmentUseCases groups what the appointment routes call.
type AppointmentUseCases struct {
	Create      *ucAppointment.CreateAppointment
	Update      *ucAppointment.UpdateAppointment
	Delete      *ucAppointment.DeleteAppointment
	ListByDate  *ucAppointment.ListAppointmentsByDate
	ListByMonth *ucAppointment.ListAppointmentsByMonth
	Overdue     *ucAppointment.ListOverdue

	CheckIn   *ucAppointment.CheckIn
	Start     *ucAppointment.StartService
	Ready     *ucAppointment.MarkReady
	CheckOut  *ucAppointment.CheckOut
	SetStatus *ucAppointment.SetStatus
	AddNote   *ucAppointment.AddNote
}

type AppointmentHandler struct {
	uc AppointmentUseCases
}

func NewAppointmentHandler(uc AppointmentUseCases) *AppointmentHandler {
	return &AppointmentHandler{uc: uc}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientID        string   `json:"client_id" binding:"required"`
	PetID           string   `json:"pet_id" binding:"required"`
	Date            string   `json:"date" binding:"required"`
	Time            string   `json:"time" binding:"required"`
	ServiceIDs      []string `json:"service_ids" binding:"required"`
	DurationMinutes int      `json:"duration_minutes"`
	Notes           string   `json:"notes"`
}

type UpdateAppointmentRequest struct {
	Date            *string   `json:"date"`
	Time            *string   `json:"time"`
	DurationMinutes *int      `json:"duration_minutes"`
	ServiceIDs      *[]string `json:"service_ids"`
}

type CheckInRequest struct {
	KennelNumber *string `json:"kennel_number"`
	KennelNotes  *string `json:"kennel_notes"`
}

type CheckOutRequest struct {
	Force bool `json:"force"`
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type AddNoteRequest struct {
	Text string `json:"text" binding:"required"`
}

// ======================================================
// HELPERS
// ======================================================

func parseIDs(raw []string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// bindOptional accepts an empty body for endpoints whose fields are all
// optional.
func bindOptional(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return false
	}
	return true
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	clientID, err1 := uuid.Parse(req.ClientID)
	petID, err2 := uuid.Parse(req.PetID)
	serviceIDs, ok := parseIDs(req.ServiceIDs)
	if err1 != nil || err2 != nil || !ok {
		httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
		return
	}

	ap, err := h.uc.Create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		SalonID:         middleware.SalonID(c),
		ClientID:        clientID,
		PetID:           petID,
		Date:            req.Date,
		Time:            req.Time,
		ServiceIDs:      serviceIDs,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Actor:           middleware.Actor(c),
	})
	if err != nil {
		fail(c, "create appointment", err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// UPDATE / DELETE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	in := ucAppointment.UpdateAppointmentInput{
		SalonID:         middleware.SalonID(c),
		AppointmentID:   id,
		Date:            req.Date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Actor:           middleware.Actor(c),
	}
	if req.ServiceIDs != nil {
		ids, ok := parseIDs(*req.ServiceIDs)
		if !ok {
			httperr.BadRequest(c, "invalid_id", "Invalid identifier.")
			return
		}
		in.ServiceIDs = ids
	}

	ap, err := h.uc.Update.Execute(c.Request.Context(), in)
	if err != nil {
		fail(c, "update appointment", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), middleware.SalonID(c), id, middleware.Actor(c)); err != nil {
		fail(c, "delete appointment", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ======================================================
// LIST
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	list, err := h.uc.ListByDate.Execute(c.Request.Context(), middleware.SalonID(c), c.Query("date"))
	if err != nil {
		fail(c, "list appointments", err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")

	if yearStr == "" || monthStr == "" {
		httperr.BadRequest(c, "missing_year_or_month", "Year and month are required.")
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	list, err := h.uc.ListByMonth.Execute(c.Request.Context(), middleware.SalonID(c), year, month)
	if err != nil {
		fail(c, "list appointments by month", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": list,
	})
}

func (h *AppointmentHandler) Overdue(c *gin.Context) {
	list, err := h.uc.Overdue.Execute(c.Request.Context(), middleware.SalonID(c))
	if err != nil {
		fail(c, "list overdue", err)
		return
	}

	httpresp.List(c, list)
}

// ======================================================
// WORKFLOW
// ======================================================

func (h *AppointmentHandler) CheckIn(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CheckInRequest
	if !bindOptional(c, &req) {
		return
	}

	ap, err := h.uc.CheckIn.Execute(c.Request.Context(), ucAppointment.CheckInInput{
		SalonID:       middleware.SalonID(c),
		AppointmentID: id,
		KennelNumber:  req.KennelNumber,
		KennelNotes:   req.KennelNotes,
		Actor:         middleware.Actor(c),
	})
	if err != nil {
		fail(c, "check in", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Start(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.uc.Start.Execute(c.Request.Context(), middleware.SalonID(c), id, middleware.Actor(c))
	if err != nil {
		fail(c, "start service", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Ready(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ap, err := h.uc.Ready.Execute(c.Request.Context(), middleware.SalonID(c), id, middleware.Actor(c))
	if err != nil {
		fail(c, "mark ready", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) CheckOut(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req CheckOutRequest
	if !bindOptional(c, &req) {
		return
	}
	if f, err := strconv.ParseBool(c.Query("force")); err == nil && f {
		req.Force = true
	}

	ap, err := h.uc.CheckOut.Execute(c.Request.Context(), ucAppointment.CheckOutInput{
		SalonID:       middleware.SalonID(c),
		AppointmentID: id,
		Actor:         middleware.Actor(c),
		Force:         req.Force,
	})
	if err != nil {
		fail(c, "check out", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ap, err := h.uc.SetStatus.Execute(c.Request.Context(), middleware.SalonID(c), id, req.Status, middleware.Actor(c))
	if err != nil {
		fail(c, "set status", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) AddNote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return
	}

	ap, err := h.uc.AddNote.Execute(c.Request.Context(), middleware.SalonID(c), id, req.Text, middleware.Actor(c))
	if err != nil {
		fail(c, "add note", err)
		return
	}

	c.JSON(http.StatusOK, ap)
}
