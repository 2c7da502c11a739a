package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	availability *ucBooking.GetAvailability
	checkSlot    *ucBooking.CheckSlot
	holds        *ucBooking.HoldManager
	createBook   *ucBooking.CreateBooking
}

func NewPublicHandler(
	availability *ucBooking.GetAvailability,
	checkSlot *ucBooking.CheckSlot,
	holds *ucBooking.HoldManager,
	createBook *ucBooking.CreateBooking,
) *PublicHandler {
	return &PublicHandler{
		availability: availability,
		checkSlot:    checkSlot,
		holds:        holds,
		createBook:   createBook,
	}
}

////////////////////////////////////////////////////////
// DTOs
////////////////////////////////////////////////////////

type CustomerRequest struct {
	Name  string `json:"customer_name" binding:"required"`
	Phone string `json:"customer_phone" binding:"required"`
	Email string `json:"customer_email"`
	Notes string `json:"notes"`
}

func (r CustomerRequest) info() ucBooking.CustomerInfo {
	return ucBooking.CustomerInfo{
		Name:  r.Name,
		Phone: r.Phone,
		Email: r.Email,
		Notes: r.Notes,
	}
}

type CreateHoldRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	StaffID   uint   `json:"staff_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"` // RFC 3339
}

type ConvertHoldRequest struct {
	CustomerRequest
}

type CreateBookingRequest struct {
	CustomerRequest
	StaffID   uint   `json:"staff_id" binding:"required"`
	ServiceID uint   `json:"service_id" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	SessionID string `json:"session_id"`
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

func (h *PublicHandler) Slots(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	serviceID, ok := intQuery(c, "service_id", 0)
	if !ok {
		return
	}
	duration, ok := intQuery(c, "duration", 0)
	if !ok {
		return
	}
	granularity, ok := intQuery(c, "granularity", 0)
	if !ok {
		return
	}
	if serviceID < 0 {
		httperr.BadRequest(c, "invalid_input", "invalid service_id")
		return
	}

	res, err := h.availability.Execute(c.Request.Context(), ucBooking.AvailabilityInput{
		StaffID:     staffID,
		ServiceID:   uint(serviceID),
		DurationMin: duration,
		Date:        c.Query("date"),
		Granularity: granularity,
		SessionID:   c.Query("session_id"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PublicHandler) CheckSlot(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	start, err := parseInstant(c.Query("start"))
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "start must be RFC 3339")
		return
	}

	duration, ok := intQuery(c, "duration", 0)
	if !ok {
		return
	}

	res, err := h.checkSlot.Execute(c.Request.Context(), ucBooking.CheckSlotInput{
		StaffID:     staffID,
		StartTime:   start,
		DurationMin: duration,
		SessionID:   c.Query("session_id"),
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

////////////////////////////////////////////////////////
// HOLDS
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateHold(c *gin.Context) {
	var req CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_input", "invalid request body")
		return
	}

	start, err := parseInstant(req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "start_time must be RFC 3339")
		return
	}

	hold, err := h.holds.CreateHold(c.Request.Context(), ucBooking.CreateHoldInput{
		SessionID: req.SessionID,
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		StartTime: start,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"hold_id":    hold.ID,
		"expires_at": hold.ExpiresAt,
		"start_time": hold.StartTime,
		"end_time":   hold.EndTime,
	})
}

func (h *PublicHandler) SessionHold(c *gin.Context) {
	hold, err := h.holds.GetActiveHoldBySession(c.Request.Context(), c.Param("session"))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, hold)
}

func (h *PublicHandler) ReleaseHold(c *gin.Context) {
	if err := h.holds.ReleaseHold(c.Request.Context(), c.Param("id")); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PublicHandler) ReleaseSessionHolds(c *gin.Context) {
	if _, err := h.holds.ReleaseHoldBySession(c.Request.Context(), c.Param("session")); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *PublicHandler) ConvertHold(c *gin.Context) {
	var req ConvertHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_input", "customer name and phone are required")
		return
	}

	b, err := h.holds.ConvertHoldToBooking(c.Request.Context(), c.Param("id"), req.info())
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, b)
}

////////////////////////////////////////////////////////
// BOOKINGS
////////////////////////////////////////////////////////

func (h *PublicHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_input", "invalid request body")
		return
	}

	start, err := parseInstant(req.StartTime)
	if err != nil {
		httperr.BadRequest(c, "invalid_time", "start_time must be RFC 3339")
		return
	}

	b, err := h.createBook.Execute(c.Request.Context(), ucBooking.CreateBookingInput{
		StaffID:   req.StaffID,
		ServiceID: req.ServiceID,
		StartTime: start,
		Customer:  req.info(),
		SessionID: req.SessionID,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.Created(c, b)
}
