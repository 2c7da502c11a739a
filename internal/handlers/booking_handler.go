package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	ucBooking "github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type BookingHandler struct {
	cancel      *ucBooking.CancelBooking
	update      *ucBooking.UpdateBooking
	listByDate  *ucBooking.ListBookingsByDate
	listByMonth *ucBooking.ListBookingsByMonth
	location    *time.Location
}

func NewBookingHandler(
	cancel *ucBooking.CancelBooking,
	update *ucBooking.UpdateBooking,
	listByDate *ucBooking.ListBookingsByDate,
	listByMonth *ucBooking.ListBookingsByMonth,
	location *time.Location,
) *BookingHandler {
	return &BookingHandler{
		cancel:      cancel,
		update:      update,
		listByDate:  listByDate,
		listByMonth: listByMonth,
		location:    location,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type UpdateBookingRequest struct {
	Status     *string `json:"status"`
	PriceCents *int64  `json:"price_cents"`
	Notes      *string `json:"notes"`
}

// ======================================================
// LIST
// ======================================================

func (h *BookingHandler) ListByDate(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().In(h.location).Format("2006-01-02")
	}

	out, err := h.listByDate.Execute(c.Request.Context(), staffID, date)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

func (h *BookingHandler) ListByMonth(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	now := time.Now().In(h.location)

	year, ok := intQuery(c, "year", now.Year())
	if !ok {
		return
	}
	month, ok := intQuery(c, "month", int(now.Month()))
	if !ok {
		return
	}

	out, err := h.listByMonth.Execute(c.Request.Context(), staffID, year, month)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.List(c, out)
}

// ======================================================
// MUTATIONS
// ======================================================

func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_input", "invalid request body")
		return
	}

	b, err := h.update.Execute(c.Request.Context(), actorFrom(c), id, ucBooking.UpdateBookingInput{
		Status:     req.Status,
		PriceCents: req.PriceCents,
		Notes:      req.Notes,
	})
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	httpresp.OK(c, b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	b, err := h.cancel.Execute(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}
