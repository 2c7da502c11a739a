package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	ucBooking "github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

type ScheduleHandler struct {
	editor *ucBooking.ScheduleEditor
}

func NewScheduleHandler(editor *ucBooking.ScheduleEditor) *ScheduleHandler {
	return &ScheduleHandler{editor: editor}
}

type WeeklyScheduleRequest struct {
	Days []ucBooking.DayInput `json:"days" binding:"required"`
}

type OverrideRequest struct {
	StartTime string                 `json:"start_time" binding:"required"`
	EndTime   string                 `json:"end_time" binding:"required"`
	Blocks    []ucBooking.BlockInput `json:"blocks"`
}

// force is honoured for admins only.
func forceRequested(c *gin.Context) bool {
	return c.Query("force") == "true" && middleware.IsAdmin(c)
}

func (h *ScheduleHandler) Get(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	rules, err := h.editor.GetSchedule(c.Request.Context(), staffID)
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

func (h *ScheduleHandler) PutWeekly(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req WeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_input", "invalid request body")
		return
	}

	rules, err := h.editor.ReplaceWeekly(c.Request.Context(), staffID, req.Days, forceRequested(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, rules)
}

func (h *ScheduleHandler) PutOverride(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_input", "invalid request body")
		return
	}

	rule, err := h.editor.SetOverride(c.Request.Context(), staffID, ucBooking.OverrideInput{
		Date:      c.Param("date"),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Blocks:    req.Blocks,
	}, forceRequested(c))
	if err != nil {
		httperr.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, rule)
}

func (h *ScheduleHandler) DeleteOverride(c *gin.Context) {
	staffID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.editor.ClearOverride(c.Request.Context(), staffID, c.Param("date"), forceRequested(c)); err != nil {
		httperr.FromError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
