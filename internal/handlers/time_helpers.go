package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	ucBooking "github.com/BruksfildServices01/salon-booking/internal/usecase/booking"
)

// parseInstant accepts RFC 3339 timestamps with any offset.
func parseInstant(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		httperr.BadRequest(c, "invalid_input", "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func intQuery(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		httperr.BadRequest(c, "invalid_input", "invalid "+name)
		return 0, false
	}
	return v, true
}

func actorFrom(c *gin.Context) ucBooking.Actor {
	return ucBooking.Actor{
		StaffID: c.GetUint(middleware.ContextStaffID),
		Admin:   middleware.IsAdmin(c),
	}
}
