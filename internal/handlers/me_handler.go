package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/booking"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
)

type MeHandler struct {
	staff domain.Catalog
}

func NewMeHandler(staff domain.Catalog) *MeHandler {
	return &MeHandler{staff: staff}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	staffIDVal, exists := c.Get(middleware.ContextStaffID)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "staff_not_in_context"})
		return
	}

	staffID, ok := staffIDVal.(uint)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_staff_id_type"})
		return
	}

	staff, err := h.staff.GetStaff(c.Request.Context(), staffID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "staff_not_found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": gin.H{
			"id":     staff.ID,
			"name":   staff.Name,
			"email":  staff.Email,
			"phone":  staff.Phone,
			"role":   staff.Role,
			"active": staff.Active,
		},
	})
}
