package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BruksfildServices01/salon-booking/internal/config"
	"github.com/BruksfildServices01/salon-booking/internal/handlers"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Me       *handlers.MeHandler
	Public   *handlers.PublicHandler
	Booking  *handlers.BookingHandler
	Schedule *handlers.ScheduleHandler
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, h Handlers) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.Logger())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC: availability, holds, bookings
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/staff/:id/slots", h.Public.Slots)
			publicAPI.GET("/staff/:id/check", h.Public.CheckSlot)

			publicAPI.POST("/holds", h.Public.CreateHold)
			publicAPI.GET("/holds/session/:session", h.Public.SessionHold)
			publicAPI.DELETE("/holds/session/:session", h.Public.ReleaseSessionHolds)
			publicAPI.DELETE("/holds/:id", h.Public.ReleaseHold)
			publicAPI.POST("/holds/:id/convert", h.Public.ConvertHold)

			publicAPI.POST("/bookings", h.Public.CreateBooking)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/login", h.Auth.Login)

		// ------------------------------
		// STAFF API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", h.Me.GetMe)

			staff := secured.Group("/staff/:id")
			staff.Use(middleware.RequireStaffAccess("id"))
			{
				staff.GET("/schedule", h.Schedule.Get)
				staff.PUT("/schedule/weekly", h.Schedule.PutWeekly)
				staff.PUT("/schedule/overrides/:date", h.Schedule.PutOverride)
				staff.DELETE("/schedule/overrides/:date", h.Schedule.DeleteOverride)

				staff.GET("/bookings", h.Booking.ListByDate)
				staff.GET("/bookings/month", h.Booking.ListByMonth)
			}

			secured.PATCH("/bookings/:id", h.Booking.Update)
			secured.PATCH("/bookings/:id/cancel", h.Booking.Cancel)
		}
	}
}
