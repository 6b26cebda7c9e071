package routes

import (
	"booking-service/handlers"

	"github.com/gin-gonic/gin"
)

type BookingRouteHandler struct {
	availabilityHandler handlers.AvailabilityHandler
	reservationsHandler handlers.ReservationsHandler
}

func NewBookingRouteHandler(availabilityHandler handlers.AvailabilityHandler, reservationsHandler handlers.ReservationsHandler) BookingRouteHandler {
	return BookingRouteHandler{availabilityHandler, reservationsHandler}
}

func (rc *BookingRouteHandler) BookingRoute(rg *gin.RouterGroup) {
	availability := rg.Group("/availability")
	availability.Use(handlers.ExtractTraceInfoMiddleware())
	availability.POST("", rc.availabilityHandler.CreateAvailability)
	availability.POST("/range", rc.availabilityHandler.CreateAvailabilityRange)
	availability.GET("/room/:roomId", rc.availabilityHandler.GetAvailabilityByRoom)
	availability.POST("/check", rc.availabilityHandler.CheckAvailability)
	availability.POST("/reduce/:roomId/:date", rc.availabilityHandler.ReduceAvailability)
	availability.POST("/restore/:roomId/:date", rc.availabilityHandler.RestoreAvailability)
	availability.PATCH("/:id", rc.availabilityHandler.UpdateAvailability)
	availability.DELETE("/:id", rc.availabilityHandler.DeleteAvailability)

	reservations := rg.Group("/reservations")
	reservations.Use(handlers.ExtractTraceInfoMiddleware())
	reservations.Use(handlers.AuthContextMiddleware())
	reservations.POST("", handlers.RequireAuth(), rc.reservationsHandler.CreateReservation)
	reservations.GET("", handlers.RequireAuth(), rc.reservationsHandler.GetReservationsForCaller)
	reservations.GET("/:id", rc.reservationsHandler.GetReservation)
	reservations.GET("/room/:roomId", rc.reservationsHandler.GetReservationsByRoom)
	reservations.POST("/:id/confirm", handlers.RequireAuth(), rc.reservationsHandler.ConfirmReservation)
	reservations.POST("/:id/reject", handlers.RequireAuth(), rc.reservationsHandler.RejectReservation)
	reservations.POST("/:id/cancel", handlers.RequireAuth(), rc.reservationsHandler.CancelReservation)
	reservations.POST("/:id/complete", handlers.RequireAuth(), rc.reservationsHandler.CompleteReservation)
	reservations.PATCH("/:id", handlers.RequireAuth(), rc.reservationsHandler.UpdateReservation)
}
