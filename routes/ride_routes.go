package routes

import (
	"ecoride/internal/handlers/shared"
	"ecoride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes wires the ride search, lifecycle and booking endpoints.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, jwtSecret string) {
	// Public search routes (no auth required)
	rides := r.Group("/rides")
	{
		rides.GET("", rideHandler.SearchRides)
		rides.GET("/popular", rideHandler.GetPopularRides)
		rides.GET("/:id", rideHandler.GetRide)
	}

	// Protected ride routes (require authentication)
	protected := r.Group("/rides")
	protected.Use(middleware.AuthRequired(jwtSecret))
	{
		protected.GET("/mine", rideHandler.GetMyRides)
		protected.POST("", rideHandler.CreateRide)
		protected.PUT("/:id", rideHandler.UpdateRide)
		protected.DELETE("/:id", rideHandler.DeleteRide)

		// Lifecycle
		protected.POST("/:id/start", rideHandler.StartRide)
		protected.POST("/:id/complete", rideHandler.CompleteRide)
		protected.POST("/:id/cancel", rideHandler.CancelRide)

		// Bookings
		protected.POST("/:id/bookings", rideHandler.BookRide)
		protected.DELETE("/:id/bookings", rideHandler.CancelBooking)
	}
}
