package routes

import (
	"ecoride/internal/handlers/shared"
	"ecoride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupReviewRoutes wires the review submission, lookup and moderation
// endpoints.
func SetupReviewRoutes(r *gin.RouterGroup, reviewHandler *handlers.ReviewHandler, jwtSecret string) {
	// Public lookup routes (no auth required)
	reviews := r.Group("/reviews")
	{
		reviews.GET("/trips/:trip_id", reviewHandler.GetTripReviews)
		reviews.GET("/trips/:trip_id/average", reviewHandler.GetTripAverageRating)
		reviews.GET("/users/:user_id", reviewHandler.GetUserReviews)
		reviews.GET("/users/:user_id/received", reviewHandler.GetReviewsAboutUser)
		reviews.GET("/:id", reviewHandler.GetReview)
	}

	// Protected review routes (require authentication)
	protected := r.Group("/reviews")
	protected.Use(middleware.AuthRequired(jwtSecret))
	{
		protected.POST("", reviewHandler.CreateReview)
		protected.PUT("/:id", reviewHandler.UpdateReview)
		protected.DELETE("/:id", reviewHandler.DeleteReview)
	}

	// Admin routes for moderation
	admin := r.Group("/admin/reviews")
	admin.Use(middleware.AuthRequired(jwtSecret), middleware.AdminRequired())
	{
		admin.GET("/stats", reviewHandler.GetReviewStats)
		admin.POST("/:id/moderate", reviewHandler.ModerateReview)
	}
}
