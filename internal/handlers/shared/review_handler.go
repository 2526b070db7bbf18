package handlers

import (
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/services"
	"ecoride/internal/utils"
	"ecoride/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewHandler struct {
	reviewService services.ReviewService
	userRepo      interfaces.UserRepository
}

func NewReviewHandler(reviewService services.ReviewService, userRepo interfaces.UserRepository) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		userRepo:      userRepo,
	}
}

// CreateReview submits a review for a completed trip
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var request validators.ReviewCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	author, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), author, &request)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Review submitted successfully", review)
}

// UpdateReview edits the author's own review and resets it to pending
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID, ok := parseReviewID(c)
	if !ok {
		return
	}

	var request validators.ReviewUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	author, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	review, err := h.reviewService.UpdateReview(c.Request.Context(), author, reviewID, &request)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review updated successfully", review)
}

// GetReview returns one review
func (h *ReviewHandler) GetReview(c *gin.Context) {
	reviewID, ok := parseReviewID(c)
	if !ok {
		return
	}

	review, err := h.reviewService.GetReview(c.Request.Context(), reviewID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review retrieved successfully", review)
}

// DeleteReview removes the author's review; admins can remove any
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	reviewID, ok := parseReviewID(c)
	if !ok {
		return
	}

	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.reviewService.DeleteReview(c.Request.Context(), actor, reviewID); err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review deleted successfully", nil)
}

// GetTripReviews lists reviews for one trip
func (h *ReviewHandler) GetTripReviews(c *gin.Context) {
	tripID, ok := parseIDParam(c, "trip_id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, meta, err := h.reviewService.GetTripReviews(c.Request.Context(), tripID, params)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{
		Pagination: meta,
	})
}

// GetTripAverageRating returns the approved-review average, or no data
func (h *ReviewHandler) GetTripAverageRating(c *gin.Context) {
	tripID, ok := parseIDParam(c, "trip_id")
	if !ok {
		return
	}

	avg, err := h.reviewService.GetTripAverageRating(c.Request.Context(), tripID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Average rating retrieved successfully", map[string]interface{}{
		"trip_id":        tripID,
		"average_rating": avg,
		"has_reviews":    avg != nil,
	})
}

// GetUserReviews lists reviews written by one user
func (h *ReviewHandler) GetUserReviews(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, meta, err := h.reviewService.GetUserReviews(c.Request.Context(), userID, params)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{
		Pagination: meta,
	})
}

// GetReviewsAboutUser lists reviews targeting one user
func (h *ReviewHandler) GetReviewsAboutUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reviews, meta, err := h.reviewService.GetReviewsAboutUser(c.Request.Context(), userID, params)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Reviews retrieved successfully", reviews, &utils.Meta{
		Pagination: meta,
	})
}

type moderateReviewRequest struct {
	Approve bool `json:"approve"`
}

// ModerateReview approves or rejects a pending review (admin only)
func (h *ReviewHandler) ModerateReview(c *gin.Context) {
	reviewID, ok := parseReviewID(c)
	if !ok {
		return
	}

	var request moderateReviewRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	moderator, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	review, err := h.reviewService.ModerateReview(c.Request.Context(), moderator, reviewID, request.Approve)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review moderated successfully", review)
}

// GetReviewStats summarises the moderation queue (admin only)
func (h *ReviewHandler) GetReviewStats(c *gin.Context) {
	stats, err := h.reviewService.GetReviewStats(c.Request.Context())
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Review stats retrieved successfully", stats)
}

func parseReviewID(c *gin.Context) (primitive.ObjectID, bool) {
	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid review ID")
		return primitive.NilObjectID, false
	}
	return reviewID, true
}
