package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// handleDomainError maps the typed domain errors onto HTTP responses. Anything
// unrecognised is a 500; storage failures deliberately stay opaque to clients.
func handleDomainError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		utils.ValidationErrorResponse(c, validationErr.Fields)
		return
	}

	var notFoundErr *models.RideNotFoundError
	if errors.As(err, &notFoundErr) {
		utils.NotFoundResponse(c, notFoundErr.Error())
		return
	}

	var bookingErr *models.BookingError
	if errors.As(err, &bookingErr) {
		utils.ErrorResponse(c, http.StatusConflict, "BOOKING_FAILED", bookingErr.Error())
		return
	}

	var unauthorizedErr *models.UnauthorizedError
	if errors.As(err, &unauthorizedErr) {
		utils.ForbiddenResponse(c, unauthorizedErr.Error())
		return
	}

	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, mongo.ErrNoDocuments) {
		utils.NotFoundResponse(c, utils.ErrNotFound)
		return
	}

	utils.InternalServerErrorResponse(c)
}

// currentUser resolves the authenticated identity set by the auth middleware
// into a full domain user.
func currentUser(c *gin.Context, userRepo interfaces.UserRepository) (*models.User, bool) {
	rawID, exists := c.Get("user_id")
	if !exists {
		utils.UnauthorizedResponse(c)
		return nil, false
	}

	userID, ok := rawID.(int64)
	if !ok {
		utils.UnauthorizedResponse(c)
		return nil, false
	}

	user, err := userRepo.FindByID(c.Request.Context(), userID)
	if err != nil {
		utils.UnauthorizedResponse(c)
		return nil, false
	}

	return user, true
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		utils.BadRequestResponse(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
