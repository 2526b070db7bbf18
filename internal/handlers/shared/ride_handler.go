package handlers

import (
	"context"
	"strconv"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/services"
	"ecoride/internal/utils"
	"ecoride/internal/validators"

	"github.com/gin-gonic/gin"
)

type RideHandler struct {
	rideService services.RideService
	userRepo    interfaces.UserRepository
}

func NewRideHandler(rideService services.RideService, userRepo interfaces.UserRepository) *RideHandler {
	return &RideHandler{
		rideService: rideService,
		userRepo:    userRepo,
	}
}

// CreateRide publishes a new ride for the authenticated driver
func (h *RideHandler) CreateRide(c *gin.Context) {
	var request validators.RideCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	driver, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	ride, err := h.rideService.CreateRide(c.Request.Context(), driver, &request)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Ride created successfully", ride)
}

// UpdateRide changes price, seats or departure time on a planned ride
func (h *RideHandler) UpdateRide(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var request validators.RideUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	driver, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	ride, err := h.rideService.UpdateRide(c.Request.Context(), driver, rideID, &request)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride updated successfully", ride)
}

// GetRide returns the ride with its average review rating
func (h *RideHandler) GetRide(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	details, err := h.rideService.GetRideDetails(c.Request.Context(), rideID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride retrieved successfully", details)
}

// SearchRides lists planned rides matching the query filters
func (h *RideHandler) SearchRides(c *gin.Context) {
	var query services.RideSearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid search query: "+err.Error())
		return
	}

	rides, meta, err := h.rideService.SearchRides(c.Request.Context(), &query)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Rides retrieved successfully", rides, &utils.Meta{
		Pagination: meta,
	})
}

// GetPopularRides returns the most booked upcoming rides
func (h *RideHandler) GetPopularRides(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageSize)))

	rides, err := h.rideService.GetPopularRides(c.Request.Context(), limit)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Popular rides retrieved successfully", rides)
}

// GetMyRides lists the authenticated driver's rides
func (h *RideHandler) GetMyRides(c *gin.Context) {
	driver, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	rides, err := h.rideService.GetDriverRides(c.Request.Context(), driver)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Rides retrieved successfully", rides)
}

type bookRideRequest struct {
	Seats int `json:"seats" binding:"required"`
}

// BookRide reserves seats for the authenticated passenger
func (h *RideHandler) BookRide(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var request bookRideRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	passenger, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	ride, err := h.rideService.BookRide(c.Request.Context(), passenger, rideID, request.Seats)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.CreatedResponse(c, "Seats booked successfully", ride)
}

// CancelBooking releases the passenger's reservation
func (h *RideHandler) CancelBooking(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	passenger, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	ride, err := h.rideService.CancelBooking(c.Request.Context(), passenger, rideID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Booking cancelled successfully", ride)
}

// StartRide moves a planned ride into progress
func (h *RideHandler) StartRide(c *gin.Context) {
	h.transition(c, "Ride started successfully", h.rideService.StartRide)
}

// CompleteRide finishes a ride in progress
func (h *RideHandler) CompleteRide(c *gin.Context) {
	h.transition(c, "Ride completed successfully", h.rideService.CompleteRide)
}

// CancelRide cancels the ride for every passenger
func (h *RideHandler) CancelRide(c *gin.Context) {
	h.transition(c, "Ride cancelled successfully", h.rideService.CancelRide)
}

// DeleteRide removes a planned ride without reservations
func (h *RideHandler) DeleteRide(c *gin.Context) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	if err := h.rideService.DeleteRide(c.Request.Context(), actor, rideID); err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, "Ride deleted successfully", nil)
}

func (h *RideHandler) transition(c *gin.Context, message string, op func(context.Context, *models.User, int64) (*models.Ride, error)) {
	rideID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor, ok := currentUser(c, h.userRepo)
	if !ok {
		return
	}

	ride, err := op(c.Request.Context(), actor, rideID)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	utils.SuccessResponse(c, message, ride)
}
