package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/utils"
	"ecoride/internal/validators"
	"ecoride/pkg/logger"

	"github.com/google/uuid"
)

type RideService interface {
	// Lifecycle
	CreateRide(ctx context.Context, driver *models.User, request *validators.RideCreateRequest) (*models.Ride, error)
	UpdateRide(ctx context.Context, driver *models.User, rideID int64, request *validators.RideUpdateRequest) (*models.Ride, error)
	StartRide(ctx context.Context, driver *models.User, rideID int64) (*models.Ride, error)
	CompleteRide(ctx context.Context, driver *models.User, rideID int64) (*models.Ride, error)
	CancelRide(ctx context.Context, actor *models.User, rideID int64) (*models.Ride, error)
	DeleteRide(ctx context.Context, actor *models.User, rideID int64) error

	// Bookings
	BookRide(ctx context.Context, passenger *models.User, rideID int64, seats int) (*models.Ride, error)
	CancelBooking(ctx context.Context, passenger *models.User, rideID int64) (*models.Ride, error)

	// Queries
	GetRideDetails(ctx context.Context, rideID int64) (*RideDetails, error)
	SearchRides(ctx context.Context, query *RideSearchQuery) ([]*models.Ride, *utils.PaginationMeta, error)
	GetDriverRides(ctx context.Context, driver *models.User) ([]*models.Ride, error)
	GetPopularRides(ctx context.Context, limit int) ([]*models.Ride, error)
}

// RideDetails couples the relational aggregate with the review average that
// lives in the document store.
type RideDetails struct {
	Ride          *models.Ride `json:"ride"`
	AverageRating *float64     `json:"average_rating"`
}

type RideSearchQuery struct {
	DepartureID *int64     `json:"departure_id" form:"departure_id"`
	ArrivalID   *int64     `json:"arrival_id" form:"arrival_id"`
	Date        *time.Time `json:"date" form:"date" time_format:"2006-01-02"`
	MaxPrice    *float64   `json:"max_price" form:"max_price"`
	SortBy      string     `json:"sort_by" form:"sort_by"`
	Page        int        `json:"page" form:"page"`
	PageSize    int        `json:"page_size" form:"page_size"`
}

type rideService struct {
	rideRepo     interfaces.RideRepository
	locationRepo interfaces.LocationRepository
	vehicleRepo  interfaces.VehicleRepository
	reviewRepo   interfaces.ReviewRepository
	cache        CacheService
	logger       *logger.Logger
}

func NewRideService(
	rideRepo interfaces.RideRepository,
	locationRepo interfaces.LocationRepository,
	vehicleRepo interfaces.VehicleRepository,
	reviewRepo interfaces.ReviewRepository,
	cache CacheService,
	logger *logger.Logger,
) RideService {
	return &rideService{
		rideRepo:     rideRepo,
		locationRepo: locationRepo,
		vehicleRepo:  vehicleRepo,
		reviewRepo:   reviewRepo,
		cache:        cache,
		logger:       logger,
	}
}

// Lifecycle

func (s *rideService) CreateRide(ctx context.Context, driver *models.User, request *validators.RideCreateRequest) (*models.Ride, error) {
	if driver.Role != models.UserRoleDriver && !driver.IsAdmin() {
		return nil, &models.UnauthorizedError{UserID: driver.ID, Action: "create", Resource: "ride"}
	}

	if errs := validators.ValidateRideCreate(request); errs != nil {
		return nil, errs
	}

	departure, err := s.locationRepo.FindByID(ctx, request.DepartureID)
	if err != nil {
		errs := models.NewValidationError()
		errs.Add("departure_id", "Unknown departure location")
		return nil, errs
	}

	arrival, err := s.locationRepo.FindByID(ctx, request.ArrivalID)
	if err != nil {
		errs := models.NewValidationError()
		errs.Add("arrival_id", "Unknown arrival location")
		return nil, errs
	}

	price, err := models.NewMoney(request.Price, request.Currency)
	if err != nil {
		errs := models.NewValidationError()
		errs.Add("price", err.Error())
		return nil, errs
	}

	var vehicle *models.Vehicle
	if request.VehicleID != nil {
		vehicle, err = s.vehicleRepo.FindByID(ctx, *request.VehicleID)
		if err != nil {
			errs := models.NewValidationError()
			errs.Add("vehicle_id", "Unknown vehicle")
			return nil, errs
		}
		if vehicle.DriverID != driver.ID {
			return nil, &models.UnauthorizedError{UserID: driver.ID, Action: "use", Resource: "vehicle"}
		}
	}

	arrivalTime, carbon := estimateTrip(departure, arrival, request.DepartureTime, request.Seats)

	ride := &models.Ride{
		Driver:          driver,
		Vehicle:         vehicle,
		Departure:       departure,
		Arrival:         arrival,
		DepartureTime:   request.DepartureTime,
		ArrivalTime:     arrivalTime,
		PricePerSeat:    price,
		TotalSeats:      request.Seats,
		AvailableSeats:  request.Seats,
		CarbonFootprint: carbon,
		Status:          models.RideStatusPlanned,
	}

	if err := s.rideRepo.Save(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidatePopularRides(ctx)
	s.logger.LogRideEvent(ride.ID, "ride_created", map[string]interface{}{
		"driver_id": driver.ID,
		"seats":     ride.TotalSeats,
	})

	return ride, nil
}

func (s *rideService) UpdateRide(ctx context.Context, driver *models.User, rideID int64, request *validators.RideUpdateRequest) (*models.Ride, error) {
	if errs := validators.ValidateRideUpdate(request); errs != nil {
		return nil, errs
	}

	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.IsOwnedBy(driver) {
		return nil, &models.UnauthorizedError{UserID: driver.ID, Action: "update", Resource: "ride"}
	}
	if !ride.Status.IsModifiable() {
		return nil, &models.BookingError{RideID: ride.ID, Reason: fmt.Sprintf("ride in status %s cannot be modified", ride.Status)}
	}

	if request.DepartureTime != nil {
		ride.DepartureTime = *request.DepartureTime
	}
	if request.Price != nil {
		price, err := models.NewMoney(*request.Price, ride.PricePerSeat.Currency())
		if err != nil {
			errs := models.NewValidationError()
			errs.Add("price", err.Error())
			return nil, errs
		}
		ride.PricePerSeat = price
	}
	if request.Seats != nil {
		booked := ride.BookedSeats()
		if *request.Seats < booked {
			return nil, &models.BookingError{RideID: ride.ID, Reason: fmt.Sprintf("cannot reduce to %d seats, %d already booked", *request.Seats, booked)}
		}
		ride.TotalSeats = *request.Seats
		ride.AvailableSeats = *request.Seats - booked
	}

	// Seat count or departure changes shift the estimates.
	ride.ArrivalTime, ride.CarbonFootprint = estimateTrip(ride.Departure, ride.Arrival, ride.DepartureTime, ride.TotalSeats)

	if err := s.saveRide(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidatePopularRides(ctx)

	return ride, nil
}

func (s *rideService) StartRide(ctx context.Context, driver *models.User, rideID int64) (*models.Ride, error) {
	return s.transitionRide(ctx, driver, rideID, "start", func(ride *models.Ride) error {
		return ride.Start()
	})
}

func (s *rideService) CompleteRide(ctx context.Context, driver *models.User, rideID int64) (*models.Ride, error) {
	return s.transitionRide(ctx, driver, rideID, "complete", func(ride *models.Ride) error {
		return ride.Complete()
	})
}

func (s *rideService) CancelRide(ctx context.Context, actor *models.User, rideID int64) (*models.Ride, error) {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.IsOwnedBy(actor) && !actor.IsAdmin() {
		return nil, &models.UnauthorizedError{UserID: actor.ID, Action: "cancel", Resource: "ride"}
	}

	if err := ride.Cancel(); err != nil {
		return nil, err
	}

	if err := s.saveRide(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidatePopularRides(ctx)
	s.logger.LogRideEvent(ride.ID, "ride_cancelled", map[string]interface{}{
		"actor_id":     actor.ID,
		"reservations": len(ride.Reservations),
	})

	return ride, nil
}

func (s *rideService) DeleteRide(ctx context.Context, actor *models.User, rideID int64) error {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return err
	}

	if !ride.IsOwnedBy(actor) && !actor.IsAdmin() {
		return &models.UnauthorizedError{UserID: actor.ID, Action: "delete", Resource: "ride"}
	}
	// Finished rides stay on record; reviews keep referencing them.
	if !ride.Status.IsCancellable() {
		return &models.BookingError{RideID: ride.ID, Reason: fmt.Sprintf("ride in status %s cannot be deleted", ride.Status)}
	}
	if len(ride.Reservations) > 0 {
		return &models.BookingError{RideID: ride.ID, Reason: "ride with active reservations cannot be deleted, cancel it instead"}
	}

	if err := s.rideRepo.Delete(ctx, ride); err != nil {
		return err
	}

	s.invalidatePopularRides(ctx)

	return nil
}

// Bookings

func (s *rideService) BookRide(ctx context.Context, passenger *models.User, rideID int64, seats int) (*models.Ride, error) {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("BK-%s", uuid.New().String())
	if err := ride.BookSeats(passenger.ID, seats, reference); err != nil {
		return nil, err
	}

	if err := s.saveRide(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidatePopularRides(ctx)
	s.logger.LogRideEvent(ride.ID, "seats_booked", map[string]interface{}{
		"passenger_id": passenger.ID,
		"seats":        seats,
		"reference":    reference,
	})

	return ride, nil
}

func (s *rideService) CancelBooking(ctx context.Context, passenger *models.User, rideID int64) (*models.Ride, error) {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if err := ride.CancelBooking(passenger.ID); err != nil {
		return nil, err
	}

	if err := s.saveRide(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidatePopularRides(ctx)
	s.logger.LogRideEvent(ride.ID, "booking_cancelled", map[string]interface{}{
		"passenger_id": passenger.ID,
	})

	return ride, nil
}

// Queries

func (s *rideService) GetRideDetails(ctx context.Context, rideID int64) (*RideDetails, error) {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	details := &RideDetails{Ride: ride}

	// The review store is a separate system; a failure there degrades the
	// response instead of failing it.
	avg, err := s.reviewRepo.GetAverageRatingForTrip(ctx, rideID)
	if err != nil {
		s.logger.WithError(err).WithRideID(rideID).Warn("Failed to load average rating")
	} else {
		details.AverageRating = avg
	}

	return details, nil
}

func (s *rideService) SearchRides(ctx context.Context, query *RideSearchQuery) ([]*models.Ride, *utils.PaginationMeta, error) {
	status := models.RideStatusPlanned
	filters := &interfaces.RideSearchFilters{
		DepartureID: query.DepartureID,
		ArrivalID:   query.ArrivalID,
		Date:        query.Date,
		MaxPrice:    query.MaxPrice,
		Status:      &status,
	}

	if query.MaxPrice != nil && *query.MaxPrice <= 0 {
		errs := models.NewValidationError()
		errs.Add("max_price", "Maximum price must be positive")
		return nil, nil, errs
	}

	sortBy := interfaces.RideSortByDepartureTime
	if query.SortBy == "price" {
		sortBy = interfaces.RideSortByPrice
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = utils.DefaultPageSize
	}
	params := utils.NewPaginationParams(query.Page, pageSize, string(sortBy), "asc")

	rides, err := s.rideRepo.SearchRides(ctx, filters, sortBy, params.Page, params.PageSize)
	if err != nil {
		return nil, nil, err
	}

	total, err := s.rideRepo.CountSearchResults(ctx, filters)
	if err != nil {
		return nil, nil, err
	}

	return rides, utils.CreatePaginationMeta(params, total), nil
}

func (s *rideService) GetDriverRides(ctx context.Context, driver *models.User) ([]*models.Ride, error) {
	return s.rideRepo.FindByDriver(ctx, driver.ID)
}

func (s *rideService) GetPopularRides(ctx context.Context, limit int) ([]*models.Ride, error) {
	if limit <= 0 || limit > utils.MaxPageSize {
		limit = utils.DefaultPageSize
	}

	var cached []*models.Ride
	if err := s.cache.Get(ctx, utils.CachePopularRidesKey, &cached); err == nil {
		return cached, nil
	}

	rides, err := s.rideRepo.FindPopularRides(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, utils.CachePopularRidesKey, rides, utils.PopularRidesCacheTTL); err != nil {
		s.logger.WithError(err).Warn("Failed to cache popular rides")
	}

	return rides, nil
}

// Helpers

func (s *rideService) transitionRide(ctx context.Context, driver *models.User, rideID int64, action string, transition func(*models.Ride) error) (*models.Ride, error) {
	ride, err := s.rideRepo.FindByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if !ride.IsOwnedBy(driver) {
		return nil, &models.UnauthorizedError{UserID: driver.ID, Action: action, Resource: "ride"}
	}

	if err := transition(ride); err != nil {
		return nil, err
	}

	if err := s.saveRide(ctx, ride); err != nil {
		return nil, err
	}

	s.logger.LogRideEvent(ride.ID, "status_changed", map[string]interface{}{
		"status": ride.Status,
	})

	return ride, nil
}

// saveRide persists the aggregate and translates a lost optimistic-lock race
// into a booking failure the caller can retry.
func (s *rideService) saveRide(ctx context.Context, ride *models.Ride) error {
	err := s.rideRepo.Save(ctx, ride)
	if errors.Is(err, models.ErrVersionConflict) {
		return &models.BookingError{RideID: ride.ID, Reason: "the ride was modified concurrently, please retry"}
	}
	return err
}

func (s *rideService) invalidatePopularRides(ctx context.Context) {
	if err := s.cache.Delete(ctx, utils.CachePopularRidesKey); err != nil {
		s.logger.WithError(err).Warn("Failed to invalidate popular rides cache")
	}
}

// estimateTrip derives the arrival time and the per-passenger carbon footprint
// from the great-circle distance between the two locations. Locations without
// coordinates fall back to a flat one hour estimate and a zero footprint.
func estimateTrip(departure, arrival *models.Location, departureTime time.Time, seats int) (time.Time, float64) {
	distance, ok := departure.DistanceTo(arrival)
	if !ok {
		return departureTime.Add(time.Duration(utils.DefaultTravelMins) * time.Minute), 0
	}

	minutes := utils.EstimateTravelMinutes(distance, utils.AverageSpeedKMH)
	arrivalTime := departureTime.Add(time.Duration(minutes) * time.Minute)

	totalGrams := distance * utils.CarbonGramsPerKM
	perPassenger := totalGrams / float64(seats+1)

	return arrivalTime, perPassenger
}
