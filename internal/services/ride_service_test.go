package services_test

import (
	"context"
	"testing"
	"time"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/services"
	"ecoride/internal/utils"
	"ecoride/internal/validators"
	"ecoride/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	require.NoError(t, err)
	return log
}

func ptr[T any](v T) *T { return &v }

func testDriver() *models.User {
	return &models.User{ID: 1, Username: "jean", Role: models.UserRoleDriver, Active: true}
}

func testPassenger() *models.User {
	return &models.User{ID: 7, Username: "marie", Role: models.UserRolePassenger, Active: true}
}

func testParis() *models.Location {
	return &models.Location{ID: 10, Name: "Paris", Latitude: ptr(48.8566), Longitude: ptr(2.3522)}
}

func testLyon() *models.Location {
	return &models.Location{ID: 20, Name: "Lyon", Latitude: ptr(45.7578), Longitude: ptr(4.8320)}
}

func testRide(seats int) *models.Ride {
	return &models.Ride{
		ID:             42,
		Driver:         testDriver(),
		Departure:      testParis(),
		Arrival:        testLyon(),
		DepartureTime:  time.Now().Add(24 * time.Hour),
		ArrivalTime:    time.Now().Add(32 * time.Hour),
		PricePerSeat:   models.MustMoney(25, "EUR"),
		TotalSeats:     seats,
		AvailableSeats: seats,
		Status:         models.RideStatusPlanned,
		Version:        1,
	}
}

func newRideService(
	rideRepo *MockRideRepository,
	locationRepo *MockLocationRepository,
	vehicleRepo *MockVehicleRepository,
	reviewRepo *MockReviewRepository,
	cache *MockCacheService,
	t *testing.T,
) services.RideService {
	return services.NewRideService(rideRepo, locationRepo, vehicleRepo, reviewRepo, cache, newTestLogger(t))
}

func TestCreateRide_Success(t *testing.T) {
	rideRepo := new(MockRideRepository)
	locationRepo := new(MockLocationRepository)
	vehicleRepo := new(MockVehicleRepository)
	reviewRepo := new(MockReviewRepository)
	cache := new(MockCacheService)

	service := newRideService(rideRepo, locationRepo, vehicleRepo, reviewRepo, cache, t)

	ctx := context.Background()
	departureTime := time.Now().Add(48 * time.Hour)

	locationRepo.On("FindByID", ctx, int64(10)).Return(testParis(), nil)
	locationRepo.On("FindByID", ctx, int64(20)).Return(testLyon(), nil)
	rideRepo.On("Save", ctx, mock.AnythingOfType("*models.Ride")).Return(nil)
	cache.On("Delete", ctx, utils.CachePopularRidesKey).Return(nil)

	ride, err := service.CreateRide(ctx, testDriver(), &validators.RideCreateRequest{
		DepartureID:   10,
		ArrivalID:     20,
		DepartureTime: departureTime,
		Price:         25.50,
		Currency:      "EUR",
		Seats:         3,
	})

	require.NoError(t, err)
	assert.Equal(t, models.RideStatusPlanned, ride.Status)
	assert.Equal(t, 3, ride.TotalSeats)
	assert.Equal(t, 3, ride.AvailableSeats)
	assert.Equal(t, 25.50, ride.PricePerSeat.Amount())
	assert.True(t, ride.ArrivalTime.After(departureTime))
	assert.Greater(t, ride.CarbonFootprint, 0.0)

	rideRepo.AssertExpectations(t)
	locationRepo.AssertExpectations(t)
}

func TestCreateRide_NonDriverRejected(t *testing.T) {
	service := newRideService(new(MockRideRepository), new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	_, err := service.CreateRide(context.Background(), testPassenger(), &validators.RideCreateRequest{})

	var unauthorizedErr *models.UnauthorizedError
	require.ErrorAs(t, err, &unauthorizedErr)
}

func TestCreateRide_ValidationFailures(t *testing.T) {
	service := newRideService(new(MockRideRepository), new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	future := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name    string
		request *validators.RideCreateRequest
		field   string
	}{
		{
			"price above maximum",
			&validators.RideCreateRequest{DepartureID: 10, ArrivalID: 20, DepartureTime: future, Price: 1500, Currency: "EUR", Seats: 3},
			"price",
		},
		{
			"zero price",
			&validators.RideCreateRequest{DepartureID: 10, ArrivalID: 20, DepartureTime: future, Price: 0, Currency: "EUR", Seats: 3},
			"price",
		},
		{
			"too many seats",
			&validators.RideCreateRequest{DepartureID: 10, ArrivalID: 20, DepartureTime: future, Price: 25, Currency: "EUR", Seats: 9},
			"seats",
		},
		{
			"departure in the past",
			&validators.RideCreateRequest{DepartureID: 10, ArrivalID: 20, DepartureTime: time.Now().Add(-time.Hour), Price: 25, Currency: "EUR", Seats: 3},
			"departure_time",
		},
		{
			"same departure and arrival",
			&validators.RideCreateRequest{DepartureID: 10, ArrivalID: 10, DepartureTime: future, Price: 25, Currency: "EUR", Seats: 3},
			"arrival_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateRide(context.Background(), testDriver(), tt.request)

			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Fields, tt.field)
		})
	}
}

func TestBookRide_Success(t *testing.T) {
	rideRepo := new(MockRideRepository)
	cache := new(MockCacheService)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), cache, t)

	ctx := context.Background()
	ride := testRide(3)

	rideRepo.On("FindByID", ctx, int64(42)).Return(ride, nil)
	rideRepo.On("Save", ctx, ride).Return(nil)
	cache.On("Delete", ctx, utils.CachePopularRidesKey).Return(nil)

	booked, err := service.BookRide(ctx, testPassenger(), 42, 2)

	require.NoError(t, err)
	assert.Equal(t, 1, booked.AvailableSeats)
	require.NotNil(t, booked.ReservationFor(7))
	assert.Contains(t, booked.ReservationFor(7).Reference, "BK-")

	rideRepo.AssertExpectations(t)
}

// Two passengers race for the last seat; the repository reports a version
// conflict for the loser and the service surfaces it as a booking failure.
func TestBookRide_LastSeatConflict(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()

	rideRepo.On("FindByID", ctx, int64(42)).Return(testRide(1), nil)
	rideRepo.On("Save", ctx, mock.AnythingOfType("*models.Ride")).Return(models.ErrVersionConflict)

	_, err := service.BookRide(ctx, testPassenger(), 42, 1)

	var bookingErr *models.BookingError
	require.ErrorAs(t, err, &bookingErr)
	assert.Contains(t, bookingErr.Reason, "concurrently")
}

func TestBookRide_NoSeatsLeft(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()
	ride := testRide(2)
	ride.AvailableSeats = 0

	rideRepo.On("FindByID", ctx, int64(42)).Return(ride, nil)

	_, err := service.BookRide(ctx, testPassenger(), 42, 1)

	var bookingErr *models.BookingError
	require.ErrorAs(t, err, &bookingErr)
	rideRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestBookRide_RideNotFound(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()
	rideRepo.On("FindByID", ctx, int64(99)).Return(nil, &models.RideNotFoundError{RideID: 99})

	_, err := service.BookRide(ctx, testPassenger(), 99, 1)

	var notFoundErr *models.RideNotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestCancelBooking_RestoresSeats(t *testing.T) {
	rideRepo := new(MockRideRepository)
	cache := new(MockCacheService)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), cache, t)

	ctx := context.Background()
	ride := testRide(3)
	require.NoError(t, ride.BookSeats(7, 2, "BK-x"))

	rideRepo.On("FindByID", ctx, int64(42)).Return(ride, nil)
	rideRepo.On("Save", ctx, ride).Return(nil)
	cache.On("Delete", ctx, utils.CachePopularRidesKey).Return(nil)

	updated, err := service.CancelBooking(ctx, testPassenger(), 42)

	require.NoError(t, err)
	assert.Equal(t, 3, updated.AvailableSeats)
	assert.Nil(t, updated.ReservationFor(7))
}

func TestStartRide_OnlyOwner(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()
	rideRepo.On("FindByID", ctx, int64(42)).Return(testRide(3), nil)

	_, err := service.StartRide(ctx, testPassenger(), 42)

	var unauthorizedErr *models.UnauthorizedError
	require.ErrorAs(t, err, &unauthorizedErr)
	rideRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCompleteRide_RequiresInProgress(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()
	rideRepo.On("FindByID", ctx, int64(42)).Return(testRide(3), nil)

	_, err := service.CompleteRide(ctx, testDriver(), 42)

	var bookingErr *models.BookingError
	require.ErrorAs(t, err, &bookingErr)
}

func TestSearchRides_PushesFiltersIntoQuery(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()
	maxPrice := 30.0

	matchFilters := mock.MatchedBy(func(filters *interfaces.RideSearchFilters) bool {
		return filters.MaxPrice != nil && *filters.MaxPrice == maxPrice &&
			filters.Status != nil && *filters.Status == models.RideStatusPlanned &&
			filters.DepartureID != nil && *filters.DepartureID == 10
	})

	rideRepo.On("SearchRides", ctx, matchFilters, interfaces.RideSortByPrice, 1, 20).
		Return([]*models.Ride{testRide(3)}, nil)
	rideRepo.On("CountSearchResults", ctx, matchFilters).Return(int64(1), nil)

	rides, meta, err := service.SearchRides(ctx, &services.RideSearchQuery{
		DepartureID: ptr(int64(10)),
		MaxPrice:    &maxPrice,
		SortBy:      "price",
	})

	require.NoError(t, err)
	assert.Len(t, rides, 1)
	assert.Equal(t, int64(1), meta.Total)

	rideRepo.AssertExpectations(t)
}

func TestSearchRides_RejectsNonPositiveMaxPrice(t *testing.T) {
	service := newRideService(new(MockRideRepository), new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	_, _, err := service.SearchRides(context.Background(), &services.RideSearchQuery{
		MaxPrice: ptr(-5.0),
	})

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "max_price")
}

func TestGetPopularRides_CacheMiss(t *testing.T) {
	rideRepo := new(MockRideRepository)
	cache := new(MockCacheService)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), cache, t)

	ctx := context.Background()
	popular := []*models.Ride{testRide(3)}

	cache.On("Get", ctx, utils.CachePopularRidesKey, mock.Anything).Return(assert.AnError)
	rideRepo.On("FindPopularRides", ctx, 5).Return(popular, nil)
	cache.On("Set", ctx, utils.CachePopularRidesKey, popular, utils.PopularRidesCacheTTL).Return(nil)

	rides, err := service.GetPopularRides(ctx, 5)

	require.NoError(t, err)
	assert.Len(t, rides, 1)
	cache.AssertExpectations(t)
	rideRepo.AssertExpectations(t)
}

func TestGetPopularRides_CacheHit(t *testing.T) {
	rideRepo := new(MockRideRepository)
	cache := new(MockCacheService)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), cache, t)

	ctx := context.Background()

	cache.On("Get", ctx, utils.CachePopularRidesKey, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*[]*models.Ride)
			*dest = []*models.Ride{testRide(2)}
		}).
		Return(nil)

	rides, err := service.GetPopularRides(ctx, 5)

	require.NoError(t, err)
	assert.Len(t, rides, 1)
	rideRepo.AssertNotCalled(t, "FindPopularRides", mock.Anything, mock.Anything)
}

func TestGetRideDetails_IncludesAverageRating(t *testing.T) {
	rideRepo := new(MockRideRepository)
	reviewRepo := new(MockReviewRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), reviewRepo, new(MockCacheService), t)

	ctx := context.Background()
	avg := 4.5

	rideRepo.On("FindByID", ctx, int64(42)).Return(testRide(3), nil)
	reviewRepo.On("GetAverageRatingForTrip", ctx, int64(42)).Return(&avg, nil)

	details, err := service.GetRideDetails(ctx, 42)

	require.NoError(t, err)
	require.NotNil(t, details.AverageRating)
	assert.Equal(t, 4.5, *details.AverageRating)
}

func TestGetRideDetails_NoReviewsMeansNilAverage(t *testing.T) {
	rideRepo := new(MockRideRepository)
	reviewRepo := new(MockReviewRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), reviewRepo, new(MockCacheService), t)

	ctx := context.Background()

	rideRepo.On("FindByID", ctx, int64(42)).Return(testRide(3), nil)
	reviewRepo.On("GetAverageRatingForTrip", ctx, int64(42)).Return(nil, nil)

	details, err := service.GetRideDetails(ctx, 42)

	require.NoError(t, err)
	assert.Nil(t, details.AverageRating)
}

func TestDeleteRide_FinishedRidesAreKept(t *testing.T) {
	for _, status := range []models.RideStatus{models.RideStatusCompleted, models.RideStatusCancelled} {
		rideRepo := new(MockRideRepository)
		service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

		ctx := context.Background()
		ride := testRide(3)
		ride.Status = status

		rideRepo.On("FindByID", ctx, int64(42)).Return(ride, nil)

		err := service.DeleteRide(ctx, testDriver(), 42)

		var bookingErr *models.BookingError
		require.ErrorAs(t, err, &bookingErr, "status %s", status)
		rideRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	}
}

func TestDeleteRide_BlockedByReservations(t *testing.T) {
	rideRepo := new(MockRideRepository)
	service := newRideService(rideRepo, new(MockLocationRepository), new(MockVehicleRepository), new(MockReviewRepository), new(MockCacheService), t)

	ctx := context.Background()
	ride := testRide(3)
	require.NoError(t, ride.BookSeats(7, 1, "BK-x"))

	rideRepo.On("FindByID", ctx, int64(42)).Return(ride, nil)

	err := service.DeleteRide(ctx, testDriver(), 42)

	var bookingErr *models.BookingError
	require.ErrorAs(t, err, &bookingErr)
	rideRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
