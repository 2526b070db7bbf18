package interfaces

import (
	"context"
	"time"

	"ecoride/internal/models"
	"ecoride/internal/utils"
)

type RideSortBy string

const (
	RideSortByDepartureTime RideSortBy = "departure_time"
	RideSortByPrice         RideSortBy = "price"
)

// RideSearchFilters is the single predicate shared by SearchRides and
// CountSearchResults so page content and totals cannot drift apart.
type RideSearchFilters struct {
	DepartureID *int64
	ArrivalID   *int64
	Date        *time.Time
	MaxPrice    *float64
	Status      *models.RideStatus
}

type RideRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Ride, error)
	FindByDriver(ctx context.Context, driverID int64) ([]*models.Ride, error)
	FindAvailableRides(ctx context.Context, params *utils.PaginationParams) ([]*models.Ride, int64, error)
	FindPopularRides(ctx context.Context, limit int) ([]*models.Ride, error)

	SearchRides(ctx context.Context, filters *RideSearchFilters, sortBy RideSortBy, page, limit int) ([]*models.Ride, error)
	CountSearchResults(ctx context.Context, filters *RideSearchFilters) (int64, error)

	// Save upserts the aggregate. Updates run inside one transaction and use
	// an optimistic version check; models.ErrVersionConflict is returned when
	// a concurrent writer got there first.
	Save(ctx context.Context, ride *models.Ride) error
	Delete(ctx context.Context, ride *models.Ride) error
}
