package interfaces

import (
	"context"

	"ecoride/internal/models"
)

type VehicleRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Vehicle, error)
	FindByDriver(ctx context.Context, driverID int64) ([]*models.Vehicle, error)
	Create(ctx context.Context, vehicle *models.Vehicle) error
}
