package interfaces

import (
	"context"

	"ecoride/internal/models"
)

type LocationRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Location, error)
	FindByName(ctx context.Context, name string) (*models.Location, error)
	List(ctx context.Context) ([]*models.Location, error)
	Create(ctx context.Context, location *models.Location) error
}
