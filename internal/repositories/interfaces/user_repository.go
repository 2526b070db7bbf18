package interfaces

import (
	"context"

	"ecoride/internal/models"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email models.Email) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	UpdateRating(ctx context.Context, userID int64, avg float64, count int64) error
}
