package interfaces

import (
	"context"

	"ecoride/internal/models"
	"ecoride/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, review *models.Review) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReviewStatus, moderatorID int64) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Lookups
	FindAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Review, int64, error)
	FindByUserID(ctx context.Context, userID int64, params *utils.PaginationParams) ([]*models.Review, int64, error)
	FindByTripID(ctx context.Context, tripID int64, params *utils.PaginationParams) ([]*models.Review, int64, error)
	FindByTargetUserID(ctx context.Context, targetUserID int64, params *utils.PaginationParams) ([]*models.Review, int64, error)
	FindByUserAndTrip(ctx context.Context, userID, tripID int64) (*models.Review, error)

	// Counters
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.ReviewStatus) (int64, error)

	// Aggregates; both return nil when no reviews exist so that "no data" is
	// distinguishable from an average of zero.
	GetAverageRatingForTrip(ctx context.Context, tripID int64) (*float64, error)
	CalculateAverageRating(ctx context.Context, targetUserID int64) (*float64, int64, error)
}
