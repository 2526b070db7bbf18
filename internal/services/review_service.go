package services

import (
	"context"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/utils"
	"ecoride/internal/validators"
	"ecoride/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService interface {
	CreateReview(ctx context.Context, author *models.User, request *validators.ReviewCreateRequest) (*models.Review, error)
	UpdateReview(ctx context.Context, author *models.User, reviewID primitive.ObjectID, request *validators.ReviewUpdateRequest) (*models.Review, error)
	ModerateReview(ctx context.Context, moderator *models.User, reviewID primitive.ObjectID, approve bool) (*models.Review, error)
	DeleteReview(ctx context.Context, actor *models.User, reviewID primitive.ObjectID) error

	GetReview(ctx context.Context, reviewID primitive.ObjectID) (*models.Review, error)
	GetTripReviews(ctx context.Context, tripID int64, params *utils.PaginationParams) ([]*models.Review, *utils.PaginationMeta, error)
	GetUserReviews(ctx context.Context, userID int64, params *utils.PaginationParams) ([]*models.Review, *utils.PaginationMeta, error)
	GetReviewsAboutUser(ctx context.Context, targetUserID int64, params *utils.PaginationParams) ([]*models.Review, *utils.PaginationMeta, error)
	GetTripAverageRating(ctx context.Context, tripID int64) (*float64, error)
	GetReviewStats(ctx context.Context) (*ReviewStats, error)
}

// ReviewStats summarises the moderation queue for the admin dashboard.
type ReviewStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

type reviewService struct {
	reviewRepo interfaces.ReviewRepository
	rideRepo   interfaces.RideRepository
	userRepo   interfaces.UserRepository
	logger     *logger.Logger
}

func NewReviewService(
	reviewRepo interfaces.ReviewRepository,
	rideRepo interfaces.RideRepository,
	userRepo interfaces.UserRepository,
	logger *logger.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		rideRepo:   rideRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// CreateReview stores a pending review. Only passengers who held a reservation
// on a completed ride may review it, and only once; the unique index on
// (trip_id, user_id) backstops the application-level check.
func (s *reviewService) CreateReview(ctx context.Context, author *models.User, request *validators.ReviewCreateRequest) (*models.Review, error) {
	if errs := validators.ValidateReviewCreate(request); errs != nil {
		return nil, errs
	}

	ride, err := s.rideRepo.FindByID(ctx, request.TripID)
	if err != nil {
		return nil, err
	}

	if ride.Status != models.RideStatusCompleted {
		return nil, &models.BookingError{RideID: ride.ID, Reason: "only completed rides can be reviewed"}
	}
	if ride.IsOwnedBy(author) {
		return nil, &models.UnauthorizedError{UserID: author.ID, Action: "review", Resource: "own ride"}
	}
	if ride.ReservationFor(author.ID) == nil {
		return nil, &models.UnauthorizedError{UserID: author.ID, Action: "review", Resource: "ride without a reservation"}
	}

	existing, err := s.reviewRepo.FindByUserAndTrip(ctx, author.ID, request.TripID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &models.BookingError{RideID: ride.ID, Reason: "a review for this trip already exists"}
	}

	targetUserID := request.TargetUserID
	if targetUserID == nil && ride.Driver != nil {
		targetUserID = &ride.Driver.ID
	}

	review := &models.Review{
		TripID:       request.TripID,
		UserID:       author.ID,
		TargetUserID: targetUserID,
		Rating:       request.Rating,
		Comment:      request.Comment,
		Status:       models.ReviewStatusPending,
		Metadata:     request.Metadata,
	}

	if _, err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"review_id": review.ID.Hex(),
		"trip_id":   review.TripID,
		"user_id":   review.UserID,
	}).Info("Review submitted")

	return review, nil
}

func (s *reviewService) UpdateReview(ctx context.Context, author *models.User, reviewID primitive.ObjectID, request *validators.ReviewUpdateRequest) (*models.Review, error) {
	if errs := validators.ValidateReviewUpdate(request); errs != nil {
		return nil, errs
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.UserID != author.ID {
		return nil, &models.UnauthorizedError{UserID: author.ID, Action: "update", Resource: "review"}
	}

	updates := map[string]interface{}{}
	if request.Rating != nil {
		updates["rating"] = *request.Rating
	}
	if request.Comment != nil {
		updates["comment"] = *request.Comment
	}

	// Edits go back through moderation.
	updates["status"] = models.ReviewStatusPending

	if err := s.reviewRepo.Update(ctx, reviewID, updates); err != nil {
		return nil, err
	}

	return s.reviewRepo.FindByID(ctx, reviewID)
}

// ModerateReview approves or rejects a pending review and refreshes the
// target user's cached rating figures. The rating refresh is best effort; the
// relational copy lags the document store rather than blocking moderation.
func (s *reviewService) ModerateReview(ctx context.Context, moderator *models.User, reviewID primitive.ObjectID, approve bool) (*models.Review, error) {
	if !moderator.IsAdmin() {
		return nil, &models.UnauthorizedError{UserID: moderator.ID, Action: "moderate", Resource: "review"}
	}

	status := models.ReviewStatusRejected
	if approve {
		status = models.ReviewStatusApproved
	}

	if err := s.reviewRepo.UpdateStatus(ctx, reviewID, status, moderator.ID); err != nil {
		return nil, err
	}

	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	if review.TargetUserID != nil {
		s.refreshUserRating(ctx, *review.TargetUserID)
	}

	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor *models.User, reviewID primitive.ObjectID) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}

	if review.UserID != actor.ID && !actor.IsAdmin() {
		return &models.UnauthorizedError{UserID: actor.ID, Action: "delete", Resource: "review"}
	}

	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		return err
	}

	if review.TargetUserID != nil {
		s.refreshUserRating(ctx, *review.TargetUserID)
	}

	return nil
}

func (s *reviewService) GetReview(ctx context.Context, reviewID primitive.ObjectID) (*models.Review, error) {
	return s.reviewRepo.FindByID(ctx, reviewID)
}

func (s *reviewService) GetTripReviews(ctx context.Context, tripID int64, params *utils.PaginationParams) ([]*models.Review, *utils.PaginationMeta, error) {
	reviews, total, err := s.reviewRepo.FindByTripID(ctx, tripID, params)
	if err != nil {
		return nil, nil, err
	}
	return reviews, utils.CreatePaginationMeta(params, total), nil
}

func (s *reviewService) GetUserReviews(ctx context.Context, userID int64, params *utils.PaginationParams) ([]*models.Review, *utils.PaginationMeta, error) {
	reviews, total, err := s.reviewRepo.FindByUserID(ctx, userID, params)
	if err != nil {
		return nil, nil, err
	}
	return reviews, utils.CreatePaginationMeta(params, total), nil
}

func (s *reviewService) GetReviewsAboutUser(ctx context.Context, targetUserID int64, params *utils.PaginationParams) ([]*models.Review, *utils.PaginationMeta, error) {
	reviews, total, err := s.reviewRepo.FindByTargetUserID(ctx, targetUserID, params)
	if err != nil {
		return nil, nil, err
	}
	return reviews, utils.CreatePaginationMeta(params, total), nil
}

// GetTripAverageRating returns nil when the trip has no approved reviews.
func (s *reviewService) GetTripAverageRating(ctx context.Context, tripID int64) (*float64, error) {
	return s.reviewRepo.GetAverageRatingForTrip(ctx, tripID)
}

func (s *reviewService) GetReviewStats(ctx context.Context) (*ReviewStats, error) {
	total, err := s.reviewRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &ReviewStats{Total: total}

	for _, entry := range []struct {
		status models.ReviewStatus
		dest   *int64
	}{
		{models.ReviewStatusPending, &stats.Pending},
		{models.ReviewStatusApproved, &stats.Approved},
		{models.ReviewStatusRejected, &stats.Rejected},
	} {
		count, err := s.reviewRepo.CountByStatus(ctx, entry.status)
		if err != nil {
			return nil, err
		}
		*entry.dest = count
	}

	return stats, nil
}

func (s *reviewService) refreshUserRating(ctx context.Context, targetUserID int64) {
	avg, count, err := s.reviewRepo.CalculateAverageRating(ctx, targetUserID)
	if err != nil {
		s.logger.WithError(err).WithUserID(targetUserID).Warn("Failed to recompute user rating")
		return
	}

	rating := float64(0)
	if avg != nil {
		rating = *avg
	}

	if err := s.userRepo.UpdateRating(ctx, targetUserID, rating, count); err != nil {
		s.logger.WithError(err).WithUserID(targetUserID).Warn("Failed to persist user rating")
	}
}
