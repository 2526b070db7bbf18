package mongodb

import (
	"context"
	"fmt"
	"math"
	"time"

	"ecoride/internal/models"
	"ecoride/internal/repositories/interfaces"
	"ecoride/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CacheService is the subset of the redis cache the document repositories use.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type reviewRepository struct {
	collection *mongo.Collection
	cache      CacheService
}

func NewReviewRepository(db *mongo.Database, cache CacheService) interfaces.ReviewRepository {
	return &reviewRepository{
		collection: db.Collection("reviews"),
		cache:      cache,
	}
}

// EnsureReviewIndexes creates the unique (trip_id, user_id) index that backs
// the one-review-per-passenger-per-trip rule. Call it once at startup.
func EnsureReviewIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("reviews").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trip_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "target_user_id", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
	})
	if err != nil {
		return &models.QueryError{Store: "mongodb", Op: "create review indexes", Err: err}
	}
	return nil
}

// Basic CRUD operations
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) (primitive.ObjectID, error) {
	review.ID = primitive.NewObjectID()
	review.CreatedAt = time.Now()
	if review.Status == "" {
		review.Status = models.ReviewStatusPending
	}

	_, err := r.collection.InsertOne(ctx, review)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, &models.BookingError{
				RideID: review.TripID,
				Reason: "a review for this trip already exists",
			}
		}
		return primitive.NilObjectID, &models.PersistenceError{Entity: "review", ID: review.ID.Hex(), Err: err}
	}

	r.invalidateRatingCaches(ctx, review)

	return review.ID, nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var review models.Review
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &models.QueryError{Store: "mongodb", Op: "find review by id", Err: mongo.ErrNoDocuments}
		}
		return nil, &models.QueryError{Store: "mongodb", Op: "find review by id", Err: err}
	}

	return &review, nil
}

func (r *reviewRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
	)
	if err != nil {
		return &models.PersistenceError{Entity: "review", ID: id.Hex(), Err: err}
	}

	if result.MatchedCount == 0 {
		return &models.QueryError{Store: "mongodb", Op: "update review", Err: mongo.ErrNoDocuments}
	}

	if touchesAverages(updates) {
		if review, err := r.FindByID(ctx, id); err == nil {
			r.invalidateRatingCaches(ctx, review)
		}
	}

	return nil
}

// touchesAverages reports whether an update changes the values the rating
// aggregations read: the rating itself or the status that decides whether the
// review counts at all.
func touchesAverages(updates map[string]interface{}) bool {
	_, rating := updates["rating"]
	_, status := updates["status"]
	return rating || status
}

func (r *reviewRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReviewStatus, moderatorID int64) error {
	// Update invalidates the rating caches; moderation changes which reviews
	// count toward averages.
	return r.Update(ctx, id, map[string]interface{}{
		"status":       status,
		"moderated_by": moderatorID,
	})
}

func (r *reviewRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	review, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return &models.PersistenceError{Entity: "review", ID: id.Hex(), Err: err}
	}

	r.invalidateRatingCaches(ctx, review)

	return nil
}

// Lookups
func (r *reviewRepository) FindAll(ctx context.Context, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return r.findReviewsWithFilter(ctx, bson.M{}, params)
}

func (r *reviewRepository) FindByUserID(ctx context.Context, userID int64, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return r.findReviewsWithFilter(ctx, bson.M{"user_id": userID}, params)
}

func (r *reviewRepository) FindByTripID(ctx context.Context, tripID int64, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return r.findReviewsWithFilter(ctx, bson.M{"trip_id": tripID}, params)
}

func (r *reviewRepository) FindByTargetUserID(ctx context.Context, targetUserID int64, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	return r.findReviewsWithFilter(ctx, bson.M{"target_user_id": targetUserID}, params)
}

func (r *reviewRepository) FindByUserAndTrip(ctx context.Context, userID, tripID int64) (*models.Review, error) {
	filter := bson.M{
		"user_id": userID,
		"trip_id": tripID,
	}

	var review models.Review
	err := r.collection.FindOne(ctx, filter).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, &models.QueryError{Store: "mongodb", Op: "find review by user and trip", Err: err}
	}

	return &review, nil
}

// Counters
func (r *reviewRepository) Count(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, &models.QueryError{Store: "mongodb", Op: "count reviews", Err: err}
	}

	return count, nil
}

func (r *reviewRepository) CountByStatus(ctx context.Context, status models.ReviewStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, &models.QueryError{Store: "mongodb", Op: "count reviews by status", Err: err}
	}

	return count, nil
}

// Aggregates
func (r *reviewRepository) GetAverageRatingForTrip(ctx context.Context, tripID int64) (*float64, error) {
	cacheKey := fmt.Sprintf("%s%d", utils.CacheTripRatingPrefix, tripID)
	if r.cache != nil {
		var cached float64
		if err := r.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"trip_id": tripID, "status": models.ReviewStatusApproved}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"avg_rating": bson.M{"$avg": "$rating"},
		}}},
	}

	avg, _, err := r.runAverage(ctx, pipeline, "average rating for trip")
	if err != nil {
		return nil, err
	}

	if avg != nil && r.cache != nil {
		r.cache.Set(ctx, cacheKey, *avg, utils.AverageRatingCacheTTL)
	}

	return avg, nil
}

func (r *reviewRepository) CalculateAverageRating(ctx context.Context, targetUserID int64) (*float64, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"target_user_id": targetUserID, "status": models.ReviewStatusApproved}}},
		{{Key: "$group", Value: bson.M{
			"_id":        nil,
			"avg_rating": bson.M{"$avg": "$rating"},
			"count":      bson.M{"$sum": 1},
		}}},
	}

	return r.runAverage(ctx, pipeline, "average rating for user")
}

// runAverage executes a $group/$avg pipeline. A nil average means no matching
// documents, which callers must treat differently from a true zero.
func (r *reviewRepository) runAverage(ctx context.Context, pipeline mongo.Pipeline, op string) (*float64, int64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, &models.QueryError{Store: "mongodb", Op: op, Err: err}
	}
	defer cursor.Close(ctx)

	var result struct {
		AvgRating float64 `bson:"avg_rating"`
		Count     int64   `bson:"count"`
	}

	if !cursor.Next(ctx) {
		return nil, 0, cursor.Err()
	}

	if err := cursor.Decode(&result); err != nil {
		return nil, 0, &models.QueryError{Store: "mongodb", Op: op, Err: err}
	}

	avg := math.Round(result.AvgRating*100) / 100
	return &avg, result.Count, nil
}

// Helper methods
func (r *reviewRepository) findReviewsWithFilter(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Review, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, &models.QueryError{Store: "mongodb", Op: "count reviews", Err: err}
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, &models.QueryError{Store: "mongodb", Op: "find reviews", Err: err}
	}
	defer cursor.Close(ctx)

	var reviews []*models.Review
	for cursor.Next(ctx) {
		var review models.Review
		if err := cursor.Decode(&review); err != nil {
			return nil, 0, &models.QueryError{Store: "mongodb", Op: "decode review", Err: err}
		}
		reviews = append(reviews, &review)
	}

	return reviews, total, cursor.Err()
}

// Cache operations
func (r *reviewRepository) invalidateRatingCaches(ctx context.Context, review *models.Review) {
	if r.cache == nil {
		return
	}

	r.cache.Delete(ctx, fmt.Sprintf("%s%d", utils.CacheTripRatingPrefix, review.TripID))
	if review.TargetUserID != nil {
		r.cache.Delete(ctx, fmt.Sprintf("%s%d", utils.CacheUserRatingPrefix, *review.TargetUserID))
	}
}
