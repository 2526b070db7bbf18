package utils

import "time"

// Application Constants
const (
	AppName    = "EcoRide"
	AppVersion = "1.0.0"

	// Default values
	DefaultLanguage = "fr"
	DefaultCurrency = "EUR"
	DefaultTimeZone = "UTC"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Ride Constants
	MinSeatsPerRide    = 1
	MaxSeatsPerRide    = 8
	MinPricePerSeat    = 0.0   // exclusive lower bound
	MaxPricePerSeat    = 1000.0
	AverageSpeedKMH    = 50.0
	DefaultTravelMins  = 60
	CarbonGramsPerKM   = 120.0
	MaxSearchDateRange = 90 * 24 * time.Hour

	// Review Constants
	MinRating        = 1.0
	MaxRating        = 5.0
	MaxCommentLength = 1000

	// Cache TTLs
	PopularRidesCacheTTL  = 5 * time.Minute
	AverageRatingCacheTTL = 15 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidToken     = "invalid token"
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrNotFound         = "not found"
	ErrValidationFailed = "validation failed"
	ErrRideNotFound     = "ride not found"
	ErrUserNotFound     = "user not found"
)

// Cache Keys
const (
	CacheRidePrefix       = "ride:"
	CachePopularRidesKey  = "rides:popular"
	CacheTripRatingPrefix = "trip_rating:"
	CacheUserRatingPrefix = "user_rating:"
)

// Geographic Constants
const (
	EarthRadiusKM    = 6371.0
	EarthRadiusMiles = 3959.0
)
