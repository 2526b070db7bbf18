package validators

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"ecoride/internal/models"
	"ecoride/internal/utils"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report field names as their json tags so validation errors line up with
	// the request payload.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("rating_value", validateRatingValue)
	validate.RegisterValidation("currency_code", validateCurrencyCode)
	validate.RegisterValidation("future_date", validateFutureDate)
	validate.RegisterValidation("seat_count", validateSeatCount)
}

// ValidateStruct runs tag validation and returns nil when the struct is valid.
func ValidateStruct(s interface{}) *models.ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	result := models.NewValidationError()
	for _, fieldErr := range err.(validator.ValidationErrors) {
		result.Add(fieldErr.Field(), getErrorMessage(fieldErr))
	}

	return result
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "rating_value":
		return "Rating must be between 1.0 and 5.0"
	case "currency_code":
		return "Invalid currency code"
	case "future_date":
		return "Date must be in the future"
	case "seat_count":
		return fmt.Sprintf("Seat count must be between %d and %d", utils.MinSeatsPerRide, utils.MaxSeatsPerRide)
	default:
		return fmt.Sprintf("Validation failed for %s", err.Field())
	}
}

func validateRatingValue(fl validator.FieldLevel) bool {
	rating := fl.Field().Float()
	return rating >= utils.MinRating && rating <= utils.MaxRating
}

func validateCurrencyCode(fl validator.FieldLevel) bool {
	return utils.ValidateCurrencyCode(fl.Field().String())
}

func validateFutureDate(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return date.After(time.Now())
}

func validateSeatCount(fl validator.FieldLevel) bool {
	seats := fl.Field().Int()
	return seats >= utils.MinSeatsPerRide && seats <= utils.MaxSeatsPerRide
}
