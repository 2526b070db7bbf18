package validators

import (
	"time"

	"ecoride/internal/models"
)

type RideCreateRequest struct {
	DepartureID   int64     `json:"departure_id" validate:"required"`
	ArrivalID     int64     `json:"arrival_id" validate:"required"`
	DepartureTime time.Time `json:"departure_time" validate:"required,future_date"`
	Price         float64   `json:"price" validate:"required,gt=0,lte=1000"`
	Currency      string    `json:"currency" validate:"required,currency_code"`
	Seats         int       `json:"seats" validate:"required,seat_count"`
	VehicleID     *int64    `json:"vehicle_id"`
}

type RideUpdateRequest struct {
	DepartureTime *time.Time `json:"departure_time" validate:"omitempty,future_date"`
	Price         *float64   `json:"price" validate:"omitempty,gt=0,lte=1000"`
	Seats         *int       `json:"seats" validate:"omitempty,seat_count"`
}

func ValidateRideCreate(req *RideCreateRequest) *models.ValidationError {
	errs := ValidateStruct(req)

	if req.DepartureID != 0 && req.DepartureID == req.ArrivalID {
		if errs == nil {
			errs = models.NewValidationError()
		}
		errs.Add("arrival_id", "Arrival must differ from departure")
	}

	if errs != nil && errs.HasErrors() {
		return errs
	}
	return nil
}

func ValidateRideUpdate(req *RideUpdateRequest) *models.ValidationError {
	return ValidateStruct(req)
}
