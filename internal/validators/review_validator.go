package validators

import (
	"strings"

	"ecoride/internal/models"
	"ecoride/internal/utils"
)

type ReviewCreateRequest struct {
	TripID       int64                  `json:"trip_id" validate:"required"`
	TargetUserID *int64                 `json:"target_user_id"`
	Rating       float64                `json:"rating" validate:"required,rating_value"`
	Comment      string                 `json:"comment" validate:"required"`
	Metadata     map[string]interface{} `json:"metadata"`
}

type ReviewUpdateRequest struct {
	Rating  *float64 `json:"rating" validate:"omitempty,rating_value"`
	Comment *string  `json:"comment"`
}

func ValidateReviewCreate(req *ReviewCreateRequest) *models.ValidationError {
	errs := ValidateStruct(req)

	if strings.TrimSpace(req.Comment) == "" {
		if errs == nil {
			errs = models.NewValidationError()
		}
		errs.Add("comment", "Comment must not be empty")
	} else if len(req.Comment) > utils.MaxCommentLength {
		if errs == nil {
			errs = models.NewValidationError()
		}
		errs.Add("comment", "Comment is too long")
	}

	if errs != nil && errs.HasErrors() {
		return errs
	}
	return nil
}

func ValidateReviewUpdate(req *ReviewUpdateRequest) *models.ValidationError {
	errs := ValidateStruct(req)

	if req.Comment != nil && strings.TrimSpace(*req.Comment) == "" {
		if errs == nil {
			errs = models.NewValidationError()
		}
		errs.Add("comment", "Comment must not be empty")
	}

	if errs != nil && errs.HasErrors() {
		return errs
	}
	return nil
}
