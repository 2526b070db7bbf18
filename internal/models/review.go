package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Review is an independent aggregate stored in the document store. It
// references rides and users by id only; there is no foreign-key enforcement
// across stores.
type Review struct {
	ID           primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	TripID       int64                  `json:"trip_id" bson:"trip_id" validate:"required"`
	UserID       int64                  `json:"user_id" bson:"user_id" validate:"required"`
	TargetUserID *int64                 `json:"target_user_id,omitempty" bson:"target_user_id,omitempty"`
	Rating       float64                `json:"rating" bson:"rating" validate:"required,rating_value"`
	Comment      string                 `json:"comment" bson:"comment" validate:"required"`
	Status       ReviewStatus           `json:"status" bson:"status"`
	ModeratedBy  *int64                 `json:"moderated_by,omitempty" bson:"moderated_by,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
	UpdatedAt    *time.Time             `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}
