// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application statuses.
const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusRejected    = "rejected"
	StatusUnderReview = "under_review"
)

// Application links a user to a scheme from all_schemes.
// There is at most one Application per (user, scheme).
type Application struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user"`
	SchemeID    primitive.ObjectID `bson:"scheme_id" json:"scheme"`
	Status      string             `bson:"status" json:"status"`
	ReferenceID string             `bson:"reference_id" json:"referenceId"` // shown to the citizen

	AppliedAt  time.Time           `bson:"applied_at" json:"appliedAt"`
	ReviewedBy *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time          `bson:"reviewed_at,omitempty" json:"reviewedAt,omitempty"`
	Notes      string              `bson:"notes,omitempty" json:"notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsValidApplicationStatus checks if a value is a known application status.
func IsValidApplicationStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusUnderReview:
		return true
	}
	return false
}

// CanTransition reports whether a reviewer may move an application from
// one status to another.
//
//	pending      -> approved | rejected | under_review
//	under_review -> approved | rejected
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusUnderReview
	case StatusUnderReview:
		return to == StatusApproved || to == StatusRejected
	}
	return false
}
