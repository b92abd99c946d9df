// internal/domain/models/preapplication.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Eligibility outcomes stored on a PreApplication.
const (
	EligibilityEligible      = "eligible"
	EligibilityNotEligible   = "not_eligible"
	EligibilityPendingReview = "pending_review"
)

// PreApplication is the saved outcome of an eligibility quiz for one
// (user, scheme) pair. A later check for the same pair overwrites it.
type PreApplication struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                 primitive.ObjectID `bson:"user_id" json:"user"`
	SchemeID               primitive.ObjectID `bson:"scheme_id" json:"scheme"`
	EligibilityStatus      string             `bson:"eligibility_status" json:"eligibilityStatus"`
	AIResponse             AIResponse         `bson:"ai_response" json:"aiResponse"`
	UserAnswers            map[string]string  `bson:"user_answers" json:"userAnswers"` // question -> "Yes" | "No"
	ApprovedForApplication bool               `bson:"approved_for_application" json:"approvedForApplication"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// AIResponse is what the evaluator said about the answers.
type AIResponse struct {
	Eligible  bool     `bson:"eligible" json:"eligible"`
	Reason    string   `bson:"reason" json:"reason"`
	Score     int      `bson:"score" json:"score"`
	Questions []string `bson:"questions" json:"questions"`
}
