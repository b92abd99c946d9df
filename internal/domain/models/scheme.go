// internal/domain/models/scheme.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scheme is a curated government welfare scheme.
//
// Embedding is derived from the textual fields (see system/embedding) and is
// regenerated whenever any of them changes. It is not sent to clients.
type Scheme struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceURL string             `bson:"source_url" json:"sourceUrl"`
	Name      string             `bson:"name" json:"name"`
	Acronym   string             `bson:"acronym" json:"acronym"`
	Tags      []string           `bson:"tags" json:"tags"`
	State     string             `bson:"state" json:"state"`
	Level     string             `bson:"level" json:"level"` // Central | State | Other | ""

	Overview    string `bson:"overview" json:"overview"`
	Eligibility string `bson:"eligibility" json:"eligibility"`
	Benefits    string `bson:"benefits" json:"benefits"`
	Documents   string `bson:"documents" json:"documents"`
	Apply       string `bson:"apply" json:"apply"`
	FAQ         []FAQ  `bson:"faq" json:"faq"`

	Embedding []float32 `bson:"embedding" json:"-"`

	IsActive       bool   `bson:"is_active" json:"isActive"`
	IsFeatured     bool   `bson:"is_featured" json:"isFeatured"`
	Priority       string `bson:"priority" json:"priority"` // low | medium | high | critical
	ApprovalStatus string `bson:"approval_status,omitempty" json:"approvalStatus,omitempty"`

	CreatedBy      *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	LastModifiedBy *primitive.ObjectID `bson:"last_modified_by,omitempty" json:"lastModifiedBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// FAQ is one question/answer pair shown on a scheme page.
type FAQ struct {
	Question string `bson:"question" json:"question" validate:"required" label:"FAQ question"`
	Answer   string `bson:"answer" json:"answer" validate:"required" label:"FAQ answer"`
}

// Scheme levels.
var SchemeLevels = []string{"Central", "State", "Other", ""}

// Scheme priorities.
var SchemePriorities = []string{"low", "medium", "high", "critical"}

// Scheme approval states written by the approve endpoint.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)
