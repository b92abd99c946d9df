// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a citizen, a government official, or an NGO account.
//
// NOTE:
//   - PasswordHash is never serialized to JSON.
//   - Users are never hard-deleted.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"` // lowercase, trimmed
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // user | govt_official | ngo
	Permissions  []string           `bson:"permissions,omitempty" json:"permissions,omitempty"`

	Location Location `bson:"location" json:"location"`
	Profile  Profile  `bson:"profile" json:"profile"`

	AppliedSchemes     []AppliedScheme      `bson:"applied_schemes,omitempty" json:"appliedSchemes,omitempty"`
	FavoriteSchemes    []primitive.ObjectID `bson:"favorite_schemes,omitempty" json:"favoriteSchemes,omitempty"`
	InteractionHistory []Interaction        `bson:"interaction_history,omitempty" json:"interactionHistory,omitempty"`

	EmailVerified bool       `bson:"email_verified" json:"emailVerified"`
	PhoneVerified bool       `bson:"phone_verified" json:"phoneVerified"`
	LastLogin     *time.Time `bson:"last_login,omitempty" json:"lastLogin,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasPermission reports whether the user was granted perm.
func (u User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Location is where the user lives; used for state-based scheme matching.
type Location struct {
	State       string       `bson:"state,omitempty" json:"state,omitempty"`
	District    string       `bson:"district,omitempty" json:"district,omitempty"`
	Pincode     string       `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Address     string       `bson:"address,omitempty" json:"address,omitempty"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

type Coordinates struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Profile holds the citizen details eligibility rules usually ask about.
type Profile struct {
	Phone       string         `bson:"phone,omitempty" json:"phone,omitempty"`
	DateOfBirth *time.Time     `bson:"date_of_birth,omitempty" json:"dateOfBirth,omitempty"`
	Gender      string         `bson:"gender,omitempty" json:"gender,omitempty"`
	Category    string         `bson:"category,omitempty" json:"category,omitempty"`
	Income      *Income        `bson:"income,omitempty" json:"income,omitempty"`
	Documents   []UserDocument `bson:"documents,omitempty" json:"documents,omitempty"`
}

type Income struct {
	Annual   float64 `bson:"annual" json:"annual"`
	Currency string  `bson:"currency" json:"currency"` // defaults to INR
}

// UserDocument records an identity or certificate document the user holds.
type UserDocument struct {
	Type       string     `bson:"type" json:"type" validate:"required,oneof=aadhar pan voter_id driving_license passport income_certificate caste_certificate" label:"Document type"`
	Number     string     `bson:"number,omitempty" json:"number,omitempty" validate:"max=50" label:"Document number"`
	Verified   bool       `bson:"verified" json:"verified"`
	UploadedAt *time.Time `bson:"uploaded_at,omitempty" json:"uploadedAt,omitempty"`
}

// AppliedScheme is the user-side mirror of an Application.
type AppliedScheme struct {
	SchemeID      primitive.ObjectID `bson:"scheme_id" json:"scheme"`
	AppliedAt     time.Time          `bson:"applied_at" json:"appliedAt"`
	Status        string             `bson:"status" json:"status"`
	ApplicationID string             `bson:"application_id,omitempty" json:"applicationId,omitempty"`
}

// Interaction is one entry of the user's search/chat history.
type Interaction struct {
	Type string    `bson:"type" json:"type"`
	Text string    `bson:"text" json:"text"`
	At   time.Time `bson:"at" json:"at"`
}
