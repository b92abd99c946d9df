// internal/domain/models/post.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a community forum post. Deleting a post only clears IsActive.
type Post struct {
	ID       primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID  `bson:"user_id" json:"user"`
	Title    string              `bson:"title" json:"title"`
	Content  string              `bson:"content" json:"content"`
	Tags     []string            `bson:"tags" json:"tags"` // lowercase, trimmed
	SchemeID *primitive.ObjectID `bson:"scheme_id,omitempty" json:"scheme,omitempty"`
	Likes    []Like              `bson:"likes" json:"likes"`
	Comments []Comment           `bson:"comments" json:"comments"`
	IsActive bool                `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsLikedBy reports whether userID has liked the post.
func (p Post) IsLikedBy(userID primitive.ObjectID) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

type Like struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type Comment struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// TagCount is one row of the trending tags aggregation.
type TagCount struct {
	Name  string `bson:"_id" json:"name"`
	Count int    `bson:"count" json:"count"`
}
