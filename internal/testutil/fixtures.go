package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. The password is always
// "password123" (bcrypt, minimum cost).
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateCitizen creates a test user with the "user" role.
func (f *Fixtures) CreateCitizen(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleUser)
}

// CreateOfficial creates a test govt_official with every permission.
func (f *Fixtures) CreateOfficial(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, name, email, models.RoleGovtOfficial)
	if _, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"permissions": models.AllPermissions}}); err != nil {
		f.t.Fatalf("failed to grant permissions: %v", err)
	}
	u.Permissions = models.AllPermissions
	return u
}

// CreateScheme inserts an active curated scheme.
func (f *Fixtures) CreateScheme(ctx context.Context, name, state string, tags ...string) models.Scheme {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Scheme{
		ID:          primitive.NewObjectID(),
		Name:        name,
		State:       state,
		Level:       "State",
		Tags:        tags,
		Overview:    name + " overview",
		Eligibility: "Residents of " + state,
		FAQ:         []models.FAQ{},
		Embedding:   []float32{},
		IsActive:    true,
		Priority:    "medium",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if _, err := f.db.Collection("schemes").InsertOne(ctx, s); err != nil {
		f.t.Fatalf("failed to create test scheme: %v", err)
	}
	return s
}

// CreateAllScheme inserts a bulk-corpus scheme document and returns its id.
func (f *Fixtures) CreateAllScheme(ctx context.Context, name, criteria string) primitive.ObjectID {
	f.t.Helper()

	id := primitive.NewObjectID()
	doc := bson.M{
		"_id":                       id,
		"schemeName":                name,
		"eligibilityDescription_md": criteria,
	}
	if _, err := f.db.Collection("all_schemes").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test all_scheme: %v", err)
	}
	return id
}

// CreatePost inserts an active post by userID.
func (f *Fixtures) CreatePost(ctx context.Context, userID primitive.ObjectID, title string, tags ...string) models.Post {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Post{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Title:     title,
		Content:   title + " content",
		Tags:      tags,
		Likes:     []models.Like{},
		Comments:  []models.Comment{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if _, err := f.db.Collection("posts").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

// CreateNotification inserts a notification for userID.
func (f *Fixtures) CreateNotification(ctx context.Context, userID primitive.ObjectID, msg string) models.Notification {
	f.t.Helper()

	now := time.Now().UTC()
	n := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   msg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}
