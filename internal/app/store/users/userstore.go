package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/jansethu/mysarkar/internal/app/system/normalize"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "user"|"govt_official"|"ngo"`)
	errNoPassword     = errors.New("password hash is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email. Returns ErrNotFound if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

// Create inserts a new user after normalizing & validating fields.
// The caller hashes the password; Create never sees plaintext.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.PasswordHash == "" {
		return models.User{}, errNoPassword
	}
	if u.Profile.Income != nil && u.Profile.Income.Currency == "" {
		u.Profile.Income.Currency = "INR"
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

// TouchLastLogin records a successful login.
func (s *Store) TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login": at.UTC()}})
	return err
}

// ProfileUpdate carries the fields a profile update may change.
// Zero values are left untouched.
type ProfileUpdate struct {
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Permissions  []string
	Location     models.Location
	Profile      models.Profile
}

// setDoc builds the $set document. Location and profile are merged key by key
// so a partial update never wipes sibling fields.
func (u ProfileUpdate) setDoc() bson.M {
	set := bson.M{}
	put := func(key, val string) {
		if val != "" {
			set[key] = val
		}
	}

	put("name", normalize.Name(u.Name))
	put("email", normalize.Email(u.Email))
	put("password_hash", u.PasswordHash)
	put("role", u.Role)
	if u.Permissions != nil {
		set["permissions"] = u.Permissions
	}

	put("location.state", u.Location.State)
	put("location.district", u.Location.District)
	put("location.pincode", u.Location.Pincode)
	put("location.address", u.Location.Address)
	if u.Location.Coordinates != nil {
		set["location.coordinates"] = u.Location.Coordinates
	}

	put("profile.phone", u.Profile.Phone)
	put("profile.gender", u.Profile.Gender)
	put("profile.category", u.Profile.Category)
	if u.Profile.DateOfBirth != nil {
		set["profile.date_of_birth"] = u.Profile.DateOfBirth.UTC()
	}
	if inc := u.Profile.Income; inc != nil {
		set["profile.income.annual"] = inc.Annual
		currency := inc.Currency
		if currency == "" {
			currency = "INR"
		}
		set["profile.income.currency"] = currency
	}
	if u.Profile.Documents != nil {
		set["profile.documents"] = u.Profile.Documents
	}
	return set
}

// Update merges upd into the stored user and returns the updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	if upd.Role != "" && !models.IsValidRole(upd.Role) {
		return nil, errBadRole
	}
	set := upd.setDoc()
	set["updated_at"] = time.Now().UTC()

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case wafflemongo.IsDup(err):
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

// SetEmailVerified sets the verification flag an official grants or revokes.
func (s *Store) SetEmailVerified(ctx context.Context, id primitive.ObjectID, verified bool) (*models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"email_verified": verified, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("verify user: %w", err)
	}
	return &u, nil
}

func (s *Store) updateMatched(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFavorite adds schemeID to the user's favorites. Adding twice is a no-op.
func (s *Store) AddFavorite(ctx context.Context, id, schemeID primitive.ObjectID) error {
	return s.updateMatched(ctx, id, bson.M{"$addToSet": bson.M{"favorite_schemes": schemeID}})
}

// RemoveFavorite removes schemeID from the user's favorites.
func (s *Store) RemoveFavorite(ctx context.Context, id, schemeID primitive.ObjectID) error {
	return s.updateMatched(ctx, id, bson.M{"$pull": bson.M{"favorite_schemes": schemeID}})
}

// AddAppliedScheme records an application on the user document unless the
// scheme is already listed.
func (s *Store) AddAppliedScheme(ctx context.Context, id primitive.ObjectID, as models.AppliedScheme) error {
	if as.AppliedAt.IsZero() {
		as.AppliedAt = time.Now().UTC()
	}
	if as.Status == "" {
		as.Status = models.StatusPending
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "applied_schemes.scheme_id": bson.M{"$ne": as.SchemeID}},
		bson.M{"$push": bson.M{"applied_schemes": as}},
	)
	return err
}

// SetAppliedStatus mirrors a reviewed application's status onto the user.
func (s *Store) SetAppliedStatus(ctx context.Context, id, schemeID primitive.ObjectID, status string) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "applied_schemes.scheme_id": schemeID},
		bson.M{"$set": bson.M{"applied_schemes.$.status": status}},
	)
	return err
}

// AppendInteraction appends one entry to the user's interaction history.
func (s *Store) AppendInteraction(ctx context.Context, id primitive.ObjectID, it models.Interaction) error {
	if it.At.IsZero() {
		it.At = time.Now().UTC()
	}
	return s.updateMatched(ctx, id, bson.M{"$push": bson.M{"interaction_history": it}})
}

// CountByRole counts users holding role.
func (s *Store) CountByRole(ctx context.Context, role string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"role": role})
}

// Summary is the small user view embedded in listings.
type Summary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Phone string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// Summaries loads name/email/phone for ids, keyed by id.
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Summary, error) {
	out := make(map[primitive.ObjectID]Summary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	proj := options.Find().SetProjection(bson.M{"name": 1, "email": 1, "profile.phone": 1})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			Summary `bson:",inline"`
			Profile struct {
				Phone string `bson:"phone"`
			} `bson:"profile"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		sum := row.Summary
		sum.Phone = row.Profile.Phone
		out[sum.ID] = sum
	}
	return out, cur.Err()
}
