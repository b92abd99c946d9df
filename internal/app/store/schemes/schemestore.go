package schemestore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/jansethu/mysarkar/internal/app/system/normalize"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no scheme matches the id.
	ErrNotFound = errors.New("scheme not found")
	// ErrDuplicateSourceURL is returned when another scheme already uses the source URL.
	ErrDuplicateSourceURL = errors.New("a scheme with this source_url already exists")
	// ErrInvalid wraps every field validation failure of Create and Update.
	ErrInvalid = errors.New("invalid scheme")

	errNameRequired = fmt.Errorf("%w: name is required", ErrInvalid)
	errBadLevel     = fmt.Errorf(`%w: level must be "Central"|"State"|"Other"`, ErrInvalid)
	errBadPriority  = fmt.Errorf(`%w: priority must be "low"|"medium"|"high"|"critical"`, ErrInvalid)
)

// EligibleLimit caps the eligible-for-me listing.
const EligibleLimit = 50

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("schemes")}
}

// Filter narrows List. Zero values mean "any".
type Filter struct {
	IsActive *bool
	State    string
	Category string // matched against tags
	Tags     []string
}

func (f Filter) query() bson.M {
	q := bson.M{}
	if f.IsActive != nil {
		q["is_active"] = *f.IsActive
	}
	if f.State != "" {
		q["state"] = f.State
	}

	var and []bson.M
	if tags := normalize.Tags(f.Tags); len(tags) > 0 {
		and = append(and, bson.M{"tags": bson.M{"$in": tags}})
	}
	if c := normalize.Tag(f.Category); c != "" {
		and = append(and, bson.M{"tags": c})
	}
	switch len(and) {
	case 0:
	case 1:
		for k, v := range and[0] {
			q[k] = v
		}
	default:
		q["$and"] = and
	}
	return q
}

// List returns one page of schemes, newest first, plus the total match count.
func (s *Store) List(ctx context.Context, f Filter, pg paging.Page) ([]models.Scheme, int64, error) {
	q := f.query()

	find := pg.ApplyToFind(options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.M{"embedding": 0}))

	cur, err := s.c.Find(ctx, q, find)
	if err != nil {
		return nil, 0, fmt.Errorf("list schemes: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Scheme{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, fmt.Errorf("decode schemes: %w", err)
	}

	total, err := s.c.CountDocuments(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("count schemes: %w", err)
	}
	return out, total, nil
}

// GetByID loads a scheme by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Scheme, error) {
	var sc models.Scheme
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find scheme: %w", err)
	}
	return &sc, nil
}

func validLevel(l string) bool {
	for _, v := range models.SchemeLevels {
		if l == v {
			return true
		}
	}
	return false
}

func validPriority(p string) bool {
	for _, v := range models.SchemePriorities {
		if p == v {
			return true
		}
	}
	return false
}

// Create inserts a scheme after applying defaults. The caller sets IsActive
// and Embedding; nil slices are stored as empty arrays.
func (s *Store) Create(ctx context.Context, sc models.Scheme) (models.Scheme, error) {
	sc.ID = primitive.NewObjectID()
	sc.Name = strings.TrimSpace(sc.Name)
	sc.SourceURL = strings.TrimSpace(sc.SourceURL)
	if sc.Name == "" {
		return models.Scheme{}, errNameRequired
	}
	if sc.Priority == "" {
		sc.Priority = "medium"
	}
	if !validLevel(sc.Level) {
		return models.Scheme{}, errBadLevel
	}
	if !validPriority(sc.Priority) {
		return models.Scheme{}, errBadPriority
	}
	sc.Tags = normalize.Tags(sc.Tags)
	if sc.FAQ == nil {
		sc.FAQ = []models.FAQ{}
	}
	if sc.Embedding == nil {
		sc.Embedding = []float32{}
	}

	now := time.Now().UTC()
	sc.CreatedAt = now
	sc.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Scheme{}, ErrDuplicateSourceURL
		}
		return models.Scheme{}, fmt.Errorf("insert scheme: %w", err)
	}
	return sc, nil
}

// Update holds the fields a scheme update may change. Nil means "not supplied".
type Update struct {
	SourceURL   *string       `json:"sourceUrl"`
	Name        *string       `json:"name"`
	Acronym     *string       `json:"acronym"`
	Tags        *[]string     `json:"tags"`
	State       *string       `json:"state"`
	Level       *string       `json:"level"`
	Overview    *string       `json:"overview"`
	Eligibility *string       `json:"eligibility"`
	Benefits    *string       `json:"benefits"`
	Documents   *string       `json:"documents"`
	Apply       *string       `json:"apply"`
	FAQ         *[]models.FAQ `json:"faq"`
	IsActive    *bool         `json:"isActive"`
	IsFeatured  *bool         `json:"isFeatured"`
	Priority    *string       `json:"priority"`
}

func changedString(p *string, prev string) bool {
	return p != nil && *p != prev
}

// TextChanged reports whether the update supplies at least one embedded
// textual field whose value differs from prev.
func (u Update) TextChanged(prev models.Scheme) bool {
	if changedString(u.Name, prev.Name) ||
		changedString(u.Acronym, prev.Acronym) ||
		changedString(u.Overview, prev.Overview) ||
		changedString(u.Eligibility, prev.Eligibility) ||
		changedString(u.Benefits, prev.Benefits) ||
		changedString(u.Documents, prev.Documents) ||
		changedString(u.Apply, prev.Apply) {
		return true
	}
	if u.Tags != nil && !sameStrings(normalize.Tags(*u.Tags), prev.Tags) {
		return true
	}
	if u.FAQ != nil && !reflect.DeepEqual(nonNilFAQ(*u.FAQ), nonNilFAQ(prev.FAQ)) {
		return true
	}
	return false
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func nonNilFAQ(f []models.FAQ) []models.FAQ {
	if f == nil {
		return []models.FAQ{}
	}
	return f
}

func (u Update) setDoc() (bson.M, error) {
	set := bson.M{}
	str := func(key string, p *string) {
		if p != nil {
			set[key] = strings.TrimSpace(*p)
		}
	}
	str("source_url", u.SourceURL)
	str("acronym", u.Acronym)
	str("state", u.State)
	str("overview", u.Overview)
	str("eligibility", u.Eligibility)
	str("benefits", u.Benefits)
	str("documents", u.Documents)
	str("apply", u.Apply)

	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return nil, errNameRequired
		}
		set["name"] = name
	}
	if u.Level != nil {
		if !validLevel(*u.Level) {
			return nil, errBadLevel
		}
		set["level"] = *u.Level
	}
	if u.Priority != nil {
		if !validPriority(*u.Priority) {
			return nil, errBadPriority
		}
		set["priority"] = *u.Priority
	}
	if u.Tags != nil {
		set["tags"] = normalize.Tags(*u.Tags)
	}
	if u.FAQ != nil {
		set["faq"] = nonNilFAQ(*u.FAQ)
	}
	if u.IsActive != nil {
		set["is_active"] = *u.IsActive
	}
	if u.IsFeatured != nil {
		set["is_featured"] = *u.IsFeatured
	}
	return set, nil
}

// Update applies upd and records who made the change. It returns the
// updated document.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update, by primitive.ObjectID) (*models.Scheme, error) {
	set, err := upd.setDoc()
	if err != nil {
		return nil, err
	}
	set["last_modified_by"] = by
	set["updated_at"] = time.Now().UTC()
	return s.findAndSet(ctx, id, set)
}

func (s *Store) findAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Scheme, error) {
	var sc models.Scheme
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&sc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, ErrNotFound
		case wafflemongo.IsDup(err):
			return nil, ErrDuplicateSourceURL
		}
		return nil, fmt.Errorf("update scheme: %w", err)
	}
	return &sc, nil
}

// SetEmbedding replaces the stored vector.
func (s *Store) SetEmbedding(ctx context.Context, id primitive.ObjectID, vec []float32) error {
	if vec == nil {
		vec = []float32{}
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"embedding": vec}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetApproval marks the scheme approved or rejected.
func (s *Store) SetApproval(ctx context.Context, id primitive.ObjectID, approve bool, by primitive.ObjectID) (*models.Scheme, error) {
	status := models.ApprovalRejected
	if approve {
		status = models.ApprovalApproved
	}
	return s.findAndSet(ctx, id, bson.M{
		"approval_status":  status,
		"last_modified_by": by,
		"updated_at":       time.Now().UTC(),
	})
}

// Delete removes a scheme.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Eligible lists active schemes for a state, optionally narrowed by a
// full-text keyword. Empty state matches every state.
func (s *Store) Eligible(ctx context.Context, state, keyword string) ([]models.Scheme, error) {
	q := bson.M{"is_active": true}
	if state != "" {
		q["state"] = state
	}
	if kw := strings.TrimSpace(keyword); kw != "" {
		q["$text"] = bson.M{"$search": kw}
	}

	find := options.Find().SetLimit(EligibleLimit).SetProjection(bson.M{"embedding": 0})
	cur, err := s.c.Find(ctx, q, find)
	if err != nil {
		return nil, fmt.Errorf("eligible schemes: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Scheme{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ForEachMissingEmbedding calls fn for every scheme whose embedding is absent
// or empty. Iteration stops at the first error fn returns.
func (s *Store) ForEachMissingEmbedding(ctx context.Context, fn func(models.Scheme) error) error {
	q := bson.M{"$or": []bson.M{
		{"embedding": bson.M{"$exists": false}},
		{"embedding": bson.M{"$size": 0}},
		{"embedding": nil},
	}}
	cur, err := s.c.Find(ctx, q)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var sc models.Scheme
		if err := cur.Decode(&sc); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			return err
		}
	}
	return cur.Err()
}
