// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Problems are aggregated so every failing collection shows up in one error.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", ensureUsers},
		{"schemes", ensureSchemes},
		{"applications", ensureApplications},
		{"pre_applications", ensurePreApplications},
		{"posts", ensurePosts},
		{"notifications", ensureNotifications},
		{"audit_events", ensureAuditEvents},
	}

	var problems []string
	for _, s := range sets {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	return boolOf(a) == boolOf(b)
}

func boolOf(p *bool) bool {
	return p != nil && *p
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}

// dupFinder returns a mongo shell hint for locating duplicates that block
// a unique index.
func dupFinder(coll string, keys bson.D) string {
	group := make([]string, 0, len(keys))
	for _, kv := range keys {
		group = append(group, fmt.Sprintf(`%s: "$%s"`, kv.Key, kv.Key))
	}
	return fmt.Sprintf(`db.%s.aggregate([{ $group: { _id: { %s }, n: { $sum: 1 } } }, { $match: { n: { $gt: 1 } } }])`,
		coll, strings.Join(group, ", "))
}

func listIndexes(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string
	for _, m := range models {
		if err := ensureIndex(ctx, coll, m); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func ensureIndex(ctx context.Context, coll *mongo.Collection, m mongo.IndexModel) error {
	var name string
	var unique *bool
	if m.Options != nil {
		if m.Options.Name != nil {
			name = *m.Options.Name
		}
		unique = m.Options.Unique
	}
	keys := m.Keys.(bson.D)
	sig := keySig(keys)
	start := time.Now()

	log := zap.L().With(
		zap.String("collection", coll.Name()),
		zap.String("name", name),
		zap.String("keys", sig),
		zap.Bool("unique", boolOf(unique)))
	log.Info("ensuring index")

	create := func() error {
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) && boolOf(unique) {
				return fmt.Errorf("%s(%s): cannot create unique index (duplicates present), find them with %s",
					coll.Name(), name, dupFinder(coll.Name(), keys))
			}
			return fmt.Errorf("%s(%s): %w", coll.Name(), name, err)
		}
		return nil
	}

	replace := func(old existingIndex, why string) error {
		log.Info("replacing index", zap.String("from", old.Name), zap.String("reason", why))
		if _, err := coll.Indexes().DropOne(ctx, old.Name); err != nil {
			log.Warn("drop existing index failed", zap.String("existing", old.Name), zap.Error(err))
			return fmt.Errorf("%s(%s): drop failed: %w", coll.Name(), name, err)
		}
		if err := create(); err != nil {
			log.Warn("recreate index failed", zap.Error(err))
			return err
		}
		log.Info("index dropped and recreated", zap.Duration("took", time.Since(start)))
		return nil
	}

	// Same key pattern already present: reuse, rename, or upgrade options.
	if ex, ok := listIndexes(ctx, coll)[sig]; ok {
		switch {
		case !sameBoolPtr(unique, ex.Unique):
			return replace(ex, "options differ")
		case name != "" && ex.Name != name:
			return replace(ex, "name differs")
		default:
			log.Info("reusing existing index", zap.Duration("took", time.Since(start)))
			return nil
		}
	}

	err := create()
	if err == nil {
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
		return nil
	}
	if isOptionsConflictErr(err) {
		if ex, ok := listIndexes(ctx, coll)[sig]; ok {
			if sameBoolPtr(unique, ex.Unique) {
				log.Info("reusing existing index (post-conflict)", zap.String("existing", ex.Name))
				return nil
			}
			return replace(ex, "options conflict")
		}
	}
	log.Warn("index ensure failed", zap.Duration("took", time.Since(start)), zap.Error(err))
	return err
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("users"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		// dashboard counts citizens by role
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("idx_users_role"),
		},
	})
}

func ensureSchemes(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("schemes"), []mongo.IndexModel{
		// Scraped schemes are keyed by their source page; hand-entered ones may have none.
		{
			Keys: bson.D{{Key: "source_url", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_schemes_source_url").
				SetPartialFilterExpression(bson.M{"source_url": bson.M{"$gt": ""}}),
		},
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "state", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_schemes_active_state_created"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_schemes_tags"),
		},
		// keyword filter on /schemes/eligible/me
		{
			Keys: bson.D{
				{Key: "name", Value: "text"},
				{Key: "overview", Value: "text"},
				{Key: "eligibility", Value: "text"},
				{Key: "tags", Value: "text"},
			},
			Options: options.Index().SetName("txt_schemes_search"),
		},
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("applications"), []mongo.IndexModel{
		// at most one application per (user, scheme)
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "scheme_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_applications_user_scheme"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "applied_at", Value: -1}},
			Options: options.Index().SetName("idx_applications_status_applied"),
		},
		{
			Keys:    bson.D{{Key: "applied_at", Value: -1}},
			Options: options.Index().SetName("idx_applications_applied"),
		},
	})
}

func ensurePreApplications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("pre_applications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "scheme_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_preapps_user_scheme"),
		},
	})
}

func ensurePosts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("posts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_posts_active_created"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("idx_posts_tags"),
		},
	})
}

func ensureNotifications(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("notifications"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_created"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_timestamp"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_category_event_time"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_time"),
		},
	})
}
