package poststore_test

import (
	"errors"
	"testing"

	poststore "github.com/jansethu/mysarkar/internal/app/store/posts"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Create(ctx, models.Post{
		UserID:  primitive.NewObjectID(),
		Title:   "Ration card help",
		Content: "How do I update my address?",
		Tags:    []string{" Ration ", "ration", "Address"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !p.IsActive {
		t.Error("expected new post to be active")
	}
	if len(p.Tags) != 2 || p.Tags[0] != "ration" || p.Tags[1] != "address" {
		t.Errorf("expected normalized tags, got %v", p.Tags)
	}
	if p.Likes == nil || p.Comments == nil {
		t.Error("expected empty likes and comments")
	}
}

func TestStore_ToggleLike(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreatePost(ctx, primitive.NewObjectID(), "Like me")
	user := primitive.NewObjectID()

	liked, count, err := store.ToggleLike(ctx, p.ID, user)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if !liked || count != 1 {
		t.Errorf("first toggle: liked=%v count=%d, want true 1", liked, count)
	}

	other := primitive.NewObjectID()
	if _, count, _ = store.ToggleLike(ctx, p.ID, other); count != 2 {
		t.Errorf("second user like: count=%d, want 2", count)
	}

	liked, count, err = store.ToggleLike(ctx, p.ID, user)
	if err != nil {
		t.Fatalf("ToggleLike failed: %v", err)
	}
	if liked || count != 1 {
		t.Errorf("unlike: liked=%v count=%d, want false 1", liked, count)
	}

	if _, _, err := store.ToggleLike(ctx, primitive.NewObjectID(), user); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_AddComment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreatePost(ctx, primitive.NewObjectID(), "Comment on me")
	user := primitive.NewObjectID()

	c, err := store.AddComment(ctx, p.ID, user, "Visit the taluk office.")
	if err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if c.ID == primitive.NilObjectID || c.UserID != user {
		t.Errorf("unexpected comment: %+v", c)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Comments) != 1 || got.Comments[0].Content != "Visit the taluk office." {
		t.Errorf("comment not stored: %+v", got.Comments)
	}

	if _, err := store.AddComment(ctx, primitive.NewObjectID(), user, "x"); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SoftDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p := fixtures.CreatePost(ctx, primitive.NewObjectID(), "Delete me")

	if err := store.SoftDelete(ctx, p.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, p.ID); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("expected deleted post to be hidden, got %v", err)
	}
	if err := store.SoftDelete(ctx, p.ID); !errors.Is(err, poststore.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("All should include soft-deleted posts, got %d", len(all))
	}
}

func TestStore_List_SortAndFilter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	quiet := fixtures.CreatePost(ctx, author, "Quiet", "pension")
	loud := fixtures.CreatePost(ctx, author, "Loud", "pension", "housing")
	hidden := fixtures.CreatePost(ctx, author, "Hidden", "pension")

	for i := 0; i < 3; i++ {
		if _, _, err := store.ToggleLike(ctx, loud.ID, primitive.NewObjectID()); err != nil {
			t.Fatalf("ToggleLike failed: %v", err)
		}
	}
	if err := store.SoftDelete(ctx, hidden.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	got, total, err := store.List(ctx, poststore.ListFilter{SortBy: poststore.SortPopular}, paging.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2 active posts, got total=%d len=%d", total, len(got))
	}
	if got[0].ID != loud.ID || got[1].ID != quiet.ID {
		t.Errorf("popular order wrong: %s, %s", got[0].Title, got[1].Title)
	}

	got, total, err = store.List(ctx, poststore.ListFilter{Tags: []string{"HOUSING"}}, paging.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || got[0].ID != loud.ID {
		t.Errorf("tag filter: total=%d", total)
	}
}

func TestStore_TrendingTags(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := poststore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := primitive.NewObjectID()
	fixtures.CreatePost(ctx, author, "A", "pension", "housing")
	fixtures.CreatePost(ctx, author, "B", "pension")
	gone := fixtures.CreatePost(ctx, author, "C", "housing", "housing-loan")
	if err := store.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	tags, err := store.TrendingTags(ctx, 0)
	if err != nil {
		t.Fatalf("TrendingTags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags from active posts, got %+v", tags)
	}
	if tags[0].Name != "pension" || tags[0].Count != 2 {
		t.Errorf("expected pension x2 first, got %+v", tags[0])
	}
}
