package allschemestore_test

import (
	"errors"
	"testing"

	allschemestore "github.com/jansethu/mysarkar/internal/app/store/allschemes"
	"github.com/jansethu/mysarkar/internal/app/system/paging"
	"github.com/jansethu/mysarkar/internal/domain/models"
	"github.com/jansethu/mysarkar/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := allschemestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	clientID := primitive.NewObjectID()
	created, err := store.Create(ctx, models.AllScheme{
		"_id":        clientID,
		"schemeName": "Atal Pension Yojana",
		"ministry":   "Finance",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	id, ok := created["_id"].(primitive.ObjectID)
	if !ok || id == clientID {
		t.Fatalf("expected a server-assigned _id, got %v", created["_id"])
	}

	got, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if models.AllSchemeName(got) != "Atal Pension Yojana" || got["ministry"] != "Finance" {
		t.Errorf("unexpected document: %v", got)
	}

	updated, err := store.Update(ctx, id, models.AllScheme{"ministry": "Labour", "_id": primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated["ministry"] != "Labour" || updated["schemeName"] != "Atal Pension Yojana" {
		t.Errorf("unexpected update result: %v", updated)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID(ctx, id); !errors.Is(err, allschemestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := store.Update(ctx, id, models.AllScheme{"x": 1}); !errors.Is(err, allschemestore.ErrNotFound) {
		t.Errorf("expected ErrNotFound updating deleted doc, got %v", err)
	}
}

func TestStore_ListAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := allschemestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, n := range []string{"A", "B", "C"} {
		fixtures.CreateAllScheme(ctx, n, "")
	}

	docs, total, err := store.List(ctx, paging.Page{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Errorf("expected total 3, got %d", total)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 doc on page 2, got %d", len(docs))
	}
}

func TestStore_ExistsAndNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := allschemestore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	id := fixtures.CreateAllScheme(ctx, "Ujjwala", "BPL households")

	ok, err := store.Exists(ctx, id)
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true", ok, err)
	}
	ok, err = store.Exists(ctx, primitive.NewObjectID())
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v; want false", ok, err)
	}

	names, err := store.Names(ctx, []primitive.ObjectID{id, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 1 || names[id] != "Ujjwala" {
		t.Errorf("unexpected names: %v", names)
	}
}
