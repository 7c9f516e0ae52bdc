package groupstore_test

import (
	"errors"
	"testing"

	groupstore "github.com/dalemusser/grouphub/internal/app/store/groups"
	"github.com/dalemusser/grouphub/internal/app/system/indexes"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/dalemusser/grouphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Group{Name: " <i>Engineering</i> "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Name != "Engineering" {
		t.Errorf("Name: got %q, want %q", created.Name, "Engineering")
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != created.Name {
		t.Errorf("stored Name: got %q, want %q", got.Name, created.Name)
	}
	if got.Users == nil || len(got.Users) != 0 {
		t.Errorf("Users: got %v, want empty list", got.Users)
	}

	byName, err := store.GetByName(ctx, "Engineering")
	if err != nil {
		t.Fatalf("GetByName failed: %v", err)
	}
	if byName.ID != created.ID {
		t.Errorf("GetByName ID: got %s, want %s", byName.ID.Hex(), created.ID.Hex())
	}
}

func TestStore_Create_DuplicateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := groupstore.New(db)

	if _, err := store.Create(ctx, models.Group{Name: "Engineering"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Group{Name: "Engineering"}); !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Fatalf("expected ErrDuplicateGroupName, got %v", err)
	}
}

func TestStore_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("GetByID: expected ErrNoDocuments, got %v", err)
	}
	if _, err := store.GetByName(ctx, "Nope"); err != mongo.ErrNoDocuments {
		t.Errorf("GetByName: expected ErrNoDocuments, got %v", err)
	}
	if _, err := store.UpdateName(ctx, primitive.NewObjectID(), "X"); err != mongo.ErrNoDocuments {
		t.Errorf("UpdateName: expected ErrNoDocuments, got %v", err)
	}
	if _, err := store.Delete(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("Delete: expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_UpdateName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)

	g := fixtures.CreateGroup(ctx, "Engineering")
	fixtures.CreateGroup(ctx, "Sales")

	renamed, err := store.UpdateName(ctx, g.ID, "Platform")
	if err != nil {
		t.Fatalf("UpdateName failed: %v", err)
	}
	if renamed.Name != "Platform" {
		t.Errorf("Name: got %q, want %q", renamed.Name, "Platform")
	}

	same, err := store.UpdateName(ctx, g.ID, "   ")
	if err != nil {
		t.Fatalf("blank UpdateName failed: %v", err)
	}
	if same.Name != "Platform" {
		t.Errorf("blank name should leave the group unchanged, got %q", same.Name)
	}

	if _, err := store.UpdateName(ctx, g.ID, "Sales"); !errors.Is(err, groupstore.ErrDuplicateGroupName) {
		t.Errorf("expected ErrDuplicateGroupName, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Engineering")

	deleted, err := store.Delete(ctx, g.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.ID != g.ID || deleted.Name != g.Name {
		t.Errorf("Delete should return the removed group, got %+v", deleted)
	}
	if _, err := store.GetByID(ctx, g.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments after delete, got %v", err)
	}
}

func TestStore_AddRemoveUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	g := fixtures.CreateGroup(ctx, "Engineering")
	uid := primitive.NewObjectID()

	added, err := store.AddUser(ctx, g.ID, uid)
	if err != nil || !added {
		t.Fatalf("AddUser: added=%v err=%v", added, err)
	}
	added, err = store.AddUser(ctx, g.ID, uid)
	if err != nil || added {
		t.Errorf("second AddUser should report false, got added=%v err=%v", added, err)
	}

	got, _ := store.GetByID(ctx, g.ID)
	if len(got.Users) != 1 || got.Users[0] != uid {
		t.Errorf("Users: got %v, want [%s]", got.Users, uid.Hex())
	}

	list, err := store.ListByUser(ctx, uid)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(list) != 1 || list[0].ID != g.ID {
		t.Errorf("ListByUser: got %v", list)
	}

	removed, err := store.RemoveUser(ctx, g.ID, uid)
	if err != nil || !removed {
		t.Fatalf("RemoveUser: removed=%v err=%v", removed, err)
	}
	removed, err = store.RemoveUser(ctx, g.ID, uid)
	if err != nil || removed {
		t.Errorf("second RemoveUser should report false, got removed=%v err=%v", removed, err)
	}

	if added, _ := store.AddUser(ctx, primitive.NewObjectID(), uid); added {
		t.Error("AddUser on a missing group should report false")
	}
}

func TestStore_PullUserFromAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := groupstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	a := fixtures.CreateGroup(ctx, "A")
	b := fixtures.CreateGroup(ctx, "B")
	fixtures.CreateGroup(ctx, "C")
	fixtures.AddMembership(ctx, a.ID, uid)
	fixtures.AddMembership(ctx, b.ID, uid)

	n, err := store.PullUserFromAll(ctx, uid)
	if err != nil {
		t.Fatalf("PullUserFromAll failed: %v", err)
	}
	if n != 2 {
		t.Errorf("modified: got %d, want 2", n)
	}
	list, _ := store.ListByUser(ctx, uid)
	if len(list) != 0 {
		t.Errorf("ListByUser after pull: got %v", list)
	}
}
