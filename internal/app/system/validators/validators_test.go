package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/grouphub/internal/app/system/validators"
	"github.com/dalemusser/grouphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validUser() bson.M {
	return bson.M{
		"name":       "Test User",
		"email":      "test@example.com",
		"password":   "$2a$10$abcdefghijklmnopqrstuv",
		"role":       "user",
		"groups":     bson.A{},
		"deleted_at": nil,
		"created_at": time.Now(),
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "groups", "audit_events"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestUsersValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(bson.M)
		wantErr bool
	}{
		{"valid user", func(bson.M) {}, false},
		{"valid admin", func(d bson.M) { d["role"] = "admin" }, false},
		{"missing email", func(d bson.M) { delete(d, "email") }, true},
		{"missing password", func(d bson.M) { delete(d, "password") }, true},
		{"blank name", func(d bson.M) { d["name"] = "   " }, true},
		{"bad email", func(d bson.M) { d["email"] = "not-an-email" }, true},
		{"invalid role", func(d bson.M) { d["role"] = "superadmin" }, true},
		{"groups not ids", func(d bson.M) { d["groups"] = bson.A{"abc"} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validUser()
			doc["email"] = primitive.NewObjectID().Hex() + "@example.com"
			tt.mutate(doc)

			_, err := db.Collection("users").InsertOne(ctx, doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}

func TestGroupsValidator(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := db.Collection("groups").InsertOne(ctx, bson.M{
		"name":  "Engineering",
		"users": bson.A{primitive.NewObjectID()},
	}); err != nil {
		t.Errorf("Insert valid group failed: %v", err)
	}

	if _, err := db.Collection("groups").InsertOne(ctx, bson.M{"users": bson.A{}}); err == nil {
		t.Error("expected validation error when inserting group without name")
	}

	if _, err := db.Collection("groups").InsertOne(ctx, bson.M{"name": ""}); err == nil {
		t.Error("expected validation error when inserting group with empty name")
	}
}
