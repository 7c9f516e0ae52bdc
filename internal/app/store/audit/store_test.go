package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/grouphub/internal/app/store/audit"
	"github.com/dalemusser/grouphub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// findEvents reads audit_events directly, newest first.
func findEvents(t *testing.T, ctx context.Context, db *mongo.Database, filter bson.M) []audit.Event {
	t.Helper()
	cur, err := db.Collection("audit_events").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		t.Fatalf("find audit events: %v", err)
	}
	events := []audit.Event{}
	if err := cur.All(ctx, &events); err != nil {
		t.Fatalf("decode audit events: %v", err)
	}
	return events
}

func TestStore_Log(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	events := []audit.Event{
		{Category: audit.CategoryAuth, EventType: audit.EventLoginSuccess, UserID: &userID, IP: "1.1.1.1", Success: true},
		{Category: audit.CategoryAuth, EventType: audit.EventLoginFailedWrongPassword, UserID: &userID, IP: "1.1.1.1", FailureReason: "bad password"},
		{Category: audit.CategoryAdmin, EventType: audit.EventGroupCreated, ActorEmail: "admin@x.com", Success: true,
			Details: map[string]string{"group_name": "Engineering"}},
	}
	for _, e := range events {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}

	all := findEvents(t, ctx, db, bson.M{})
	if len(all) != 3 {
		t.Fatalf("stored events: got %d, want 3", len(all))
	}
	for _, e := range all {
		if e.ID.IsZero() {
			t.Error("expected ID to be assigned")
		}
		if e.Timestamp.IsZero() {
			t.Error("expected Timestamp to be set")
		}
	}

	if byUser := findEvents(t, ctx, db, bson.M{"user_id": userID}); len(byUser) != 2 {
		t.Errorf("events for user: got %d, want 2", len(byUser))
	}

	admin := findEvents(t, ctx, db, bson.M{"category": audit.CategoryAdmin})
	if len(admin) != 1 || admin[0].Details["group_name"] != "Engineering" {
		t.Errorf("admin events: unexpected result %+v", admin)
	}

	failed := findEvents(t, ctx, db, bson.M{"event_type": audit.EventLoginFailedWrongPassword})
	if len(failed) != 1 || failed[0].FailureReason != "bad password" {
		t.Errorf("failed logins: unexpected result %+v", failed)
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	old := time.Now().Add(-30 * 24 * time.Hour).UTC()
	for i := 0; i < 2; i++ {
		if err := store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventGroupCreated, Timestamp: old}); err != nil {
			t.Fatalf("Log failed: %v", err)
		}
	}
	if err := store.Log(ctx, audit.Event{Category: audit.CategoryAdmin, EventType: audit.EventGroupDeleted}); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	n, err := store.DeleteBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted: got %d, want 2", n)
	}

	left := findEvents(t, ctx, db, bson.M{})
	if len(left) != 1 || left[0].EventType != audit.EventGroupDeleted {
		t.Errorf("remaining events: %+v", left)
	}
}
