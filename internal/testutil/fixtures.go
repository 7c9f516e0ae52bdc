package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/grouphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
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

// CreateUser inserts a user directly, bypassing the store.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Password:  "$2a$10$fixturefixturefixturefixturefixturefixturefixturefixtu",
		Role:      role,
		Groups:    []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin)
}

// CreateGroup inserts a group with no members.
func (f *Fixtures) CreateGroup(ctx context.Context, name string) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	group := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Users:     []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("groups").InsertOne(ctx, group); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return group
}

// AddMembership writes both sides of a membership.
func (f *Fixtures) AddMembership(ctx context.Context, groupID, userID primitive.ObjectID) {
	f.t.Helper()

	if _, err := f.db.Collection("groups").UpdateByID(ctx, groupID,
		bson.M{"$addToSet": bson.M{"users": userID}}); err != nil {
		f.t.Fatalf("failed to add user to group: %v", err)
	}
	if _, err := f.db.Collection("users").UpdateByID(ctx, userID,
		bson.M{"$addToSet": bson.M{"groups": groupID}}); err != nil {
		f.t.Fatalf("failed to add group to user: %v", err)
	}
}
