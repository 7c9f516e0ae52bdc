// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateGroupName = errors.New("a group with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) Create(ctx context.Context, g models.Group) (models.Group, error) {
	now := time.Now().UTC()
	g.ID = primitive.NewObjectID()
	g.Name = normalize.Name(g.Name)
	if g.Users == nil {
		g.Users = []primitive.ObjectID{}
	}
	g.CreatedAt = now
	g.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Group{}, ErrDuplicateGroupName
		}
		return models.Group{}, err
	}
	return g, nil
}

func (s *Store) List(ctx context.Context) ([]models.Group, error) {
	return s.find(ctx, bson.M{})
}

// ListByUser returns the groups whose membership list contains userID.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	return s.find(ctx, bson.M{"users": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Group{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) GetByName(ctx context.Context, name string) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"name": normalize.Name(name)}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateName renames a group and returns it as it is after the write. An
// empty name leaves the group untouched. Returns mongo.ErrNoDocuments if the
// group does not exist.
func (s *Store) UpdateName(ctx context.Context, id primitive.ObjectID, name string) (*models.Group, error) {
	name = normalize.Name(name)
	if name == "" {
		return s.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g models.Group
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"name": name, "updated_at": time.Now().UTC()}},
		opts).Decode(&g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateGroupName
		}
		return nil, err
	}
	return &g, nil
}

// Delete removes a group and returns the removed document.
// Returns mongo.ErrNoDocuments if the group does not exist.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// AddUser appends userID to the group's membership list. It reports false
// when the group does not exist or already lists the user.
func (s *Store) AddUser(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": groupID, "users": bson.M{"$ne": userID}},
		bson.M{
			"$addToSet": bson.M{"users": userID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RemoveUser removes userID from the group's membership list. It reports
// false when the group does not exist or does not list the user.
func (s *Store) RemoveUser(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": groupID, "users": userID},
		bson.M{
			"$pull": bson.M{"users": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// PullUserFromAll removes userID from every group's membership list.
func (s *Store) PullUserFromAll(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"users": userID},
		bson.M{
			"$pull": bson.M{"users": userID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
