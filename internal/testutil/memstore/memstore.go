// Package memstore provides in-memory user and group stores with the same
// behavior as the MongoDB stores, for service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	groupstore "github.com/dalemusser/grouphub/internal/app/store/groups"
	userstore "github.com/dalemusser/grouphub/internal/app/store/users"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DB holds both collections behind one lock.
type DB struct {
	mu     sync.Mutex
	users  map[primitive.ObjectID]models.User
	groups map[primitive.ObjectID]models.Group

	Users  *Users
	Groups *Groups
}

// New returns an empty DB.
func New() *DB {
	db := &DB{
		users:  make(map[primitive.ObjectID]models.User),
		groups: make(map[primitive.ObjectID]models.Group),
	}
	db.Users = &Users{db: db}
	db.Groups = &Groups{db: db}
	return db
}

// Users mirrors userstore.Store.
type Users struct {
	db *DB

	// FailAddGroup, when set, is returned by the next AddGroup call.
	FailAddGroup error
	// FailRemoveGroup, when set, is returned by the next RemoveGroup call.
	FailRemoveGroup error
}

// Groups mirrors groupstore.Store.
type Groups struct {
	db *DB
}

func copyIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}

func cloneUser(u models.User) *models.User {
	u.Groups = copyIDs(u.Groups)
	return &u
}

func cloneGroup(g models.Group) *models.Group {
	g.Users = copyIDs(g.Users)
	return &g
}

func without(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func sortedUsers(m map[primitive.ObjectID]models.User, keep func(models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range m {
		if keep(u) {
			out = append(out, *cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func sortedGroups(m map[primitive.ObjectID]models.Group, keep func(models.Group) bool) []models.Group {
	out := []models.Group{}
	for _, g := range m {
		if keep(g) {
			out = append(out, *cloneGroup(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

// ---- users ----

func (s *Users) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range s.db.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Users) Create(_ context.Context, u models.User) (models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.Email = normalize.Email(u.Email)
	if s.emailTaken(u.Email, primitive.NilObjectID) {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	u.Groups = copyIDs(u.Groups)
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	s.db.users[u.ID] = u
	return *cloneUser(u), nil
}

func (s *Users) List(_ context.Context) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedUsers(s.db.users, func(models.User) bool { return true }), nil
}

func (s *Users) ListByGroup(_ context.Context, groupID primitive.ObjectID) ([]models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedUsers(s.db.users, func(u models.User) bool { return contains(u.Groups, groupID) }), nil
}

func (s *Users) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneUser(u), nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	email = normalize.Email(email)
	for _, u := range s.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *Users) Update(_ context.Context, id primitive.ObjectID, upd userstore.Update) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if upd.Name != "" {
		u.Name = normalize.Name(upd.Name)
	}
	if upd.Email != "" {
		email := normalize.Email(upd.Email)
		if s.emailTaken(email, id) {
			return nil, userstore.ErrDuplicateEmail
		}
		u.Email = email
	}
	if upd.Password != "" {
		u.Password = upd.Password
	}
	if upd.Role != "" {
		u.Role = upd.Role
	}
	u.UpdatedAt = time.Now().UTC()
	s.db.users[id] = u
	return cloneUser(u), nil
}

func (s *Users) Delete(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	u, ok := s.db.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(s.db.users, id)
	return cloneUser(u), nil
}

func (s *Users) AddGroup(_ context.Context, userID, groupID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.FailAddGroup; err != nil {
		s.FailAddGroup = nil
		return false, err
	}
	u, ok := s.db.users[userID]
	if !ok || contains(u.Groups, groupID) {
		return false, nil
	}
	u.Groups = append(copyIDs(u.Groups), groupID)
	s.db.users[userID] = u
	return true, nil
}

func (s *Users) RemoveGroup(_ context.Context, userID, groupID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if err := s.FailRemoveGroup; err != nil {
		s.FailRemoveGroup = nil
		return false, err
	}
	u, ok := s.db.users[userID]
	if !ok || !contains(u.Groups, groupID) {
		return false, nil
	}
	u.Groups = without(u.Groups, groupID)
	s.db.users[userID] = u
	return true, nil
}

func (s *Users) PullGroupFromAll(_ context.Context, groupID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, u := range s.db.users {
		if contains(u.Groups, groupID) {
			u.Groups = without(u.Groups, groupID)
			s.db.users[id] = u
			n++
		}
	}
	return n, nil
}

// ---- groups ----

func (s *Groups) nameTaken(name string, except primitive.ObjectID) bool {
	for id, g := range s.db.groups {
		if id != except && g.Name == name {
			return true
		}
	}
	return false
}

func (s *Groups) Create(_ context.Context, g models.Group) (models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	g.ID = primitive.NewObjectID()
	g.Name = normalize.Name(g.Name)
	if s.nameTaken(g.Name, primitive.NilObjectID) {
		return models.Group{}, groupstore.ErrDuplicateGroupName
	}
	g.Users = copyIDs(g.Users)
	now := time.Now().UTC()
	g.CreatedAt, g.UpdatedAt = now, now
	s.db.groups[g.ID] = g
	return *cloneGroup(g), nil
}

func (s *Groups) List(_ context.Context) ([]models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedGroups(s.db.groups, func(models.Group) bool { return true }), nil
}

func (s *Groups) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return sortedGroups(s.db.groups, func(g models.Group) bool { return contains(g.Users, userID) }), nil
}

func (s *Groups) GetByID(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cloneGroup(g), nil
}

func (s *Groups) GetByName(_ context.Context, name string) (*models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	name = normalize.Name(name)
	for _, g := range s.db.groups {
		if g.Name == name {
			return cloneGroup(g), nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (s *Groups) UpdateName(_ context.Context, id primitive.ObjectID, name string) (*models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	g, ok := s.db.groups[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if name = normalize.Name(name); name != "" {
		if s.nameTaken(name, id) {
			return nil, groupstore.ErrDuplicateGroupName
		}
		g.Name = name
		g.UpdatedAt = time.Now().UTC()
		s.db.groups[id] = g
	}
	return cloneGroup(g), nil
}

func (s *Groups) Delete(_ context.Context, id primitive.ObjectID) (*models.Group, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	delete(s.db.groups, id)
	return cloneGroup(g), nil
}

func (s *Groups) AddUser(_ context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[groupID]
	if !ok || contains(g.Users, userID) {
		return false, nil
	}
	g.Users = append(copyIDs(g.Users), userID)
	s.db.groups[groupID] = g
	return true, nil
}

func (s *Groups) RemoveUser(_ context.Context, groupID, userID primitive.ObjectID) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	g, ok := s.db.groups[groupID]
	if !ok || !contains(g.Users, userID) {
		return false, nil
	}
	g.Users = without(g.Users, userID)
	s.db.groups[groupID] = g
	return true, nil
}

func (s *Groups) PullUserFromAll(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for id, g := range s.db.groups {
		if contains(g.Users, userID) {
			g.Users = without(g.Users, userID)
			s.db.groups[id] = g
			n++
		}
	}
	return n, nil
}
