// Package usersvc implements user operations on top of the user and group
// stores. Lookups that find nothing return a nil record and a nil error.
package usersvc

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/grouphub/internal/app/store/users"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ErrInvalidRole is returned when a role is not one of models.Roles.
var ErrInvalidRole = errors.New(`role must be "admin" or "user"`)

// UserStore is the persistence the service needs for users.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd userstore.Update) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// GroupStore is the slice of group persistence the service touches.
type GroupStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	PullUserFromAll(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// TxRunner runs fn in a transaction when one is available.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Input carries user fields from a request. Password must already be a
// bcrypt hash. On update, empty fields are left unchanged.
type Input struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type Service struct {
	users  UserStore
	groups GroupStore
	tx     TxRunner
	log    *zap.Logger
}

func New(users UserStore, groups GroupStore, tx TxRunner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{users: users, groups: groups, tx: tx, log: logger}
}

// Create persists a new user. An empty role defaults to "user".
func (s *Service) Create(ctx context.Context, in Input) (models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return models.User{}, ErrInvalidRole
	}

	u, err := s.users.Create(ctx, models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     role,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *Service) FindAll(ctx context.Context) ([]models.User, error) {
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return list, nil
}

func (s *Service) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	return absent(u, err, "find user")
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	return absent(u, err, "find user by email")
}

// Update applies the non-empty fields of in and returns the updated user,
// or nil if no user has that id. Membership is not changed here.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in Input) (*models.User, error) {
	if in.Role != "" && !models.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}
	u, err := s.users.Update(ctx, id, userstore.Update{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Role:     in.Role,
	})
	return absent(u, err, "update user")
}

// Delete removes the user and drops its id from every group. It returns the
// removed user, or nil if no user had that id.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var deleted *models.User
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		u, err := s.users.Delete(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.groups.PullUserFromAll(ctx, id); err != nil {
			return err
		}
		deleted = u
		return nil
	})
	return absent(deleted, err, "delete user")
}

// ListByGroup returns the members of a group. A group that does not exist
// has no members.
func (s *Service) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.User, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	return s.membersOf(ctx, g, err)
}

// ListByGroupName is ListByGroup anchored by the group's name.
func (s *Service) ListByGroupName(ctx context.Context, name string) ([]models.User, error) {
	g, err := s.groups.GetByName(ctx, name)
	return s.membersOf(ctx, g, err)
}

func (s *Service) membersOf(ctx context.Context, g *models.Group, err error) ([]models.User, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	list, err := s.users.ListByGroup(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("list users by group: %w", err)
	}
	return list, nil
}

// absent turns mongo.ErrNoDocuments into a nil result.
func absent[T any](v *T, err error, op string) (*T, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}
