// Package groupsvc implements group operations, including the two-sided
// membership updates between groups and users.
package groupsvc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/grouphub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// GroupStore is the persistence the service needs for groups.
type GroupStore interface {
	Create(ctx context.Context, g models.Group) (models.Group, error)
	List(ctx context.Context) ([]models.Group, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	GetByName(ctx context.Context, name string) (*models.Group, error)
	UpdateName(ctx context.Context, id primitive.ObjectID, name string) (*models.Group, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	AddUser(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
	RemoveUser(ctx context.Context, groupID, userID primitive.ObjectID) (bool, error)
}

// UserStore is the slice of user persistence the service touches.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	AddGroup(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error)
	RemoveGroup(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error)
	PullGroupFromAll(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// TxRunner runs fn in a transaction when one is available. Supported
// reports whether it currently does.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
	Supported() bool
}

// Input carries group fields from a request.
type Input struct {
	Name string
}

type Service struct {
	groups GroupStore
	users  UserStore
	tx     TxRunner
	log    *zap.Logger
}

func New(groups GroupStore, users UserStore, tx TxRunner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{groups: groups, users: users, tx: tx, log: logger}
}

func (s *Service) Create(ctx context.Context, in Input) (models.Group, error) {
	g, err := s.groups.Create(ctx, models.Group{Name: in.Name})
	if err != nil {
		return models.Group{}, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (s *Service) FindAll(ctx context.Context) ([]models.Group, error) {
	list, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return list, nil
}

func (s *Service) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	g, err := s.groups.GetByID(ctx, id)
	return absent(g, err, "find group")
}

func (s *Service) FindByName(ctx context.Context, name string) (*models.Group, error) {
	g, err := s.groups.GetByName(ctx, name)
	return absent(g, err, "find group by name")
}

// Update renames the group, or returns nil if no group has that id.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in Input) (*models.Group, error) {
	g, err := s.groups.UpdateName(ctx, id, in.Name)
	return absent(g, err, "update group")
}

// Delete removes the group and drops its id from every user.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var deleted *models.Group
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		g, err := s.groups.Delete(ctx, id)
		if err != nil {
			return err
		}
		if _, err := s.users.PullGroupFromAll(ctx, id); err != nil {
			return err
		}
		deleted = g
		return nil
	})
	return absent(deleted, err, "delete group")
}

// AddUserToGroup records the membership on both the group and the user and
// returns the updated group.
func (s *Service) AddUserToGroup(ctx context.Context, groupID, userID primitive.ObjectID) (models.Group, error) {
	var out models.Group
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		g, err := s.loadPair(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if g.HasUser(userID) {
			return &MembershipError{Kind: AlreadyMember}
		}

		added, err := s.groups.AddUser(ctx, groupID, userID)
		if err != nil {
			return fmt.Errorf("add user to group: %w", err)
		}
		if !added {
			// Lost a race with another add, or the group vanished.
			return s.raceError(ctx, groupID, AlreadyMember)
		}

		// false here means the user side already listed the group.
		if _, err := s.users.AddGroup(ctx, userID, groupID); err != nil {
			s.compensate(ctx, "remove user from group", func(ctx context.Context) error {
				_, err := s.groups.RemoveUser(ctx, groupID, userID)
				return err
			})
			return fmt.Errorf("add group to user: %w", err)
		}

		updated, err := s.groups.GetByID(ctx, groupID)
		if err != nil {
			return fmt.Errorf("reload group: %w", err)
		}
		out = *updated
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}
	return out, nil
}

// RemoveUserFromGroup deletes the membership from both sides and returns the
// updated group.
func (s *Service) RemoveUserFromGroup(ctx context.Context, groupID, userID primitive.ObjectID) (models.Group, error) {
	var out models.Group
	err := s.tx.Run(ctx, func(ctx context.Context) error {
		g, err := s.loadPair(ctx, groupID, userID)
		if err != nil {
			return err
		}
		if !g.HasUser(userID) {
			return &MembershipError{Kind: NotMember}
		}

		removed, err := s.groups.RemoveUser(ctx, groupID, userID)
		if err != nil {
			return fmt.Errorf("remove user from group: %w", err)
		}
		if !removed {
			return s.raceError(ctx, groupID, NotMember)
		}

		if _, err := s.users.RemoveGroup(ctx, userID, groupID); err != nil {
			s.compensate(ctx, "add user to group", func(ctx context.Context) error {
				_, err := s.groups.AddUser(ctx, groupID, userID)
				return err
			})
			return fmt.Errorf("remove group from user: %w", err)
		}

		updated, err := s.groups.GetByID(ctx, groupID)
		if err != nil {
			return fmt.Errorf("reload group: %w", err)
		}
		out = *updated
		return nil
	})
	if err != nil {
		return models.Group{}, err
	}
	return out, nil
}

// ListByUser returns the groups a user belongs to. A user that does not
// exist belongs to no groups.
func (s *Service) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error) {
	u, err := s.users.GetByID(ctx, userID)
	return s.groupsOf(ctx, u, err)
}

// ListByUserEmail is ListByUser anchored by the user's email.
func (s *Service) ListByUserEmail(ctx context.Context, email string) ([]models.Group, error) {
	u, err := s.users.GetByEmail(ctx, email)
	return s.groupsOf(ctx, u, err)
}

func (s *Service) groupsOf(ctx context.Context, u *models.User, err error) ([]models.Group, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.Group{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	list, err := s.groups.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("list groups by user: %w", err)
	}
	return list, nil
}

// loadPair loads the group and checks that the user exists.
func (s *Service) loadPair(ctx context.Context, groupID, userID primitive.ObjectID) (*models.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &MembershipError{Kind: NotFound, Entity: "group"}
	}
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &MembershipError{Kind: NotFound, Entity: "user"}
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return g, nil
}

// raceError reports a conditional update that matched nothing. The group
// is re-read to tell a deleted group from a concurrent membership change.
func (s *Service) raceError(ctx context.Context, groupID primitive.ObjectID, kind MembershipKind) error {
	if _, err := s.groups.GetByID(ctx, groupID); errors.Is(err, mongo.ErrNoDocuments) {
		return &MembershipError{Kind: NotFound, Entity: "group"}
	}
	return &MembershipError{Kind: kind}
}

// compensate undoes the group-side write when the user-side write failed
// and no transaction will roll it back.
func (s *Service) compensate(ctx context.Context, op string, undo func(ctx context.Context) error) {
	if s.tx.Supported() {
		return
	}
	if err := undo(ctx); err != nil {
		s.log.Error("membership compensation failed", zap.String("op", op), zap.Error(err))
	}
}

func absent[T any](v *T, err error, op string) (*T, error) {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}
