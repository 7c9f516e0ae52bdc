// internal/app/features/users/handler.go
package users

import (
	"context"
	"net/http"

	usersvc "github.com/dalemusser/grouphub/internal/app/services/users"
	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/auditlog"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// UserService is the user behavior the handlers call. *usersvc.Service
// implements it.
type UserService interface {
	Create(ctx context.Context, in usersvc.Input) (models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, in usersvc.Input) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.User, error)
	ListByGroupName(ctx context.Context, name string) ([]models.User, error)
}

// GroupService is the group behavior the user routes need.
type GroupService interface {
	FindByName(ctx context.Context, name string) (*models.Group, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
}

// Handler holds the dependencies shared by the user endpoints.
type Handler struct {
	Users    UserService
	Groups   GroupService
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users UserService, groups GroupService, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Groups:   groups,
		AuditLog: audit,
		Log:      logger,
	}
}

// userRequest is the body of create and update. On update, absent fields
// are left unchanged.
type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (req userRequest) normalized() userRequest {
	req.Name = normalize.Name(req.Name)
	req.Email = normalize.Email(req.Email)
	return req
}

// createUserInput and updateUserInput carry the inputval rules. pwbytes
// holds passwords to bcrypt's byte limit; max would count runes.
type createUserInput struct {
	Name     string `validate:"required,max=200" label:"name"`
	Email    string `validate:"required,max=254,emailaddr" label:"email"`
	Password string `validate:"required,pwbytes" label:"password"`
	Role     string `validate:"omitempty,role" label:"role"`
}

type updateUserInput struct {
	Name     string `validate:"omitempty,max=200" label:"name"`
	Email    string `validate:"omitempty,max=254,emailaddr" label:"email"`
	Password string `validate:"omitempty,pwbytes" label:"password"`
	Role     string `validate:"omitempty,role" label:"role"`
}

const (
	msgUserNotFound  = "user not found"
	msgGroupNotFound = "group not found"
	msgUserExists    = "user already exists"
)

// pathID reads {id}; a malformed id is answered as a missing user.
func pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := normalize.ObjectID(chi.URLParam(r, "id"))
	if !ok {
		apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
	}
	return id, ok
}
