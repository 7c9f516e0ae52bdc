// internal/app/features/groups/handler.go
package groups

import (
	"context"
	"errors"
	"net/http"

	groupsvc "github.com/dalemusser/grouphub/internal/app/services/groups"
	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/auditlog"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// GroupService is the group behavior the handlers call. *groupsvc.Service
// implements it.
type GroupService interface {
	Create(ctx context.Context, in groupsvc.Input) (models.Group, error)
	FindAll(ctx context.Context) ([]models.Group, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	FindByName(ctx context.Context, name string) (*models.Group, error)
	Update(ctx context.Context, id primitive.ObjectID, in groupsvc.Input) (*models.Group, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Group, error)
	AddUserToGroup(ctx context.Context, groupID, userID primitive.ObjectID) (models.Group, error)
	RemoveUserFromGroup(ctx context.Context, groupID, userID primitive.ObjectID) (models.Group, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Group, error)
	ListByUserEmail(ctx context.Context, email string) ([]models.Group, error)
}

// UserService is the user behavior the group routes need.
type UserService interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.User, error)
}

// Handler is the shared dependency container for the groups feature.
type Handler struct {
	Groups   GroupService
	Users    UserService
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a new groups Handler. It is typically called
// from the bootstrap BuildHandler function.
func NewHandler(groups GroupService, users UserService, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Groups:   groups,
		Users:    users,
		AuditLog: audit,
		Log:      logger,
	}
}

type groupRequest struct {
	Name string `json:"name"`
}

// groupInput holds the normalized fields checked by inputval.
type groupInput struct {
	Name string `validate:"required,max=200" label:"name"`
}

const (
	msgGroupNotFound = "group not found"
	msgUserNotFound  = "user not found"
	msgGroupExists   = "group already exists"
)

// writeMembershipError maps a refused membership change onto the API codes.
func (h *Handler) writeMembershipError(w http.ResponseWriter, op string, err error) {
	var me *groupsvc.MembershipError
	if !errors.As(err, &me) {
		apierr.Internal(w, h.Log, op, err)
		return
	}
	switch me.Kind {
	case groupsvc.NotFound:
		apierr.Write(w, apierr.CodeNotFound, me.Error())
	case groupsvc.AlreadyMember:
		apierr.Write(w, apierr.CodeAlreadyMember, me.Error())
	case groupsvc.NotMember:
		apierr.Write(w, apierr.CodeNotMember, me.Error())
	default:
		apierr.Internal(w, h.Log, op, err)
	}
}

// pathID reads an id from the URL. A malformed id cannot name a record, so
// it is answered with a 404 like any other missing one.
func pathID(w http.ResponseWriter, r *http.Request, key, notFound string) (primitive.ObjectID, bool) {
	id, ok := normalize.ObjectID(chi.URLParam(r, key))
	if !ok {
		apierr.Write(w, apierr.CodeNotFound, notFound)
	}
	return id, ok
}
