// internal/app/features/groups/managemembers.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleAddMember adds the user in the path to the group and returns the
// updated group.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "add member")
	defer cancel()

	groupID, userID, ok := h.memberPath(ctx, w, r)
	if !ok {
		return
	}

	g, err := h.Groups.AddUserToGroup(ctx, groupID, userID)
	if err != nil {
		h.writeMembershipError(w, "add member", err)
		return
	}

	h.AuditLog.MemberAddedToGroup(ctx, r, userID, groupID)
	apierr.JSON(w, http.StatusOK, g)
}

// HandleRemoveMember removes the user in the path from the group and
// returns the updated group.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "remove member")
	defer cancel()

	groupID, userID, ok := h.memberPath(ctx, w, r)
	if !ok {
		return
	}

	g, err := h.Groups.RemoveUserFromGroup(ctx, groupID, userID)
	if err != nil {
		h.writeMembershipError(w, "remove member", err)
		return
	}

	h.AuditLog.MemberRemovedFromGroup(ctx, r, userID, groupID)
	apierr.JSON(w, http.StatusOK, g)
}

// memberPath parses /{id}/{userID} and confirms the user exists. The group
// is checked by the service.
func (h *Handler) memberPath(ctx context.Context, w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	userID, ok := pathID(w, r, "userID", msgUserNotFound)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	u, err := h.Users.FindByID(ctx, userID)
	if err != nil {
		apierr.Internal(w, h.Log, "find user", err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	if u == nil {
		apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	groupID, ok := pathID(w, r, "id", msgGroupNotFound)
	return groupID, userID, ok
}
