// internal/app/features/users/delete.go
package users

import (
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDelete removes a user from every group and deletes it, returning
// the deleted record.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete user")
	defer cancel()

	u, err := h.Users.Delete(ctx, id)
	if err != nil {
		apierr.Internal(w, h.Log, "delete user", err)
		return
	}
	if u == nil {
		apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
		return
	}

	h.AuditLog.UserDeleted(ctx, r, u.ID, u.Email)
	h.Log.Info("user deleted", zap.String("user_id", u.ID.Hex()))
	apierr.JSON(w, http.StatusOK, u)
}
