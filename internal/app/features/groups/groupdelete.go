// internal/app/features/groups/groupdelete.go
package groups

import (
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleDeleteGroup deletes a group, removes it from every member's list,
// and returns the deleted record.
func (h *Handler) HandleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", msgGroupNotFound)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete group")
	defer cancel()

	g, err := h.Groups.Delete(ctx, id)
	if err != nil {
		apierr.Internal(w, h.Log, "delete group", err)
		return
	}
	if g == nil {
		apierr.Write(w, apierr.CodeNotFound, msgGroupNotFound)
		return
	}

	h.AuditLog.GroupDeleted(ctx, r, g.ID, g.Name)
	h.Log.Info("group deleted", zap.String("group_id", g.ID.Hex()), zap.Int("members", len(g.Users)))
	apierr.JSON(w, http.StatusOK, g)
}
