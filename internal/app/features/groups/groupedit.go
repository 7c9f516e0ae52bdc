// internal/app/features/groups/groupedit.go
package groups

import (
	"context"
	"errors"
	"net/http"

	groupsvc "github.com/dalemusser/grouphub/internal/app/services/groups"
	groupstore "github.com/dalemusser/grouphub/internal/app/store/groups"
	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/inputval"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
)

// HandleEditGroup renames a group. An absent or empty name leaves the group
// unchanged and returns it.
func (h *Handler) HandleEditGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", msgGroupNotFound)
	if !ok {
		return
	}

	var req groupRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, apierr.CodeBadRequest, "malformed JSON body")
		return
	}
	name := normalize.Name(req.Name)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if name != "" {
		if res := inputval.Validate(groupInput{Name: name}); res.HasErrors() {
			apierr.Write(w, apierr.CodeValidation, res.First())
			return
		}
		other, err := h.Groups.FindByName(ctx, name)
		if err != nil {
			apierr.Internal(w, h.Log, "check group name", err)
			return
		}
		if other != nil && other.ID != id {
			apierr.Write(w, apierr.CodeConflict, msgGroupExists)
			return
		}
	}

	g, err := h.Groups.Update(ctx, id, groupsvc.Input{Name: name})
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		apierr.Write(w, apierr.CodeConflict, msgGroupExists)
		return
	}
	if err != nil {
		apierr.Internal(w, h.Log, "update group", err)
		return
	}
	if g == nil {
		apierr.Write(w, apierr.CodeNotFound, msgGroupNotFound)
		return
	}

	h.AuditLog.GroupUpdated(ctx, r, g.ID, g.Name)
	apierr.JSON(w, http.StatusOK, g)
}
