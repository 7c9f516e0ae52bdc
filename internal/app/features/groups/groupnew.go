// internal/app/features/groups/groupnew.go
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
	"go.uber.org/zap"
)

// HandleCreateGroup creates a group from {"name": ...}.
func (h *Handler) HandleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, apierr.CodeBadRequest, "malformed JSON body")
		return
	}
	name := normalize.Name(req.Name)
	if res := inputval.Validate(groupInput{Name: name}); res.HasErrors() {
		apierr.Write(w, apierr.CodeValidation, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Groups.FindByName(ctx, name)
	if err != nil {
		apierr.Internal(w, h.Log, "check group name", err)
		return
	}
	if existing != nil {
		apierr.Write(w, apierr.CodeConflict, msgGroupExists)
		return
	}

	g, err := h.Groups.Create(ctx, groupsvc.Input{Name: name})
	if errors.Is(err, groupstore.ErrDuplicateGroupName) {
		// Lost the race to a concurrent create; the unique index caught it.
		apierr.Write(w, apierr.CodeConflict, msgGroupExists)
		return
	}
	if err != nil {
		apierr.Internal(w, h.Log, "create group", err)
		return
	}

	h.AuditLog.GroupCreated(ctx, r, g.ID, g.Name)
	h.Log.Info("group created", zap.String("group_id", g.ID.Hex()), zap.String("name", g.Name))
	apierr.JSON(w, http.StatusCreated, g)
}
