// internal/app/features/groups/groupview.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
)

// ServeGroup returns one group by id.
func (h *Handler) ServeGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", msgGroupNotFound)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Groups.FindByID(ctx, id)
	if err != nil {
		apierr.Internal(w, h.Log, "find group", err)
		return
	}
	if g == nil {
		apierr.Write(w, apierr.CodeNotFound, msgGroupNotFound)
		return
	}
	apierr.JSON(w, http.StatusOK, g)
}

// ServeGroupMembers returns the users in a group.
func (h *Handler) ServeGroupMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", msgGroupNotFound)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Groups.FindByID(ctx, id)
	if err != nil {
		apierr.Internal(w, h.Log, "find group", err)
		return
	}
	if g == nil {
		apierr.Write(w, apierr.CodeNotFound, msgGroupNotFound)
		return
	}

	members, err := h.Users.ListByGroup(ctx, g.ID)
	if err != nil {
		apierr.Internal(w, h.Log, "list group members", err)
		return
	}
	apierr.JSON(w, http.StatusOK, members)
}
