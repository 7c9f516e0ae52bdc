// internal/app/features/users/view.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
)

func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		apierr.Internal(w, h.Log, "find user", err)
		return
	}
	if u == nil {
		apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
		return
	}
	apierr.JSON(w, http.StatusOK, u)
}

// ServeUserGroups lists the groups the user belongs to.
func (h *Handler) ServeUserGroups(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		apierr.Internal(w, h.Log, "find user", err)
		return
	}
	if u == nil {
		apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
		return
	}

	list, err := h.Groups.ListByUser(ctx, u.ID)
	if err != nil {
		apierr.Internal(w, h.Log, "list groups by user", err)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}
