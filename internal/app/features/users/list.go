// internal/app/features/users/list.go
package users

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeList returns every user. ?email= narrows to the single user with that
// address; ?group=<name> lists the members of the named group.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if email := normalize.Email(query.Get(r, "email")); email != "" {
		u, err := h.Users.FindByEmail(ctx, email)
		if err != nil {
			apierr.Internal(w, h.Log, "find user by email", err)
			return
		}
		if u == nil {
			apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
			return
		}
		apierr.JSON(w, http.StatusOK, u)
		return
	}

	if name := normalize.Name(query.Get(r, "group")); name != "" {
		g, err := h.Groups.FindByName(ctx, name)
		if err != nil {
			apierr.Internal(w, h.Log, "find group by name", err)
			return
		}
		if g == nil {
			apierr.Write(w, apierr.CodeNotFound, msgGroupNotFound)
			return
		}
		list, err := h.Users.ListByGroupName(ctx, g.Name)
		if err != nil {
			apierr.Internal(w, h.Log, "list users by group", err)
			return
		}
		apierr.JSON(w, http.StatusOK, list)
		return
	}

	list, err := h.Users.FindAll(ctx)
	if err != nil {
		apierr.Internal(w, h.Log, "list users", err)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}
