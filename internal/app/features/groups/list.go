// internal/app/features/groups/list.go
package groups

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
)

// ServeGroupsList returns every group. With ?name= it returns the single
// matching group instead, and with ?user=<email> the groups that user
// belongs to.
func (h *Handler) ServeGroupsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if name := normalize.Name(query.Get(r, "name")); name != "" {
		g, err := h.Groups.FindByName(ctx, name)
		if err != nil {
			apierr.Internal(w, h.Log, "find group by name", err)
			return
		}
		if g == nil {
			apierr.Write(w, apierr.CodeNotFound, msgGroupNotFound)
			return
		}
		apierr.JSON(w, http.StatusOK, g)
		return
	}

	if email := normalize.Email(query.Get(r, "user")); email != "" {
		u, err := h.Users.FindByEmail(ctx, email)
		if err != nil {
			apierr.Internal(w, h.Log, "find user by email", err)
			return
		}
		if u == nil {
			apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
			return
		}
		list, err := h.Groups.ListByUserEmail(ctx, u.Email)
		if err != nil {
			apierr.Internal(w, h.Log, "list groups by user", err)
			return
		}
		apierr.JSON(w, http.StatusOK, list)
		return
	}

	list, err := h.Groups.FindAll(ctx)
	if err != nil {
		apierr.Internal(w, h.Log, "list groups", err)
		return
	}
	apierr.JSON(w, http.StatusOK, list)
}
