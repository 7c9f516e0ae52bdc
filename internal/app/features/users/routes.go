// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/grouphub/internal/app/system/auth"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the user endpoints. Creating a user always needs an admin
// token; the rest are gated by the caller when require_auth is on.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)

	r.Group(func(pr chi.Router) {
		pr.Use(mw.RequireSignedIn)
		pr.Use(auth.RequireRole(models.RoleAdmin))
		pr.Post("/", h.HandleCreate)
	})

	r.Get("/{id}", h.ServeView)
	r.Put("/{id}", h.HandleEdit)
	r.Delete("/{id}", h.HandleDelete)
	r.Get("/{id}/groups", h.ServeUserGroups)

	return r
}
