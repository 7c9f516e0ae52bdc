// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes mounts the group endpoints. Authentication, when enabled, is
// applied by the caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	// LIST / LOOKUP
	r.Get("/", h.ServeGroupsList)

	// CREATE
	r.Post("/", h.HandleCreateGroup)

	// VIEW / EDIT / DELETE
	r.Get("/{id}", h.ServeGroup)
	r.Put("/{id}", h.HandleEditGroup)
	r.Delete("/{id}", h.HandleDeleteGroup)

	// MEMBERS
	r.Get("/{id}/users", h.ServeGroupMembers)
	r.Post("/{id}/{userID}", h.HandleAddMember)
	r.Delete("/{id}/{userID}", h.HandleRemoveMember)

	return r
}
