// internal/app/features/users/edit.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	usersvc "github.com/dalemusser/grouphub/internal/app/services/users"
	userstore "github.com/dalemusser/grouphub/internal/app/store/users"
	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/app/system/inputval"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
)

// HandleEdit applies the fields present in the body. A new password is
// hashed before it is stored. Group membership is not editable here.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req userRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, apierr.CodeBadRequest, "malformed JSON body")
		return
	}
	req = req.normalized()

	input := updateUserInput{Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	if res := inputval.Validate(input); res.HasErrors() {
		apierr.Write(w, apierr.CodeValidation, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if req.Email != "" {
		other, err := h.Users.FindByEmail(ctx, req.Email)
		if err != nil {
			apierr.Internal(w, h.Log, "check user email", err)
			return
		}
		if other != nil && other.ID != id {
			apierr.Write(w, apierr.CodeConflict, msgUserExists)
			return
		}
	}

	if req.Password != "" {
		hash, err := authutil.HashPassword(req.Password)
		if err != nil {
			apierr.Internal(w, h.Log, "hash password", err)
			return
		}
		req.Password = hash
	}

	u, err := h.Users.Update(ctx, id, usersvc.Input{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case errors.Is(err, usersvc.ErrInvalidRole):
		apierr.Write(w, apierr.CodeValidation, err.Error())
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		apierr.Write(w, apierr.CodeConflict, msgUserExists)
		return
	case err != nil:
		apierr.Internal(w, h.Log, "update user", err)
		return
	}
	if u == nil {
		apierr.Write(w, apierr.CodeNotFound, msgUserNotFound)
		return
	}

	h.AuditLog.UserUpdated(ctx, r, u.ID, changedFields(req))
	apierr.JSON(w, http.StatusOK, u)
}

func changedFields(req userRequest) string {
	var fields []string
	if req.Name != "" {
		fields = append(fields, "name")
	}
	if req.Email != "" {
		fields = append(fields, "email")
	}
	if req.Password != "" {
		fields = append(fields, "password")
	}
	if req.Role != "" {
		fields = append(fields, "role")
	}
	return strings.Join(fields, ",")
}
