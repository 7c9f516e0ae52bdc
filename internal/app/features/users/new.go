// internal/app/features/users/new.go
package users

import (
	"context"
	"errors"
	"net/http"

	usersvc "github.com/dalemusser/grouphub/internal/app/services/users"
	userstore "github.com/dalemusser/grouphub/internal/app/store/users"
	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/app/system/inputval"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleCreate creates a user. The response carries the stored bcrypt hash,
// never the submitted password.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, apierr.CodeBadRequest, "malformed JSON body")
		return
	}
	req = req.normalized()

	input := createUserInput{Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role}
	if res := inputval.Validate(input); res.HasErrors() {
		apierr.Write(w, apierr.CodeValidation, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Users.FindByEmail(ctx, req.Email)
	if err != nil {
		apierr.Internal(w, h.Log, "check user email", err)
		return
	}
	if existing != nil {
		apierr.Write(w, apierr.CodeConflict, msgUserExists)
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		apierr.Internal(w, h.Log, "hash password", err)
		return
	}

	u, err := h.Users.Create(ctx, usersvc.Input{
		Name:     req.Name,
		Email:    req.Email,
		Password: hash,
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
		apierr.Internal(w, h.Log, "create user", err)
		return
	}

	h.AuditLog.UserCreated(ctx, r, u.ID, u.Role)
	h.Log.Info("user created", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	apierr.JSON(w, http.StatusCreated, u)
}
