// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/grouphub/internal/app/system/apierr"
	"github.com/dalemusser/grouphub/internal/app/system/auditlog"
	"github.com/dalemusser/grouphub/internal/app/system/auth"
	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/app/system/normalize"
	"github.com/dalemusser/grouphub/internal/app/system/ratelimit"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"go.uber.org/zap"
)

// UserFinder is the lookup login needs. A nil user with a nil error means
// no account has that email.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type Handler struct {
	Users    UserFinder
	Tokens   *auth.TokenManager
	Limiter  *ratelimit.LoginLimiter // nil disables throttling
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users UserFinder, tokens *auth.TokenManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Tokens:   tokens,
		Limiter:  limiter,
		AuditLog: audit,
		Log:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

const invalidCredentials = "invalid credentials"

// HandleLogin exchanges an email and password for a signed bearer token.
// Unknown email and wrong password produce the same response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := apierr.Decode(r, &req); err != nil {
		apierr.Write(w, apierr.CodeBadRequest, "malformed JSON body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		apierr.Write(w, apierr.CodeValidation, "email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if h.Limiter != nil {
		if ok, msg, retryAfter := h.Limiter.Check(r, email); !ok {
			h.AuditLog.LoginFailedRateLimit(ctx, r, email, msg)
			ratelimit.WriteLimited(w, retryAfter, msg)
			return
		}
	}

	u, err := h.Users.FindByEmail(ctx, email)
	if err != nil {
		apierr.Internal(w, h.Log, "login lookup", err)
		return
	}
	if u == nil {
		h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
		apierr.Write(w, apierr.CodeUnauthenticated, invalidCredentials)
		return
	}
	if !authutil.CheckPassword(req.Password, u.Password) {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, u.ID, email)
		apierr.Write(w, apierr.CodeUnauthenticated, invalidCredentials)
		return
	}

	token, err := h.Tokens.Issue(u.Email, u.Role)
	if err != nil {
		apierr.Internal(w, h.Log, "issue token", err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)
	h.Log.Info("user signed in", zap.String("email", u.Email), zap.String("role", u.Role))

	apierr.JSON(w, http.StatusOK, loginResponse{Email: u.Email, Token: token})
}
