// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/grouphub/internal/app/features/errors"
	groupsfeature "github.com/dalemusser/grouphub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/grouphub/internal/app/features/health"
	loginfeature "github.com/dalemusser/grouphub/internal/app/features/login"
	usersfeature "github.com/dalemusser/grouphub/internal/app/features/users"
	groupsvc "github.com/dalemusser/grouphub/internal/app/services/groups"
	usersvc "github.com/dalemusser/grouphub/internal/app/services/users"
	auditstore "github.com/dalemusser/grouphub/internal/app/store/audit"
	groupstore "github.com/dalemusser/grouphub/internal/app/store/groups"
	userstore "github.com/dalemusser/grouphub/internal/app/store/users"
	"github.com/dalemusser/grouphub/internal/app/system/auditlog"
	"github.com/dalemusser/grouphub/internal/app/system/auth"
	"github.com/dalemusser/grouphub/internal/app/system/ratelimit"
	"github.com/dalemusser/grouphub/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed. Stores, services and handlers are built
// here once and injected; nothing is held in package state.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	tokens, err := auth.NewTokenManager(appCfg.tokenConfig())
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	groups := groupstore.New(db)
	tx := txn.New(deps.MongoClient, logger)

	return newRouter(routerDeps{
		Users:       usersvc.New(users, groups, tx, logger),
		Groups:      groupsvc.New(groups, users, tx, logger),
		Tokens:      tokens,
		Limiter:     deps.LoginLimiter,
		AuditLog:    auditlog.New(auditstore.New(db), logger, auditlog.Config{Auth: appCfg.AuditLogAuth, Admin: appCfg.AuditLogAdmin}),
		DB:          deps.MongoClient,
		RequireAuth: appCfg.RequireAuth,
		Log:         logger,
	}), nil
}

// routerDeps is everything the router needs, already constructed.
type routerDeps struct {
	Users       *usersvc.Service
	Groups      *groupsvc.Service
	Tokens      *auth.TokenManager
	Limiter     *ratelimit.LoginLimiter
	AuditLog    *auditlog.Logger
	DB          healthfeature.Pinger
	RequireAuth bool
	Log         *zap.Logger
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// JSON bodies for unmatched routes. Set before mounting so the
	// feature routers inherit them.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	authMW := auth.NewMiddleware(d.Tokens, d.Log)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(d.DB, d.Log)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(d.Users, d.Tokens, d.Limiter, d.AuditLog, d.Log)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	r.Group(func(pr chi.Router) {
		if d.RequireAuth {
			pr.Use(authMW.RequireSignedIn)
		}

		usersHandler := usersfeature.NewHandler(d.Users, d.Groups, d.AuditLog, d.Log)
		pr.Mount("/users", usersfeature.Routes(usersHandler, authMW))

		groupsHandler := groupsfeature.NewHandler(d.Groups, d.Users, d.AuditLog, d.Log)
		pr.Mount("/groups", groupsfeature.Routes(groupsHandler))
	})

	return r
}
