// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/grouphub/internal/app/store/users"
	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/app/system/timeouts"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.timeoutConfig())

	if err := ensureAdmin(ctx, userstore.New(deps.MongoDatabase), appCfg, logger); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if deps.AuditRetention != nil {
		deps.AuditRetention.Start()
	}
	return nil
}

// adminStore is the part of the user store the admin bootstrap needs.
type adminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, upd userstore.Update) (*models.User, error)
}

// ensureAdmin makes sure the configured admin_email belongs to an admin.
// A missing user is created with admin_password; an existing non-admin is
// promoted. An existing admin is left alone, including its password.
func ensureAdmin(ctx context.Context, store adminStore, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.AdminEmail == "" {
		return nil
	}

	existing, err := store.GetByEmail(ctx, appCfg.AdminEmail)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		hash, err := adminPasswordHash(appCfg.AdminPassword)
		if err != nil {
			return err
		}
		name := appCfg.AdminName
		if name == "" {
			name = "Administrator"
		}
		u, err := store.Create(ctx, models.User{
			Name:     name,
			Email:    appCfg.AdminEmail,
			Password: hash,
			Role:     models.RoleAdmin,
		})
		if err != nil {
			return err
		}
		logger.Info("created bootstrap admin", zap.String("email", u.Email), zap.String("user_id", u.ID.Hex()))
		return nil

	case err != nil:
		return err

	case existing.Role == models.RoleAdmin:
		logger.Debug("bootstrap admin already present", zap.String("email", existing.Email))
		return nil

	default:
		if _, err := store.Update(ctx, existing.ID, userstore.Update{Role: models.RoleAdmin}); err != nil {
			return err
		}
		logger.Warn("promoted existing user to admin",
			zap.String("email", existing.Email),
			zap.String("previous_role", existing.Role))
		return nil
	}
}

// adminPasswordHash accepts admin_password either as plaintext or as a
// bcrypt hash, so deployments need not keep the plaintext in config.
func adminPasswordHash(pw string) (string, error) {
	if authutil.IsHash(pw) {
		return pw, nil
	}
	return authutil.HashPassword(pw)
}
