package bootstrap

import (
	"context"
	"testing"

	"github.com/dalemusser/grouphub/internal/app/system/authutil"
	"github.com/dalemusser/grouphub/internal/domain/models"
	"github.com/dalemusser/grouphub/internal/testutil/memstore"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func adminCfg(email string) AppConfig {
	return AppConfig{AdminEmail: email, AdminPassword: "bootstrap-pw", AdminName: "Boot"}
}

func TestEnsureAdmin_CreatesNew(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()

	if err := ensureAdmin(ctx, db.Users, adminCfg("root@test.com"), testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	u, err := db.Users.GetByEmail(ctx, "root@test.com")
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", u.Role)
	}
	if u.Name != "Boot" {
		t.Errorf("expected name 'Boot', got %q", u.Name)
	}
	if !authutil.CheckPassword("bootstrap-pw", u.Password) {
		t.Error("expected the configured password to be stored hashed")
	}
}

func TestEnsureAdmin_PrehashedPassword(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	hash, err := authutil.HashPassword("from-vault")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg := adminCfg("root@test.com")
	cfg.AdminPassword = hash

	if err := ensureAdmin(ctx, db.Users, cfg, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	u, err := db.Users.GetByEmail(ctx, "root@test.com")
	if err != nil {
		t.Fatalf("failed to find created user: %v", err)
	}
	if u.Password != hash {
		t.Error("a bcrypt admin_password should be stored as given")
	}
	if !authutil.CheckPassword("from-vault", u.Password) {
		t.Error("expected the plaintext behind the hash to log in")
	}
}

func TestEnsureAdmin_PromotesExisting(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	existing, err := db.Users.Create(ctx, models.User{Name: "Existing", Email: "existing@test.com", Password: "old-hash", Role: models.RoleUser})
	if err != nil {
		t.Fatalf("failed to create existing user: %v", err)
	}

	if err := ensureAdmin(ctx, db.Users, adminCfg("existing@test.com"), testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	u, _ := db.Users.GetByID(ctx, existing.ID)
	if u.Role != models.RoleAdmin {
		t.Errorf("expected role 'admin' after promotion, got %q", u.Role)
	}
	if u.Password != "old-hash" {
		t.Error("promotion should not touch the password")
	}
	if u.Name != "Existing" {
		t.Errorf("promotion should not rename, got %q", u.Name)
	}
}

func TestEnsureAdmin_AlreadyAdmin(t *testing.T) {
	ctx := context.Background()
	db := memstore.New()
	if _, err := db.Users.Create(ctx, models.User{Name: "Root", Email: "root@test.com", Password: "old-hash", Role: models.RoleAdmin}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := ensureAdmin(ctx, db.Users, adminCfg("root@test.com"), testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}

	all, _ := db.Users.List(ctx)
	if len(all) != 1 {
		t.Errorf("expected no new user, got %d", len(all))
	}
	if all[0].Password != "old-hash" {
		t.Error("existing admin password should be left alone")
	}
}

func TestEnsureAdmin_Disabled(t *testing.T) {
	db := memstore.New()
	if err := ensureAdmin(context.Background(), db.Users, AppConfig{}, testLogger()); err != nil {
		t.Fatalf("ensureAdmin failed: %v", err)
	}
	all, _ := db.Users.List(context.Background())
	if len(all) != 0 {
		t.Errorf("expected no users, got %d", len(all))
	}
}
