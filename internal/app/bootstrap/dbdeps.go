// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/grouphub/internal/app/system/ratelimit"
	"github.com/dalemusser/grouphub/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the process-lifetime backends built by ConnectDB and handed
// to every later hook.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// LoginLimiter is nil when login_rate_per_minute is 0. Its cleanup
	// goroutine is stopped in Shutdown.
	LoginLimiter *ratelimit.LoginLimiter

	// AuditRetention is nil when audit_retention is 0. Startup starts it.
	AuditRetention *workers.AuditRetention
}
