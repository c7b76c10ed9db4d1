// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"sync"

	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/timeouts"
	"github.com/crisisline/crisishub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

var (
	workerMu      sync.Mutex
	pendingWorker *workers.PendingCleanup
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built: it applies
// the report deadline, starts the pending-signup purge and reports whether
// the administrator account still needs to be created.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Report: appCfg.ReportTimeout})

	sctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	exists, err := adminstore.New(deps.MongoDatabase).Exists(sctx)
	if err != nil {
		logger.Error("admin lookup failed", zap.Error(err))
		return err
	}
	if !exists {
		logger.Warn("no administrator account yet; create one with POST /api/admin/signup")
	}

	w := workers.NewPendingCleanup(userstore.New(deps.MongoDatabase), logger,
		appCfg.PendingCleanupInterval, appCfg.PendingSignupTTL)
	w.Start()

	workerMu.Lock()
	pendingWorker = w
	workerMu.Unlock()
	return nil
}
