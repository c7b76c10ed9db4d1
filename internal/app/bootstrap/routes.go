// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminfeature "github.com/crisisline/crisishub/internal/app/features/admin"
	crisiscallsfeature "github.com/crisisline/crisishub/internal/app/features/crisiscalls"
	dashboardfeature "github.com/crisisline/crisishub/internal/app/features/dashboard"
	errorsfeature "github.com/crisisline/crisishub/internal/app/features/errors"
	healthfeature "github.com/crisisline/crisishub/internal/app/features/health"
	mobilecrisisfeature "github.com/crisisline/crisishub/internal/app/features/mobilecrisis"
	"github.com/crisisline/crisishub/internal/app/features/shared/otpmail"
	stabilizationfeature "github.com/crisisline/crisishub/internal/app/features/stabilization"
	usermanagementfeature "github.com/crisisline/crisishub/internal/app/features/usermanagement"
	usersfeature "github.com/crisisline/crisishub/internal/app/features/users"
	usersummaryfeature "github.com/crisisline/crisishub/internal/app/features/usersummary"
	"github.com/crisisline/crisishub/internal/app/reporting"
	adminstore "github.com/crisisline/crisishub/internal/app/store/admins"
	"github.com/crisisline/crisishub/internal/app/store/audit"
	"github.com/crisisline/crisishub/internal/app/store/otp"
	submissionstore "github.com/crisisline/crisishub/internal/app/store/submissions"
	userstore "github.com/crisisline/crisishub/internal/app/store/users"
	"github.com/crisisline/crisishub/internal/app/system/auditlog"
	"github.com/crisisline/crisishub/internal/app/system/auth"
	"github.com/crisisline/crisishub/internal/app/system/mailer"
	"github.com/crisisline/crisishub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the shared services (token
// manager, mailer, one-time codes, rate limiter, audit log, report engine)
// and mounts every feature router under /api, plus /health.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	loc, err := reportLocation(appCfg.ReportTimezone)
	if err != nil {
		logger.Error("report timezone load failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(db)
	admins := adminstore.New(db)

	am, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTExpiry,
		userstore.NewFetcher(db), adminstore.NewFetcher(db), logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	mail := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
	codes := otpmail.New(otp.New(db, appCfg.OTPExpiry), mail, logger)
	if appCfg.SiteName != "" {
		codes.SiteName = appCfg.SiteName
	}

	events := audit.New(db)
	auditLog := auditlog.New(events, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	// Separate limiters keep admin attempts from draining the user budget.
	userLimiter := ratelimit.NewAuthLimiter()
	adminLimiter := ratelimit.NewAuthLimiter()

	engine := reporting.NewEngine(db, reporting.Options{
		Location:    loc,
		RecentLimit: int64(appCfg.RecentAccountsLimit),
	})
	submissions := submissionstore.New(db)

	errorsHandler := errorsfeature.NewHandler(logger)

	r := chi.NewRouter()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger))
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Submissions and monthly reports
	callsHandler := crisiscallsfeature.NewHandler(submissions, engine, logger)
	r.Mount("/api/crisis-calls", crisiscallsfeature.Routes(callsHandler, am))

	mobileHandler := mobilecrisisfeature.NewHandler(submissions, engine, logger)
	r.Mount("/api/mobile-crisis", mobilecrisisfeature.Routes(mobileHandler, am))

	stabilizationHandler := stabilizationfeature.NewHandler(submissions, engine, logger)
	r.Mount("/api/crisis-stabilization", stabilizationfeature.Routes(stabilizationHandler, am))

	// Summaries
	dashboardHandler := dashboardfeature.NewHandler(engine, logger)
	r.Mount("/api/dashboard", dashboardfeature.Routes(dashboardHandler))

	userSummaryHandler := usersummaryfeature.NewHandler(engine, logger)
	r.Mount("/api/user", usersummaryfeature.Routes(userSummaryHandler, am))

	// Accounts: user management lives under the users router so both share
	// the /api/users prefix.
	usersHandler := usersfeature.NewHandler(users, codes, am, userLimiter, auditLog, logger)
	usersRouter := usersfeature.Routes(usersHandler, am)

	r.Mount("/api/users", usersRouter)

	managementHandler := usermanagementfeature.NewHandler(users, engine, events, auditLog, logger)
	usersRouter.Mount("/management", usermanagementfeature.Routes(managementHandler, am))

	adminHandler := adminfeature.NewHandler(admins, codes, am, adminLimiter, auditLog, logger)
	r.Mount("/api/admin", adminfeature.Routes(adminHandler, am))

	return r, nil
}
