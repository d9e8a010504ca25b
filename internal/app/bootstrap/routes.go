// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	errorsfeature "github.com/hostelhaven/roomsync/internal/app/features/errors"
	healthfeature "github.com/hostelhaven/roomsync/internal/app/features/health"
	loginfeature "github.com/hostelhaven/roomsync/internal/app/features/login"
	matchingfeature "github.com/hostelhaven/roomsync/internal/app/features/matching"
	notificationsfeature "github.com/hostelhaven/roomsync/internal/app/features/notifications"
	paymentsfeature "github.com/hostelhaven/roomsync/internal/app/features/payments"
	preferencesfeature "github.com/hostelhaven/roomsync/internal/app/features/preferences"
	roommategroupsfeature "github.com/hostelhaven/roomsync/internal/app/features/roommategroups"
	roomsfeature "github.com/hostelhaven/roomsync/internal/app/features/rooms"
	"github.com/hostelhaven/roomsync/internal/app/match"
	groupstore "github.com/hostelhaven/roomsync/internal/app/store/groups"
	notificationstore "github.com/hostelhaven/roomsync/internal/app/store/notifications"
	requeststore "github.com/hostelhaven/roomsync/internal/app/store/requests"
	roomstore "github.com/hostelhaven/roomsync/internal/app/store/rooms"
	studentstore "github.com/hostelhaven/roomsync/internal/app/store/students"
	"github.com/hostelhaven/roomsync/internal/app/system/auth"
	"github.com/hostelhaven/roomsync/internal/app/system/lifecycle"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE
// app. WAFFLE calls this after configuration, DB connections, schema
// setup and Startup have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	errLog := errorsfeature.NewErrorLogger(logger)

	// The lifecycle manager drives every group transition; handlers never
	// touch group state except through it.
	mgr := lifecycle.NewManager(
		groupstore.New(db),
		studentstore.New(db),
		roomstore.New(db),
		requeststore.New(db),
		lifecycle.NewStoreNotifier(notificationstore.New(db)),
		logger,
	)

	engine := match.Engine{TopK: appCfg.MatchTopK}

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/auth", loginfeature.Routes(loginHandler))

	// Lifestyle questionnaire and room-type selection
	preferencesHandler := preferencesfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/preferences", preferencesfeature.Routes(preferencesHandler))

	// Compatibility matching
	matchingHandler := matchingfeature.NewHandler(db, engine, appCfg.MatchMinScore, errLog, logger)
	r.Mount("/api/matching", matchingfeature.Routes(matchingHandler))

	// Group workflow: requests, consent, room selection, cancellation
	groupsHandler := roommategroupsfeature.NewHandler(db, mgr, errLog, logger)
	r.Mount("/api/roommate-groups", roommategroupsfeature.Routes(groupsHandler))

	// Room fee payments and finalization
	paymentsHandler := paymentsfeature.NewHandler(db, mgr, errLog, logger)
	r.Mount("/api/payments", paymentsfeature.Routes(paymentsHandler))

	// In-app notifications
	notificationsHandler := notificationsfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/notifications", notificationsfeature.Routes(notificationsHandler))

	// Room directory (admin create, shared lookup)
	roomsHandler := roomsfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/rooms", roomsfeature.Routes(roomsHandler))

	return r, nil
}
