package cmd

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/ltcare/familyhub/docs"
	"github.com/ltcare/familyhub/internal/auth"
	"github.com/ltcare/familyhub/internal/calendar"
	"github.com/ltcare/familyhub/internal/config"
	"github.com/ltcare/familyhub/internal/database"
	"github.com/ltcare/familyhub/internal/family"
	"github.com/ltcare/familyhub/internal/health"
	"github.com/ltcare/familyhub/internal/invitation"
	"github.com/ltcare/familyhub/internal/notification"
	"github.com/ltcare/familyhub/internal/user"
	mw "github.com/ltcare/familyhub/pkg/middleware"
)

const healthTimeout = 2 * time.Second

func newRouter(cfg *config.Config, db *database.DB, logger *zap.Logger) http.Handler {
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, tokens, logger)
	userHandler := user.NewHandler(userService, logger)

	// Family feature
	familyService := family.NewService(db, family.NewRepository(db), logger)
	familyHandler := family.NewHandler(familyService, logger)

	// Notification feature
	notificationService := notification.NewService(notification.NewRepository(db), logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	// Invitation feature
	invitationService := invitation.NewService(
		db,
		invitation.NewRepository(db),
		userRepo,
		familyService,
		notificationService,
		logger,
	)
	invitationHandler := invitation.NewHandler(invitationService, logger)

	// Calendar feature
	calendarService := calendar.NewService(db, calendar.NewRepository(db), familyService, logger)
	calendarHandler := calendar.NewHandler(calendarService, logger)

	healthHandler := health.NewHandler(db, healthTimeout, logger)
	authenticate := mw.Authenticate(tokens, userService, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Serve)
	if !cfg.IsProduction() {
		r.Get("/swagger/*", httpSwagger.WrapHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Mount("/auth", userHandler.Routes(authenticate))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			familyRoutes := familyHandler.Routes()
			familyRoutes.Mount("/invitations", invitationHandler.Routes())
			familyRoutes.Mount("/calendar", calendarHandler.Routes())
			r.Mount("/family", familyRoutes)

			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	return r
}
