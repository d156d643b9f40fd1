// Package server wires the HTTP surface: routing, auth middleware,
// rate limiting, serialization and the response envelope.
package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourfuture/platform/internal/apperr"
	"github.com/yourfuture/platform/internal/auth"
	"github.com/yourfuture/platform/internal/health"
	"github.com/yourfuture/platform/internal/notification"
	"github.com/yourfuture/platform/internal/ratelimit"
	"github.com/yourfuture/platform/internal/startup"
	"github.com/yourfuture/platform/internal/user"
	"github.com/yourfuture/platform/internal/vacancy"
	"github.com/yourfuture/platform/pkg/config"
	"github.com/yourfuture/platform/pkg/logger"
)

// Server carries the services the handlers delegate to.
type Server struct {
	users         *user.Service
	startups      *startup.Service
	vacancies     *vacancy.Service
	notifications *notification.Service
	tokens        *auth.Manager
	errs          *apperr.Handler
	health        *health.Checker
	limiter       ratelimit.Limiter
	rules         *ratelimit.Rules
	log           *slog.Logger
}

// Deps bundles the constructor arguments.
type Deps struct {
	Users         *user.Service
	Startups      *startup.Service
	Vacancies     *vacancy.Service
	Notifications *notification.Service
	Tokens        *auth.Manager
	Errors        *apperr.Handler
	Health        *health.Checker
	Limiter       ratelimit.Limiter
	Rules         *ratelimit.Rules
	Log           *slog.Logger
}

// New constructs the Server.
func New(deps Deps) *Server {
	return &Server{
		users:         deps.Users,
		startups:      deps.Startups,
		vacancies:     deps.Vacancies,
		notifications: deps.Notifications,
		tokens:        deps.Tokens,
		errs:          deps.Errors,
		health:        deps.Health,
		limiter:       deps.Limiter,
		rules:         deps.Rules,
		log:           deps.Log,
	}
}

// Router builds the gin engine with the full route table.
func (s *Server) Router(cfg config.CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.CorrelationMiddleware())
	router.Use(metricsMiddleware())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "If-Match")
	router.Use(cors.New(corsConfig))

	router.Use(s.authOptional())
	router.Use(s.rateLimitMiddleware())

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/register", s.handleRegister)
	router.POST("/login", s.handleLogin)

	router.GET("/startups", s.handleListStartups)
	router.GET("/startups/:id", s.handleGetStartup)
	router.GET("/vacancies", s.handleListVacancies)
	router.GET("/vacancies/:id", s.handleGetVacancy)

	signedIn := router.Group("", s.authRequired())
	{
		signedIn.GET("/profile", s.handleGetProfile)
		signedIn.PUT("/profile", s.handleUpdateProfile)
		signedIn.GET("/profile/notifications", s.handleListNotifications)

		signedIn.POST("/startups", s.handleCreateStartup)
		signedIn.PUT("/startups/:id/funds", s.handleUpdateFunds)
		signedIn.PUT("/startups/:id/timeline", s.handleUpdateTimeline)

		signedIn.POST("/vacancies", s.handleCreateVacancy)
		signedIn.POST("/vacancies/:id/apply", s.handleApplyVacancy)
		signedIn.DELETE("/vacancies/:id", s.handleDeleteVacancy)
	}

	admin := router.Group("", s.authRequired(), s.adminRequired())
	{
		admin.PUT("/startups/:id/approve", s.handleApproveStartup)
		admin.PUT("/startups/:id/reject", s.handleRejectStartup)
		admin.PUT("/startups/:id/toggle_hold", s.handleToggleHoldStartup)
		admin.PUT("/startups/:id/stage", s.handleAdvanceStage)

		admin.PUT("/vacancies/:id/approve", s.handleApproveVacancy)
		admin.PUT("/vacancies/:id/reject", s.handleRejectVacancy)
		admin.PUT("/vacancies/:id/toggle_hold", s.handleToggleHoldVacancy)

		admin.GET("/users", s.handleListUsers)
		admin.POST("/users/:id/notifications", s.handleSendNotification)
	}

	return router
}
