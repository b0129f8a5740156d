package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/http/handlers"
	"github.com/local1284/membership/internal/metrics"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/ratelimit"
	"github.com/local1284/membership/internal/rbac"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	sessionStore *fibersession.Store,
	csrfStorage fiber.Storage,
	limiter *ratelimit.Limiter,
	authHandler *handlers.AuthHandler,
	memberHandler *handlers.MemberHandler,
	newsHandler *handlers.NewsHandler,
	adminUserHandler *handlers.AdminUserHandler,
	smsHandler *handlers.SMSHandler,
	auditHandler *handlers.AuditHandler,
	adminActionHandler *handlers.AdminActionHandler,
	healthHandler *handlers.HealthHandler,
	auditFeed *handlers.AuditFeedHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID, X-Csrf-Token",
		AllowCredentials: true,
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))
	app.Use(middleware.AttachIdentity(sessionStore, log))
	app.Use(middleware.CSRFMiddleware(cfg, csrfStorage))

	// Health and metrics sit outside the API namespace and rate classes.
	app.Get("/health", healthHandler.Live)
	app.Get("/health/live", healthHandler.Live)
	app.Get("/health/ready", healthHandler.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	generalLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassGeneral, log)
	loginLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassLogin, log)
	resetLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassPasswordReset, log)
	adminLimit := middleware.RateLimitMiddleware(limiter, ratelimit.ClassAdminAction, log)

	// Public news feed
	news := app.Group("/api/news", generalLimit)
	news.Get("/", newsHandler.ListPublished)
	news.Get("/:slug", newsHandler.GetBySlug)

	// Auth
	auth := app.Group("/api/auth")
	auth.Post("/login", loginLimit, authHandler.Login)
	auth.Post("/logout", generalLimit, authHandler.Logout)
	auth.Get("/csrf-token", generalLimit, authHandler.CSRFToken)
	auth.Get("/me", generalLimit, middleware.RequireAuth(), authHandler.Me)
	auth.Post("/password-reset", resetLimit, authHandler.RequestPasswordReset)
	auth.Post("/password-reset/confirm", resetLimit, authHandler.ConfirmPasswordReset)

	// Members. Reads admit every authenticated role, writes are layered:
	// readonly is view-only, stewards reach the update path where the
	// field-level guard narrows them further.
	members := app.Group("/api/members", generalLimit, middleware.RequireAuth())
	members.Get("/", memberHandler.List)
	members.Get("/export",
		middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin, rbac.RoleStaff),
		memberHandler.Export)
	members.Get("/:id", memberHandler.Get)
	members.Post("/",
		middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin, rbac.RoleStaff),
		memberHandler.Create)
	members.Put("/:id",
		middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin, rbac.RoleStaff, rbac.RoleSteward),
		memberHandler.Update)
	members.Delete("/:id",
		middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin),
		memberHandler.Delete)

	// Admin surface
	admin := app.Group("/api/admin", adminLimit,
		middleware.RequireRoles(rbac.RoleSuperadmin, rbac.RoleAdmin))

	adminNews := admin.Group("/news")
	adminNews.Get("/", newsHandler.ListAll)
	adminNews.Post("/", newsHandler.Create)
	adminNews.Put("/:id", newsHandler.Update)
	adminNews.Delete("/:id", newsHandler.Delete)

	adminUsers := admin.Group("/users", middleware.RequireRoles(rbac.RoleSuperadmin))
	adminUsers.Get("/", adminUserHandler.List)
	adminUsers.Get("/:id", adminUserHandler.Get)
	adminUsers.Post("/", adminUserHandler.Create)
	adminUsers.Put("/:id", adminUserHandler.Update)
	adminUsers.Post("/:id/active", adminUserHandler.SetActive)

	adminSMS := admin.Group("/sms")
	adminSMS.Get("/groups", smsHandler.Groups)
	adminSMS.Get("/history", smsHandler.History)
	adminSMS.Post("/send", middleware.RequireSMSPermission(), smsHandler.Broadcast)

	admin.Get("/audit", auditHandler.Query)

	admin.Get("/actions", adminActionHandler.List)
	admin.Post("/actions", adminActionHandler.Run)

	// Live audit feed for admin dashboards
	app.Use("/ws/audit", auditFeed.UpgradeMiddleware())
	app.Get("/ws/audit", websocket.New(auditFeed.HandleWS))
}
