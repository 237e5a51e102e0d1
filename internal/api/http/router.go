package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/tashkhees/support-portal/internal/api/http/handlers"
	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/domain"
	"github.com/tashkhees/support-portal/internal/realtime"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Licenses       *handlers.LicensesHandler
	Tickets        *handlers.TicketsHandler
	Notifications  *handlers.NotificationsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Hub            *realtime.Hub
	Logger         *zap.Logger
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Static("/uploads", cfg.UploadDir)

	app.Use("/ws", realtime.UpgradeRequired)
	app.Get("/ws", realtime.Handler(cfg.Hub, cfg.Logger))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)
	authGroup.Put("/profile", cfg.AuthMiddleware.Handle, cfg.Auth.UpdateProfile)
	authGroup.Post("/developers", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Auth.CreateDeveloper)
	authGroup.Delete("/developers/:id", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Auth.DeleteDeveloper)

	licenses := api.Group("/licenses")
	licenses.Post("/validate", cfg.Licenses.Validate)
	licenses.Post("/generate", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Licenses.Generate)
	licenses.Get("/", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Licenses.List)
	licenses.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Licenses.Delete)

	tickets := api.Group("/tickets")
	tickets.Post("/", cfg.AuthMiddleware.HandleOptional, cfg.Tickets.Create)
	tickets.Get("/all", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.ListAll)
	tickets.Get("/user/:email", cfg.Tickets.ListByEmail)
	tickets.Get("/", cfg.AuthMiddleware.Handle, cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id/status", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin, domain.RoleDeveloper), cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/assign", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.Assign)
	tickets.Patch("/:id/unassign", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin), cfg.Tickets.Unassign)
	tickets.Post("/:id/replies", cfg.AuthMiddleware.Handle, cfg.Tickets.AddReply)

	notifications := api.Group("/notifications")
	notifications.Get("/email/:email", cfg.Notifications.InboxByEmail)
	notifications.Get("/", cfg.AuthMiddleware.Handle, cfg.Notifications.Inbox)
	notifications.Patch("/read-all", cfg.AuthMiddleware.Handle, cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.AuthMiddleware.Handle, cfg.Notifications.MarkRead)
	notifications.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Notifications.Delete)
	notifications.Delete("/", cfg.AuthMiddleware.Handle, cfg.Notifications.Clear)

	users := api.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireRoles(domain.RoleAdmin))
	users.Get("/", cfg.Users.List)
	users.Get("/developers", cfg.Users.Developers)
	users.Get("/workload", cfg.Users.Workload)
}
