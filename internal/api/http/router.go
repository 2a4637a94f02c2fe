package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/virtual-card-service/internal/api/http/handlers"
	"github.com/spec-kit/virtual-card-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	User           *handlers.UserHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Auth.Register)
	authGroup.Post("/users/login", cfg.Auth.Login)
	authGroup.Post("/admin/login", cfg.Auth.AdminLogin)

	me := app.Group("/me", cfg.AuthMiddleware.Handle, auth.RequireUser())
	me.Get("/cards", cfg.User.MyCards)
	me.Post("/cards/:id/freeze", cfg.User.FreezeCard)
	me.Post("/applications", cfg.User.SubmitApplication)
	me.Post("/transfers", cfg.User.Transfer)
	me.Get("/messages", cfg.User.MyMessages)
	me.Post("/messages", cfg.User.PostMessage)
	me.Get("/notifications", cfg.User.MyNotifications)
	me.Post("/notifications/read", cfg.User.MarkNotificationsRead)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Get("/applications", cfg.Admin.ListApplications)
	admin.Post("/applications/:id/approve", cfg.Admin.ApproveApplication)
	admin.Post("/applications/:id/reject", cfg.Admin.RejectApplication)
	admin.Post("/cards", cfg.Admin.IssueCard)
	admin.Post("/cards/:id/freeze", cfg.Admin.FreezeCard)
	admin.Post("/users/:id/freeze-cards", cfg.Admin.FreezeUserCards)
	admin.Post("/payouts", cfg.Admin.BroadcastPayout)
	admin.Get("/inbox", cfg.Admin.Inbox)
	admin.Get("/conversations/:userId", cfg.Admin.Conversation)
	admin.Post("/conversations/:userId/messages", cfg.Admin.PostConversationMessage)
	admin.Get("/notifications", cfg.Admin.Notifications)
	admin.Post("/notifications/read", cfg.Admin.MarkNotificationsRead)
	admin.Post("/reset", cfg.Admin.Reset)
}
