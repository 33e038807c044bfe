package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campuskit/coursedesk/internal/api/http/handlers"
	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Courses        *handlers.CoursesHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/activate", cfg.Auth.Activate)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRank(domain.RoleAdmin))
	admin.Get("/users", cfg.Users.List)
	admin.Post("/users", cfg.Users.Invite)
	admin.Put("/users/:id", cfg.Users.Update)
	admin.Patch("/users/:id/active", cfg.Users.SetActive)
	admin.Get("/courses", cfg.Courses.ListAll)
	admin.Post("/courses", cfg.Courses.Create)
	admin.Put("/courses/:id", cfg.Courses.Update)
	admin.Patch("/courses/:id/active", cfg.Courses.SetActive)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/courses", cfg.Courses.ListActive)
	protected.Get("/tickets", cfg.Tickets.Search)
	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Put("/tickets/:id", cfg.Tickets.Update)
	protected.Post("/tickets/:id/status", cfg.Tickets.ChangeStatus)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
}
