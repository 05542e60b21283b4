package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/http/handlers"
	"github.com/spec-kit/ticket-tracker/internal/auth"
	"github.com/spec-kit/ticket-tracker/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Areas          *handlers.AreasHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register", cfg.Users.Register)
	app.Post("/login", cfg.Users.Login)

	protected := app.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/me", cfg.Users.Me)
	protected.Get("/users", cfg.Users.ListUsers)

	protected.Post("/tickets", cfg.Tickets.CreateTicket)
	protected.Get("/tickets", cfg.Tickets.ListTickets)
	protected.Get("/tickets/:id", cfg.Tickets.GetTicket)
	protected.Put("/tickets/:id", cfg.Tickets.UpdateTicket)
	protected.Post("/tickets/:id/close", cfg.Tickets.CloseTicket)
	protected.Post("/tickets/:id/comments", cfg.Tickets.AddComment)
	protected.Get("/tickets/:id/comments", cfg.Tickets.ListComments)
	protected.Post("/tickets/:id/transfer", cfg.Tickets.RequestTransfer)
	protected.Post("/tickets/:id/approve-transfer", cfg.Tickets.ApproveTransfer)
	protected.Get("/tickets/:id/history", cfg.Tickets.ListHistory)

	areas := protected.Group("/areas", auth.RequireRole(domain.RoleSuperAdmin))
	areas.Post("", cfg.Areas.CreateArea)
	areas.Get("", cfg.Areas.ListAreas)
	areas.Get("/:id", cfg.Areas.GetArea)
	areas.Put("/:id", cfg.Areas.UpdateArea)
	areas.Delete("/:id", cfg.Areas.DeleteArea)
}
