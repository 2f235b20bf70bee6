package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health          *handlers.HealthHandler
	Accounts        *handlers.AccountsHandler
	Tickets         *handlers.TicketsHandler
	OperatorTickets *handlers.OperatorTicketsHandler
	AuthMiddleware  *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/clients/register", cfg.Accounts.RegisterClient)
	authGroup.Post("/clients/login", cfg.Accounts.LoginClient)
	authGroup.Post("/operators/login", cfg.Accounts.LoginOperator)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireClient())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)

	operator := app.Group("/operator/tickets", cfg.AuthMiddleware.Handle, auth.RequireOperator())
	operator.Get("/", cfg.OperatorTickets.ListAll)
	operator.Put("/:id/reply", cfg.OperatorTickets.Reply)
}
