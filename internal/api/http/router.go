package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kabayemedia/ticketing/internal/api/http/handlers"
	"github.com/kabayemedia/ticketing/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	Tickets        *handlers.TicketsHandler
	Validate       *handlers.ValidateHandler
	Device         *handlers.DeviceHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	// Device-facing endpoints are unauthenticated: the access token itself
	// is the credential being judged.
	api := app.Group("/api")
	api.Post("/validate", cfg.Validate.Validate)
	api.Post("/device_status", cfg.Device.Report)

	app.Get("/events", cfg.Events.ListActive)
	app.Get("/events/:id", cfg.Events.Get)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/purchase", cfg.Tickets.Purchase)
	tickets.Get("/", cfg.Tickets.ListOwned)
	tickets.Get("/:ticket_ref", cfg.Tickets.GetOwned)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Get("/entries", cfg.Admin.ListEntries)
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Post("/events", cfg.Events.Create)
	admin.Get("/events", cfg.Events.ListAll)
	admin.Get("/devices/:device_ref", cfg.Device.Status)
}
