package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/zeno-labs/museum-companion/internal/handler"    // handlers implementing the endpoints
	"github.com/zeno-labs/museum-companion/internal/middleware" // JWT authentication and role enforcement
	"github.com/zeno-labs/museum-companion/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated endpoints: the museum
// directory, ticket verification and the chat assistant.  Directory
// reads sit behind the response cache since they dominate traffic and
// change rarely; verification and chat are never cached because their
// responses depend on the clock and the conversation.
func RegisterPublic(e *echo.Echo, m *handler.MuseumHandler, t *handler.TicketHandler, ch *handler.ChatHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	// Museum details and search, cached.
	e.GET("/api/museums/:museumId", m.Get, cache)
	e.GET("/api/searchMuseum", m.Search, cache)

	// Ticket verification is public so museum staff can scan a QR code
	// without a session.
	e.GET("/api/tickets/verify/:ticketId", t.Verify)

	// The chat widget works for guests; a token, when present, ties
	// bookings and transcripts to the visitor.
	e.POST("/api/chat/:museumId", ch.Stream, middleware.OptionalJWTAuth(jwtSecret))
}

// RegisterVisitor registers endpoints that require a signed-in user.
// Owners may also book tickets, so both roles are accepted here.
func RegisterVisitor(e *echo.Echo, t *handler.TicketHandler, ch *handler.ChatHandler, jwtSecret string) {
	g := e.Group("/api")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleVisitor, model.RoleOwner))

	g.POST("/tickets/book-ticket", t.Book)
	g.GET("/bookings", t.ListMine)
	g.GET("/chat/:museumId", ch.History)
}

// RegisterOwner registers the museum-owner surface: onboarding, the
// sales dashboard and administrative ticket cancellation.
func RegisterOwner(e *echo.Echo, o *handler.OnboardingHandler, d *handler.DashboardHandler, t *handler.TicketHandler, jwtSecret string) {
	g := e.Group("/api")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleOwner))

	g.POST("/onboarding", o.Upsert)
	g.GET("/onboarding", o.Get)
	g.GET("/dashboard/:museumId", d.Summary)
	g.POST("/tickets/:ticketId/cancel", t.Cancel)
}

// RegisterWebhooks registers the identity provider's delivery endpoint.
// Authenticity is established by signature verification inside the
// handler, not by JWT middleware.
func RegisterWebhooks(e *echo.Echo, w *handler.WebhookHandler) {
	e.POST("/api/webhooks/clerk", w.Receive)
}
