// Package router registers the HTTP routes on an echo instance.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iliyamo/practice-booking/internal/handler"
	"github.com/iliyamo/practice-booking/internal/middleware"
	"github.com/iliyamo/practice-booking/internal/utils"
)

// RegisterRoutes registers the unauthenticated probes and the Prometheus
// scrape endpoint.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the visitor facing endpoints.  Availability is
// served through the response cache; writes go through the rate limiter.
func RegisterPublic(e *echo.Echo, slots *handler.PublicSlotHandler, contact *handler.ContactHandler, cache, limit echo.MiddlewareFunc) {
	g := e.Group("/v1")
	g.GET("/slots/availability", slots.Availability, cache)
	g.POST("/slots/:id/book", slots.Book, limit)
	g.POST("/contact", contact.Submit, limit)
}

// RegisterAdmin registers login/logout and the session protected admin
// panel API under /v1/admin.
func RegisterAdmin(e *echo.Echo, auth *handler.AdminAuthHandler, slots *handler.AdminSlotHandler, contacts *handler.AdminContactHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	e.POST("/v1/admin/login", auth.Login, limit)
	e.POST("/v1/admin/logout", auth.Logout)

	g := e.Group(
		"/v1/admin",
		middleware.AdminSession(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.GET("/session", auth.Session)

	g.GET("/slots", slots.List)
	g.POST("/slots", slots.Create)
	g.DELETE("/slots", slots.Cleanup)
	g.GET("/slots/templates", slots.Templates)
	g.PATCH("/slots/:id", slots.SetActive)
	g.DELETE("/slots/:id", slots.Delete)

	g.GET("/contacts", contacts.List)
	g.GET("/contacts/export", contacts.Export)
}
