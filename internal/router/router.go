// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/airline-reservation/internal/handler"
	"github.com/iliyamo/airline-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance. Currently it exposes only a health check, used by
// load balancers and monitoring to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterSearch registers the itinerary search endpoints under /v1/search.
// Both are public; OptionalJWT resolves an identity when a token is present
// so personalized parameters (exclude_booked) work for logged-in callers.
// The flexible-dates endpoint takes the response-cache middleware because
// its output is identical for every caller; the main search endpoint is
// never cached since its results can depend on who is asking.
func RegisterSearch(e *echo.Echo, s *handler.SearchHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/search")
	g.Use(middleware.OptionalJWT(jwtSecret))
	g.GET("", s.Search)
	if cache != nil {
		g.GET("/flexible", s.FlexibleDates, cache)
	} else {
		g.GET("/flexible", s.FlexibleDates)
	}
}

// RegisterSessions registers the seat-session endpoints under
// /v1/seat-sessions. All of them require an authenticated customer or
// admin; ownership checks happen in the handlers.
func RegisterSessions(e *echo.Echo, h *handler.SessionHandler, jwtSecret string) {
	g := e.Group("/v1/seat-sessions")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleCustomer, handler.RoleAdmin))
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Release)
}

// RegisterBookings registers the booking endpoints under /v1/bookings.
// Customers manage their own bookings; the admin role may read and delete
// any booking (enforced in the handlers).
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(handler.RoleCustomer, handler.RoleAdmin))
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
}
