// Package router wires the portal's HTTP routes to their handlers and
// middleware chains.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/handler"
)

// RegisterRoutes registers routes that require no authentication. Currently
// only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}
