package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/handler"
	"github.com/mahmoud7895/loisirtt-portal/internal/middleware"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// RegisterAuth registers the session endpoints. Login and the refresh flows
// live under /v1/auth without a JWT; account creation is an ADMIN operation
// because agents are provisioned by HR, never self-registered.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh_token in the body and needs no JWT.
	g.POST("/logout", a.Logout)

	e.POST("/v1/auth/register", a.Register,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleAgent),
	)
	auth.GET("/me", a.Me)
	// Authenticated logout without a body revokes every session.
	auth.POST("/logout", a.Logout)
}
