package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mahmoud7895/loisirtt-portal/internal/handler"
	"github.com/mahmoud7895/loisirtt-portal/internal/middleware"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// RegisterAdmin registers ADMIN-only endpoints under /v1/admin: catalog
// management, registration oversight and the live dashboard.
func RegisterAdmin(e *echo.Echo, ev *handler.AdminEventHandler,
	clubTypes, sportTypes *handler.TypeHandler,
	clubRegs, sportRegs *handler.MembershipAdminHandler,
	dash *handler.DashboardHandler, jwtSecret string) {

	g := e.Group("/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// ---- Events ----
	g.POST("/events", ev.Create)
	g.PUT("/events/:id", ev.Update)
	g.PATCH("/events/:id", ev.Update)
	g.DELETE("/events/:id", ev.Delete)
	g.GET("/registrations", ev.ListRegistrations)
	g.DELETE("/registrations/:id", ev.DeleteRegistration)

	// ---- Club types ----
	g.POST("/clubs", clubTypes.Create)
	g.PUT("/clubs/:id", clubTypes.Rename)
	g.POST("/clubs/:id/archive", clubTypes.Archive)
	g.POST("/clubs/:id/restore", clubTypes.Restore)
	g.DELETE("/clubs/:id", clubTypes.Delete)
	g.GET("/clubs/registrations", clubRegs.List)
	g.DELETE("/clubs/registrations/:id", clubRegs.Delete)

	// ---- Sport types ----
	g.POST("/sports", sportTypes.Create)
	g.PUT("/sports/:id", sportTypes.Rename)
	g.POST("/sports/:id/archive", sportTypes.Archive)
	g.POST("/sports/:id/restore", sportTypes.Restore)
	g.DELETE("/sports/:id", sportTypes.Delete)
	g.GET("/sports/registrations", sportRegs.List)
	g.DELETE("/sports/registrations/:id", sportRegs.Delete)

	// ---- Dashboard ----
	g.GET("/dashboard", dash.Snapshot)
	g.GET("/dashboard/ws", dash.Stream)
}
