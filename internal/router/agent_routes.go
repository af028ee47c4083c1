package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mahmoud7895/loisirtt-portal/internal/config"
	"github.com/mahmoud7895/loisirtt-portal/internal/handler"
	"github.com/mahmoud7895/loisirtt-portal/internal/middleware"
	"github.com/mahmoud7895/loisirtt-portal/internal/model"
)

// RegisterAgent registers the catalog and registration endpoints available
// to every authenticated user. The read-only catalog sits behind the Redis
// response cache; admins can browse too.
func RegisterAgent(e *echo.Echo, cat *handler.CatalogHandler, clubTypes, sportTypes *handler.TypeHandler,
	reg *handler.RegistrationHandler, rev *handler.ReviewHandler,
	cfg config.Config, cacheCfg config.CacheConfig, rdb *redis.Client) {

	g := e.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleAgent),
	)

	cache := middleware.NewRedisCache(cacheCfg, rdb)

	// ---- Catalog (cached) ----
	g.GET("/events", cat.ListEvents, cache)
	g.GET("/events/:id", cat.GetEvent, cache)
	g.GET("/clubs", clubTypes.List, cache)
	g.GET("/sports", sportTypes.List, cache)
	g.GET("/events/:id/reviews", rev.ListByEvent, cache)

	// ---- Registrations ----
	g.POST("/events/:id/registrations", reg.BookEvent)
	g.DELETE("/my/registrations/:id", reg.CancelEventRegistration)
	g.POST("/clubs/:id/join", reg.JoinClub)
	g.POST("/sports/:id/join", reg.JoinSport)
	g.GET("/my/registrations", reg.MyRegistrations)

	// ---- Reviews ----
	g.POST("/events/:id/reviews", rev.Create)
}
