package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/oakmere-data/enricher/internal/auth"
	"github.com/oakmere-data/enricher/internal/config"
	"github.com/oakmere-data/enricher/internal/entity"
	"github.com/oakmere-data/enricher/internal/handler"
	middlewarepkg "github.com/oakmere-data/enricher/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth      *handler.AuthHandler
	Records   *handler.RecordsHandler
	Enrich    *handler.EnrichHandler
	Runs      *handler.RunsHandler
	Operators *handler.OperatorsHandler
}

// Register wires all HTTP routes. The health endpoint and login stay open;
// everything under /api/v1 requires a valid token, and mutating endpoints
// additionally require the admin role.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	api := e.Group("/api/v1")
	api.POST("/auth/login", handlers.Auth.Login, middlewarepkg.LoginRateLimiter(cfg.RateLimitLogin))

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.GET("/records", handlers.Records.List)
	secured.GET("/records/:id", handlers.Records.Get)
	secured.POST("/enrich/preview", handlers.Enrich.Preview)
	secured.GET("/runs", handlers.Runs.List)
	secured.GET("/runs/:id", handlers.Runs.Get)

	admin := secured.Group("", middlewarepkg.RequireRole(entity.RoleAdmin))
	admin.POST("/records/import", handlers.Records.Import)
	admin.POST("/runs", handlers.Runs.Trigger)
	admin.GET("/operators", handlers.Operators.List)
	admin.POST("/operators", handlers.Operators.Create)
	admin.PATCH("/operators/:id", handlers.Operators.Update)
	admin.DELETE("/operators/:id", handlers.Operators.Delete)
}
