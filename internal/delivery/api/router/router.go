// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"brokerage/config"
	"brokerage/internal/delivery/api/middleware"
	"brokerage/internal/delivery/api/router/handler"
	"brokerage/internal/domain/entity"
	"brokerage/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler     *handler.AuthHandler
	PropertyHandler *handler.PropertyHandler
	AuthMiddleware  *middleware.AuthMiddleware
	Metrics         *metrics.Metrics `optional:"true"`
	Config          *config.Config
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler     *handler.AuthHandler
	propertyHandler *handler.PropertyHandler
	authMiddleware  *middleware.AuthMiddleware
	metrics         *metrics.Metrics
	config          *config.Config
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:     params.AuthHandler,
		propertyHandler: params.PropertyHandler,
		authMiddleware:  params.AuthMiddleware,
		metrics:         params.Metrics,
		config:          params.Config,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")

	authGroup := apiV1.Group("/auth")
	{
		authGroup.POST("/register", r.authHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/refresh", r.authHandler.Refresh)
		authGroup.GET("/me", r.authHandler.Me)
		authGroup.PATCH("/users/:id/deactivate", r.authHandler.DeactivateUser,
			r.authMiddleware.Authenticate,
			r.authMiddleware.RequirePermission(entity.PermissionDeactivateUsers),
		)
	}

	// Per-listing ownership is checked by the use cases; the middleware only
	// gates on the coarse capability.
	propertiesGroup := apiV1.Group("/propiedades")
	propertiesGroup.Use(r.authMiddleware.Authenticate)
	{
		propertiesGroup.POST("", r.propertyHandler.Create, r.authMiddleware.RequirePermission(entity.PermissionCaptureProperty))
		propertiesGroup.GET("", r.propertyHandler.List)
		propertiesGroup.GET("/codigo/:codigo", r.propertyHandler.GetByCode)
		propertiesGroup.GET("/codigo/:codigo/qr", r.propertyHandler.ListingQR)
		propertiesGroup.GET("/:id", r.propertyHandler.Get)
		propertiesGroup.PUT("/:id", r.propertyHandler.Update)
		propertiesGroup.DELETE("/:id", r.propertyHandler.Delete)
		propertiesGroup.GET("/:id/comision", r.propertyHandler.Commission)

		propertiesGroup.POST("/:id/publicar", r.propertyHandler.Publish)
		propertiesGroup.POST("/:id/en-proceso", r.propertyHandler.MarkInProcess)
		propertiesGroup.POST("/:id/reservar", r.propertyHandler.Reserve)
		propertiesGroup.POST("/:id/cerrar", r.propertyHandler.Close)
		propertiesGroup.POST("/:id/desactivar", r.propertyHandler.Deactivate)
		propertiesGroup.POST("/:id/reactivar", r.propertyHandler.Reactivate)
	}
}

// RegisterMetricsRoute exposes Prometheus metrics when enabled.
func (r *router) RegisterMetricsRoute(e *echo.Echo) {
	if r.metrics == nil || r.config.Metrics == nil || !r.config.Metrics.Enabled {
		return
	}
	e.GET("/metrics", echo.WrapHandler(r.metrics.Handler()))
}
