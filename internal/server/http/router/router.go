package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/foodorder/internal/server/http/handlers"
	"github.com/polkiloo/foodorder/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.OrderingFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	authHandler := handlers.NewAuthHandler(facade)
	staffHandler := handlers.NewStaffHandler(facade)
	healthHandler := handlers.NewHealthHandler(facade)

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	api.POST("/orders", orderHandler.Submit)
	api.GET("/orders", orderHandler.History)
	api.GET("/orders/:id", orderHandler.Get)

	staff := api.Group("/staff")
	staff.POST("/login", authHandler.Login)

	staffAuth := staff.Group("")
	staffAuth.Use(middleware.AuthRequired(facade))
	staffAuth.PATCH("/orders/:id/status", staffHandler.UpdateStatus)
	staffAuth.GET("/orders/:id/notifications", staffHandler.Notifications)

	return engine
}
