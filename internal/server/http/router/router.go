package router

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/mizanur-rahman/homemeal/internal/config"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/server/http/handlers"
	"github.com/mizanur-rahman/homemeal/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.MarketFacade, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	mealHandler := handlers.NewMealHandler(facade)
	reviewHandler := handlers.NewReviewHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	paymentHandler := handlers.NewPaymentHandler(facade)
	roleHandler := handlers.NewRoleRequestHandler(facade)

	api := engine.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.GET("/meals", mealHandler.List)
	api.GET("/meals/:id", mealHandler.Get)
	api.GET("/meals/:id/reviews", reviewHandler.ListByMeal)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	cooks := middleware.RequireRole(model.RoleChef, model.RoleAdmin)
	authed.POST("/meals", cooks, mealHandler.Create)
	authed.PATCH("/meals/:id", cooks, mealHandler.Update)
	authed.DELETE("/meals/:id", cooks, mealHandler.Delete)

	authed.POST("/reviews", reviewHandler.Create)
	authed.PATCH("/reviews/:id", reviewHandler.Update)
	authed.DELETE("/reviews/:id", reviewHandler.Delete)

	authed.POST("/orders", orderHandler.Place)
	authed.GET("/orders", orderHandler.ListMine)
	authed.GET("/chef/orders", cooks, orderHandler.ListForChef)
	authed.PATCH("/orders/:id/status", cooks, orderHandler.UpdateStatus)

	authed.POST("/payments/checkout-session", paymentHandler.CreateSession)
	authed.PATCH("/payments/success", paymentHandler.Success)
	authed.GET("/payments", paymentHandler.History)

	authed.POST("/role-requests", roleHandler.Submit)

	admin := authed.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.GET("/role-requests", roleHandler.ListPending)
	admin.PATCH("/role-requests/:id", roleHandler.Decide)

	return engine
}
