package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/bookwise/backend/internal/handlers"
	"github.com/bookwise/backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler           *handlers.AuthHandler
	AuthMiddleware        *middleware.AuthMiddleware
	BookHandler           *handlers.BookHandler
	InteractionHandler    *handlers.InteractionHandler
	RecommendationHandler *handlers.RecommendationHandler
	ModelHandler          *handlers.ModelHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)
	router.POST("/api/refresh", cfg.AuthHandler.Refresh)

	// ===============
	// || Protected ||
	// ===============
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	// Auth
	protected.POST("/logout", cfg.AuthHandler.Logout)
	protected.GET("/me", cfg.AuthHandler.Me)
	// Books
	protected.GET("/books", cfg.BookHandler.List)
	protected.GET("/books/search", cfg.BookHandler.Search)
	protected.GET("/books/:isbn", cfg.BookHandler.Get)
	protected.POST("/books", cfg.BookHandler.Create)
	protected.DELETE("/books/:isbn", cfg.BookHandler.Delete)
	// Interactions
	protected.POST("/interactions", cfg.InteractionHandler.Record)
	// Recommendations
	protected.GET("/recommendations", cfg.RecommendationHandler.Get)
	// Model
	protected.GET("/model/status", cfg.ModelHandler.Status)
	staff := protected.Group("/")
	staff.Use(cfg.AuthMiddleware.RequireStaff())
	staff.POST("/model/load", cfg.ModelHandler.Load)

	return router
}
