package handler

import (
	"context"
	"net/http"
	"time"

	"storefront/catalog-service/internal/app/catalog/api"
	"storefront/pkg/logger"
	"storefront/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "catalog-service"

// Pinger проверяет доступность хранилища для /health
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig - зависимости маршрутизатора
type RouterConfig struct {
	Handler      *CatalogHandler
	Provider     api.ResourceProvider
	Identity     *IdentityMiddleware
	Database     Pinger // Может быть nil
	AllowOrigins []string
}

// SetupRoutes настраивает все маршруты Catalog Service с использованием Gin
func SetupRoutes(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic вне конвейера api
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(corsConfig(cfg.AllowOrigins)))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		database := "unknown"
		if cfg.Database != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cfg.Database.Ping(ctx); err != nil {
				database = "disconnected"
			} else {
				database = "connected"
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  serviceName,
			"database": database,
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := cfg.Handler
	p := cfg.Provider

	// Пользователь определяется для всех /api маршрутов; права проверяют сами обработчики
	apiGroup := router.Group("/api")
	apiGroup.Use(cfg.Identity.Authenticate())
	{
		// POST, PUT, DELETE только для персонала, checkout - для вошедших пользователей
		categories := apiGroup.Group("/category")
		{
			categories.GET("", api.WithMiddleware(p, h.ListCategories))
			categories.POST("", api.WithMiddleware(p, h.CreateCategory))
			categories.GET("/:id", api.WithMiddleware(p, h.GetCategory))
			categories.PUT("/:id", api.WithMiddleware(p, h.UpdateCategory))
			categories.DELETE("/:id", api.WithMiddleware(p, h.DeleteCategory))
		}

		products := apiGroup.Group("/product")
		{
			products.GET("", api.WithMiddleware(p, h.ListProducts))
			products.POST("", api.WithMiddleware(p, h.CreateProduct))
			products.GET("/:id", api.WithMiddleware(p, h.GetProduct))
			products.PUT("/:id", api.WithMiddleware(p, h.UpdateProduct))
			products.DELETE("/:id", api.WithMiddleware(p, h.DeleteProduct))
			products.POST("/:id/checkout", api.WithMiddleware(p, h.Checkout))
		}

		apiGroup.GET("/document-count", api.WithMiddleware(p, h.DocumentCount))
	}

	return router
}

// corsConfig разрешает перечисленные origins; пустой список или "*" разрешает все
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300 * time.Second,
	}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		// Браузеры не отправляют cookie на wildcard origin
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}

	cfg.AllowOrigins = origins
	return cfg
}
