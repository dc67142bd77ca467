// internal/router/router.go
package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/giftcraft/storefront/internal/catalog"
	"github.com/giftcraft/storefront/internal/config"
	"github.com/giftcraft/storefront/internal/handlers"
	"github.com/giftcraft/storefront/internal/kvstore"
	"github.com/giftcraft/storefront/internal/middleware"
	"github.com/giftcraft/storefront/internal/services"
	"github.com/giftcraft/storefront/internal/strapi"
)

func Initialize(cfg *config.Config) *gin.Engine {
	timeout := time.Duration(cfg.Strapi.Timeout) * time.Second

	// Initialize services
	cmsClient := strapi.NewClient(cfg.Strapi.BaseURL, cfg.Strapi.APIToken, timeout)
	store := kvstore.New(cfg.Cache.Dir)
	taxonomies := catalog.NewTaxonomies(cmsClient, store, cfg.Cache.TaxonomyTTL)
	catalogService := catalog.NewService(cmsClient, cfg.Cache.QueryTTL)
	proxyService := services.NewProxyService(cfg.Strapi.BaseURL, cfg.Strapi.APIToken, timeout)
	notificationService := services.NewNotificationService(cfg, cmsClient)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(catalogService, taxonomies, cfg.Strapi.PageSize)
	proxyHandler := handlers.NewProxyHandler(proxyService)
	emailHandler := handlers.NewEmailHandler(notificationService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(cors.Default())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Storefront product routes (query building, caching, fallback and
	// defensive filtering happen server-side here)
	proxy := r.Group("/proxy")
	{
		proxy.GET("/products", productHandler.GetProducts)
		proxy.GET("/products/:id", productHandler.GetProduct)
		proxy.GET("/taxonomies", productHandler.GetTaxonomies)
	}

	// Email notifications
	api := r.Group("/api")
	{
		api.POST("/email/comment-notification", middleware.EmailRateLimit(), emailHandler.CommentNotification)
	}

	// Catch-all CMS forwarder. A wildcard under /proxy would collide with
	// the dedicated product routes in the routing tree, so the remaining
	// traffic lands here via NoRoute.
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/proxy/") {
			proxyHandler.Forward(c)
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return r
}
