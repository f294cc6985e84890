package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jafarshop/feedshop/internal/api/handlers"
	"github.com/jafarshop/feedshop/internal/api/middleware"
	"github.com/jafarshop/feedshop/internal/config"
	"github.com/jafarshop/feedshop/internal/session"
)

// Dependencies are the services the HTTP layer talks to
type Dependencies struct {
	Sessions *session.Registry
	Catalog  handlers.Catalog
	Carts    handlers.CartService
	Orders   handlers.OrderService
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		// Public feed and shop data
		v1.GET("/products", handlers.HandleListProducts(deps.Catalog))
		v1.GET("/products/:id", handlers.HandleGetProduct(deps.Catalog))
		v1.GET("/posts", handlers.HandleListPosts(deps.Catalog))
		v1.GET("/posts/:id", handlers.HandleGetPost(deps.Catalog, logger))
		v1.GET("/shops/:id", handlers.HandleGetShop(deps.Catalog))
		v1.GET("/shops/:id/products", handlers.HandleListShopProducts(deps.Catalog))
		v1.GET("/users/:id", handlers.HandleGetUser(deps.Catalog))
		v1.GET("/chat/config", handlers.HandleChatConfig(cfg.Chat))

		v1.POST("/sessions", handlers.HandleCreateSession(deps.Sessions, logger))

		// Session routes (require X-Session-ID and bearer token)
		sessionRoutes := v1.Group("/session")
		sessionRoutes.Use(middleware.SessionAuth(deps.Sessions, logger))
		{
			sessionRoutes.DELETE("", handlers.HandleDeleteSession(deps.Sessions))

			sessionRoutes.GET("/cart", handlers.HandleGetCart())
			sessionRoutes.DELETE("/cart", handlers.HandleClearCart(deps.Carts, logger))
			sessionRoutes.POST("/cart/items", handlers.HandleAddCartItem(deps.Carts, logger))
			sessionRoutes.PATCH("/cart/items", handlers.HandleUpdateCartItem())
			sessionRoutes.DELETE("/cart/items", handlers.HandleRemoveCartItem())
			sessionRoutes.GET("/cart/events", handlers.HandleCartEvents())

			sessionRoutes.PUT("/buy-now", handlers.HandleSetBuyNow(deps.Carts, logger))
			sessionRoutes.DELETE("/buy-now", handlers.HandleClearBuyNow())

			sessionRoutes.GET("/confirm", handlers.HandleGetConfirmation())
			sessionRoutes.POST("/confirm/:id", handlers.HandleAnswerConfirmation(logger))
			sessionRoutes.DELETE("/confirm/:id", handlers.HandleDismissConfirmation(logger))

			sessionRoutes.POST("/checkout", handlers.HandleCheckout(deps.Orders, logger))
			sessionRoutes.GET("/orders", handlers.HandleListOrders(deps.Orders, logger))
			sessionRoutes.GET("/orders/:id", handlers.HandleGetOrder(deps.Orders, logger))
			sessionRoutes.POST("/orders/:id/cancel", handlers.HandleCancelOrder(deps.Orders, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
