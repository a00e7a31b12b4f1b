package handler

import (
	"context"
	"net/http"

	"auth_gate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RouterConfig collects what NewRouter wires together
type RouterConfig struct {
	Auth           *AuthHandler
	Verifier       middleware.TokenVerifier
	AllowedOrigins []string
	// Ping reports store health for GET /health
	Ping func(ctx context.Context) error
}

// NewRouter builds the gin engine with CORS, health checks, /auth and /admin routes
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	jwtAuthMW := middleware.JWTAuthMiddleware(cfg.Verifier)
	adminRoleMW := middleware.AdminMiddleware()

	root := router.Group("/")
	cfg.Auth.RegisterAuthRoutes(root, jwtAuthMW)
	cfg.Auth.RegisterAdminRoutes(root, jwtAuthMW, adminRoleMW)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Backend API is running"})
	})

	router.GET("/health", func(c *gin.Context) {
		if cfg.Ping != nil {
			if err := cfg.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	return router
}
