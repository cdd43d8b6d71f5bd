package v1

import (
	"net/http"

	"github.com/arogyacare/arogya-api/pkg/auth"
	"github.com/arogyacare/arogya-api/pkg/metrics"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, authHandler *AuthHandler, identityHandler *IdentityHandler, jwtManager *auth.JWTManager, collector *metrics.Collector) {
	r.Use(RequestID(), Metrics(collector))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	api := r.Group("/api/v1")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/password-reset/request", authHandler.RequestReset)
		authRoutes.POST("/password-reset/verify", authHandler.VerifyReset)
		authRoutes.POST("/password-reset/complete", authHandler.CompleteReset)
	}

	admin := api.Group("/identities", Authenticated(jwtManager), AdminOnly())
	{
		admin.GET("", identityHandler.List)
	}
}
