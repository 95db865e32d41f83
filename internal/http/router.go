package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas base.
func NewRouter(
	logger *zap.Logger,
	apiKey string,
	profileH *ProfileHandler,
	recoH *RecommendationHandler,
	webhookH *WebhookHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(apiKeyMiddleware(apiKey))

	api.POST("/analyze/personality/:user_id", profileH.AnalyzePersonality)

	profiles := api.Group("/profiles")
	profiles.GET("/:profile_id", profileH.GetProfile)
	profiles.GET("/user/:user_id", profileH.ListProfilesByUser)

	recos := api.Group("/recommendations")
	recos.POST("/:user_id", recoH.StartRecommendation)
	recos.GET("/user/:user_id", recoH.GetLatestRecommendations)
	recos.GET("/status/:process_id", recoH.GetProcessStatus)
	recos.GET("/status/user/:user_id", recoH.GetLatestProcessForUser)

	webhooks := api.Group("/webhooks")
	webhooks.POST("", webhookH.RegisterWebhook)
	webhooks.GET("", webhookH.ListWebhooks)
	webhooks.GET("/:webhook_id", webhookH.GetWebhook)
	webhooks.PUT("/:webhook_id", webhookH.UpdateWebhook)
	webhooks.DELETE("/:webhook_id", webhookH.DeleteWebhook)

	return r
}
