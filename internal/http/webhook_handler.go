package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"moodmovies/internal/webhook"
)

// WebhookHandler mantiene dependencias para la administración de webhooks.
type WebhookHandler struct {
	logger   *zap.Logger
	webhooks *webhook.Manager
}

// NewWebhookHandler crea una instancia de WebhookHandler.
func NewWebhookHandler(logger *zap.Logger, webhooks *webhook.Manager) *WebhookHandler {
	return &WebhookHandler{logger: logger, webhooks: webhooks}
}

// RegisterWebhook maneja POST /api/v1/webhooks.
func (h *WebhookHandler) RegisterWebhook(c *gin.Context) {
	var req struct {
		URL    string   `json:"url" binding:"required"`
		Events []string `json:"events" binding:"required"`
		UserID string   `json:"user_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid webhook registration request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	cfg, err := h.webhooks.Register(req.URL, req.Events, req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"webhook": cfg})
}

// UpdateWebhook maneja PUT /api/v1/webhooks/:webhook_id.
func (h *WebhookHandler) UpdateWebhook(c *gin.Context) {
	var req struct {
		URL    string   `json:"url" binding:"required"`
		Events []string `json:"events" binding:"required"`
		Active *bool    `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid webhook update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	id := c.Param("webhook_id")
	if _, ok := h.webhooks.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "webhook not found"})
		return
	}

	cfg, err := h.webhooks.Update(id, req.URL, req.Events, active)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"webhook": cfg})
}

// ListWebhooks maneja GET /api/v1/webhooks.
func (h *WebhookHandler) ListWebhooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"webhooks": h.webhooks.List()})
}

// GetWebhook maneja GET /api/v1/webhooks/:webhook_id.
func (h *WebhookHandler) GetWebhook(c *gin.Context) {
	cfg, ok := h.webhooks.Get(c.Param("webhook_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "webhook not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"webhook": cfg})
}

// DeleteWebhook maneja DELETE /api/v1/webhooks/:webhook_id.
func (h *WebhookHandler) DeleteWebhook(c *gin.Context) {
	if !h.webhooks.Delete(c.Param("webhook_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "webhook not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
