package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"moodmovies/internal/service"
)

// processTimeout acota cuánto puede correr una recomendación en background.
const processTimeout = 5 * time.Minute

// RecommendationHandler mantiene dependencias para los endpoints de recomendaciones.
type RecommendationHandler struct {
	logger      *zap.Logger
	recommender *service.RecommenderService
	status      *service.StatusManager
}

// NewRecommendationHandler crea una instancia de RecommendationHandler.
func NewRecommendationHandler(
	logger *zap.Logger,
	recommender *service.RecommenderService,
	status *service.StatusManager,
) *RecommendationHandler {
	return &RecommendationHandler{
		logger:      logger,
		recommender: recommender,
		status:      status,
	}
}

// StartRecommendation maneja POST /api/v1/recommendations/:user_id.
// Dispara el pipeline en background y responde 202 con el id de proceso.
func (h *RecommendationHandler) StartRecommendation(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	processID, err := h.status.Start(c.Request.Context(), userID, "recommendation")
	if err != nil {
		h.logger.Error("could not start recommendation process", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start recommendation"})
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		h.recommender.RunProcess(ctx, processID, userID)
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"process_id": processID,
		"status":     "pending",
	})
}

// GetLatestRecommendations maneja GET /api/v1/recommendations/:user_id.
func (h *RecommendationHandler) GetLatestRecommendations(c *gin.Context) {
	userID := c.Param("user_id")

	filmIDs, createdAt, err := h.recommender.LatestSuggestions(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get suggestions failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch recommendations"})
		return
	}
	if len(filmIDs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recommendations for user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":    userID,
		"film_ids":   filmIDs,
		"created_at": createdAt,
	})
}

// GetLatestProcessForUser maneja GET /api/v1/recommendations/status/user/:user_id.
func (h *RecommendationHandler) GetLatestProcessForUser(c *gin.Context) {
	userID := c.Param("user_id")

	st, ok, err := h.status.LatestForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("get latest process failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch process status"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no processes for user"})
		return
	}

	c.JSON(http.StatusOK, st)
}

// GetProcessStatus maneja GET /api/v1/recommendations/status/:process_id.
func (h *RecommendationHandler) GetProcessStatus(c *gin.Context) {
	processID := c.Param("process_id")

	st, ok, err := h.status.Get(c.Request.Context(), processID)
	if err != nil {
		h.logger.Error("get process status failed", zap.String("process_id", processID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch process status"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "process not found"})
		return
	}

	c.JSON(http.StatusOK, st)
}
