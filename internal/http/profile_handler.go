package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"moodmovies/internal/repository"
	"moodmovies/internal/service"
)

const defaultPageSize = 20

// ProfileHandler mantiene dependencias para los endpoints de perfiles.
type ProfileHandler struct {
	logger      *zap.Logger
	profiler    *service.ProfilerService
	recommender *service.RecommenderService
	status      *service.StatusManager
	profiles    repository.ProfileRepository
}

// NewProfileHandler crea una instancia de ProfileHandler con dependencias necesarias.
func NewProfileHandler(
	logger *zap.Logger,
	profiler *service.ProfilerService,
	recommender *service.RecommenderService,
	status *service.StatusManager,
	profiles repository.ProfileRepository,
) *ProfileHandler {
	return &ProfileHandler{
		logger:      logger,
		profiler:    profiler,
		recommender: recommender,
		status:      status,
		profiles:    profiles,
	}
}

// AnalyzePersonality maneja POST /api/v1/analyze/personality/:user_id.
// Calcula y persiste el perfil de forma sincrónica.
func (h *ProfileHandler) AnalyzePersonality(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	profile, err := h.profiler.AnalyzePersonality(c.Request.Context(), userID)
	if err != nil {
		var incomplete *service.IncompleteInputError
		switch {
		case errors.Is(err, service.ErrNoResponses):
			c.JSON(http.StatusNotFound, gin.H{"error": "no questionnaire responses for user"})
		case errors.As(err, &incomplete):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":             "questionnaire is incomplete",
				"missing_questions": incomplete.MissingQuestions,
				"missing_facets":    incomplete.MissingFacets,
			})
		default:
			h.logger.Error("personality analysis failed", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not analyze personality"})
		}
		return
	}

	// Con el perfil listo disparamos la recomendación en background; si el
	// proceso no arranca el análisis sigue siendo válido.
	var processID string
	if id, err := h.status.Start(c.Request.Context(), userID, "recommendation"); err != nil {
		h.logger.Warn("could not schedule recommendation", zap.String("user_id", userID), zap.Error(err))
	} else {
		processID = id
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
			defer cancel()
			h.recommender.RunProcess(ctx, processID, userID)
		}()
	}

	c.JSON(http.StatusCreated, gin.H{
		"profile":                   profile,
		"recommendation_process_id": processID,
	})
}

// GetProfile maneja GET /api/v1/profiles/:profile_id.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID := c.Param("profile_id")

	profile, err := h.profiles.GetByID(c.Request.Context(), profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		h.logger.Error("get profile failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// ListProfilesByUser maneja GET /api/v1/profiles/user/:user_id con paginación.
// El total de perfiles va en el header X-Total-Count.
func (h *ProfileHandler) ListProfilesByUser(c *gin.Context) {
	userID := c.Param("user_id")

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return
	}

	profiles, total, err := h.profiles.ListByUser(c.Request.Context(), userID, page, limit)
	if err != nil {
		h.logger.Error("list profiles failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list profiles"})
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles,
		"page":     page,
		"limit":    limit,
		"total":    total,
	})
}
