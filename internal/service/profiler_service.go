package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodmovies/internal/domain"
	"moodmovies/internal/repository"
	"moodmovies/internal/webhook"
)

// ProfilerService corre la primera etapa del pipeline: lee las respuestas del
// cuestionario, calcula los 35 T-scores y persiste el perfil vigente.
type ProfilerService struct {
	responses repository.ResponseRepository
	profiles  repository.ProfileRepository
	scorer    *Scorer
	locks     *UserLocks
	webhooks  *webhook.Manager
	log       *zap.Logger
}

func NewProfilerService(
	responses repository.ResponseRepository,
	profiles repository.ProfileRepository,
	scorer *Scorer,
	locks *UserLocks,
	webhooks *webhook.Manager,
	log *zap.Logger,
) *ProfilerService {
	return &ProfilerService{
		responses: responses,
		profiles:  profiles,
		scorer:    scorer,
		locks:     locks,
		webhooks:  webhooks,
		log:       log,
	}
}

// AnalyzePersonality recalcula el perfil completo del usuario a partir de sus
// respuestas más recientes. Las corridas del mismo usuario se serializan; si
// faltan facetas no se persiste nada y se devuelve IncompleteInputError.
func (s *ProfilerService) AnalyzePersonality(ctx context.Context, userID string) (domain.Profile, error) {
	release := s.locks.Acquire(userID)
	defer release()

	s.log.Info("personality analysis started", zap.String("user_id", userID))

	items, err := s.responses.ListByUser(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("list responses: %w", err)
	}
	if len(items) == 0 {
		return domain.Profile{}, ErrNoResponses
	}

	// Toda pregunta del cuestionario debe tener respuesta: una faceta con
	// respuestas parciales también es input incompleto.
	unanswered, err := s.responses.ListUnansweredQuestions(ctx, userID)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("list unanswered questions: %w", err)
	}
	if len(unanswered) > 0 {
		s.log.Warn("questionnaire has unanswered questions",
			zap.String("user_id", userID),
			zap.Int("count", len(unanswered)),
		)
		return domain.Profile{}, &IncompleteInputError{MissingQuestions: unanswered}
	}

	scores, err := s.scorer.Calculate(items)
	if err != nil {
		s.log.Warn("score calculation failed", zap.String("user_id", userID), zap.Error(err))
		return domain.Profile{}, err
	}

	if err := ValidateScores(scores); err != nil {
		s.log.Error("computed profile failed validation", zap.String("user_id", userID), zap.Error(err))
		return domain.Profile{}, err
	}

	profile := domain.Profile{
		ID:        uuid.NewString(),
		UserID:    userID,
		Scores:    scores,
		CreatedAt: time.Now().UTC(),
	}

	savedID, err := s.profiles.Save(ctx, profile)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	profile.ID = savedID

	s.log.Info("personality profile saved",
		zap.String("user_id", userID),
		zap.String("profile_id", profile.ID),
	)

	s.webhooks.Notify(webhook.EventProfileCompleted, userID, map[string]any{
		"profile_id": profile.ID,
	})

	return profile, nil
}
