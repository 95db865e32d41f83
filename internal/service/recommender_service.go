package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodmovies/internal/domain"
	"moodmovies/internal/repository"
	"moodmovies/internal/webhook"
)

// RecommenderService corre la segunda etapa del pipeline: selección de
// géneros por reglas, búsqueda de candidatas y ranking final.
type RecommenderService struct {
	profiles repository.ProfileRepository
	films    repository.FilmRepository

	ruleRanker Ranker
	llmRanker  Ranker

	locks    *UserLocks
	status   *StatusManager
	webhooks *webhook.Manager
	log      *zap.Logger

	candidateLimit     int
	recommendationSize int
}

func NewRecommenderService(
	profiles repository.ProfileRepository,
	films repository.FilmRepository,
	ruleRanker Ranker,
	llmRanker Ranker,
	locks *UserLocks,
	status *StatusManager,
	webhooks *webhook.Manager,
	candidateLimit int,
	recommendationSize int,
	log *zap.Logger,
) *RecommenderService {
	return &RecommenderService{
		profiles:           profiles,
		films:              films,
		ruleRanker:         ruleRanker,
		llmRanker:          llmRanker,
		locks:              locks,
		status:             status,
		webhooks:           webhooks,
		log:                log,
		candidateLimit:     candidateLimit,
		recommendationSize: recommendationSize,
	}
}

// Recommend genera y persiste las sugerencias del usuario sobre su perfil
// más reciente. Las corridas del mismo usuario se serializan entre sí y con
// el scorer; usuarios distintos corren en paralelo.
func (s *RecommenderService) Recommend(ctx context.Context, userID string) (domain.Recommendation, error) {
	return s.recommend(ctx, userID, func(string, int) {})
}

func (s *RecommenderService) recommend(ctx context.Context, userID string, report func(stage string, percentage int)) (domain.Recommendation, error) {
	release := s.locks.Acquire(userID)
	defer release()

	report("loading_profile", 10)
	profile, err := s.profiles.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Recommendation{}, ErrNoProfile
		}
		return domain.Recommendation{}, fmt.Errorf("load profile: %w", err)
	}

	// Un perfil persistido incompleto o corrupto corta el pipeline acá,
	// nunca llega al ranking.
	if err := ValidateScores(profile.Scores); err != nil {
		return domain.Recommendation{}, err
	}

	report("genre_selection", 30)
	criteria, err := SelectGenres(profile.Scores)
	if err != nil {
		return domain.Recommendation{}, err
	}

	s.log.Info("genre criteria selected",
		zap.String("user_id", userID),
		zap.Strings("include", criteria.Include),
		zap.Strings("exclude", criteria.Exclude),
	)

	report("candidate_search", 50)
	candidates, err := s.films.FindByGenreCriteria(ctx, criteria.Include, criteria.Exclude, s.candidateLimit)
	if err != nil {
		return domain.Recommendation{}, fmt.Errorf("find candidates: %w", err)
	}
	if len(candidates) == 0 {
		return domain.Recommendation{}, ErrNoCandidateFilms
	}

	report("ranking", 70)
	filmIDs := s.rank(ctx, profile.Scores, criteria, candidates)
	if len(filmIDs) == 0 {
		return domain.Recommendation{}, ErrNoCandidateFilms
	}

	report("saving", 90)
	now := time.Now().UTC()
	if err := s.films.ReplaceSuggestions(ctx, userID, filmIDs, now); err != nil {
		return domain.Recommendation{}, fmt.Errorf("save suggestions: %w", err)
	}

	s.log.Info("recommendations saved",
		zap.String("user_id", userID),
		zap.String("profile_id", profile.ID),
		zap.Int("count", len(filmIDs)),
	)

	return domain.Recommendation{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProfileID: profile.ID,
		FilmIDs:   filmIDs,
		CreatedAt: now,
	}, nil
}

// rank intenta primero el ranker LLM si está habilitado; ante cualquier error
// cae al ranker determinista de reglas, que no puede fallar con candidatas.
func (s *RecommenderService) rank(ctx context.Context, scores domain.ScoreSet, criteria GenreCriteria, candidates []domain.Film) []string {
	if s.llmRanker != nil {
		ids, err := s.llmRanker.Rank(ctx, scores, criteria, candidates, s.recommendationSize)
		if err == nil {
			return ids
		}
		s.log.Warn("llm ranker failed, falling back to rule-based ranking", zap.Error(err))
	}

	ids, err := s.ruleRanker.Rank(ctx, scores, criteria, candidates, s.recommendationSize)
	if err != nil {
		s.log.Error("rule-based ranker failed", zap.Error(err))
		return nil
	}
	return ids
}

// RunProcess ejecuta Recommend en el marco de un proceso asincrónico,
// reportando avance, resultado y eventos de webhook.
func (s *RecommenderService) RunProcess(ctx context.Context, processID, userID string) {
	rec, err := s.recommend(ctx, userID, func(stage string, percentage int) {
		s.status.Progress(ctx, processID, stage, "generating recommendations", percentage)
	})
	if err != nil {
		category := failureCategory(err)
		s.log.Warn("recommendation process failed",
			zap.String("process_id", processID),
			zap.String("user_id", userID),
			zap.String("category", category),
			zap.Error(err),
		)
		s.status.Fail(ctx, processID, "recommendation failed", err.Error(), category)
		s.webhooks.Notify(webhook.EventRecommendationFailed, userID, map[string]any{
			"process_id": processID,
			"error":      err.Error(),
			"category":   category,
		})
		return
	}

	s.status.Complete(ctx, processID, "recommendations ready", map[string]any{
		"profile_id": rec.ProfileID,
		"film_ids":   rec.FilmIDs,
	})
	s.webhooks.Notify(webhook.EventRecommendationCompleted, userID, map[string]any{
		"process_id": processID,
		"profile_id": rec.ProfileID,
		"count":      len(rec.FilmIDs),
	})
}

// failureCategory clasifica el error de una corrida: condiciones de dominio
// recuperables contra falla de sistema.
func failureCategory(err error) string {
	var incomplete *IncompleteInputError
	switch {
	case errors.Is(err, ErrNoProfile):
		return domain.FailureNoProfile
	case errors.Is(err, ErrNoEligibleGenres):
		return domain.FailureNoEligibleGenres
	case errors.Is(err, ErrNoCandidateFilms):
		return domain.FailureNoCandidateFilms
	case errors.As(err, &incomplete):
		return domain.FailureIncompleteInput
	default:
		return domain.FailureInternal
	}
}

// LatestSuggestions devuelve la última lista persistida para el usuario, en
// el orden original del ranking.
func (s *RecommenderService) LatestSuggestions(ctx context.Context, userID string) ([]string, time.Time, error) {
	return s.films.LatestSuggestions(ctx, userID)
}
