package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"moodmovies/internal/config"
	"moodmovies/internal/db"
	apihttp "moodmovies/internal/http"
	"moodmovies/internal/llm"
	"moodmovies/internal/repository"
	"moodmovies/internal/service"
	"moodmovies/internal/webhook"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	responseRepo := repository.NewPgResponseRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)
	filmRepo := repository.NewPgFilmRepository(pool)

	scorer, err := service.NewScorer(cfg.PersonalityMean, cfg.PersonalityStdDev)
	if err != nil {
		logger.Fatal("scorer init", zap.Error(err))
	}

	var statusStore service.StatusStore = service.NewMemoryStatusStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory status store", zap.Error(err))
		} else {
			statusStore = service.NewRedisStatusStore(redisClient)
		}
		cancel()
	}

	statusMgr := service.NewStatusManager(statusStore, logger)
	webhookMgr := webhook.NewManager(cfg.WebhookSecret, logger)
	locks := service.NewUserLocks()

	var llmRanker service.Ranker
	if cfg.LLMEnabled && cfg.LLMAPIKey != "" {
		llmClient := llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
		llmRanker = service.NewLLMRanker(llmClient, logger)
	} else {
		logger.Info("llm ranking disabled, using rule-based ranking only")
	}

	profilerSvc := service.NewProfilerService(responseRepo, profileRepo, scorer, locks, webhookMgr, logger)
	recommenderSvc := service.NewRecommenderService(
		profileRepo,
		filmRepo,
		service.NewRuleBasedRanker(),
		llmRanker,
		locks,
		statusMgr,
		webhookMgr,
		cfg.CandidateFilmLimit,
		cfg.RecommendationSize,
		logger,
	)

	profileHandler := apihttp.NewProfileHandler(logger, profilerSvc, recommenderSvc, statusMgr, profileRepo)
	recoHandler := apihttp.NewRecommendationHandler(logger, recommenderSvc, statusMgr)
	webhookHandler := apihttp.NewWebhookHandler(logger, webhookMgr)
	router := apihttp.NewRouter(logger, cfg.APIKey, profileHandler, recoHandler, webhookHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
