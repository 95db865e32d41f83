package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort      string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL   string `env:"DATABASE_URL,required"`
	APIKey        string `env:"API_KEY,required"`
	WebhookSecret string `env:"WEBHOOK_SECRET"`

	LLMEnabled bool   `env:"LLM_ENABLED" envDefault:"true"`
	LLMAPIKey  string `env:"LLM_API_KEY"`
	LLMBaseURL string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMModel   string `env:"LLM_MODEL" envDefault:"gpt-5.1"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Parámetros poblacionales para la normalización T = 50 + 10*z,
	// con z = (raw - mean) / std.
	PersonalityMean   float64 `env:"PERSONALITY_MEAN" envDefault:"3.0"`
	PersonalityStdDev float64 `env:"PERSONALITY_STD_DEV" envDefault:"0.5"`

	CandidateFilmLimit int `env:"CANDIDATE_FILM_LIMIT" envDefault:"140"`
	RecommendationSize int `env:"RECOMMENDATION_SIZE" envDefault:"70"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
