package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Tipos de evento que el pipeline emite hacia los webhooks registrados.
const (
	EventProfileCompleted        = "profile.completed"
	EventRecommendationCompleted = "recommendation.completed"
	EventRecommendationFailed    = "recommendation.failed"
)

var knownEvents = map[string]bool{
	EventProfileCompleted:        true,
	EventRecommendationCompleted: true,
	EventRecommendationFailed:    true,
}

// Config es una suscripción registrada: a qué URL notificar y qué eventos.
// Si UserID está seteado, solo recibe eventos de ese usuario.
type Config struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Events    []string  `json:"events"`
	UserID    string    `json:"user_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Event es el payload que recibe cada suscriptor.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	UserID    string         `json:"user_id"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Manager mantiene las suscripciones en memoria y despacha eventos firmados
// con HMAC-SHA256 sobre el cuerpo.
type Manager struct {
	mu      sync.RWMutex
	configs map[string]Config

	secret string
	client *http.Client
	log    *zap.Logger
}

func NewManager(secret string, log *zap.Logger) *Manager {
	return &Manager{
		configs: make(map[string]Config),
		secret:  secret,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func validateSubscription(rawURL string, events []string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("invalid webhook url %q", rawURL)
	}
	if len(events) == 0 {
		return fmt.Errorf("at least one event type is required")
	}
	for _, e := range events {
		if !knownEvents[e] {
			return fmt.Errorf("unknown event type %q", e)
		}
	}
	return nil
}

// Register valida y da de alta una suscripción nueva. userID vacío suscribe
// a los eventos de todos los usuarios.
func (m *Manager) Register(rawURL string, events []string, userID string) (Config, error) {
	if err := validateSubscription(rawURL, events); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ID:        uuid.NewString(),
		URL:       rawURL,
		Events:    append([]string(nil), events...),
		UserID:    userID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.configs[cfg.ID] = cfg
	m.mu.Unlock()

	m.log.Info("webhook registered", zap.String("webhook_id", cfg.ID), zap.String("url", cfg.URL))
	return cfg, nil
}

// Update reemplaza URL, eventos y estado de una suscripción existente.
func (m *Manager) Update(id, rawURL string, events []string, active bool) (Config, error) {
	if err := validateSubscription(rawURL, events); err != nil {
		return Config{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cfg, ok := m.configs[id]
	if !ok {
		return Config{}, fmt.Errorf("webhook %q not found", id)
	}

	cfg.URL = rawURL
	cfg.Events = append([]string(nil), events...)
	cfg.Active = active
	m.configs[id] = cfg

	m.log.Info("webhook updated", zap.String("webhook_id", id))
	return cfg, nil
}

// List devuelve todas las suscripciones registradas.
func (m *Manager) List() []Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Config, 0, len(m.configs))
	for _, cfg := range m.configs {
		out = append(out, cfg)
	}
	return out
}

// Get busca una suscripción por id.
func (m *Manager) Get(id string) (Config, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg, ok := m.configs[id]
	return cfg, ok
}

// Delete elimina una suscripción. Devuelve false si no existía.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[id]; !ok {
		return false
	}
	delete(m.configs, id)
	return true
}

// Notify despacha el evento a cada suscriptor activo que lo escuche. Los
// envíos corren en background y los fallos solo se loguean: un webhook caído
// nunca afecta al pipeline.
func (m *Manager) Notify(eventType, userID string, data map[string]any) {
	event := Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Data:      data,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		m.log.Error("failed to encode webhook event", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	m.mu.RLock()
	targets := make([]Config, 0, len(m.configs))
	for _, cfg := range m.configs {
		if !cfg.Active || !subscribed(cfg, eventType) {
			continue
		}
		if cfg.UserID != "" && cfg.UserID != userID {
			continue
		}
		targets = append(targets, cfg)
	}
	m.mu.RUnlock()

	for _, cfg := range targets {
		go m.deliver(cfg, event, payload)
	}
}

func (m *Manager) deliver(cfg Config, event Event, payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(payload))
	if err != nil {
		m.log.Error("failed to build webhook request", zap.String("webhook_id", cfg.ID), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", event.Type)
	if m.secret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(m.secret, payload))
	}

	resp, err := m.client.Do(req)
	if err != nil {
		m.log.Warn("webhook delivery failed",
			zap.String("webhook_id", cfg.ID),
			zap.String("event_type", event.Type),
			zap.Error(err),
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.log.Warn("webhook delivery rejected",
			zap.String("webhook_id", cfg.ID),
			zap.String("event_type", event.Type),
			zap.Int("status", resp.StatusCode),
		)
		return
	}

	m.log.Info("webhook delivered",
		zap.String("webhook_id", cfg.ID),
		zap.String("event_type", event.Type),
	)
}

// Sign calcula la firma hex HMAC-SHA256 del cuerpo con el secreto dado.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func subscribed(cfg Config, eventType string) bool {
	for _, e := range cfg.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
