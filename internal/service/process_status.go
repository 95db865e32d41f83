package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"moodmovies/internal/domain"
)

// statusTTL acota cuánto sobrevive un estado terminado antes de poder expirar.
const statusTTL = 24 * time.Hour

// StatusStore persiste el estado de procesos en background. Hay una
// implementación en memoria y otra sobre redis.
type StatusStore interface {
	Put(ctx context.Context, status domain.ProcessStatus) error
	Get(ctx context.Context, processID string) (domain.ProcessStatus, bool, error)
	LatestByUser(ctx context.Context, userID string) (domain.ProcessStatus, bool, error)
}

// MemoryStatusStore guarda los estados en un mapa protegido por mutex. Es el
// fallback cuando no hay redis configurado.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]domain.ProcessStatus
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]domain.ProcessStatus)}
}

func (s *MemoryStatusStore) Put(_ context.Context, status domain.ProcessStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[status.ProcessID] = status
	return nil
}

func (s *MemoryStatusStore) Get(_ context.Context, processID string) (domain.ProcessStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.statuses[processID]
	return st, ok, nil
}

func (s *MemoryStatusStore) LatestByUser(_ context.Context, userID string) (domain.ProcessStatus, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest domain.ProcessStatus
		found  bool
	)
	for _, st := range s.statuses {
		if st.UserID != userID {
			continue
		}
		if !found || st.StartedAt.After(latest.StartedAt) {
			latest = st
			found = true
		}
	}
	return latest, found, nil
}

// StatusManager centraliza las transiciones de estado de los procesos y deja
// traza de cada una en el log.
type StatusManager struct {
	store StatusStore
	log   *zap.Logger
}

func NewStatusManager(store StatusStore, log *zap.Logger) *StatusManager {
	return &StatusManager{store: store, log: log}
}

// Start registra un proceso nuevo en estado pendiente y devuelve su id.
func (m *StatusManager) Start(ctx context.Context, userID, processType string) (string, error) {
	now := time.Now().UTC()
	status := domain.ProcessStatus{
		ProcessID:   uuid.NewString(),
		UserID:      userID,
		ProcessType: processType,
		Status:      domain.ProcessPending,
		Percentage:  0,
		StartedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.store.Put(ctx, status); err != nil {
		return "", err
	}
	m.log.Info("process started",
		zap.String("process_id", status.ProcessID),
		zap.String("user_id", userID),
		zap.String("process_type", processType),
	)
	return status.ProcessID, nil
}

// Progress mueve el proceso a in_progress actualizando etapa y porcentaje.
// El porcentaje se recorta al rango [0, 100].
func (m *StatusManager) Progress(ctx context.Context, processID, stage, message string, percentage int) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	m.update(ctx, processID, func(st *domain.ProcessStatus) {
		st.Status = domain.ProcessInProgress
		st.Stage = stage
		st.Message = message
		st.Percentage = percentage
		st.ErrorDetail = ""
	})
}

// Complete marca el proceso como terminado con su payload de resultado.
func (m *StatusManager) Complete(ctx context.Context, processID, message string, data map[string]any) {
	m.update(ctx, processID, func(st *domain.ProcessStatus) {
		st.Status = domain.ProcessCompleted
		st.Stage = ""
		st.Message = message
		st.Percentage = 100
		st.ErrorDetail = ""
		st.Data = data
	})
}

// Fail marca el proceso como fallido conservando detalle y categoría del error.
func (m *StatusManager) Fail(ctx context.Context, processID, message, errorDetail, category string) {
	if category == "" {
		category = domain.FailureInternal
	}
	m.update(ctx, processID, func(st *domain.ProcessStatus) {
		st.Status = domain.ProcessFailed
		st.Message = message
		st.ErrorDetail = errorDetail
		st.ErrorCategory = category
	})
}

// Get devuelve el estado actual del proceso, si existe.
func (m *StatusManager) Get(ctx context.Context, processID string) (domain.ProcessStatus, bool, error) {
	return m.store.Get(ctx, processID)
}

// LatestForUser devuelve el proceso más reciente del usuario, si existe.
func (m *StatusManager) LatestForUser(ctx context.Context, userID string) (domain.ProcessStatus, bool, error) {
	return m.store.LatestByUser(ctx, userID)
}

func (m *StatusManager) update(ctx context.Context, processID string, apply func(*domain.ProcessStatus)) {
	st, ok, err := m.store.Get(ctx, processID)
	if err != nil {
		m.log.Error("failed to load process status", zap.String("process_id", processID), zap.Error(err))
		return
	}
	if !ok {
		m.log.Warn("process status not found", zap.String("process_id", processID))
		return
	}

	apply(&st)
	st.UpdatedAt = time.Now().UTC()

	if err := m.store.Put(ctx, st); err != nil {
		m.log.Error("failed to save process status", zap.String("process_id", processID), zap.Error(err))
	}
}
