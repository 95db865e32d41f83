package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"moodmovies/internal/domain"
)

// RedisStatusStore guarda cada estado serializado a JSON bajo una clave con
// TTL, para que los estados terminados expiren solos. Una clave secundaria
// por usuario apunta a su proceso más reciente.
type RedisStatusStore struct {
	client     *redis.Client
	prefix     string
	userPrefix string
}

func NewRedisStatusStore(client *redis.Client) *RedisStatusStore {
	if client == nil {
		return nil
	}
	return &RedisStatusStore{
		client:     client,
		prefix:     "process:status:",
		userPrefix: "process:user:",
	}
}

func (s *RedisStatusStore) Put(ctx context.Context, status domain.ProcessStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encode process status: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+status.ProcessID, payload, statusTTL).Err(); err != nil {
		return fmt.Errorf("store process status: %w", err)
	}
	if err := s.client.Set(ctx, s.userPrefix+status.UserID, status.ProcessID, statusTTL).Err(); err != nil {
		return fmt.Errorf("store user process index: %w", err)
	}
	return nil
}

func (s *RedisStatusStore) Get(ctx context.Context, processID string) (domain.ProcessStatus, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+processID).Bytes()
	if err == redis.Nil {
		return domain.ProcessStatus{}, false, nil
	}
	if err != nil {
		return domain.ProcessStatus{}, false, fmt.Errorf("load process status: %w", err)
	}

	var st domain.ProcessStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return domain.ProcessStatus{}, false, fmt.Errorf("decode process status: %w", err)
	}
	return st, true, nil
}

func (s *RedisStatusStore) LatestByUser(ctx context.Context, userID string) (domain.ProcessStatus, bool, error) {
	processID, err := s.client.Get(ctx, s.userPrefix+userID).Result()
	if err == redis.Nil {
		return domain.ProcessStatus{}, false, nil
	}
	if err != nil {
		return domain.ProcessStatus{}, false, fmt.Errorf("load user process index: %w", err)
	}
	return s.Get(ctx, processID)
}
