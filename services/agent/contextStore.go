package agent

import (
	"context"
	"encoding/json"
	"time"

	"radbook/models"

	"github.com/go-redis/redis/v8"
)

const agentContextPrefix = "agent:ctx:"

// RedisContextStore keeps per-patient conversation history between chat
// requests.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, patientID string) (*models.AgentContext, error) {
	key := agentContextPrefix + patientID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.AgentContext{}, nil
	}
	if err != nil {
		return nil, err
	}
	var agentCtx models.AgentContext
	if err := json.Unmarshal([]byte(data), &agentCtx); err != nil {
		return nil, err
	}
	return &agentCtx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, patientID string, agentCtx *models.AgentContext) error {
	key := agentContextPrefix + patientID
	b, err := json.Marshal(agentCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, patientID string) error {
	key := agentContextPrefix + patientID
	return s.client.Del(ctx, key).Err()
}
