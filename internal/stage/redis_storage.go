package stage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	chatStageKeyPattern  = "chat:stage:%d"
	chatStageScanPattern = "chat:stage:*"

	// A conversation may sit in any stage indefinitely, so stages never
	// expire on their own; the TTL only bounds garbage from chats that
	// never come back.
	chatStageTTL = 30 * 24 * time.Hour
)

// RedisStorage persists chat stages in Redis, so conversations survive a
// bot restart when an address is configured.
type RedisStorage struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisStorage initializes a Redis-backed Storage implementation.
func NewRedisStorage(client *redis.Client, log *slog.Logger) *RedisStorage {
	if log == nil {
		log = slog.Default()
	}

	return &RedisStorage{
		client: client,
		log:    log,
	}
}

// GetStage returns the stored stage for the chat.
func (s *RedisStorage) GetStage(ctx context.Context, chatID int64) (*ChatStage, error) {
	key := redisChatStageKey(chatID)

	data, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStageNotFound
		}

		s.log.Error("failed to get stage from redis", "chat_id", chatID, "error", err)
		return nil, err
	}

	var chatStage ChatStage
	if err := json.Unmarshal([]byte(data), &chatStage); err != nil {
		s.log.Error("failed to decode chat stage", "chat_id", chatID, "error", err)
		return nil, err
	}

	return &chatStage, nil
}

// SetStage saves the provided chat stage.
func (s *RedisStorage) SetStage(ctx context.Context, chatID int64, chatStage *ChatStage) error {
	chatStage.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(chatStage)
	if err != nil {
		s.log.Error("failed to encode chat stage", "chat_id", chatID, "error", err)
		return err
	}

	key := redisChatStageKey(chatID)
	if err := s.client.Set(ctx, key, data, chatStageTTL).Err(); err != nil {
		s.log.Error("failed to save stage in redis", "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

// ClearStage removes the stored stage for the given chat.
func (s *RedisStorage) ClearStage(ctx context.Context, chatID int64) error {
	key := redisChatStageKey(chatID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("failed to clear chat stage", "chat_id", chatID, "error", err)
		return err
	}

	return nil
}

// AllStages retrieves every stored chat stage by scanning Redis keys.
func (s *RedisStorage) AllStages(ctx context.Context) ([]*ChatStage, error) {
	var (
		cursor uint64
		result []*ChatStage
	)

	for {
		keys, nextCursor, err := s.client.Scan(ctx, cursor, chatStageScanPattern, 100).Result()
		if err != nil {
			s.log.Error("failed to scan chat stages", "error", err)
			return nil, err
		}

		for _, key := range keys {
			data, err := s.client.Get(ctx, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}

				s.log.Error("failed to fetch chat stage", "key", key, "error", err)
				return nil, err
			}

			var chatStage ChatStage
			if err := json.Unmarshal([]byte(data), &chatStage); err != nil {
				s.log.Error("failed to decode chat stage", "key", key, "error", err)
				continue
			}

			copied := chatStage
			result = append(result, &copied)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return result, nil
}

// HealthCheck verifies the Redis connection.
func (s *RedisStorage) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func redisChatStageKey(chatID int64) string {
	return fmt.Sprintf(chatStageKeyPattern, chatID)
}
