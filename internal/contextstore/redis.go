package contextstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	commonerrors "finchat/internal/common/errors"
	"finchat/internal/models"
)

const keyPrefix = "finchat:context:"

// RedisStore keeps contexts in Redis with a sliding TTL, so idle
// conversations expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, conversationID string) (*models.ConversationContext, error) {
	raw, err := s.client.Get(ctx, keyPrefix+conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return models.NewConversationContext(), nil
	}
	if err != nil {
		return nil, commonerrors.NewContextLoadFailedError(err)
	}

	var c models.ConversationContext
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		// a corrupt entry is unrecoverable; start the conversation over
		return models.NewConversationContext(), nil
	}
	if c.Slots == nil {
		c.Slots = make(map[string]models.Slot)
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, conversationID string, c *models.ConversationContext) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return commonerrors.NewContextSaveFailedError(err)
	}
	if err := s.client.Set(ctx, keyPrefix+conversationID, raw, s.ttl).Err(); err != nil {
		return commonerrors.NewContextSaveFailedError(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, keyPrefix+conversationID).Err(); err != nil {
		return commonerrors.NewContextSaveFailedError(err)
	}
	return nil
}
