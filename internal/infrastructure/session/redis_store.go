package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saradorri/edrewards/internal/domain"
)

// RedisStore keeps ad sessions in redis with a TTL. Expiry is handled by redis.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a redis backed ad session store
func NewRedisStore(client redis.UniversalClient, prefix string) domain.AdSessionStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + "ad_session:" + sessionID
}

// Create stores a session until it is consumed or ttl elapses
func (s *RedisStore) Create(ctx context.Context, session *domain.AdSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal ad session: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(session.ID), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store ad session: %w", err)
	}
	if !ok {
		return fmt.Errorf("ad session %s already exists", session.ID)
	}
	return nil
}

// consumeScript deletes and returns the session only when it belongs to ARGV[1]
var consumeScript = redis.NewScript(`
local payload = redis.call("GET", KEYS[1])
if not payload then
	return false
end
if cjson.decode(payload)["user_id"] ~= ARGV[1] then
	return false
end
redis.call("DEL", KEYS[1])
return payload
`)

// Consume reads and deletes the session of userID in one step. A session of another
// user is left untouched and reported as absent.
func (s *RedisStore) Consume(ctx context.Context, userID, sessionID string) (*domain.AdSession, error) {
	payload, err := consumeScript.Run(ctx, s.client, []string{s.key(sessionID)}, userID).Text()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to consume ad session: %w", err)
	}

	var session domain.AdSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ad session: %w", err)
	}
	return &session, nil
}
