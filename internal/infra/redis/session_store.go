package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/repository"

	"github.com/go-redis/redis/v8"
)

var _ repository.SessionStore = (*SessionStore)(nil)

// SessionStore keeps one JSON checkpoint per conversation thread. The value
// carries no TTL; retention is an external concern.
type SessionStore struct {
	client RedisClient
}

func NewSessionStore(client RedisClient) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(threadID string) string {
	return fmt.Sprintf("session:%s", threadID)
}

// Get returns (nil, nil) when no checkpoint exists for the thread.
func (s *SessionStore) Get(ctx context.Context, threadID string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(threadID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Put(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	return s.client.Set(ctx, sessionKey(sess.ThreadID), data, 0)
}
