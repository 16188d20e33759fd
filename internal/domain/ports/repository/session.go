package repository

import (
	"context"

	"freight-ai-assistant/internal/domain/model"
)

// SessionStore is the checkpoint contract for conversation state. The whole
// Session is read and written wholesale each turn.
type SessionStore interface {
	// Get returns the checkpointed session for a thread, or (nil, nil) when
	// no checkpoint exists yet. "No checkpoint" is not an error.
	Get(ctx context.Context, threadID string) (*model.Session, error)
	Put(ctx context.Context, session *model.Session) error
}
