//go:build !integration

package usecase

import (
	"context"
	"sync"
	"time"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	puts     int
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]*model.Session{}}
}

func (f *fakeSessionStore) Get(ctx context.Context, threadID string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[threadID], nil
}

func (f *fakeSessionStore) Put(ctx context.Context, sess *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sess.ThreadID] = sess
	f.puts++
	return nil
}

type fakeExtractor struct {
	calls  int
	deltas []model.ShipmentDelta
	err    error
}

func (f *fakeExtractor) Extract(ctx context.Context, snapshot model.ShipmentData, text string) (model.ShipmentDelta, error) {
	f.calls++
	if f.err != nil {
		return model.ShipmentDelta{}, f.err
	}
	if len(f.deltas) == 0 {
		return model.ShipmentDelta{}, nil
	}
	d := f.deltas[0]
	if len(f.deltas) > 1 {
		f.deltas = f.deltas[1:]
	}
	return d, nil
}

type fakeGenerator struct {
	calls       int
	lastHistory []model.Message
	result      adapter.GenerationResult
	err         error
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []model.Message, snapshot model.ShipmentData) (adapter.GenerationResult, error) {
	f.calls++
	f.lastHistory = messages
	if f.err != nil {
		return adapter.GenerationResult{}, f.err
	}
	return f.result, nil
}

type fakeQuoter struct {
	calls int
	quote model.Quote
}

func (f *fakeQuoter) Quote(d model.ShipmentData) model.Quote {
	f.calls++
	return f.quote
}

type fakeShipmentRepo struct {
	mu    sync.Mutex
	saved []*model.Shipment
}

func (f *fakeShipmentRepo) Save(ctx context.Context, s *model.Shipment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeShipmentRepo) FindByTracking(ctx context.Context, trackingCode string) (*model.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.saved {
		if s.TrackingCode == trackingCode {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeShipmentRepo) FindByUser(ctx context.Context, userID string) ([]*model.Shipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Shipment
	for _, s := range f.saved {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShipmentRepo) UpdateStatus(ctx context.Context, id string, status model.ShipmentStatus) error {
	return nil
}

type fakeLocker struct {
	mu             sync.Mutex
	locks, unlocks int
	err            error
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.locks++
	return "token", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocks++
	return nil
}
