//go:build !integration

package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
)

type fakeFileStore struct {
	mu      sync.Mutex
	files   map[string]string
	deleted []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string]string{}}
}

func (f *fakeFileStore) Write(ctx context.Context, ref string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[ref] = string(content)
	return nil
}

func (f *fakeFileStore) ReadText(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.files[ref]
	if !ok {
		return "", errors.New("no such file")
	}
	return s, nil
}

func (f *fakeFileStore) Delete(ctx context.Context, ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, ref)
	f.deleted = append(f.deleted, ref)
	return nil
}

type fakeClassifier struct {
	calls  int
	result model.Classification
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) model.Classification {
	f.calls++
	return f.result
}

type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls++
	if f.fail {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2}
	}
	return out, nil
}

type fakeVectorIndex struct {
	mu      sync.Mutex
	batches [][]adapter.VectorItem
	fail    bool
}

func (f *fakeVectorIndex) UpsertBatch(ctx context.Context, index string, items []adapter.VectorItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("vector store unavailable")
	}
	f.batches = append(f.batches, items)
	return nil
}

func (f *fakeVectorIndex) indexed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

type fakeDocRepo struct {
	mu       sync.Mutex
	statuses map[string]model.ProcessingStatus
	results  map[string]model.Classification
	chunks   map[string]int
	errs     map[string]string
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{
		statuses: map[string]model.ProcessingStatus{},
		results:  map[string]model.Classification{},
		chunks:   map[string]int{},
		errs:     map[string]string{},
	}
}

func (f *fakeDocRepo) Save(ctx context.Context, doc *model.Document) error { return nil }
func (f *fakeDocRepo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeDocRepo) UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	f.errs[id] = lastError
	return nil
}
func (f *fakeDocRepo) SaveResults(ctx context.Context, id string, c model.Classification, chunkCount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = model.ProcessingCompleted
	f.results[id] = c
	f.chunks[id] = chunkCount
	return nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	statuses map[string]model.ProcessingStatus
	results  map[string]model.Classification
	errs     map[string]string
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{
		statuses: map[string]model.ProcessingStatus{},
		results:  map[string]model.Classification{},
		errs:     map[string]string{},
	}
}

func (f *fakeInvoiceRepo) Save(ctx context.Context, inv *model.Invoice) error { return nil }
func (f *fakeInvoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	f.errs[id] = lastError
	return nil
}
func (f *fakeInvoiceRepo) SaveResults(ctx context.Context, id string, c model.Classification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = model.ProcessingCompleted
	f.results[id] = c
	return nil
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
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
	return nil
}

type fakeLocker struct {
	locks, unlocks int
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	f.locks++
	return "token", nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, token string) error {
	f.unlocks++
	return nil
}
