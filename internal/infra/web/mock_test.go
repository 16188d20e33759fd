//go:build !integration

package web

import (
	"context"
	"sync"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"

	"github.com/oklog/ulid/v2"
)

type fakeConvUC struct {
	InvokeFunc  func(ctx context.Context, threadID, userID, text string) (*model.Session, string, error)
	BookFunc    func(ctx context.Context, threadID string) (*model.Shipment, error)
	HistoryFunc func(ctx context.Context, threadID string) (*model.Session, error)
}

func (f *fakeConvUC) Invoke(ctx context.Context, threadID, userID, text string) (*model.Session, string, error) {
	return f.InvokeFunc(ctx, threadID, userID, text)
}
func (f *fakeConvUC) Book(ctx context.Context, threadID string) (*model.Shipment, error) {
	return f.BookFunc(ctx, threadID)
}
func (f *fakeConvUC) History(ctx context.Context, threadID string) (*model.Session, error) {
	return f.HistoryFunc(ctx, threadID)
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) Save(ctx context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.Email]; ok {
		return domain.ErrAlreadyExists
	}
	if u.ID == "" {
		u.ID = ulid.Make().String()
	}
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type fakeDocRepo struct {
	mu   sync.Mutex
	docs []*model.Document
}

func (f *fakeDocRepo) Save(ctx context.Context, doc *model.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if doc.ID == "" {
		doc.ID = ulid.Make().String()
	}
	f.docs = append(f.docs, doc)
	return nil
}
func (f *fakeDocRepo) FindByID(ctx context.Context, id string) (*model.Document, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeDocRepo) UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error {
	return nil
}
func (f *fakeDocRepo) SaveResults(ctx context.Context, id string, c model.Classification, chunkCount int) error {
	return nil
}

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices []*model.Invoice
}

func (f *fakeInvoiceRepo) Save(ctx context.Context, inv *model.Invoice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoices = append(f.invoices, inv)
	return nil
}
func (f *fakeInvoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id string, status model.ProcessingStatus, lastError string) error {
	return nil
}
func (f *fakeInvoiceRepo) SaveResults(ctx context.Context, id string, c model.Classification) error {
	return nil
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

type fakeFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string][]byte{}}
}

func (f *fakeFileStore) Write(ctx context.Context, ref string, content []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[ref] = content
	return nil
}
func (f *fakeFileStore) ReadText(ctx context.Context, ref string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.files[ref]), nil
}
func (f *fakeFileStore) Delete(ctx context.Context, ref string) error { return nil }

type fakeQueue struct {
	mu   sync.Mutex
	name string
	jobs []*model.Job
}

func (f *fakeQueue) Name() string { return f.name }

func (f *fakeQueue) Enqueue(ctx context.Context, typ model.JobType, payload interface{}) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &model.Job{ID: ulid.Make().String(), Queue: f.name, Type: typ, Status: model.JobStatusWaiting}
	f.jobs = append(f.jobs, job)
	return job, nil
}

func (f *fakeQueue) Job(ctx context.Context, id string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, j := range f.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, domain.ErrNotFound
}
