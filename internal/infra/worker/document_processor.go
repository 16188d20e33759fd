package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"freight-ai-assistant/internal/domain"
	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
	"freight-ai-assistant/internal/domain/ports/repository"
	"freight-ai-assistant/internal/infra/metrics"
	"freight-ai-assistant/internal/infra/queue"
	red "freight-ai-assistant/internal/infra/redis"

	"github.com/rs/zerolog"
)

// PipelineResult is the structured payload stored on a completed job.
type PipelineResult struct {
	DocType       string  `json:"doc_type"`
	Confidence    float64 `json:"confidence"`
	ChunkCount    int     `json:"chunk_count"`
	ChunksIndexed int     `json:"chunks_indexed"`
}

// DocumentProcessor runs the ingestion stages for one job: load, classify,
// split, index, persist, cleanup. It implements Handler for both the
// document and the invoice queue.
type DocumentProcessor struct {
	files      adapter.FileStore
	classifier adapter.DocumentClassifier
	embedder   adapter.Embedder
	index      adapter.VectorIndex
	chunker    *Chunker
	docs       repository.DocumentRepository
	invoices   repository.InvoiceRepository
	sessions   repository.SessionStore
	locker     red.Locker

	indexName string
	minChars  int
	batchSize int
	log       *zerolog.Logger
}

func NewDocumentProcessor(
	files adapter.FileStore,
	classifier adapter.DocumentClassifier,
	embedder adapter.Embedder,
	index adapter.VectorIndex,
	chunker *Chunker,
	docs repository.DocumentRepository,
	invoices repository.InvoiceRepository,
	sessions repository.SessionStore,
	locker red.Locker,
	indexName string,
	minChars int,
	batchSize int,
	log *zerolog.Logger,
) *DocumentProcessor {
	if minChars <= 0 {
		minChars = 20
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &DocumentProcessor{
		files:      files,
		classifier: classifier,
		embedder:   embedder,
		index:      index,
		chunker:    chunker,
		docs:       docs,
		invoices:   invoices,
		sessions:   sessions,
		locker:     locker,
		indexName:  indexName,
		minChars:   minChars,
		batchSize:  batchSize,
		log:        log,
	}
}

var _ Handler = (*DocumentProcessor)(nil)

func (p *DocumentProcessor) Handle(ctx context.Context, job *model.Job) (interface{}, error) {
	switch job.Type {
	case model.JobTypeDocument:
		var payload model.DocumentJobPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, queue.NonRetryable(fmt.Errorf("decode document payload: %w", err))
		}
		return p.processDocument(ctx, &payload)
	case model.JobTypeInvoice:
		var payload model.InvoiceJobPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return nil, queue.NonRetryable(fmt.Errorf("decode invoice payload: %w", err))
		}
		return p.processInvoice(ctx, &payload)
	default:
		return nil, queue.NonRetryable(fmt.Errorf("unknown job type %q", job.Type))
	}
}

func (p *DocumentProcessor) processDocument(ctx context.Context, payload *model.DocumentJobPayload) (res interface{}, err error) {
	// Cleanup always runs, whatever happened in the stages after load.
	defer p.cleanup(payload.FileRef)

	_ = p.docs.UpdateStatus(ctx, payload.DocID, model.ProcessingActive, "")

	text, err := p.loadContent(ctx, payload.FileRef)
	if err != nil {
		p.recordDocError(ctx, payload.DocID, err)
		return nil, err
	}

	classification := p.classify(ctx, text)

	meta := map[string]string{
		"source_id": payload.DocID,
		"owner_id":  payload.OwnerID,
		"filename":  payload.Filename,
		"doc_type":  classification.DocType,
	}
	for k, v := range payload.Metadata {
		meta[k] = v
	}
	chunks, indexed := p.indexChunks(ctx, payload.DocID, text, meta)

	persistStart := time.Now()
	if err := p.docs.SaveResults(ctx, payload.DocID, classification, len(chunks)); err != nil {
		p.recordDocError(ctx, payload.DocID, err)
		return nil, fmt.Errorf("persist document results: %w", err)
	}
	metrics.ObserveStage("persist", time.Since(persistStart).Seconds())

	return &PipelineResult{
		DocType:       classification.DocType,
		Confidence:    classification.Confidence,
		ChunkCount:    len(chunks),
		ChunksIndexed: indexed,
	}, nil
}

func (p *DocumentProcessor) processInvoice(ctx context.Context, payload *model.InvoiceJobPayload) (res interface{}, err error) {
	defer p.cleanup(payload.FileRef)

	_ = p.invoices.UpdateStatus(ctx, payload.InvoiceID, model.ProcessingActive, "")

	text, err := p.loadContent(ctx, payload.FileRef)
	if err != nil {
		p.recordInvoiceError(ctx, payload.InvoiceID, err)
		return nil, err
	}

	classification := p.classify(ctx, text)

	meta := map[string]string{
		"source_id":  payload.InvoiceID,
		"owner_id":   payload.OwnerID,
		"filename":   payload.Filename,
		"doc_type":   classification.DocType,
		"thread_id":  payload.SessionThreadID,
		"booking_id": payload.BookingID,
	}
	chunks, indexed := p.indexChunks(ctx, payload.InvoiceID, text, meta)

	persistStart := time.Now()
	if err := p.invoices.SaveResults(ctx, payload.InvoiceID, classification); err != nil {
		p.recordInvoiceError(ctx, payload.InvoiceID, err)
		return nil, fmt.Errorf("persist invoice results: %w", err)
	}

	// Feed the invoice reference back into the owning conversation, if that
	// session still exists. The thread lock serializes this against live
	// conversation turns.
	if payload.SessionThreadID != "" {
		if err := p.attachToSession(ctx, payload); err != nil {
			p.recordInvoiceError(ctx, payload.InvoiceID, err)
			return nil, err
		}
	}
	metrics.ObserveStage("persist", time.Since(persistStart).Seconds())

	return &PipelineResult{
		DocType:       classification.DocType,
		Confidence:    classification.Confidence,
		ChunkCount:    len(chunks),
		ChunksIndexed: indexed,
	}, nil
}

// loadContent reads the referenced file and rejects empty or near-empty
// content before any external call is attempted. Content this short is a
// validation failure, not a transient fault, so it is not retried.
func (p *DocumentProcessor) loadContent(ctx context.Context, fileRef string) (string, error) {
	start := time.Now()
	defer func() { metrics.ObserveStage("load", time.Since(start).Seconds()) }()

	text, err := p.files.ReadText(ctx, fileRef)
	if err != nil {
		return "", queue.NonRetryable(fmt.Errorf("read %s: %w", fileRef, err))
	}
	if len(text) < p.minChars {
		return "", queue.NonRetryable(domain.ErrEmptyDocument)
	}
	return text, nil
}

func (p *DocumentProcessor) classify(ctx context.Context, text string) model.Classification {
	start := time.Now()
	defer func() { metrics.ObserveStage("classify", time.Since(start).Seconds()) }()
	// The classifier port absorbs model failures and returns the unknown
	// fallback; this stage never raises.
	return p.classifier.Classify(ctx, text)
}

// indexChunks splits the text and upserts it in fixed-size batches. Indexing
// is best-effort: a batch failure is logged and the remaining batches still
// run.
func (p *DocumentProcessor) indexChunks(ctx context.Context, sourceID, text string, meta map[string]string) ([]Chunk, int) {
	splitStart := time.Now()
	chunks := p.chunker.Split(text)
	metrics.ObserveStage("split", time.Since(splitStart).Seconds())

	indexStart := time.Now()
	defer func() { metrics.ObserveStage("index", time.Since(indexStart).Seconds()) }()

	indexed := 0
	for from := 0; from < len(chunks); from += p.batchSize {
		to := from + p.batchSize
		if to > len(chunks) {
			to = len(chunks)
		}
		batch := chunks[from:to]

		items := make([]adapter.VectorItem, 0, len(batch))
		contents := make([]string, 0, len(batch))
		for _, ch := range batch {
			m := make(map[string]string, len(meta)+1)
			for k, v := range meta {
				m[k] = v
			}
			m["position"] = strconv.Itoa(ch.Index)
			items = append(items, adapter.VectorItem{
				ID:       fmt.Sprintf("%s:%d", sourceID, ch.Index),
				Content:  ch.Content,
				Metadata: m,
			})
			contents = append(contents, ch.Content)
		}

		embeddings, err := p.embedder.Embed(ctx, contents)
		if err != nil {
			metrics.IncVectorBatch("error")
			p.log.Warn().Str("source_id", sourceID).Int("batch_start", from).Err(err).
				Msg("embedding batch failed; continuing")
			continue
		}
		for i := range items {
			if i < len(embeddings) {
				items[i].Embedding = embeddings[i]
			}
		}

		if err := p.index.UpsertBatch(ctx, p.indexName, items); err != nil {
			metrics.IncVectorBatch("error")
			p.log.Warn().Str("source_id", sourceID).Int("batch_start", from).Err(err).
				Msg("vector batch upsert failed; continuing")
			continue
		}
		metrics.IncVectorBatch("ok")
		indexed += len(items)
	}
	metrics.AddChunksIndexed(indexed)
	return chunks, indexed
}

// attachToSession appends the invoice reference into the thread's checkpoint
// under the thread lock. A missing session is not an error: the conversation
// may have never started or been retired.
func (p *DocumentProcessor) attachToSession(ctx context.Context, payload *model.InvoiceJobPayload) error {
	key := red.ThreadLockKey(payload.SessionThreadID)
	token, err := p.locker.TryLock(ctx, key, 10*time.Second)
	if err != nil {
		return fmt.Errorf("lock thread %s: %w", payload.SessionThreadID, err)
	}
	defer func() { _ = p.locker.Unlock(ctx, key, token) }()

	sess, err := p.sessions.Get(ctx, payload.SessionThreadID)
	if err != nil {
		return err
	}
	if sess == nil {
		p.log.Debug().Str("thread_id", payload.SessionThreadID).Str("invoice_id", payload.InvoiceID).
			Msg("no session checkpoint; skipping invoice reference")
		return nil
	}

	for i, ref := range sess.Shipment.Invoices {
		if ref.InvoiceID == payload.InvoiceID {
			sess.Shipment.Invoices[i].Processed = true
			sess.UpdatedAt = time.Now()
			return p.sessions.Put(ctx, sess)
		}
	}
	sess.Shipment.Invoices = append(sess.Shipment.Invoices, model.InvoiceRef{
		InvoiceID:  payload.InvoiceID,
		Filename:   payload.Filename,
		UploadedAt: time.Now(),
		Processed:  true,
	})
	sess.UpdatedAt = time.Now()
	return p.sessions.Put(ctx, sess)
}

func (p *DocumentProcessor) cleanup(fileRef string) {
	if fileRef == "" {
		return
	}
	if err := p.files.Delete(context.Background(), fileRef); err != nil {
		p.log.Warn().Str("file_ref", fileRef).Err(err).Msg("temp file cleanup failed")
	}
}

func (p *DocumentProcessor) recordDocError(ctx context.Context, docID string, err error) {
	if uerr := p.docs.UpdateStatus(ctx, docID, model.ProcessingFailed, err.Error()); uerr != nil {
		p.log.Error().Str("doc_id", docID).Err(uerr).Msg("could not record document error")
	}
}

func (p *DocumentProcessor) recordInvoiceError(ctx context.Context, invoiceID string, err error) {
	if uerr := p.invoices.UpdateStatus(ctx, invoiceID, model.ProcessingFailed, err.Error()); uerr != nil {
		p.log.Error().Str("invoice_id", invoiceID).Err(uerr).Msg("could not record invoice error")
	}
}
