package model

import (
	"encoding/json"
	"time"
)

type JobType string

const (
	JobTypeDocument JobType = "document"
	JobTypeInvoice  JobType = "invoice"
)

type JobStatus string

const (
	JobStatusWaiting   JobStatus = "waiting"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Job is one unit of asynchronous document or invoice processing work.
type Job struct {
	ID          string          `json:"id"`
	Queue       string          `json:"queue"`
	Type        JobType         `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Status      JobStatus       `json:"status"`
	LastError   string          `json:"last_error,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	FinishedAt  time.Time       `json:"finished_at,omitempty"`
}

// DocumentJobPayload describes a general document-ingestion job.
type DocumentJobPayload struct {
	FileRef            string            `json:"file_ref"`
	Filename           string            `json:"filename"`
	OwnerID            string            `json:"owner_id"`
	DocID              string            `json:"doc_id"`
	CollectionStrategy string            `json:"collection_strategy,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// InvoiceJobPayload describes an invoice-ingestion job. On success the
// referenced session's checkpoint gains an InvoiceRef.
type InvoiceJobPayload struct {
	FileRef         string `json:"file_ref"`
	Filename        string `json:"filename"`
	OwnerID         string `json:"owner_id"`
	SessionThreadID string `json:"session_thread_id"`
	InvoiceID       string `json:"invoice_id"`
	BookingID       string `json:"booking_id,omitempty"`
}
