package model

import "time"

type ProcessingStatus string

const (
	ProcessingPending   ProcessingStatus = "pending"
	ProcessingActive    ProcessingStatus = "processing"
	ProcessingCompleted ProcessingStatus = "completed"
	ProcessingFailed    ProcessingStatus = "failed"
)

// Classification is the structured result of the document classification
// step: the detected type, a confidence score and named field groups
// extracted by the model.
type Classification struct {
	DocType    string                       `json:"doc_type"`
	Confidence float64                      `json:"confidence"`
	Fields     map[string]map[string]string `json:"fields,omitempty"`
	Summary    string                       `json:"summary,omitempty"`
}

// UnknownClassification is the safe fallback used when the external
// classification call fails or returns unparseable content.
func UnknownClassification() Classification {
	return Classification{
		DocType:    "unknown",
		Confidence: 0.1,
		Fields:     map[string]map[string]string{},
	}
}

// Document is the relational record for an uploaded file.
type Document struct {
	ID             string
	OwnerID        string
	Filename       string
	Status         ProcessingStatus
	Classification *Classification
	ChunkCount     int
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Invoice is the relational record for an uploaded invoice, tied to a
// conversation thread and optionally a booking.
type Invoice struct {
	ID             string
	OwnerID        string
	ThreadID       string
	BookingID      string
	Filename       string
	Status         ProcessingStatus
	Classification *Classification
	LastError      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ShipmentStatus string

const (
	ShipmentBooked    ShipmentStatus = "booked"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
)

// Shipment is the booked outcome of a completed quoting cycle.
type Shipment struct {
	ID           string
	TrackingCode string
	UserID       string
	ThreadID     string
	CarrierID    string
	CarrierName  string
	Rate         float64
	Origin       string
	Destination  string
	Cargo        string
	Status       ShipmentStatus
	EstimatedAt  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is an account on the HTTP surface.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
