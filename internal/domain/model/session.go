package model

import (
	"time"
)

// Message roles within a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one entry in a session's append-only message log.
// Messages are never reordered or deduplicated.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// InvoiceRef links a processed invoice back into the conversation state.
type InvoiceRef struct {
	InvoiceID  string    `json:"invoice_id"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploaded_at"`
	Processed  bool      `json:"processed"`
}

// ShipmentData holds the structured fields collected over the conversation.
// Fields are set-once-then-refined: a later extraction may overwrite a field
// with a new non-empty value but never erases one.
type ShipmentData struct {
	Origin              string       `json:"origin,omitempty"`
	Destination         string       `json:"destination,omitempty"`
	Cargo               string       `json:"cargo,omitempty"`
	Weight              string       `json:"weight,omitempty"`
	ServiceLevel        string       `json:"service_level,omitempty"`
	SpecialRequirements string       `json:"special_requirements,omitempty"`
	DeclaredValue       string       `json:"declared_value,omitempty"`
	ContactName         string       `json:"contact_name,omitempty"`
	ContactEmail        string       `json:"contact_email,omitempty"`
	ContactPhone        string       `json:"contact_phone,omitempty"`
	Invoices            []InvoiceRef `json:"invoices,omitempty"`
}

// ShipmentDelta is a partial field update produced by extraction.
// An empty string means "no new information" for that field.
type ShipmentDelta struct {
	Origin              string `json:"origin,omitempty"`
	Destination         string `json:"destination,omitempty"`
	Cargo               string `json:"cargo,omitempty"`
	Weight              string `json:"weight,omitempty"`
	ServiceLevel        string `json:"service_level,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
	DeclaredValue       string `json:"declared_value,omitempty"`
	ContactName         string `json:"contact_name,omitempty"`
	ContactEmail        string `json:"contact_email,omitempty"`
	ContactPhone        string `json:"contact_phone,omitempty"`
}

// Merge applies a delta to the shipment data. Only non-empty delta fields
// overwrite; the merge is monotonic and never regresses a known field.
func (d *ShipmentData) Merge(delta ShipmentDelta) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&d.Origin, delta.Origin)
	set(&d.Destination, delta.Destination)
	set(&d.Cargo, delta.Cargo)
	set(&d.Weight, delta.Weight)
	set(&d.ServiceLevel, delta.ServiceLevel)
	set(&d.SpecialRequirements, delta.SpecialRequirements)
	set(&d.DeclaredValue, delta.DeclaredValue)
	set(&d.ContactName, delta.ContactName)
	set(&d.ContactEmail, delta.ContactEmail)
	set(&d.ContactPhone, delta.ContactPhone)
}

// Session is the aggregate root for one conversation thread. It is the
// checkpoint unit: read and written wholesale each turn.
type Session struct {
	ThreadID  string       `json:"thread_id"`
	UserID    string       `json:"user_id"`
	Messages  []Message    `json:"messages"`
	Shipment  ShipmentData `json:"shipment_data"`
	Phase     Phase        `json:"current_phase"`
	Completed bool         `json:"completed"`
	Quote     *Quote       `json:"quote,omitempty"`
	BookingID string       `json:"booking_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func NewSession(threadID, userID string) *Session {
	now := time.Now()
	return &Session{
		ThreadID:  threadID,
		UserID:    userID,
		Messages:  make([]Message, 0, 8),
		Phase:     PhaseGreeting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) AddMessage(role, content string) {
	s.Messages = append(s.Messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	s.UpdatedAt = time.Now()
}

// LastMessage returns the most recent message, or nil for an empty log.
func (s *Session) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return &s.Messages[len(s.Messages)-1]
}

func (s *Session) RecentMessages(n int) []Message {
	if n <= 0 || len(s.Messages) <= n {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-n:]
}
