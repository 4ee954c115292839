package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Participant represents a registered attendee of an event
type Participant struct {
	ID         uuid.UUID `json:"id"`
	EventID    uuid.UUID `json:"event_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Company    string    `json:"company"`
	Position   string    `json:"position"`
	CustomData JSONMap   `json:"custom_data,omitempty"`
	QRCodeURL  *string   `json:"qr_code_url,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// ParticipantFilter holds filtering options for listing participants
type ParticipantFilter struct {
	EventID  uuid.UUID
	Status   string
	Page     int
	PageSize int
}

// Validate performs basic validation on participant data
func (p *Participant) Validate() error {
	if p.EventID == uuid.Nil {
		return ErrInvalidInput("event_id is required")
	}
	if p.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return ErrInvalidInput("a valid email is required")
	}
	return nil
}
