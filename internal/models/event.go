package models

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a conference or similar gathering that owns
// participants, templates and campaigns.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate performs validation on event data
func (e *Event) Validate() error {
	if e.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if e.StartDate.IsZero() {
		return ErrInvalidInput("start_date is required")
	}
	return nil
}
