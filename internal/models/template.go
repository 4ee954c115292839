package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is a stored file reference attached to every message rendered
// from a template.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// EmailTemplate holds the subject/body of a campaign message. Body is HTML
// with {{placeholder}} tokens. When IncludeQRCode is set, each recipient's
// personal QR artifact is appended to the attachment set at send time.
type EmailTemplate struct {
	ID            uuid.UUID      `json:"id"`
	EventID       uuid.UUID      `json:"event_id"`
	Name          string         `json:"name"`
	Subject       string         `json:"subject"`
	Body          string         `json:"body"`
	Attachments   AttachmentList `json:"attachments,omitempty"`
	IncludeQRCode bool           `json:"include_qr_code"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Validate performs validation on template data
func (t *EmailTemplate) Validate() error {
	if t.EventID == uuid.Nil {
		return ErrInvalidInput("event_id is required")
	}
	if t.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if t.Subject == "" {
		return ErrInvalidInput("subject is required")
	}
	if t.Body == "" {
		return ErrInvalidInput("body is required")
	}
	return nil
}
