package mailer

import (
	"context"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// Message is a single outbound email
type Message struct {
	To          string
	FromName    string
	FromEmail   string
	Subject     string
	HTML        string
	Attachments []models.Attachment
	// CampaignID and DeliveryID ride along as provider tags so bounce and
	// complaint feedback can be correlated later.
	CampaignID string
	DeliveryID string
}

// Mailer is the external mail-sending collaborator. Implementations own
// their retry behavior; the dispatch pipeline treats Send as opaque.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}
