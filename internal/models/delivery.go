package models

import (
	"time"

	"github.com/google/uuid"
)

// Delivery status constants
const (
	DeliveryStatusPending = "pending"
	DeliveryStatusSent    = "sent"
	DeliveryStatusFailed  = "failed"
)

// Delivery is the per-recipient, per-attempt audit row for a campaign send.
// A resend appends a new row rather than mutating the old one; the latest
// row per (campaign, participant) is the participant's current status.
type Delivery struct {
	ID            uuid.UUID  `json:"id"`
	CampaignID    uuid.UUID  `json:"campaign_id"`
	ParticipantID uuid.UUID  `json:"participant_id"`
	TemplateID    uuid.UUID  `json:"template_id"`
	TemplateName  string     `json:"template_name"`
	Subject       string     `json:"subject"`
	Status        string     `json:"status"`
	Error         *string    `json:"error,omitempty"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
	OpenedAt      *time.Time `json:"opened_at,omitempty"`
	ClickedAt     *time.Time `json:"clicked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DeliveryFilter holds filtering options for listing deliveries
type DeliveryFilter struct {
	CampaignID    uuid.UUID
	ParticipantID uuid.UUID
	Status        string
	Page          int
	PageSize      int
}

// IsValidDeliveryStatus checks if the delivery status is valid
func IsValidDeliveryStatus(status string) bool {
	switch status {
	case DeliveryStatusPending, DeliveryStatusSent, DeliveryStatusFailed:
		return true
	default:
		return false
	}
}

// CampaignJob is the durable unit of work queued when a campaign send is
// requested. The worker runs the whole dispatch pipeline for the campaign.
type CampaignJob struct {
	CampaignID uuid.UUID `json:"campaign_id"`
}
