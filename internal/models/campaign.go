package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Campaign status constants
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusSending   = "sending"
	CampaignStatusCompleted = "completed"
	CampaignStatusFailed    = "failed"
	CampaignStatusCancelled = "cancelled"
)

// Campaign channel constants. Only email is dispatchable today; whatsapp
// campaigns can be created but the worker refuses to send them.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Target type constants
const (
	TargetAll      = "all"
	TargetFiltered = "filtered"
	TargetManual   = "manual"
)

// Campaign represents a single broadcast of one template to a resolved set
// of participants of an event. TemplateName and TemplateSubject are
// snapshots taken at create time so lists stay stable if the template is
// edited later.
type Campaign struct {
	ID              uuid.UUID  `json:"id"`
	EventID         uuid.UUID  `json:"event_id"`
	Name            string     `json:"name"`
	Channel         string     `json:"channel"`
	TemplateID      uuid.UUID  `json:"template_id"`
	TemplateName    string     `json:"template_name"`
	TemplateSubject string     `json:"template_subject"`
	TargetType      string     `json:"target_type"`
	TargetFilter    JSONMap    `json:"target_filter,omitempty"`
	TargetIDs       UUIDList   `json:"target_participant_ids,omitempty"`
	Status          string     `json:"status"`
	TotalRecipients int        `json:"total_recipients"`
	SentCount       int        `json:"sent_count"`
	FailedCount     int        `json:"failed_count"`
	PendingCount    int        `json:"pending_count"`
	Notes           string     `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// CampaignFilter holds filtering options for listing campaigns
type CampaignFilter struct {
	EventID  uuid.UUID
	Channel  string
	Status   string
	Page     int
	PageSize int
}

// Validate performs validation on campaign data
func (c *Campaign) Validate() error {
	if c.EventID == uuid.Nil {
		return ErrInvalidInput("event_id is required")
	}
	if c.Name == "" {
		return ErrInvalidInput("name is required")
	}
	if !IsValidChannel(c.Channel) {
		return ErrInvalidInput(fmt.Sprintf("invalid channel: %s (must be 'email' or 'whatsapp')", c.Channel))
	}
	if c.TemplateID == uuid.Nil {
		return ErrInvalidInput("template_id is required")
	}
	if !IsValidTargetType(c.TargetType) {
		return ErrInvalidInput(fmt.Sprintf("invalid target_type: %s (must be 'all', 'filtered' or 'manual')", c.TargetType))
	}
	if c.TargetType == TargetManual && len(c.TargetIDs) == 0 {
		return ErrInvalidInput("target_participant_ids is required for manual targeting")
	}
	if c.Status != "" && !IsValidCampaignStatus(c.Status) {
		return ErrInvalidInput(fmt.Sprintf("invalid status: %s", c.Status))
	}
	return nil
}

// IsValidChannel checks if the channel is valid
func IsValidChannel(channel string) bool {
	return channel == ChannelEmail || channel == ChannelWhatsApp
}

// IsValidTargetType checks if the target type is valid
func IsValidTargetType(t string) bool {
	return t == TargetAll || t == TargetFiltered || t == TargetManual
}

// IsValidCampaignStatus checks if the campaign status is valid
func IsValidCampaignStatus(status string) bool {
	switch status {
	case CampaignStatusDraft, CampaignStatusSending, CampaignStatusCompleted,
		CampaignStatusFailed, CampaignStatusCancelled:
		return true
	default:
		return false
	}
}

// CanBeSent checks if a campaign can be sent.
// Only draft campaigns are sendable: once a campaign is sending, completed,
// failed or cancelled it cannot be sent again, which prevents duplicate
// sends if the API is called twice.
func (c *Campaign) CanBeSent() bool {
	return c.Status == CampaignStatusDraft
}

// CanBeCancelled checks if a campaign can be cancelled. A sending campaign
// is cancellable; the dispatcher observes the status between recipients.
func (c *Campaign) CanBeCancelled() bool {
	return c.Status == CampaignStatusDraft || c.Status == CampaignStatusSending
}

// IsTerminal reports whether no further transition may leave status.
func IsTerminal(status string) bool {
	return status == CampaignStatusCompleted || status == CampaignStatusFailed ||
		status == CampaignStatusCancelled
}
