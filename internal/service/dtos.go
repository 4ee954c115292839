package service

import (
	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// CreateCampaignRequest represents a request to create a campaign
type CreateCampaignRequest struct {
	EventID    uuid.UUID       `json:"event_id"`
	Name       string          `json:"name"`
	Channel    string          `json:"channel"`
	TemplateID uuid.UUID       `json:"template_id"`
	TargetType string          `json:"target_type"`
	Filter     models.JSONMap  `json:"target_filter,omitempty"`
	TargetIDs  models.UUIDList `json:"target_participant_ids,omitempty"`
	Notes      string          `json:"notes,omitempty"`
}

// Validate performs validation on the create campaign request
func (r *CreateCampaignRequest) Validate() error {
	if r.EventID == uuid.Nil {
		return models.ErrInvalidInput("event_id is required")
	}
	if r.Name == "" {
		return models.ErrInvalidInput("name is required")
	}
	if !models.IsValidChannel(r.Channel) {
		return models.ErrInvalidInput("invalid channel (must be 'email' or 'whatsapp')")
	}
	if r.TemplateID == uuid.Nil {
		return models.ErrInvalidInput("template_id is required")
	}
	if !models.IsValidTargetType(r.TargetType) {
		return models.ErrInvalidInput("invalid target_type (must be 'all', 'filtered' or 'manual')")
	}
	if r.TargetType == models.TargetManual && len(r.TargetIDs) == 0 {
		return models.ErrInvalidInput("target_participant_ids is required for manual targeting")
	}
	return nil
}

// SendCampaignResult represents the result of requesting a campaign send
type SendCampaignResult struct {
	CampaignID uuid.UUID `json:"campaign_id"`
	Queued     bool      `json:"queued"`
	Status     string    `json:"status"`
}

// PreviewRequest represents a request to preview a personalized message
type PreviewRequest struct {
	ParticipantID uuid.UUID `json:"participant_id"`
}

// Validate performs validation on the preview request
func (r *PreviewRequest) Validate() error {
	if r.ParticipantID == uuid.Nil {
		return models.ErrInvalidInput("participant_id is required")
	}
	return nil
}

// PreviewResult represents a rendered personalized preview
type PreviewResult struct {
	Subject      string              `json:"subject"`
	Body         string              `json:"body"`
	Placeholders []string            `json:"placeholders"`
	Participant  *ParticipantPreview `json:"participant"`
}

// ParticipantPreview contains minimal participant info for preview
type ParticipantPreview struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// CampaignListResult represents paginated campaign list results
type CampaignListResult struct {
	Data       []*models.Campaign      `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// DeliveryListResult represents paginated delivery list results
type DeliveryListResult struct {
	Data       []*models.Delivery      `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// ParticipantListResult represents paginated participant list results
type ParticipantListResult struct {
	Data       []*models.Participant   `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}

// EventListResult represents paginated event list results
type EventListResult struct {
	Data       []*models.Event         `json:"data"`
	Pagination models.PaginationResult `json:"pagination"`
}
