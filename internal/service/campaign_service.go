package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/dispatch"
	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/queue"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// CampaignService handles campaign business logic
type CampaignService interface {
	Create(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, filter models.CampaignFilter) (*CampaignListResult, error)
	// Send queues the campaign for dispatch by the worker. The campaign
	// must be a draft; the durable job survives API restarts.
	Send(ctx context.Context, id uuid.UUID) (*SendCampaignResult, error)
	// Cancel marks a draft or sending campaign cancelled. The dispatcher
	// observes the status between recipients and stops.
	Cancel(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	Preview(ctx context.Context, id uuid.UUID, req *PreviewRequest) (*PreviewResult, error)
	Deliveries(ctx context.Context, id uuid.UUID, filter models.DeliveryFilter) (*DeliveryListResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type campaignService struct {
	campaignRepo    repository.CampaignRepository
	participantRepo repository.ParticipantRepository
	templateRepo    repository.TemplateRepository
	eventRepo       repository.EventRepository
	deliveryRepo    repository.DeliveryRepository
	queueClient     queue.Client
	logger          *slog.Logger
}

// NewCampaignService creates a new campaign service
func NewCampaignService(
	campaignRepo repository.CampaignRepository,
	participantRepo repository.ParticipantRepository,
	templateRepo repository.TemplateRepository,
	eventRepo repository.EventRepository,
	deliveryRepo repository.DeliveryRepository,
	queueClient queue.Client,
	logger *slog.Logger,
) CampaignService {
	return &campaignService{
		campaignRepo:    campaignRepo,
		participantRepo: participantRepo,
		templateRepo:    templateRepo,
		eventRepo:       eventRepo,
		deliveryRepo:    deliveryRepo,
		queueClient:     queueClient,
		logger:          logger,
	}
}

// Create creates a new draft campaign, snapshotting the template's name and
// subject so lists stay stable if the template is edited later.
func (s *campaignService) Create(ctx context.Context, req *CreateCampaignRequest) (*models.Campaign, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.GetByID(ctx, req.EventID); err != nil {
		return nil, err
	}

	template, err := s.templateRepo.GetByID(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	campaign := &models.Campaign{
		EventID:         req.EventID,
		Name:            req.Name,
		Channel:         req.Channel,
		TemplateID:      template.ID,
		TemplateName:    template.Name,
		TemplateSubject: template.Subject,
		TargetType:      req.TargetType,
		TargetFilter:    req.Filter,
		TargetIDs:       req.TargetIDs,
		Status:          models.CampaignStatusDraft,
		Notes:           req.Notes,
	}

	if err := s.campaignRepo.Create(ctx, campaign); err != nil {
		s.logger.Error("failed to create campaign",
			slog.String("error", err.Error()),
			slog.String("name", req.Name),
		)
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Info("campaign created",
		slog.String("campaign_id", campaign.ID.String()),
		slog.String("name", campaign.Name),
		slog.String("target_type", campaign.TargetType),
	)

	return campaign, nil
}

// GetByID retrieves a campaign with its live counters
func (s *campaignService) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return s.campaignRepo.GetByID(ctx, id)
}

// List retrieves campaigns with pagination
func (s *campaignService) List(ctx context.Context, filter models.CampaignFilter) (*CampaignListResult, error) {
	campaigns, totalCount, err := s.campaignRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return &CampaignListResult{
		Data:       campaigns,
		Pagination: pagination,
	}, nil
}

// Send queues a campaign for dispatch
func (s *campaignService) Send(ctx context.Context, id uuid.UUID) (*SendCampaignResult, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if campaign.Channel != models.ChannelEmail {
		return nil, models.ErrInvalidInput(
			fmt.Sprintf("channel '%s' is not dispatchable yet", campaign.Channel),
		)
	}

	if !campaign.CanBeSent() {
		return nil, models.ErrConflictWithMsg(
			fmt.Sprintf("campaign with status '%s' cannot be sent", campaign.Status),
		)
	}

	// The worker owns the draft -> sending transition, so a job that is
	// enqueued twice dispatches at most once.
	job := &models.CampaignJob{CampaignID: campaign.ID}
	if err := s.queueClient.Publish(ctx, job); err != nil {
		s.logger.Error("failed to queue campaign send",
			slog.String("campaign_id", campaign.ID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to queue campaign send: %w", err)
	}

	s.logger.Info("campaign send queued",
		slog.String("campaign_id", campaign.ID.String()),
	)

	return &SendCampaignResult{
		CampaignID: campaign.ID,
		Queued:     true,
		Status:     campaign.Status,
	}, nil
}

// Cancel marks a campaign cancelled
func (s *campaignService) Cancel(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !campaign.CanBeCancelled() {
		return nil, models.ErrConflictWithMsg(
			fmt.Sprintf("campaign with status '%s' cannot be cancelled", campaign.Status),
		)
	}

	if err := s.campaignRepo.UpdateStatus(ctx, id, models.CampaignStatusCancelled); err != nil {
		return nil, err
	}

	s.logger.Info("campaign cancelled",
		slog.String("campaign_id", id.String()),
		slog.String("previous_status", campaign.Status),
	)

	return s.campaignRepo.GetByID(ctx, id)
}

// Preview renders the campaign's template for one participant without
// sending anything.
func (s *campaignService) Preview(ctx context.Context, id uuid.UUID, req *PreviewRequest) (*PreviewResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	template, err := s.templateRepo.GetByID(ctx, campaign.TemplateID)
	if err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, campaign.EventID)
	if err != nil {
		return nil, err
	}

	participant, err := s.participantRepo.GetByID(ctx, req.ParticipantID)
	if err != nil {
		return nil, err
	}
	if participant.EventID != campaign.EventID {
		return nil, models.ErrInvalidInput("participant does not belong to the campaign's event")
	}

	return &PreviewResult{
		Subject:      dispatch.Render(template.Subject, participant, event),
		Body:         dispatch.Render(template.Body, participant, event),
		Placeholders: dispatch.Placeholders(template.Subject + template.Body),
		Participant: &ParticipantPreview{
			ID:    participant.ID,
			Name:  participant.Name,
			Email: participant.Email,
		},
	}, nil
}

// Deliveries lists the latest delivery per participant for a campaign
func (s *campaignService) Deliveries(ctx context.Context, id uuid.UUID, filter models.DeliveryFilter) (*DeliveryListResult, error) {
	if _, err := s.campaignRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	deliveries, totalCount, err := s.deliveryRepo.ListLatestByCampaign(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return &DeliveryListResult{
		Data:       deliveries,
		Pagination: pagination,
	}, nil
}

// Delete removes a campaign and its delivery history
func (s *campaignService) Delete(ctx context.Context, id uuid.UUID) error {
	campaign, err := s.campaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if campaign.Status == models.CampaignStatusSending {
		return models.ErrConflictWithMsg("a sending campaign cannot be deleted; cancel it first")
	}

	return s.campaignRepo.Delete(ctx, id)
}
