package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// ParticipantService handles participant business logic
type ParticipantService interface {
	Create(ctx context.Context, participant *models.Participant) (*models.Participant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	List(ctx context.Context, filter models.ParticipantFilter) (*ParticipantListResult, error)
	Update(ctx context.Context, participant *models.Participant) (*models.Participant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type participantService struct {
	participantRepo repository.ParticipantRepository
	eventRepo       repository.EventRepository
	logger          *slog.Logger
}

// NewParticipantService creates a new participant service
func NewParticipantService(
	participantRepo repository.ParticipantRepository,
	eventRepo repository.EventRepository,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		logger:          logger,
	}
}

// Create registers a new participant for an event
func (s *participantService) Create(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	if err := participant.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.GetByID(ctx, participant.EventID); err != nil {
		return nil, err
	}

	if err := s.participantRepo.Create(ctx, participant); err != nil {
		s.logger.Error("failed to create participant",
			slog.String("error", err.Error()),
			slog.String("email", participant.Email),
		)
		return nil, fmt.Errorf("failed to create participant: %w", err)
	}

	s.logger.Info("participant created",
		slog.String("participant_id", participant.ID.String()),
		slog.String("event_id", participant.EventID.String()),
	)

	return participant, nil
}

// GetByID retrieves a participant
func (s *participantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	return s.participantRepo.GetByID(ctx, id)
}

// List retrieves participants with pagination
func (s *participantService) List(ctx context.Context, filter models.ParticipantFilter) (*ParticipantListResult, error) {
	participants, totalCount, err := s.participantRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}

	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)
	pagination := models.NewPaginationResult(filter.Page, filter.PageSize, totalCount)

	return &ParticipantListResult{
		Data:       participants,
		Pagination: pagination,
	}, nil
}

// Update updates an existing participant
func (s *participantService) Update(ctx context.Context, participant *models.Participant) (*models.Participant, error) {
	if err := participant.Validate(); err != nil {
		return nil, err
	}

	if err := s.participantRepo.Update(ctx, participant); err != nil {
		return nil, err
	}

	return s.participantRepo.GetByID(ctx, participant.ID)
}

// Delete removes a participant
func (s *participantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.participantRepo.Delete(ctx, id)
}
