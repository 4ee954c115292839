package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// EventService handles event business logic
type EventService interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, page, pageSize int) (*EventListResult, error)
}

type eventService struct {
	eventRepo repository.EventRepository
	logger    *slog.Logger
}

// NewEventService creates a new event service
func NewEventService(eventRepo repository.EventRepository, logger *slog.Logger) EventService {
	return &eventService{eventRepo: eventRepo, logger: logger}
}

// Create stores a new event
func (s *eventService) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.Error("failed to create event",
			slog.String("error", err.Error()),
			slog.String("name", event.Name),
		)
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Info("event created",
		slog.String("event_id", event.ID.String()),
		slog.String("name", event.Name),
	)

	return event, nil
}

// GetByID retrieves an event
func (s *eventService) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

// List retrieves events with pagination
func (s *eventService) List(ctx context.Context, page, pageSize int) (*EventListResult, error) {
	events, totalCount, err := s.eventRepo.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	models.ValidateAndSetDefaults(&page, &pageSize)
	pagination := models.NewPaginationResult(page, pageSize, totalCount)

	return &EventListResult{
		Data:       events,
		Pagination: pagination,
	}, nil
}
