package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// TemplateService handles email template business logic
type TemplateService interface {
	Create(ctx context.Context, template *models.EmailTemplate) (*models.EmailTemplate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EmailTemplate, error)
	Update(ctx context.Context, template *models.EmailTemplate) (*models.EmailTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type templateService struct {
	templateRepo repository.TemplateRepository
	eventRepo    repository.EventRepository
	logger       *slog.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(
	templateRepo repository.TemplateRepository,
	eventRepo repository.EventRepository,
	logger *slog.Logger,
) TemplateService {
	return &templateService{
		templateRepo: templateRepo,
		eventRepo:    eventRepo,
		logger:       logger,
	}
}

// Create stores a new template
func (s *templateService) Create(ctx context.Context, template *models.EmailTemplate) (*models.EmailTemplate, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.eventRepo.GetByID(ctx, template.EventID); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Create(ctx, template); err != nil {
		s.logger.Error("failed to create template",
			slog.String("error", err.Error()),
			slog.String("name", template.Name),
		)
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	s.logger.Info("template created",
		slog.String("template_id", template.ID.String()),
		slog.String("name", template.Name),
	)

	return template, nil
}

// GetByID retrieves a template
func (s *templateService) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error) {
	return s.templateRepo.GetByID(ctx, id)
}

// ListByEvent retrieves all templates of an event
func (s *templateService) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EmailTemplate, error) {
	return s.templateRepo.ListByEvent(ctx, eventID)
}

// Update updates an existing template. Campaigns created earlier keep their
// name/subject snapshots.
func (s *templateService) Update(ctx context.Context, template *models.EmailTemplate) (*models.EmailTemplate, error) {
	if err := template.Validate(); err != nil {
		return nil, err
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		return nil, err
	}

	return s.templateRepo.GetByID(ctx, template.ID)
}

// Delete removes a template
func (s *templateService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.templateRepo.Delete(ctx, id)
}
