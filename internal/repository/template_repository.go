package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// TemplateRepository defines the interface for email template data access
type TemplateRepository interface {
	Create(ctx context.Context, template *models.EmailTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EmailTemplate, error)
	Update(ctx context.Context, template *models.EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// templateRepository implements TemplateRepository using PostgreSQL
type templateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *sql.DB) TemplateRepository {
	return &templateRepository{db: db}
}

const templateColumns = `id, event_id, name, subject, body, attachments, include_qr_code, created_at, updated_at`

func scanTemplate(row interface{ Scan(...interface{}) error }) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	err := row.Scan(
		&t.ID,
		&t.EventID,
		&t.Name,
		&t.Subject,
		&t.Body,
		&t.Attachments,
		&t.IncludeQRCode,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

// Create inserts a new template
func (r *templateRepository) Create(ctx context.Context, template *models.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (id, event_id, name, subject, body, attachments, include_qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	if template.ID == uuid.Nil {
		template.ID = uuid.New()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		template.ID,
		template.EventID,
		template.Name,
		template.Subject,
		template.Body,
		template.Attachments,
		template.IncludeQRCode,
	).Scan(&template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create template: %w", err)
	}

	return nil
}

// GetByID retrieves a template by ID
func (r *templateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE id = $1`

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("template %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return template, nil
}

// ListByEvent retrieves all templates of an event
func (r *templateRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.EmailTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM email_templates WHERE event_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	templates := []*models.EmailTemplate{}
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, template)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// Update updates an existing template
func (r *templateRepository) Update(ctx context.Context, template *models.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET name = $1, subject = $2, body = $3, attachments = $4, include_qr_code = $5, updated_at = NOW()
		WHERE id = $6`

	result, err := r.db.ExecContext(
		ctx,
		query,
		template.Name,
		template.Subject,
		template.Body,
		template.Attachments,
		template.IncludeQRCode,
		template.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("template %s not found", template.ID))
	}

	return nil
}

// Delete removes a template
func (r *templateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM email_templates WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("template %s not found", id))
	}

	return nil
}
