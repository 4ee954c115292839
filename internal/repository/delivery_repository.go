package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// DeliveryRepository defines the interface for delivery record data access
type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	// UpdateStatus records the terminal outcome of a send attempt.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, sendErr *string, sentAt *time.Time) error
	// ListLatestByCampaign returns the most recent delivery per participant
	// for a campaign, so resends supersede earlier rows in the read path
	// while the full history stays in the table.
	ListLatestByCampaign(ctx context.Context, campaignID uuid.UUID, filter models.DeliveryFilter) ([]*models.Delivery, int64, error)
	MarkOpened(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkClicked(ctx context.Context, id uuid.UUID, at time.Time) error
}

// deliveryRepository implements DeliveryRepository using PostgreSQL
type deliveryRepository struct {
	db *sql.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sql.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

const deliveryColumns = `id, campaign_id, participant_id, template_id, template_name, subject,
	status, error, sent_at, opened_at, clicked_at, created_at`

func scanDelivery(row interface{ Scan(...interface{}) error }) (*models.Delivery, error) {
	d := &models.Delivery{}
	err := row.Scan(
		&d.ID,
		&d.CampaignID,
		&d.ParticipantID,
		&d.TemplateID,
		&d.TemplateName,
		&d.Subject,
		&d.Status,
		&d.Error,
		&d.SentAt,
		&d.OpenedAt,
		&d.ClickedAt,
		&d.CreatedAt,
	)
	return d, err
}

// Create inserts a new delivery record in pending status
func (r *deliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	query := `
		INSERT INTO deliveries (id, campaign_id, participant_id, template_id, template_name, subject, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if delivery.ID == uuid.Nil {
		delivery.ID = uuid.New()
	}
	if delivery.Status == "" {
		delivery.Status = models.DeliveryStatusPending
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		delivery.ID,
		delivery.CampaignID,
		delivery.ParticipantID,
		delivery.TemplateID,
		delivery.TemplateName,
		delivery.Subject,
		delivery.Status,
	).Scan(&delivery.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create delivery: %w", err)
	}

	return nil
}

// GetByID retrieves a delivery by ID
func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`

	delivery, err := scanDelivery(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("delivery %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	return delivery, nil
}

// UpdateStatus records the outcome of a send attempt
func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, sendErr *string, sentAt *time.Time) error {
	query := `UPDATE deliveries SET status = $1, error = $2, sent_at = $3 WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, status, sendErr, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to update delivery status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("delivery %s not found", id))
	}

	return nil
}

// ListLatestByCampaign returns the latest delivery per participant
func (r *deliveryRepository) ListLatestByCampaign(ctx context.Context, campaignID uuid.UUID, filter models.DeliveryFilter) ([]*models.Delivery, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	base := `
		SELECT DISTINCT ON (participant_id) ` + deliveryColumns + `
		FROM deliveries
		WHERE campaign_id = $1
		ORDER BY participant_id, created_at DESC`

	query := `SELECT ` + deliveryColumns + ` FROM (` + base + `) latest WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM (` + base + `) latest WHERE 1=1`
	args := []interface{}{campaignID}
	argPos := 2

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		countQuery += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	var totalCount int64
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count deliveries: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []*models.Delivery{}
	for rows.Next() {
		delivery, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan delivery: %w", err)
		}
		deliveries = append(deliveries, delivery)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating deliveries: %w", err)
	}

	return deliveries, totalCount, nil
}

// MarkOpened records the first open of a delivery; later opens keep the
// original timestamp.
func (r *deliveryRepository) MarkOpened(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE deliveries SET opened_at = $1 WHERE id = $2 AND opened_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark delivery opened: %w", err)
	}
	return nil
}

// MarkClicked records the first click of a delivery
func (r *deliveryRepository) MarkClicked(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE deliveries SET clicked_at = $1 WHERE id = $2 AND clicked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to mark delivery clicked: %w", err)
	}
	return nil
}
