package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// CampaignRepository defines the interface for campaign data access
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error)
	// TransitionStatus moves a campaign from one status to another and only
	// succeeds when the campaign is currently in the expected status. It is
	// the optimistic guard against double sends.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	MarkSending(ctx context.Context, id uuid.UUID, totalRecipients int, sentAt time.Time) error
	UpdateCounters(ctx context.Context, id uuid.UUID, sent, failed, pending int) error
	Finalize(ctx context.Context, id uuid.UUID, status string, completedAt time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// campaignRepository implements CampaignRepository using PostgreSQL
type campaignRepository struct {
	db *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, event_id, name, channel, template_id, template_name, template_subject,
	target_type, target_filter, target_participant_ids, status,
	total_recipients, sent_count, failed_count, pending_count, notes,
	created_at, sent_at, completed_at`

// Create inserts a new campaign
func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, event_id, name, channel, template_id, template_name, template_subject,
			target_type, target_filter, target_participant_ids, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at`

	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		campaign.ID,
		campaign.EventID,
		campaign.Name,
		campaign.Channel,
		campaign.TemplateID,
		campaign.TemplateName,
		campaign.TemplateSubject,
		campaign.TargetType,
		campaign.TargetFilter,
		campaign.TargetIDs,
		campaign.Status,
		campaign.Notes,
	).Scan(&campaign.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

func scanCampaign(row interface{ Scan(...interface{}) error }) (*models.Campaign, error) {
	campaign := &models.Campaign{}
	err := row.Scan(
		&campaign.ID,
		&campaign.EventID,
		&campaign.Name,
		&campaign.Channel,
		&campaign.TemplateID,
		&campaign.TemplateName,
		&campaign.TemplateSubject,
		&campaign.TargetType,
		&campaign.TargetFilter,
		&campaign.TargetIDs,
		&campaign.Status,
		&campaign.TotalRecipients,
		&campaign.SentCount,
		&campaign.FailedCount,
		&campaign.PendingCount,
		&campaign.Notes,
		&campaign.CreatedAt,
		&campaign.SentAt,
		&campaign.CompletedAt,
	)
	return campaign, err
}

// GetByID retrieves a campaign by ID
func (r *campaignRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("campaign %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return campaign, nil
}

// List retrieves campaigns with pagination and filtering
func (r *campaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]*models.Campaign, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.EventID != uuid.Nil {
		query += fmt.Sprintf(" AND event_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND event_id = $%d", argPos)
		args = append(args, filter.EventID)
		argPos++
	}

	if filter.Channel != "" {
		query += fmt.Sprintf(" AND channel = $%d", argPos)
		countQuery += fmt.Sprintf(" AND channel = $%d", argPos)
		args = append(args, filter.Channel)
		argPos++
	}

	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		countQuery += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}

	var totalCount int64
	err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count campaigns: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	campaigns := []*models.Campaign{}
	for rows.Next() {
		campaign, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, campaign)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating campaigns: %w", err)
	}

	return campaigns, totalCount, nil
}

// TransitionStatus performs a compare-and-set status change
func (r *campaignRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	query := `UPDATE campaigns SET status = $1 WHERE id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to transition campaign status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrConflictWithMsg(
			fmt.Sprintf("campaign %s is not in status '%s'", id, from),
		)
	}

	return nil
}

// UpdateStatus updates only the status of a campaign
func (r *campaignRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE campaigns SET status = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update campaign status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("campaign %s not found", id))
	}

	return nil
}

// MarkSending records the resolved recipient total at the start of a send
func (r *campaignRepository) MarkSending(ctx context.Context, id uuid.UUID, totalRecipients int, sentAt time.Time) error {
	query := `
		UPDATE campaigns
		SET total_recipients = $1, pending_count = $1, sent_count = 0, failed_count = 0, sent_at = $2
		WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, totalRecipients, sentAt, id); err != nil {
		return fmt.Errorf("failed to mark campaign sending: %w", err)
	}
	return nil
}

// UpdateCounters persists the campaign's aggregate delivery counters
func (r *campaignRepository) UpdateCounters(ctx context.Context, id uuid.UUID, sent, failed, pending int) error {
	query := `
		UPDATE campaigns
		SET sent_count = $1, failed_count = $2, pending_count = $3
		WHERE id = $4`

	if _, err := r.db.ExecContext(ctx, query, sent, failed, pending, id); err != nil {
		return fmt.Errorf("failed to update campaign counters: %w", err)
	}
	return nil
}

// Finalize sets the terminal status and completion time of a campaign
func (r *campaignRepository) Finalize(ctx context.Context, id uuid.UUID, status string, completedAt time.Time) error {
	query := `UPDATE campaigns SET status = $1, completed_at = $2 WHERE id = $3`

	if _, err := r.db.ExecContext(ctx, query, status, completedAt, id); err != nil {
		return fmt.Errorf("failed to finalize campaign: %w", err)
	}
	return nil
}

// Delete removes a campaign; deliveries cascade
func (r *campaignRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM campaigns WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("campaign %s not found", id))
	}

	return nil
}
