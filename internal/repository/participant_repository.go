package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// ParticipantRepository defines the interface for participant data access
type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	// ListByEvent returns every participant of an event in registration
	// order (created_at, then id for ties).
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Participant, error)
	// ListByEventAndStatus returns the event's participants whose status
	// equals the given value, in registration order.
	ListByEventAndStatus(ctx context.Context, eventID uuid.UUID, status string) ([]*models.Participant, error)
	// ListByIDs returns the participants of the event whose id is in ids.
	// Ids that do not exist, or belong to another event, are skipped.
	ListByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]*models.Participant, error)
	List(ctx context.Context, filter models.ParticipantFilter) ([]*models.Participant, int64, error)
	Update(ctx context.Context, participant *models.Participant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// participantRepository implements ParticipantRepository using PostgreSQL
type participantRepository struct {
	db *sql.DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *sql.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

const participantColumns = `id, event_id, name, email, phone, company, position, custom_data, qr_code_url, status, created_at`

func scanParticipant(row interface{ Scan(...interface{}) error }) (*models.Participant, error) {
	p := &models.Participant{}
	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Company,
		&p.Position,
		&p.CustomData,
		&p.QRCodeURL,
		&p.Status,
		&p.CreatedAt,
	)
	return p, err
}

// Create inserts a new participant
func (r *participantRepository) Create(ctx context.Context, participant *models.Participant) error {
	query := `
		INSERT INTO participants (id, event_id, name, email, phone, company, position, custom_data, qr_code_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`

	if participant.ID == uuid.Nil {
		participant.ID = uuid.New()
	}
	if participant.Status == "" {
		participant.Status = "registered"
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		participant.ID,
		participant.EventID,
		participant.Name,
		participant.Email,
		participant.Phone,
		participant.Company,
		participant.Position,
		participant.CustomData,
		participant.QRCodeURL,
		participant.Status,
	).Scan(&participant.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}

	return nil
}

// GetByID retrieves a participant by ID
func (r *participantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`

	participant, err := scanParticipant(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("participant %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return participant, nil
}

func (r *participantRepository) queryParticipants(ctx context.Context, query string, args ...interface{}) ([]*models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	participants := []*models.Participant{}
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, participant)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// ListByEvent returns all participants of an event in registration order
func (r *participantRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE event_id = $1 ORDER BY created_at, id`
	return r.queryParticipants(ctx, query, eventID)
}

// ListByEventAndStatus returns the event's participants matching a status
func (r *participantRepository) ListByEventAndStatus(ctx context.Context, eventID uuid.UUID, status string) ([]*models.Participant, error) {
	query := `SELECT ` + participantColumns + ` FROM participants WHERE event_id = $1 AND status = $2 ORDER BY created_at, id`
	return r.queryParticipants(ctx, query, eventID, status)
}

// ListByIDs returns the event's participants whose id is in ids
func (r *participantRepository) ListByIDs(ctx context.Context, eventID uuid.UUID, ids []uuid.UUID) ([]*models.Participant, error) {
	if len(ids) == 0 {
		return []*models.Participant{}, nil
	}

	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}

	query := `SELECT ` + participantColumns + ` FROM participants WHERE event_id = $1 AND id = ANY($2) ORDER BY created_at, id`
	return r.queryParticipants(ctx, query, eventID, pq.Array(strIDs))
}

// List retrieves participants with pagination and filtering
func (r *participantRepository) List(ctx context.Context, filter models.ParticipantFilter) ([]*models.Participant, int64, error) {
	models.ValidateAndSetDefaults(&filter.Page, &filter.PageSize)

	query := `SELECT ` + participantColumns + ` FROM participants WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM participants WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.EventID != uuid.Nil {
		query += fmt.Sprintf(" AND event_id = $%d", argPos)
		countQuery += fmt.Sprintf(" AND event_id = $%d", argPos)
		args = append(args, filter.EventID)
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
		return nil, 0, fmt.Errorf("failed to count participants: %w", err)
	}

	offset := models.CalculateOffset(filter.Page, filter.PageSize)
	query += fmt.Sprintf(" ORDER BY created_at, id LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.PageSize, offset)

	participants, err := r.queryParticipants(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return participants, totalCount, nil
}

// Update updates an existing participant
func (r *participantRepository) Update(ctx context.Context, participant *models.Participant) error {
	query := `
		UPDATE participants
		SET name = $1, email = $2, phone = $3, company = $4, position = $5,
			custom_data = $6, qr_code_url = $7, status = $8
		WHERE id = $9`

	result, err := r.db.ExecContext(
		ctx,
		query,
		participant.Name,
		participant.Email,
		participant.Phone,
		participant.Company,
		participant.Position,
		participant.CustomData,
		participant.QRCodeURL,
		participant.Status,
		participant.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("participant %s not found", participant.ID))
	}

	return nil
}

// Delete removes a participant
func (r *participantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM participants WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return models.ErrNotFoundWithMsg(fmt.Sprintf("participant %s not found", id))
	}

	return nil
}
