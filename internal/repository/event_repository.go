package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	List(ctx context.Context, page, pageSize int) ([]*models.Event, int64, error)
}

// eventRepository implements EventRepository using PostgreSQL
type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create inserts a new event
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, name, start_date, location)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		event.ID,
		event.Name,
		event.StartDate,
		event.Location,
	).Scan(&event.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by ID
func (r *eventRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	query := `SELECT id, name, start_date, location, created_at FROM events WHERE id = $1`

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.StartDate,
		&event.Location,
		&event.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrNotFoundWithMsg(fmt.Sprintf("event %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// List retrieves events with pagination
func (r *eventRepository) List(ctx context.Context, page, pageSize int) ([]*models.Event, int64, error) {
	models.ValidateAndSetDefaults(&page, &pageSize)

	var totalCount int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query := `
		SELECT id, name, start_date, location, created_at
		FROM events
		ORDER BY start_date DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, pageSize, models.CalculateOffset(page, pageSize))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []*models.Event{}
	for rows.Next() {
		event := &models.Event{}
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.StartDate,
			&event.Location,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating events: %w", err)
	}

	return events, totalCount, nil
}
