package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

func setupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCampaignRepository_TransitionStatus(t *testing.T) {
	query := regexp.QuoteMeta(`UPDATE campaigns SET status = $1 WHERE id = $2 AND status = $3`)
	id := uuid.New()

	t.Run("wins the transition", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCampaignRepository(db)

		mock.ExpectExec(query).
			WithArgs(models.CampaignStatusSending, id, models.CampaignStatusDraft).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.TransitionStatus(context.Background(), id, models.CampaignStatusDraft, models.CampaignStatusSending)
		if err != nil {
			t.Fatalf("TransitionStatus() error = %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Error(err)
		}
	})

	t.Run("loses the transition", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewCampaignRepository(db)

		mock.ExpectExec(query).
			WithArgs(models.CampaignStatusSending, id, models.CampaignStatusDraft).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.TransitionStatus(context.Background(), id, models.CampaignStatusDraft, models.CampaignStatusSending)
		if !models.IsConflict(err) {
			t.Errorf("expected conflict, got %v", err)
		}
	})
}

func TestCampaignRepository_Create(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCampaignRepository(db)

	campaign := &models.Campaign{
		EventID:         uuid.New(),
		Name:            "launch",
		Channel:         models.ChannelEmail,
		TemplateID:      uuid.New(),
		TemplateName:    "welcome",
		TemplateSubject: "Hi {{name}}",
		TargetType:      models.TargetAll,
		Status:          models.CampaignStatusDraft,
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO campaigns`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	if err := repo.Create(context.Background(), campaign); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if campaign.ID == uuid.Nil {
		t.Error("campaign id not assigned")
	}
	if campaign.CreatedAt.IsZero() {
		t.Error("created_at not populated")
	}
}

func TestCampaignRepository_GetByID_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCampaignRepository(db)

	id := uuid.New()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM campaigns WHERE id = $1`)).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	if !models.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestCampaignRepository_UpdateCounters(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCampaignRepository(db)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`SET sent_count = $1, failed_count = $2, pending_count = $3`)).
		WithArgs(5, 2, 3, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateCounters(context.Background(), id, 5, 2, 3); err != nil {
		t.Fatalf("UpdateCounters() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCampaignRepository_Finalize(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewCampaignRepository(db)

	id := uuid.New()
	completedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET status = $1, completed_at = $2 WHERE id = $3`)).
		WithArgs(models.CampaignStatusCompleted, completedAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Finalize(context.Background(), id, models.CampaignStatusCompleted, completedAt); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
}
