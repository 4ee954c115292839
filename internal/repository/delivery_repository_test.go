package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

func TestDeliveryRepository_Create_DefaultsPending(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDeliveryRepository(db)

	delivery := &models.Delivery{
		CampaignID:    uuid.New(),
		ParticipantID: uuid.New(),
		TemplateID:    uuid.New(),
		TemplateName:  "welcome",
		Subject:       "Hi Alice",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO deliveries`)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now().UTC()))

	if err := repo.Create(context.Background(), delivery); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if delivery.Status != models.DeliveryStatusPending {
		t.Errorf("status = %s, want pending", delivery.Status)
	}
	if delivery.ID == uuid.Nil {
		t.Error("delivery id not assigned")
	}
}

func TestDeliveryRepository_UpdateStatus(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDeliveryRepository(db)

	id := uuid.New()
	sentAt := time.Now().UTC()
	errMsg := "provider rejected"

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE deliveries SET status = $1, error = $2, sent_at = $3 WHERE id = $4`)).
		WithArgs(models.DeliveryStatusFailed, &errMsg, &sentAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateStatus(context.Background(), id, models.DeliveryStatusFailed, &errMsg, &sentAt); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
}

func TestDeliveryRepository_UpdateStatus_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDeliveryRepository(db)

	id := uuid.New()
	sentAt := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE deliveries`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, models.DeliveryStatusSent, nil, &sentAt)
	if !models.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeliveryRepository_MarkOpened_FirstOpenOnly(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDeliveryRepository(db)

	id := uuid.New()
	at := time.Now().UTC()

	// The guard keeps the original timestamp on repeat opens.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE deliveries SET opened_at = $1 WHERE id = $2 AND opened_at IS NULL`)).
		WithArgs(at, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkOpened(context.Background(), id, at); err != nil {
		t.Fatalf("MarkOpened() error = %v", err)
	}

	// A second open matches zero rows and is still not an error.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE deliveries SET opened_at = $1 WHERE id = $2 AND opened_at IS NULL`)).
		WithArgs(at, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.MarkOpened(context.Background(), id, at); err != nil {
		t.Fatalf("repeat MarkOpened() error = %v", err)
	}
}

func TestDeliveryRepository_ListLatestByCampaign(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewDeliveryRepository(db)

	campaignID := uuid.New()
	participantID := uuid.New()
	deliveryID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM (`)).
		WithArgs(campaignID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	columns := []string{
		"id", "campaign_id", "participant_id", "template_id", "template_name",
		"subject", "status", "error", "sent_at", "opened_at", "clicked_at", "created_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT ON (participant_id)`)).
		WithArgs(campaignID, 20, 0).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			deliveryID, campaignID, participantID, uuid.New(), "welcome",
			"Hi Alice", models.DeliveryStatusSent, nil, &now, nil, nil, now,
		))

	deliveries, total, err := repo.ListLatestByCampaign(context.Background(), campaignID, models.DeliveryFilter{})
	if err != nil {
		t.Fatalf("ListLatestByCampaign() error = %v", err)
	}
	if total != 1 || len(deliveries) != 1 {
		t.Fatalf("got %d/%d deliveries, want 1/1", len(deliveries), total)
	}
	if deliveries[0].ID != deliveryID {
		t.Errorf("delivery id = %s, want %s", deliveries[0].ID, deliveryID)
	}
}
