package tracking

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
)

// mockDeliveryRepository records tracking marks
type mockDeliveryRepository struct {
	opened  map[uuid.UUID]time.Time
	clicked map[uuid.UUID]time.Time
	known   map[uuid.UUID]bool
}

func newMockDeliveryRepository(known ...uuid.UUID) *mockDeliveryRepository {
	m := &mockDeliveryRepository{
		opened:  make(map[uuid.UUID]time.Time),
		clicked: make(map[uuid.UUID]time.Time),
		known:   make(map[uuid.UUID]bool),
	}
	for _, id := range known {
		m.known[id] = true
	}
	return m
}

func (m *mockDeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	return nil
}

func (m *mockDeliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	if !m.known[id] {
		return nil, models.ErrNotFoundWithMsg("delivery not found")
	}
	return &models.Delivery{ID: id}, nil
}

func (m *mockDeliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, sendErr *string, sentAt *time.Time) error {
	return nil
}

func (m *mockDeliveryRepository) ListLatestByCampaign(ctx context.Context, campaignID uuid.UUID, filter models.DeliveryFilter) ([]*models.Delivery, int64, error) {
	return nil, 0, nil
}

func (m *mockDeliveryRepository) MarkOpened(ctx context.Context, id uuid.UUID, at time.Time) error {
	if !m.known[id] {
		return models.ErrNotFoundWithMsg("delivery not found")
	}
	if _, ok := m.opened[id]; !ok {
		m.opened[id] = at
	}
	return nil
}

func (m *mockDeliveryRepository) MarkClicked(ctx context.Context, id uuid.UUID, at time.Time) error {
	if !m.known[id] {
		return models.ErrNotFoundWithMsg("delivery not found")
	}
	if _, ok := m.clicked[id]; !ok {
		m.clicked[id] = at
	}
	return nil
}

func newTestHandler(known ...uuid.UUID) (*Handler, *mockDeliveryRepository) {
	repo := newMockDeliveryRepository(known...)
	h := NewHandler(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return h, repo
}

func TestHandleOpen(t *testing.T) {
	deliveryID := uuid.New()
	h, repo := newTestHandler(deliveryID)
	router := h.Routes()

	t.Run("records open and serves pixel", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t/open/"+deliveryID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "image/gif" {
			t.Errorf("content type = %q, want image/gif", ct)
		}
		if !bytes.Equal(rec.Body.Bytes(), pixelGIF) {
			t.Error("response body is not the beacon pixel")
		}
		if _, ok := repo.opened[deliveryID]; !ok {
			t.Error("open was not recorded")
		}
	})

	t.Run("garbage id still serves pixel", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t/open/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if !bytes.Equal(rec.Body.Bytes(), pixelGIF) {
			t.Error("response body is not the beacon pixel")
		}
	})

	t.Run("unknown id still serves pixel", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/t/open/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestHandleEvent(t *testing.T) {
	deliveryID := uuid.New()

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantOpened  bool
		wantClicked bool
	}{
		{
			name:       "opened event",
			body:       `{"delivery_id":"` + deliveryID.String() + `","event_type":"opened"}`,
			wantStatus: http.StatusAccepted,
			wantOpened: true,
		},
		{
			name:        "clicked event implies open",
			body:        `{"delivery_id":"` + deliveryID.String() + `","event_type":"clicked"}`,
			wantStatus:  http.StatusAccepted,
			wantOpened:  true,
			wantClicked: true,
		},
		{
			name:       "unknown event type",
			body:       `{"delivery_id":"` + deliveryID.String() + `","event_type":"bounced"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing delivery id",
			body:       `{"event_type":"opened"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown delivery",
			body:       `{"delivery_id":"` + uuid.NewString() + `","event_type":"opened"}`,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, repo := newTestHandler(deliveryID)
			router := h.Routes()

			req := httptest.NewRequest(http.MethodPost, "/t/events", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			_, opened := repo.opened[deliveryID]
			if opened != tt.wantOpened {
				t.Errorf("opened = %v, want %v", opened, tt.wantOpened)
			}
			_, clicked := repo.clicked[deliveryID]
			if clicked != tt.wantClicked {
				t.Errorf("clicked = %v, want %v", clicked, tt.wantClicked)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	h, _ := newTestHandler()
	router := h.Routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
