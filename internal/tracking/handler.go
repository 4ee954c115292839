package tracking

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/repository"
)

// 1x1 transparent GIF served as the open-tracking beacon
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00,
	0x80, 0x00, 0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c,
	0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02,
	0x02, 0x44, 0x01, 0x00, 0x3b,
}

// Event type constants for the ingestion webhook
const (
	EventOpened  = "opened"
	EventClicked = "clicked"
)

// Handler ingests delivery events: the beacon pixel for opens and a JSON
// webhook for click/open events reported by tracked links. The delivery id
// in the URL or payload is the correlation key.
type Handler struct {
	deliveryRepo repository.DeliveryRepository
	logger       *slog.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(deliveryRepo repository.DeliveryRepository, logger *slog.Logger) *Handler {
	return &Handler{deliveryRepo: deliveryRepo, logger: logger}
}

// Routes returns the tracking service router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/t/open/{deliveryID}", h.HandleOpen)
	r.Post("/t/events", h.HandleEvent)
	r.Get("/health", h.HandleHealth)
	return r
}

// HandleOpen serves the beacon pixel and records the open. The pixel is
// always served, even for garbage ids: a broken image in an email would be
// visible to the recipient.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	deliveryID, err := uuid.Parse(chi.URLParam(r, "deliveryID"))
	if err != nil {
		h.servePixel(w)
		return
	}

	if err := h.deliveryRepo.MarkOpened(r.Context(), deliveryID, time.Now().UTC()); err != nil {
		h.logger.Error("failed to record open",
			slog.String("delivery_id", deliveryID.String()),
			slog.String("error", err.Error()),
		)
	} else {
		h.logger.Debug("open recorded",
			slog.String("delivery_id", deliveryID.String()),
			slog.String("user_agent", r.UserAgent()),
		)
	}

	h.servePixel(w)
}

// trackingEvent is the webhook payload reported for a tracked link hit
type trackingEvent struct {
	DeliveryID uuid.UUID `json:"delivery_id"`
	EventType  string    `json:"event_type"`
}

// HandleEvent ingests a delivery event reported out of band
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var evt trackingEvent
	if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if evt.DeliveryID == uuid.Nil {
		http.Error(w, `{"error":"delivery_id is required"}`, http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	var err error
	switch evt.EventType {
	case EventOpened:
		err = h.deliveryRepo.MarkOpened(r.Context(), evt.DeliveryID, now)
	case EventClicked:
		// A click implies the message was opened.
		if err = h.deliveryRepo.MarkOpened(r.Context(), evt.DeliveryID, now); err == nil {
			err = h.deliveryRepo.MarkClicked(r.Context(), evt.DeliveryID, now)
		}
	default:
		http.Error(w, `{"error":"unknown event_type"}`, http.StatusBadRequest)
		return
	}

	if err != nil {
		if models.IsNotFound(err) {
			http.Error(w, `{"error":"delivery not found"}`, http.StatusNotFound)
			return
		}
		h.logger.Error("failed to record tracking event",
			slog.String("delivery_id", evt.DeliveryID.String()),
			slog.String("event_type", evt.EventType),
			slog.String("error", err.Error()),
		)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	h.logger.Debug("tracking event recorded",
		slog.String("delivery_id", evt.DeliveryID.String()),
		slog.String("event_type", evt.EventType),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"accepted":true}`))
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) servePixel(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	_, _ = w.Write(pixelGIF)
}
