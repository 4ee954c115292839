package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/service"
)

// EventHandler handles event HTTP requests
type EventHandler struct {
	eventService service.EventService
	logger       *slog.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService service.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		logger:       logger,
	}
}

// Routes mounts the event routes
func (h *EventHandler) Routes(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
}

// Create handles POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var event models.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	created, err := h.eventService.Create(r.Context(), &event)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, created)
}

// List handles GET /events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	result, err := h.eventService.List(r.Context(), page, pageSize)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// Get handles GET /events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, event)
}
