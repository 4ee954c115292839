package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/service"
)

// ParticipantHandler handles participant HTTP requests
type ParticipantHandler struct {
	participantService service.ParticipantService
	logger             *slog.Logger
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participantService service.ParticipantService, logger *slog.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: participantService,
		logger:             logger,
	}
}

// Routes mounts the participant routes
func (h *ParticipantHandler) Routes(r chi.Router) {
	r.Route("/participants", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles POST /participants
func (h *ParticipantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var participant models.Participant
	if err := json.NewDecoder(r.Body).Decode(&participant); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	created, err := h.participantService.Create(r.Context(), &participant)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, created)
}

// List handles GET /participants
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	eventID, _ := uuid.Parse(query.Get("event_id"))

	filter := models.ParticipantFilter{
		EventID:  eventID,
		Status:   query.Get("status"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.participantService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// Get handles GET /participants/{id}
func (h *ParticipantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	participant, err := h.participantService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, participant)
}

// Update handles PUT /participants/{id}
func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var participant models.Participant
	if err := json.NewDecoder(r.Body).Decode(&participant); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	participant.ID = id

	updated, err := h.participantService.Update(r.Context(), &participant)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, updated)
}

// Delete handles DELETE /participants/{id}
func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.participantService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}
