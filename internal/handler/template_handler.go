package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/werkudara-eng/event-campaigns/internal/models"
	"github.com/werkudara-eng/event-campaigns/internal/service"
)

// TemplateHandler handles email template HTTP requests
type TemplateHandler struct {
	templateService service.TemplateService
	logger          *slog.Logger
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(templateService service.TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{
		templateService: templateService,
		logger:          logger,
	}
}

// Routes mounts the template routes
func (h *TemplateHandler) Routes(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// Create handles POST /templates
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var template models.EmailTemplate
	if err := json.NewDecoder(r.Body).Decode(&template); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	created, err := h.templateService.Create(r.Context(), &template)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, created)
}

// List handles GET /templates?event_id=
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	eventID, err := uuid.Parse(r.URL.Query().Get("event_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "event_id query parameter is required")
		return
	}

	templates, err := h.templateService.ListByEvent(r.Context(), eventID)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, templates)
}

// Get handles GET /templates/{id}
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	template, err := h.templateService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, template)
}

// Update handles PUT /templates/{id}
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var template models.EmailTemplate
	if err := json.NewDecoder(r.Body).Decode(&template); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}
	template.ID = id

	updated, err := h.templateService.Update(r.Context(), &template)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, updated)
}

// Delete handles DELETE /templates/{id}
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.templateService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}
