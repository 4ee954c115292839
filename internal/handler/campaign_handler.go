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

// CampaignHandler handles campaign HTTP requests
type CampaignHandler struct {
	campaignService service.CampaignService
	logger          *slog.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaignService service.CampaignService, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		logger:          logger,
	}
}

// Routes mounts the campaign routes
func (h *CampaignHandler) Routes(r chi.Router) {
	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/send", h.Send)
		r.Post("/{id}/cancel", h.Cancel)
		r.Post("/{id}/preview", h.Preview)
		r.Get("/{id}/deliveries", h.Deliveries)
	})
}

// Create handles POST /campaigns
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	campaign, err := h.campaignService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondCreated(w, campaign)
}

// List handles GET /campaigns
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	eventID, _ := uuid.Parse(query.Get("event_id"))

	filter := models.CampaignFilter{
		EventID:  eventID,
		Channel:  query.Get("channel"),
		Status:   query.Get("status"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.campaignService.List(r.Context(), filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// Get handles GET /campaigns/{id}
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, campaign)
}

// Delete handles DELETE /campaigns/{id}
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.campaignService.Delete(r.Context(), id); err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondNoContent(w)
}

// Send handles POST /campaigns/{id}/send
func (h *CampaignHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.campaignService.Send(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondAccepted(w, result)
}

// Cancel handles POST /campaigns/{id}/cancel
func (h *CampaignHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	campaign, err := h.campaignService.Cancel(r.Context(), id)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, campaign)
}

// Preview handles POST /campaigns/{id}/preview
func (h *CampaignHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req service.PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON format")
		return
	}

	result, err := h.campaignService.Preview(r.Context(), id, &req)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// Deliveries handles GET /campaigns/{id}/deliveries
func (h *CampaignHandler) Deliveries(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))

	filter := models.DeliveryFilter{
		Status:   query.Get("status"),
		Page:     page,
		PageSize: pageSize,
	}

	result, err := h.campaignService.Deliveries(r.Context(), id, filter)
	if err != nil {
		handleError(w, err, h.logger)
		return
	}

	respondSuccess(w, result)
}

// pathUUID extracts a uuid path parameter, responding with 400 on failure
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" parameter")
		return uuid.Nil, false
	}
	return id, true
}
