package event_api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"nft-ticketing/internal/events"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	EventService *events.EventService
}

func NewHandler(service *events.EventService) *Handler {
	return &Handler{EventService: service}
}

// CreateEvent handles POST /api/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req)
	if err != nil {
		utils.WriteError(w, "Failed to create event", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created successfully", event))
}

// GetEvent handles GET /api/events/{eventID}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, "Event not found", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event", event))
}

// UpdateEvent handles PUT /api/events/{eventID}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		utils.WriteError(w, "Failed to update event", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated successfully", event))
}

// DeleteEvent handles DELETE /api/events/{eventID}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	if err := h.EventService.DeleteEvent(r.Context(), eventID); err != nil {
		utils.WriteError(w, "Failed to delete event", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event deleted successfully", nil))
}

// ListEvents handles GET /api/events?status=&upcoming=
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	upcoming := r.URL.Query().Get("upcoming") == "true"

	list, err := h.EventService.ListEvents(r.Context(), status, upcoming)
	if err != nil {
		utils.WriteError(w, "Failed to list events", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events", list))
}
