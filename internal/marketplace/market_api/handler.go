package market_api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"nft-ticketing/internal/marketplace"
	"nft-ticketing/internal/tickets"
	"nft-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Handler struct {
	Market        *marketplace.Service
	TicketService *tickets.TicketService
}

// ListTicket handles POST /api/market/list
func (h *Handler) ListTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TokenID int64           `json:"token_id"`
		Price   decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.Market.List(r.Context(), req.TokenID, req.Price)
	if err != nil {
		utils.WriteError(w, "Failed to list ticket", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket listed for sale", receipt))
}

// UnlistTicket handles POST /api/market/unlist
func (h *Handler) UnlistTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TokenID int64 `json:"token_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.Market.Unlist(r.Context(), req.TokenID)
	if err != nil {
		utils.WriteError(w, "Failed to unlist ticket", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Listing removed", receipt))
}

// PurchaseTicket handles POST /api/market/purchase
func (h *Handler) PurchaseTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TokenID int64  `json:"token_id"`
		Buyer   string `json:"buyer_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := h.Market.Purchase(r.Context(), req.TokenID, req.Buyer)
	if err != nil {
		utils.WriteError(w, "Failed to purchase ticket", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket purchased", receipt))
}

// GetListings handles GET /api/market/events/{eventID}/listings
func (h *Handler) GetListings(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	list, err := h.TicketService.GetListings(r.Context(), eventID)
	if err != nil {
		utils.WriteError(w, "Failed to fetch listings", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Listings", list))
}
