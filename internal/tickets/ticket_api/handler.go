package ticket_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"nft-ticketing/internal/auth"
	"nft-ticketing/internal/issuance"
	"nft-ticketing/internal/ledger"
	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/qr"
	"nft-ticketing/internal/redemption"
	"nft-ticketing/internal/tickets"
	"nft-ticketing/internal/utils"

	"github.com/go-chi/chi/v5"
)

type LedgerReader interface {
	GetTicket(ctx context.Context, tokenID int64) (*ledger.TicketView, error)
}

type Handler struct {
	TicketService *tickets.TicketService
	Issuance      *issuance.Service
	Redemption    *redemption.Service
	Ledger        LedgerReader
	Logger        *logger.Logger
}

// BuyTicket handles POST /api/tickets/buy
func (h *Handler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	var req issuance.IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Issuance.BuyTicket(r.Context(), req)
	if err != nil {
		utils.WriteError(w, "Ticket purchase failed", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Ticket purchased successfully", result))
}

// VerifyTicket handles POST /api/tickets/verify. The route is scanner-only:
// the bearer token must carry the SCANNER role.
func (h *Handler) VerifyTicket(w http.ResponseWriter, r *http.Request) {
	tokenString, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		http.Error(w, "Authorization required: "+err.Error(), http.StatusUnauthorized)
		return
	}
	if _, err := auth.VerifyScannerToken(tokenString); err != nil {
		http.Error(w, "Scanner verification failed: "+err.Error(), http.StatusForbidden)
		return
	}

	var req struct {
		QRCode           string `json:"qr_code"`
		ValidatorAddress string `json:"validator_address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Redemption.Redeem(r.Context(), req.QRCode, req.ValidatorAddress)
	if err != nil {
		var replay *redemption.AlreadyRedeemedError
		if errors.As(err, &replay) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{
				Success: false,
				Message: "Ticket has already been used",
				Data:    map[string]any{"used_at": replay.UsedAt},
				Error:   err.Error(),
			})
			return
		}
		utils.WriteError(w, "Ticket validation failed", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket validated successfully - Entry granted", result))
}

// GetTicketsByOwner handles GET /api/tickets/owner/{address}
func (h *Handler) GetTicketsByOwner(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	list, err := h.TicketService.GetTicketsByOwner(r.Context(), address)
	if err != nil {
		utils.WriteError(w, "Failed to fetch tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d tickets", len(list)), list))
}

// GetEventTickets handles GET /api/events/{eventID}/tickets?status=&listed=
func (h *Handler) GetEventTickets(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid event id", http.StatusBadRequest)
		return
	}

	status := r.URL.Query().Get("status")
	listedOnly := r.URL.Query().Get("listed") == "true"

	list, err := h.TicketService.GetEventTickets(r.Context(), eventID, status, listedOnly)
	if err != nil {
		utils.WriteError(w, "Failed to fetch event tickets", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("%d tickets", len(list)), list))
}

// GetTicketDetails handles GET /api/tickets/{tokenID}. Returns the mirror
// record alongside the ledger's live view so operators can spot drift.
func (h *Handler) GetTicketDetails(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseInt(chi.URLParam(r, "tokenID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.GetTicket(r.Context(), tokenID)
	if err != nil {
		utils.WriteError(w, "Ticket not found", err)
		return
	}

	view, err := h.Ledger.GetTicket(r.Context(), tokenID)
	if err != nil {
		h.Logger.Error("LEDGER", fmt.Sprintf("ledger view for token %d unavailable: %v", tokenID, err))
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket (mirror only)", map[string]any{
			"database": ticket,
		}))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Ticket", map[string]any{
		"database": ticket,
		"ledger":   view,
	}))
}

// GetTicketQR handles GET /api/tickets/{tokenID}/qr and streams the
// scannable PNG for the ticket's redemption credential.
func (h *Handler) GetTicketQR(w http.ResponseWriter, r *http.Request) {
	tokenID, err := strconv.ParseInt(chi.URLParam(r, "tokenID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid token id", http.StatusBadRequest)
		return
	}

	ticket, err := h.TicketService.GetTicket(r.Context(), tokenID)
	if err != nil {
		utils.WriteError(w, "Ticket not found", err)
		return
	}

	png, err := qr.RenderPNG(ticket.QRCode, 256)
	if err != nil {
		http.Error(w, "Failed to render QR: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
