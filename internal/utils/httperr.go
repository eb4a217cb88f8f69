package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"nft-ticketing/internal/tickets"
)

// StatusForError maps lifecycle guard failures to HTTP statuses. Collaborator
// failures surface as gateway errors so operators can tell them apart from
// user mistakes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, tickets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, tickets.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, tickets.ErrPaymentDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, tickets.ErrLedger):
		return http.StatusBadGateway
	case errors.Is(err, tickets.ErrValidation),
		errors.Is(err, tickets.ErrInventoryExhausted),
		errors.Is(err, tickets.ErrAlreadyUsed),
		errors.Is(err, tickets.ErrNotActive),
		errors.Is(err, tickets.ErrPriceExceedsCap),
		errors.Is(err, tickets.ErrOwnershipMismatch),
		errors.Is(err, tickets.ErrNotListed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteError(w http.ResponseWriter, message string, err error) {
	WriteJSON(w, StatusForError(err), ErrorResponse(message, err.Error()))
}
