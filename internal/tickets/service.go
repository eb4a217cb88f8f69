package tickets

import (
	"context"
	"fmt"

	"nft-ticketing/internal/models"
)

type TicketDBLayer interface {
	GetByTokenID(ctx context.Context, tokenID int64) (*models.Ticket, error)
	GetByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error)
	GetByOwner(ctx context.Context, owner string) ([]models.Ticket, error)
	GetByEvent(ctx context.Context, eventID int64, status string, listedOnly bool) ([]models.Ticket, error)
	GetListedByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error)
}

// TicketService answers read queries against the mirror. Mutations belong to
// the issuance, marketplace and redemption services.
type TicketService struct {
	DB TicketDBLayer
}

func NewTicketService(db TicketDBLayer) *TicketService {
	return &TicketService{DB: db}
}

func (s *TicketService) GetTicket(ctx context.Context, tokenID int64) (*models.Ticket, error) {
	ticket, err := s.DB.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, fmt.Errorf("ticket %d: %w", tokenID, err)
	}
	return ticket, nil
}

func (s *TicketService) GetTicketsByOwner(ctx context.Context, owner string) ([]models.Ticket, error) {
	if !models.ValidAddress(owner) {
		return nil, fmt.Errorf("%w: invalid wallet address", ErrValidation)
	}
	return s.DB.GetByOwner(ctx, owner)
}

func (s *TicketService) GetListings(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	return s.DB.GetListedByEvent(ctx, eventID)
}

// GetEventTickets is the organizer view of an event's inventory, filterable
// by status or narrowed to tickets currently on the market.
func (s *TicketService) GetEventTickets(ctx context.Context, eventID int64, status string, listedOnly bool) ([]models.Ticket, error) {
	return s.DB.GetByEvent(ctx, eventID, status, listedOnly)
}
