package marketplace

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nft-ticketing/internal/ledger"
	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/monitoring"
	"nft-ticketing/internal/tickets"

	"github.com/shopspring/decimal"
)

type TicketDBLayer interface {
	GetByTokenID(ctx context.Context, tokenID int64) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, ticket *models.Ticket) error
}

type EventDBLayer interface {
	GetEventByID(ctx context.Context, eventID int64) (*models.Event, error)
}

type LedgerClient interface {
	ListForSale(ctx context.Context, tokenID int64, price decimal.Decimal) (*ledger.TxReceipt, error)
	Unlist(ctx context.Context, tokenID int64) (*ledger.TxReceipt, error)
	BuyListed(ctx context.Context, tokenID int64, buyer string) (*ledger.TxReceipt, error)
	GetListing(ctx context.Context, tokenID int64) (*ledger.Listing, error)
}

// Treasury credits resale proceeds: the royalty to the organizer, the
// remainder to the seller. The simulated implementation only records the
// credits; a real deployment settles off-ledger balances here.
type Treasury interface {
	Credit(ctx context.Context, account string, amount decimal.Decimal, memo string) error
}

type EventPublisher interface {
	PublishTicketListed(ticket *models.Ticket) error
	PublishTicketSold(ticket *models.Ticket) error
}

// Service lists, unlists and transfers already-sold tickets. Resale never
// creates or destroys inventory; the cap applies per resale, not
// cumulatively.
type Service struct {
	Tickets  TicketDBLayer
	Events   EventDBLayer
	Ledger   LedgerClient
	Treasury Treasury
	Kafka    EventPublisher
	Logger   *logger.Logger
}

func NewService(ticketDB TicketDBLayer, eventDB EventDBLayer, ledgerClient LedgerClient, treasury Treasury, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		Tickets:  ticketDB,
		Events:   eventDB,
		Ledger:   ledgerClient,
		Treasury: treasury,
		Kafka:    publisher,
		Logger:   log,
	}
}

type ListingReceipt struct {
	Ticket *models.Ticket `json:"ticket"`
	TxRef  string         `json:"tx_ref"`
}

type PurchaseReceipt struct {
	Ticket        *models.Ticket  `json:"ticket"`
	TxRef         string          `json:"tx_ref"`
	Price         decimal.Decimal `json:"price"`
	Royalty       decimal.Decimal `json:"royalty"`
	SellerProceed decimal.Decimal `json:"seller_proceeds"`
}

// List marks a ticket for sale at price. Guards run against the mirror, then
// the ledger listing is created before the mirror is updated, so a ledger
// failure leaves no local trace.
func (s *Service) List(ctx context.Context, tokenID int64, price decimal.Decimal) (*ListingReceipt, error) {
	ticket, err := s.Tickets.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	// Dry-run the guards before paying for a ledger transaction.
	probe := *ticket
	if err := tickets.List(&probe, price, time.Now()); err != nil {
		return nil, err
	}

	receipt, err := s.Ledger.ListForSale(ctx, tokenID, price)
	if err != nil {
		return nil, err
	}

	if err := tickets.List(ticket, price, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Tickets.UpdateTicket(ctx, ticket); err != nil {
		s.Logger.LogReconciliation(fmt.Sprintf("token %d listed on ledger (tx %s) but mirror update failed: %v", tokenID, receipt.TxRef, err))
		return nil, err
	}

	s.Logger.LogTicket("LIST", tokenID, fmt.Sprintf("listed at %s", price))
	if err := s.Kafka.PublishTicketListed(ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("ticket listed event publish failed: %v", err))
	}
	return &ListingReceipt{Ticket: ticket, TxRef: receipt.TxRef}, nil
}

// Unlist removes an active listing on the ledger and mirrors the change.
func (s *Service) Unlist(ctx context.Context, tokenID int64) (*ListingReceipt, error) {
	ticket, err := s.Tickets.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if !ticket.IsListedForSale {
		return nil, tickets.ErrNotListed
	}

	receipt, err := s.Ledger.Unlist(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	if err := tickets.Unlist(ticket, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Tickets.UpdateTicket(ctx, ticket); err != nil {
		s.Logger.LogReconciliation(fmt.Sprintf("token %d unlisted on ledger (tx %s) but mirror update failed: %v", tokenID, receipt.TxRef, err))
		return nil, err
	}

	s.Logger.LogTicket("UNLIST", tokenID, "listing removed")
	return &ListingReceipt{Ticket: ticket, TxRef: receipt.TxRef}, nil
}

// Purchase transfers a listed ticket to buyer. The ledger listing is
// re-read immediately before the funds transfer: price authority is the
// ledger, never the mirrored copy, which may be stale.
func (s *Service) Purchase(ctx context.Context, tokenID int64, buyer string) (*PurchaseReceipt, error) {
	if !models.ValidAddress(buyer) {
		return nil, fmt.Errorf("%w: invalid wallet address", tickets.ErrValidation)
	}
	buyer = models.NormalizeAddress(buyer)

	ticket, err := s.Tickets.GetByTokenID(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if ticket.IsUsed {
		return nil, tickets.ErrAlreadyUsed
	}
	if !ticket.IsListedForSale {
		return nil, tickets.ErrNotListed
	}
	if buyer == ticket.CurrentOwner {
		return nil, fmt.Errorf("%w: buyer already owns this ticket", tickets.ErrValidation)
	}

	listing, err := s.Ledger.GetListing(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive {
		return nil, fmt.Errorf("%w: ledger listing is not active", tickets.ErrNotListed)
	}
	price := listing.Price

	receipt, err := s.Ledger.BuyListed(ctx, tokenID, buyer)
	if err != nil {
		return nil, err
	}

	seller := ticket.CurrentOwner
	if err := tickets.Transfer(ticket, buyer, price, receipt.TxRef, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Tickets.UpdateTicket(ctx, ticket); err != nil {
		s.Logger.LogReconciliation(fmt.Sprintf("token %d sold on ledger (tx %s) but mirror update failed: %v", tokenID, receipt.TxRef, err))
		return nil, err
	}

	royalty, proceeds := tickets.RoyaltySplit(price, ticket.RoyaltyPercent)
	event, err := s.Events.GetEventByID(ctx, ticket.EventID)
	if err != nil {
		s.Logger.Error("MARKET", fmt.Sprintf("royalty payout lookup for event %d failed: %v", ticket.EventID, err))
	} else {
		if royalty.IsPositive() && event.OrganizerAddress != "" {
			if err := s.Treasury.Credit(ctx, event.OrganizerAddress, royalty, fmt.Sprintf("royalty token %d", tokenID)); err != nil {
				s.Logger.Error("MARKET", fmt.Sprintf("royalty credit failed: %v", err))
			}
		}
		if err := s.Treasury.Credit(ctx, seller, proceeds, fmt.Sprintf("resale token %d", tokenID)); err != nil {
			s.Logger.Error("MARKET", fmt.Sprintf("seller credit failed: %v", err))
		}
	}

	monitoring.RecordResale(strconv.FormatInt(ticket.EventID, 10))
	s.Logger.LogTicket("SALE", tokenID, fmt.Sprintf("%s -> %s at %s (royalty %s)", seller, buyer, price, royalty))
	if err := s.Kafka.PublishTicketSold(ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("ticket sold event publish failed: %v", err))
	}

	return &PurchaseReceipt{
		Ticket:        ticket,
		TxRef:         receipt.TxRef,
		Price:         price,
		Royalty:       royalty,
		SellerProceed: proceeds,
	}, nil
}
