package issuance

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"nft-ticketing/internal/ledger"
	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/metadata"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/monitoring"
	"nft-ticketing/internal/payment"
	"nft-ticketing/internal/qr"
	"nft-ticketing/internal/tickets"
	"nft-ticketing/internal/utils"

	"github.com/shopspring/decimal"
)

type EventDBLayer interface {
	GetEventByID(ctx context.Context, eventID int64) (*models.Event, error)
	SellTicket(ctx context.Context, eventID int64) error
}

type TicketDBLayer interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
}

type LedgerClient interface {
	Mint(ctx context.Context, owner string, eventID int64, price, maxResalePrice decimal.Decimal, royaltyPercent int64, tokenURI string) (*ledger.MintReceipt, error)
}

type EventPublisher interface {
	PublishTicketMinted(ticket *models.Ticket) error
}

// Service turns a successful payment into a minted, mirrored ticket.
//
// Ordering is the whole contract: payment before any ledger call (declined
// payments never mint), inventory decrement after a confirmed mint (a failed
// mint never reduces availability).
type Service struct {
	Events   EventDBLayer
	Tickets  TicketDBLayer
	Gateway  payment.Gateway
	Metadata metadata.Store
	Ledger   LedgerClient
	Kafka    EventPublisher
	Logger   *logger.Logger
}

func NewService(events EventDBLayer, ticketDB TicketDBLayer, gateway payment.Gateway, store metadata.Store, ledgerClient LedgerClient, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		Events:   events,
		Tickets:  ticketDB,
		Gateway:  gateway,
		Metadata: store,
		Ledger:   ledgerClient,
		Kafka:    publisher,
		Logger:   log,
	}
}

type IssueRequest struct {
	EventID      int64                 `json:"event_id"`
	BuyerAddress string                `json:"buyer_address"`
	Payment      models.PaymentDetails `json:"payment_details"`
}

type IssueResult struct {
	Ticket      *models.Ticket         `json:"ticket"`
	TokenID     int64                  `json:"token_id"`
	QRCode      string                 `json:"qr_code"`
	MetadataURI string                 `json:"metadata_uri"`
	GatewayURL  string                 `json:"gateway_url,omitempty"`
	TxRef       string                 `json:"tx_ref"`
	Payment     *models.PaymentReceipt `json:"payment"`
}

func (s *Service) BuyTicket(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	if !models.ValidAddress(req.BuyerAddress) {
		return nil, fmt.Errorf("%w: invalid wallet address", tickets.ErrValidation)
	}

	event, err := s.Events.GetEventByID(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", req.EventID, err)
	}
	if event.SoldOut() {
		return nil, fmt.Errorf("%w: event %d is sold out", tickets.ErrInventoryExhausted, event.EventID)
	}

	// Payment first. A decline stops everything before the ledger is touched,
	// and the gateway's reason is surfaced verbatim.
	receipt, err := s.Gateway.Charge(ctx, req.Payment, event.TicketPrice)
	if err != nil {
		monitoring.RecordPaymentDecline()
		return nil, err
	}

	ticketNumber := event.SoldTickets + 1
	doc := metadata.BuildTicketMetadata(event, ticketNumber, event.TicketPrice)
	pin, err := s.Metadata.Publish(ctx, doc, utils.GeneratePinName(event.EventID, ticketNumber))
	if err != nil {
		return nil, fmt.Errorf("metadata publish failed: %w", err)
	}

	// The atomicity boundary. Only a confirmed receipt with a token id means
	// a ticket exists; any other outcome is a hard failure with no partial
	// ticket created.
	mint, err := s.Ledger.Mint(ctx, req.BuyerAddress, event.EventID, event.TicketPrice, event.MaxResalePrice, event.RoyaltyPercent, pin.URI)
	if err != nil {
		return nil, err
	}

	credential, err := qr.NewCredential()
	if err != nil {
		return nil, fmt.Errorf("failed to generate redemption credential: %w", err)
	}

	ticket := tickets.NewMinted(event, mint.TokenID, req.BuyerAddress, mint.TxRef, credential, pin.URI, time.Now())
	if err := s.Tickets.CreateTicket(ctx, ticket); err != nil {
		// The token exists on the ledger but the mirror write failed. The
		// ledger is the source of truth; flag it for reconciliation.
		s.Logger.LogReconciliation(fmt.Sprintf("token %d minted (tx %s) but mirror persist failed: %v", mint.TokenID, mint.TxRef, err))
		return nil, fmt.Errorf("failed to persist ticket record: %w", err)
	}

	if err := s.Events.SellTicket(ctx, event.EventID); err != nil {
		// Confirmed mint, failed decrement. Not rolled back: the minted token
		// wins, the counter is fixed by reconciliation.
		s.Logger.LogReconciliation(fmt.Sprintf("token %d minted but inventory decrement for event %d failed: %v", mint.TokenID, event.EventID, err))
		monitoring.RecordInventoryDiscrepancy()
	}

	monitoring.RecordMint(strconv.FormatInt(event.EventID, 10))
	s.Logger.LogTicket("MINT", ticket.TokenID, fmt.Sprintf("issued to %s for event %d", ticket.CurrentOwner, event.EventID))

	if err := s.Kafka.PublishTicketMinted(ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("ticket minted event publish failed: %v", err))
	}

	return &IssueResult{
		Ticket:      ticket,
		TokenID:     ticket.TokenID,
		QRCode:      ticket.QRCode,
		MetadataURI: pin.URI,
		GatewayURL:  pin.GatewayURL,
		TxRef:       mint.TxRef,
		Payment:     receipt,
	}, nil
}
