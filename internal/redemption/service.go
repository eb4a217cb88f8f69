package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nft-ticketing/internal/ledger"
	"nft-ticketing/internal/logger"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/monitoring"
	"nft-ticketing/internal/tickets"

	"github.com/google/uuid"
)

type TicketDBLayer interface {
	GetByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error)
	MarkUsed(ctx context.Context, ticket *models.Ticket) error
}

type LedgerClient interface {
	OwnerOf(ctx context.Context, tokenID int64) (string, error)
	IsValid(ctx context.Context, tokenID int64) (bool, error)
	MarkUsed(ctx context.Context, tokenID int64) (*ledger.TxReceipt, error)
}

type TicketLock interface {
	LockTicket(ctx context.Context, tokenID int64, scanID string) (bool, error)
	UnlockTicket(ctx context.Context, tokenID int64, scanID string) error
}

type EventPublisher interface {
	PublishTicketRedeemed(ticket *models.Ticket) error
}

// Service validates a presented credential and consumes the ticket exactly
// once. The presenter supplies only the qr credential; the token id never
// leaves the mirror.
type Service struct {
	Tickets TicketDBLayer
	Ledger  LedgerClient
	Locks   TicketLock
	Kafka   EventPublisher
	Logger  *logger.Logger
}

func NewService(ticketDB TicketDBLayer, ledgerClient LedgerClient, locks TicketLock, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		Tickets: ticketDB,
		Ledger:  ledgerClient,
		Locks:   locks,
		Kafka:   publisher,
		Logger:  log,
	}
}

// AlreadyRedeemedError reports a replayed credential along with when the
// ticket was consumed, so the gate operator sees more than a generic error.
type AlreadyRedeemedError struct {
	TokenID int64
	UsedAt  time.Time
}

func (e *AlreadyRedeemedError) Error() string {
	return fmt.Sprintf("ticket already used at %s", e.UsedAt.Format(time.RFC3339))
}

func (e *AlreadyRedeemedError) Unwrap() error {
	return tickets.ErrAlreadyUsed
}

type RedemptionResult struct {
	TokenID   int64     `json:"token_id"`
	EventName string    `json:"event_name"`
	Owner     string    `json:"owner"`
	UsedAt    time.Time `json:"used_at"`
	TxRef     string    `json:"tx_ref"`
}

// Redeem consumes the ticket behind qrCode. The mirror flips to used only
// after the ledger confirms the mark-used transaction; any earlier failure
// leaves the ticket as it was, so the gate can retry.
func (s *Service) Redeem(ctx context.Context, qrCode, validatorAddress string) (*RedemptionResult, error) {
	if qrCode == "" {
		return nil, fmt.Errorf("%w: qr code is required", tickets.ErrValidation)
	}
	if !models.ValidAddress(validatorAddress) {
		return nil, fmt.Errorf("%w: invalid validator address", tickets.ErrValidation)
	}

	ticket, err := s.Tickets.GetByQRCode(ctx, qrCode)
	if err != nil {
		monitoring.RecordRedemption("not_found")
		return nil, err
	}

	if ticket.IsUsed {
		// Replay attempts are logged, not silently rejected.
		s.Logger.LogRedemption("REPLAY", fmt.Sprintf("token %d presented again, already used at %s by %s", ticket.TokenID, ticket.UsedAt.Format(time.RFC3339), ticket.ValidatedBy))
		monitoring.RecordRedemption("replay")
		return nil, &AlreadyRedeemedError{TokenID: ticket.TokenID, UsedAt: ticket.UsedAt}
	}

	// One scan at a time per ticket. A second concurrent scan fails fast
	// instead of double-submitting the mark-used transaction.
	scanID := uuid.NewString()
	locked, err := s.Locks.LockTicket(ctx, ticket.TokenID, scanID)
	if err != nil {
		return nil, fmt.Errorf("redemption lock: %w", err)
	}
	if !locked {
		monitoring.RecordRedemption("contended")
		return nil, fmt.Errorf("%w: redemption already in progress", tickets.ErrConflict)
	}
	defer func() {
		if err := s.Locks.UnlockTicket(context.Background(), ticket.TokenID, scanID); err != nil {
			s.Logger.Error("REDEMPTION", fmt.Sprintf("failed to release lock for token %d: %v", ticket.TokenID, err))
		}
	}()

	// Re-read under the lock; the first read raced other scans.
	ticket, err = s.Tickets.GetByQRCode(ctx, qrCode)
	if err != nil {
		return nil, err
	}
	if ticket.IsUsed {
		monitoring.RecordRedemption("replay")
		return nil, &AlreadyRedeemedError{TokenID: ticket.TokenID, UsedAt: ticket.UsedAt}
	}

	// The ledger is authoritative for ownership. A mismatch means the mirror
	// is stale (a resale happened off-mirror) and the gate must reject.
	owner, err := s.Ledger.OwnerOf(ctx, ticket.TokenID)
	if err != nil {
		monitoring.RecordRedemption("error")
		return nil, err
	}
	if owner != ticket.CurrentOwner {
		s.Logger.LogReconciliation(fmt.Sprintf("token %d mirror owner %s disagrees with ledger owner %s", ticket.TokenID, ticket.CurrentOwner, owner))
		monitoring.RecordRedemption("mismatch")
		return nil, fmt.Errorf("%w: mirror owner %s, ledger owner %s", tickets.ErrOwnershipMismatch, ticket.CurrentOwner, owner)
	}

	// Same reconciliation for usage state. The mirror says active, but if
	// the ledger already consumed the token a mark-used submit would only
	// fail with an opaque revert.
	valid, err := s.Ledger.IsValid(ctx, ticket.TokenID)
	if err != nil {
		monitoring.RecordRedemption("error")
		return nil, err
	}
	if !valid {
		s.Logger.LogReconciliation(fmt.Sprintf("token %d active in mirror but no longer redeemable on ledger", ticket.TokenID))
		monitoring.RecordRedemption("mismatch")
		return nil, fmt.Errorf("%w: ledger reports token %d not redeemable", tickets.ErrNotActive, ticket.TokenID)
	}

	receipt, err := s.Ledger.MarkUsed(ctx, ticket.TokenID)
	if err != nil {
		// Unconfirmed or reverted: no local state change, ticket stays
		// redeemable for a retry.
		monitoring.RecordRedemption("error")
		return nil, err
	}

	if err := tickets.MarkUsed(ticket, validatorAddress, time.Now()); err != nil {
		return nil, err
	}
	if err := s.Tickets.MarkUsed(ctx, ticket); err != nil {
		if errors.Is(err, tickets.ErrAlreadyUsed) {
			monitoring.RecordRedemption("replay")
			// This scan lost the mirror race. Its local UsedAt is not the
			// one that stuck; re-read so the error reports the winner's.
			if current, readErr := s.Tickets.GetByQRCode(ctx, qrCode); readErr == nil {
				return nil, &AlreadyRedeemedError{TokenID: current.TokenID, UsedAt: current.UsedAt}
			}
			return nil, &AlreadyRedeemedError{TokenID: ticket.TokenID, UsedAt: ticket.UsedAt}
		}
		s.Logger.LogReconciliation(fmt.Sprintf("token %d marked used on ledger (tx %s) but mirror flip failed: %v", ticket.TokenID, receipt.TxRef, err))
		return nil, err
	}

	monitoring.RecordRedemption("granted")
	s.Logger.LogRedemption("GRANT", fmt.Sprintf("token %d validated by %s", ticket.TokenID, ticket.ValidatedBy))
	if err := s.Kafka.PublishTicketRedeemed(ticket); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("ticket redeemed event publish failed: %v", err))
	}

	return &RedemptionResult{
		TokenID:   ticket.TokenID,
		EventName: ticket.EventName,
		Owner:     ticket.CurrentOwner,
		UsedAt:    ticket.UsedAt,
		TxRef:     receipt.TxRef,
	}, nil
}
