package tickets

import (
	"fmt"
	"time"

	"nft-ticketing/internal/models"

	"github.com/shopspring/decimal"
)

// Lifecycle transitions for a mirrored ticket record. Every mutating
// transition is guard-checked so that re-applying it fails deterministically
// instead of silently succeeding.

// NewMinted builds the mirror record for a freshly minted token. The mint
// entry is always ownership history entry zero.
func NewMinted(event *models.Event, tokenID int64, owner, txRef, qrCode, metadataURI string, now time.Time) *models.Ticket {
	owner = models.NormalizeAddress(owner)
	return &models.Ticket{
		TokenID:        tokenID,
		EventID:        event.EventID,
		EventName:      event.Name,
		CurrentOwner:   owner,
		OriginalOwner:  owner,
		OriginalPrice:  event.TicketPrice,
		CurrentPrice:   event.TicketPrice,
		MaxResalePrice: event.MaxResalePrice,
		RoyaltyPercent: event.RoyaltyPercent,
		QRCode:         qrCode,
		MetadataURI:    metadataURI,
		MintTxRef:      txRef,
		Status:         models.TicketStatusActive,
		OwnershipHistory: []models.OwnershipEntry{{
			Owner:     owner,
			Timestamp: now,
			TxRef:     txRef,
			Price:     event.TicketPrice,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// List marks the ticket for sale at price. The cap was frozen at mint time;
// later event edits never change it.
func List(t *models.Ticket, price decimal.Decimal, now time.Time) error {
	if t.IsUsed {
		return ErrAlreadyUsed
	}
	if t.Status != models.TicketStatusActive {
		return fmt.Errorf("%w: status %s", ErrNotActive, t.Status)
	}
	if price.GreaterThan(t.MaxResalePrice) {
		return fmt.Errorf("%w: %s > %s", ErrPriceExceedsCap, price, t.MaxResalePrice)
	}
	t.IsListedForSale = true
	t.ListingPrice = price
	t.ListedAt = now
	t.Status = models.TicketStatusListed
	t.UpdatedAt = now
	return nil
}

// Unlist clears the listing fields and returns the ticket to active.
func Unlist(t *models.Ticket, now time.Time) error {
	if !t.IsListedForSale {
		return ErrNotListed
	}
	t.IsListedForSale = false
	t.ListingPrice = decimal.Zero
	t.ListedAt = time.Time{}
	t.Status = models.TicketStatusActive
	t.UpdatedAt = now
	return nil
}

// Transfer moves ownership to buyer at price, appending to the history and
// clearing the listing. The caller has already settled funds.
func Transfer(t *models.Ticket, buyer string, price decimal.Decimal, txRef string, now time.Time) error {
	if t.IsUsed {
		return ErrAlreadyUsed
	}
	if !t.IsListedForSale {
		return ErrNotListed
	}
	buyer = models.NormalizeAddress(buyer)
	if buyer == t.CurrentOwner {
		return fmt.Errorf("%w: buyer already owns this ticket", ErrValidation)
	}
	t.CurrentOwner = buyer
	t.CurrentPrice = price
	t.OwnershipHistory = append(t.OwnershipHistory, models.OwnershipEntry{
		Owner:     buyer,
		Timestamp: now,
		TxRef:     txRef,
		Price:     price,
	})
	t.IsListedForSale = false
	t.ListingPrice = decimal.Zero
	t.ListedAt = time.Time{}
	t.Status = models.TicketStatusActive
	t.UpdatedAt = now
	return nil
}

// MarkUsed consumes the ticket. Terminal: no listing or transfer afterwards.
func MarkUsed(t *models.Ticket, validator string, now time.Time) error {
	if t.IsUsed {
		return ErrAlreadyUsed
	}
	switch t.Status {
	case models.TicketStatusActive, models.TicketStatusListed:
	default:
		return fmt.Errorf("%w: status %s", ErrNotActive, t.Status)
	}
	t.IsUsed = true
	t.UsedAt = now
	t.ValidatedBy = models.NormalizeAddress(validator)
	t.IsListedForSale = false
	t.ListingPrice = decimal.Zero
	t.Status = models.TicketStatusUsed
	t.UpdatedAt = now
	return nil
}

// RoyaltySplit computes the organizer royalty as floor(price * pct / 100)
// and the seller remainder. Decimal arithmetic, never floats: repeated
// resales must not accumulate rounding drift.
func RoyaltySplit(price decimal.Decimal, royaltyPercent int64) (royalty, remainder decimal.Decimal) {
	royalty = price.Mul(decimal.NewFromInt(royaltyPercent)).Div(decimal.NewFromInt(100)).Floor()
	remainder = price.Sub(royalty)
	return royalty, remainder
}
