package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Ticket statuses. "used" is terminal; the administrative states are only
// reachable from "active".
const (
	TicketStatusActive      = "active"
	TicketStatusListed      = "listed"
	TicketStatusUsed        = "used"
	TicketStatusExpired     = "expired"
	TicketStatusCancelled   = "cancelled"
	TicketStatusTransferred = "transferred"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s is a well-formed account identifier.
func ValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeAddress lowercases an address for storage and comparison.
// Ownership checks must always compare normalized forms.
func NormalizeAddress(s string) string {
	return strings.ToLower(s)
}

// OwnershipEntry is one element of a ticket's append-only ownership history.
// The mint event is always entry zero.
type OwnershipEntry struct {
	Owner     string          `json:"owner"`
	Timestamp time.Time       `json:"timestamp"`
	TxRef     string          `json:"tx_ref"`
	Price     decimal.Decimal `json:"price"`
}

type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TokenID   int64  `bun:"token_id,pk" json:"token_id"`
	EventID   int64  `bun:"event_id,notnull" json:"event_id"`
	EventName string `bun:"event_name" json:"event_name"`

	CurrentOwner     string           `bun:"current_owner,notnull" json:"current_owner"`
	OriginalOwner    string           `bun:"original_owner,notnull" json:"original_owner"`
	OwnershipHistory []OwnershipEntry `bun:"ownership_history,type:jsonb" json:"ownership_history"`

	OriginalPrice  decimal.Decimal `bun:"original_price,notnull" json:"original_price"`
	CurrentPrice   decimal.Decimal `bun:"current_price,notnull" json:"current_price"`
	MaxResalePrice decimal.Decimal `bun:"max_resale_price,notnull" json:"max_resale_price"`
	RoyaltyPercent int64           `bun:"royalty_percentage,notnull" json:"royalty_percentage"`

	IsListedForSale bool            `bun:"is_listed_for_sale" json:"is_listed_for_sale"`
	ListingPrice    decimal.Decimal `bun:"listing_price" json:"listing_price"`
	ListedAt        time.Time       `bun:"listed_at,nullzero" json:"listed_at,omitempty"`

	IsUsed      bool      `bun:"is_used" json:"is_used"`
	UsedAt      time.Time `bun:"used_at,nullzero" json:"used_at,omitempty"`
	ValidatedBy string    `bun:"validated_by" json:"validated_by,omitempty"`

	// QRCode is the presenter-supplied redemption credential. Assigned once
	// before the record is first persisted, never regenerated. It must not
	// embed the token id; the token id is an internal join key only.
	QRCode string `bun:"qr_code,notnull,unique" json:"qr_code"`

	MetadataURI string `bun:"metadata_uri,notnull" json:"metadata_uri"`
	MintTxRef   string `bun:"mint_tx_ref" json:"mint_tx_ref"`

	Status string `bun:"status,notnull" json:"status"`

	// Version is bumped on every mutating update; repositories use it as an
	// optimistic concurrency check.
	Version int64 `bun:"version,notnull" json:"-"`

	CreatedAt time.Time `bun:"created_at" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at" json:"updated_at"`
}
