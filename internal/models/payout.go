package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Payout is a recorded resale credit: the organizer royalty or the seller
// remainder. Settlement itself happens on the ledger; this is the audit row.
type Payout struct {
	bun.BaseModel `bun:"table:payouts"`

	ID        string          `bun:"id,pk" json:"id"`
	Account   string          `bun:"account,notnull" json:"account"`
	Amount    decimal.Decimal `bun:"amount,notnull" json:"amount"`
	Memo      string          `bun:"memo" json:"memo"`
	CreatedAt time.Time       `bun:"created_at" json:"created_at"`
}
