package marketplace

import (
	"context"
	"time"

	"nft-ticketing/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// BunTreasury records resale credits as payout rows. The ledger settles the
// actual funds during buyListedTicket; these rows are the operator-facing
// audit trail of each split.
type BunTreasury struct {
	Bun *bun.DB
}

func NewBunTreasury(db *bun.DB) *BunTreasury {
	return &BunTreasury{Bun: db}
}

func (t *BunTreasury) Credit(ctx context.Context, account string, amount decimal.Decimal, memo string) error {
	payout := &models.Payout{
		ID:        uuid.NewString(),
		Account:   models.NormalizeAddress(account),
		Amount:    amount,
		Memo:      memo,
		CreatedAt: time.Now(),
	}
	_, err := t.Bun.NewInsert().Model(payout).Exec(ctx)
	return err
}

func (t *BunTreasury) CreditsFor(ctx context.Context, account string) ([]models.Payout, error) {
	var list []models.Payout
	err := t.Bun.NewSelect().
		Model(&list).
		Where("account = ?", models.NormalizeAddress(account)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}
