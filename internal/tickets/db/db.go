package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	_, err := d.Bun.NewInsert().Model(ticket).Exec(ctx)
	return err
}

func (d *DB) GetByTokenID(ctx context.Context, tokenID int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("token_id = ?", tokenID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tickets.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// GetByQRCode resolves the presenter-supplied credential to a record. This is
// the only lookup the redemption path is allowed to use.
func (d *DB) GetByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("qr_code = ?", qrCode).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tickets.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (d *DB) GetByOwner(ctx context.Context, owner string) ([]models.Ticket, error) {
	var list []models.Ticket
	err := d.Bun.NewSelect().
		Model(&list).
		Where("current_owner = ?", models.NormalizeAddress(owner)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// GetByEvent returns every ticket minted for an event, optionally narrowed
// by lifecycle status or to listed tickets only.
func (d *DB) GetByEvent(ctx context.Context, eventID int64, status string, listedOnly bool) ([]models.Ticket, error) {
	var list []models.Ticket
	q := d.Bun.NewSelect().
		Model(&list).
		Where("event_id = ?", eventID).
		Order("token_id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if listedOnly {
		q = q.Where("is_listed_for_sale = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) GetListedByEvent(ctx context.Context, eventID int64) ([]models.Ticket, error) {
	var list []models.Ticket
	err := d.Bun.NewSelect().
		Model(&list).
		Where("event_id = ? AND is_listed_for_sale = ?", eventID, true).
		Order("listed_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateTicket persists a mutated record with an optimistic version check.
// The caller's copy must hold the version it originally read; a concurrent
// writer wins the race and this update reports ErrConflict.
func (d *DB) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	readVersion := ticket.Version
	ticket.Version++
	ticket.UpdatedAt = time.Now()

	res, err := d.Bun.NewUpdate().
		Model(ticket).
		Column("current_owner", "current_price", "ownership_history",
			"is_listed_for_sale", "listing_price", "listed_at",
			"is_used", "used_at", "validated_by",
			"status", "version", "updated_at").
		Where("token_id = ? AND version = ?", ticket.TokenID, readVersion).
		Exec(ctx)
	if err != nil {
		ticket.Version = readVersion
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		ticket.Version = readVersion
		return tickets.ErrConflict
	}
	return nil
}

// MarkUsed flips the redemption flag with a compare-and-swap on is_used so
// that two concurrent gate scans produce at most one successful outcome even
// if both passed the in-memory guard.
func (d *DB) MarkUsed(ctx context.Context, ticket *models.Ticket) error {
	res, err := d.Bun.NewUpdate().
		Model(ticket).
		Column("is_used", "used_at", "validated_by",
			"is_listed_for_sale", "listing_price",
			"status", "updated_at").
		Set("version = version + 1").
		Where("token_id = ? AND is_used = ?", ticket.TokenID, false).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tickets.ErrAlreadyUsed
	}
	return nil
}
