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

func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, eventID int64) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("event_id = ?", eventID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tickets.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents(ctx context.Context, status string, upcoming bool) ([]models.Event, error) {
	var list []models.Event
	q := d.Bun.NewSelect().Model(&list).Order("event_date ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if upcoming {
		q = q.Where("event_date > ?", time.Now())
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return list, nil
}

// UpdateEvent persists organizer edits. Inventory counters are deliberately
// not in the column list; SellTicket owns those.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now()
	res, err := d.Bun.NewUpdate().
		Model(event).
		Column("name", "description", "event_date", "venue", "image_url",
			"ticket_price", "max_resale_price", "royalty_percentage", "status", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tickets.ErrNotFound
	}
	return nil
}

func (d *DB) DeleteEvent(ctx context.Context, eventID int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tickets.ErrNotFound
	}
	return nil
}

// NextEventID allocates the next sequential ledger-facing event id. Max-based
// rather than count-based so ids stay unique after deletions.
func (d *DB) NextEventID(ctx context.Context) (int64, error) {
	var max int64
	err := d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		ColumnExpr("COALESCE(MAX(event_id), 0)").
		Scan(ctx, &max)
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SellTicket decrements availability and bumps the sold counter in one
// conditional statement. The guard keeps available+sold == total and makes
// the decrement safe under concurrent issuance for the same event.
func (d *DB) SellTicket(ctx context.Context, eventID int64) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("available_tickets = available_tickets - 1").
		Set("sold_tickets = sold_tickets + 1").
		Set("updated_at = ?", time.Now()).
		Where("event_id = ? AND available_tickets > 0", eventID).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tickets.ErrInventoryExhausted
	}
	return nil
}
