package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"
	"nft-ticketing/internal/tickets/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Ticket)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create tickets table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedTicket(t *testing.T, ticketDB *db.DB, tokenID int64, qrCode string) *models.Ticket {
	ticket := tickets.NewMinted(
		&models.Event{
			EventID:        7,
			Name:           "Summer Jam",
			TicketPrice:    decimal.NewFromInt(100),
			MaxResalePrice: decimal.NewFromInt(150),
			RoyaltyPercent: 10,
		},
		tokenID, "0xAbCd000000000000000000000000000000000001", "0xtx-mint", qrCode, "ipfs://QmTicket", time.Now(),
	)
	require.NoError(t, ticketDB.CreateTicket(context.Background(), ticket))
	return ticket
}

func TestCreateAndGetTicket(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seeded := seedTicket(t, ticketDB, 42, "credential-42")

	got, err := ticketDB.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, seeded.TokenID, got.TokenID)
	assert.Equal(t, "0xabcd000000000000000000000000000000000001", got.CurrentOwner)
	assert.Equal(t, models.TicketStatusActive, got.Status)
	require.Len(t, got.OwnershipHistory, 1)
	assert.True(t, got.OriginalPrice.Equal(decimal.NewFromInt(100)))
}

func TestGetTicketNotFound(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := ticketDB.GetByTokenID(context.Background(), 999)
	assert.ErrorIs(t, err, tickets.ErrNotFound)

	_, err = ticketDB.GetByQRCode(context.Background(), "bogus")
	assert.ErrorIs(t, err, tickets.ErrNotFound)
}

func TestGetByQRCode(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedTicket(t, ticketDB, 42, "credential-42")
	seedTicket(t, ticketDB, 43, "credential-43")

	got, err := ticketDB.GetByQRCode(context.Background(), "credential-43")
	require.NoError(t, err)
	assert.Equal(t, int64(43), got.TokenID)
}

func TestGetByOwnerNormalizesAddress(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedTicket(t, ticketDB, 42, "credential-42")

	// Lookup with the checksummed form still matches the stored lowercase row.
	list, err := ticketDB.GetByOwner(context.Background(), "0xAbCd000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetListedByEvent(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	listed := seedTicket(t, ticketDB, 42, "credential-42")
	seedTicket(t, ticketDB, 43, "credential-43")

	require.NoError(t, tickets.List(listed, decimal.NewFromInt(120), time.Now()))
	require.NoError(t, ticketDB.UpdateTicket(context.Background(), listed))

	list, err := ticketDB.GetListedByEvent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(42), list[0].TokenID)
}

func TestGetByEventFilters(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	listed := seedTicket(t, ticketDB, 42, "credential-42")
	used := seedTicket(t, ticketDB, 43, "credential-43")
	seedTicket(t, ticketDB, 44, "credential-44")

	require.NoError(t, tickets.List(listed, decimal.NewFromInt(120), time.Now()))
	require.NoError(t, ticketDB.UpdateTicket(context.Background(), listed))
	require.NoError(t, tickets.MarkUsed(used, "0xFaCe000000000000000000000000000000000003", time.Now()))
	require.NoError(t, ticketDB.MarkUsed(context.Background(), used))

	all, err := ticketDB.GetByEvent(context.Background(), 7, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	usedOnly, err := ticketDB.GetByEvent(context.Background(), 7, models.TicketStatusUsed, false)
	require.NoError(t, err)
	require.Len(t, usedOnly, 1)
	assert.Equal(t, int64(43), usedOnly[0].TokenID)

	listedOnly, err := ticketDB.GetByEvent(context.Background(), 7, "", true)
	require.NoError(t, err)
	require.Len(t, listedOnly, 1)
	assert.Equal(t, int64(42), listedOnly[0].TokenID)

	none, err := ticketDB.GetByEvent(context.Background(), 999, "", false)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateTicketBumpsVersion(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ticket := seedTicket(t, ticketDB, 42, "credential-42")
	readVersion := ticket.Version

	require.NoError(t, tickets.List(ticket, decimal.NewFromInt(120), time.Now()))
	require.NoError(t, ticketDB.UpdateTicket(context.Background(), ticket))
	assert.Equal(t, readVersion+1, ticket.Version)

	got, err := ticketDB.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, got.IsListedForSale)
	assert.Equal(t, readVersion+1, got.Version)
}

func TestUpdateTicketStaleVersionConflicts(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedTicket(t, ticketDB, 42, "credential-42")

	// Two readers load the same version.
	first, err := ticketDB.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)
	second, err := ticketDB.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)

	require.NoError(t, tickets.List(first, decimal.NewFromInt(120), time.Now()))
	require.NoError(t, ticketDB.UpdateTicket(context.Background(), first))

	// The slower writer loses.
	require.NoError(t, tickets.List(second, decimal.NewFromInt(130), time.Now()))
	err = ticketDB.UpdateTicket(context.Background(), second)
	assert.ErrorIs(t, err, tickets.ErrConflict)

	got, err := ticketDB.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, got.ListingPrice.Equal(decimal.NewFromInt(120)))
}

func TestMarkUsedCompareAndSwap(t *testing.T) {
	ticketDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	ticket := seedTicket(t, ticketDB, 42, "credential-42")
	require.NoError(t, tickets.MarkUsed(ticket, "0xFaCe000000000000000000000000000000000003", time.Now()))
	require.NoError(t, ticketDB.MarkUsed(context.Background(), ticket))

	got, err := ticketDB.GetByTokenID(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, got.IsUsed)
	assert.Equal(t, models.TicketStatusUsed, got.Status)
	assert.Equal(t, "0xface000000000000000000000000000000000003", got.ValidatedBy)

	// A second flip hits the is_used guard.
	err = ticketDB.MarkUsed(context.Background(), ticket)
	assert.ErrorIs(t, err, tickets.ErrAlreadyUsed)
}
