package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"nft-ticketing/internal/events/db"
	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"

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

	_, err = bunDB.NewCreateTable().Model((*models.Event)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create events table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedEvent(t *testing.T, eventDB *db.DB, eventID int64, available int) *models.Event {
	event := &models.Event{
		EventID:          eventID,
		Name:             "Summer Jam",
		EventDate:        time.Now().Add(30 * 24 * time.Hour),
		TicketPrice:      decimal.NewFromInt(100),
		MaxResalePrice:   decimal.NewFromInt(150),
		RoyaltyPercent:   10,
		TotalTickets:     available,
		AvailableTickets: available,
		Status:           models.EventStatusPublished,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, eventDB.CreateEvent(context.Background(), event))
	return event
}

func TestCreateAndGetEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedEvent(t, eventDB, 1, 100)

	got, err := eventDB.GetEventByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Summer Jam", got.Name)
	assert.Equal(t, 100, got.AvailableTickets)
	assert.True(t, got.TicketPrice.Equal(decimal.NewFromInt(100)))
}

func TestGetEventNotFound(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := eventDB.GetEventByID(context.Background(), 999)
	assert.ErrorIs(t, err, tickets.ErrNotFound)
}

func TestNextEventID(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	id, err := eventDB.NextEventID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	seedEvent(t, eventDB, 1, 100)

	id, err = eventDB.NextEventID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), id)
}

func TestUpdateEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	event := seedEvent(t, eventDB, 1, 100)
	event.Venue = "Riverside Stage"
	event.MaxResalePrice = decimal.NewFromInt(180)

	require.NoError(t, eventDB.UpdateEvent(context.Background(), event))

	got, err := eventDB.GetEventByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Riverside Stage", got.Venue)
	assert.True(t, got.MaxResalePrice.Equal(decimal.NewFromInt(180)))
	// Inventory counters are outside the update's column list.
	assert.Equal(t, 100, got.AvailableTickets)
}

func TestUpdateEventNotFound(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	err := eventDB.UpdateEvent(context.Background(), &models.Event{EventID: 999, Name: "Ghost"})
	assert.ErrorIs(t, err, tickets.ErrNotFound)
}

func TestDeleteEvent(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedEvent(t, eventDB, 1, 100)

	require.NoError(t, eventDB.DeleteEvent(context.Background(), 1))

	_, err := eventDB.GetEventByID(context.Background(), 1)
	assert.ErrorIs(t, err, tickets.ErrNotFound)

	err = eventDB.DeleteEvent(context.Background(), 1)
	assert.ErrorIs(t, err, tickets.ErrNotFound)
}

func TestNextEventIDSkipsDeletedIDs(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedEvent(t, eventDB, 1, 100)
	seedEvent(t, eventDB, 2, 50)
	require.NoError(t, eventDB.DeleteEvent(context.Background(), 1))

	// Max-based allocation must not reissue id 2 for the next event.
	id, err := eventDB.NextEventID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestListEventsByStatus(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedEvent(t, eventDB, 1, 100)
	cancelled := seedEvent(t, eventDB, 2, 50)
	cancelled.Status = models.EventStatusCancelled
	_, err := bunDB.NewUpdate().Model(cancelled).WherePK().Exec(context.Background())
	require.NoError(t, err)

	list, err := eventDB.ListEvents(context.Background(), models.EventStatusPublished, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].EventID)
}

func TestSellTicketDecrementsInventory(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedEvent(t, eventDB, 1, 2)

	require.NoError(t, eventDB.SellTicket(context.Background(), 1))

	got, err := eventDB.GetEventByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AvailableTickets)
	assert.Equal(t, 1, got.SoldTickets)
	assert.Equal(t, got.TotalTickets, got.AvailableTickets+got.SoldTickets)
}

func TestSellTicketExhaustion(t *testing.T) {
	eventDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedEvent(t, eventDB, 1, 1)

	require.NoError(t, eventDB.SellTicket(context.Background(), 1))

	// The guard rejects the oversell and leaves counters intact.
	err := eventDB.SellTicket(context.Background(), 1)
	assert.ErrorIs(t, err, tickets.ErrInventoryExhausted)

	got, err := eventDB.GetEventByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableTickets)
	assert.Equal(t, 1, got.SoldTickets)
}
