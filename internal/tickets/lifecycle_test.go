package tickets_test

import (
	"testing"
	"time"

	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent() *models.Event {
	return &models.Event{
		EventID:          1,
		Name:             "Summer Jam",
		TicketPrice:      decimal.NewFromInt(100),
		MaxResalePrice:   decimal.NewFromInt(150),
		RoyaltyPercent:   10,
		TotalTickets:     100,
		AvailableTickets: 100,
		Status:           models.EventStatusPublished,
	}
}

func mintedTicket() *models.Ticket {
	return tickets.NewMinted(
		testEvent(),
		42,
		"0xAbCd000000000000000000000000000000000001",
		"0xtx-mint",
		"credential-42",
		"ipfs://QmTicket42",
		time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	)
}

func TestNewMintedSeedsOwnershipHistory(t *testing.T) {
	ticket := mintedTicket()

	assert.Equal(t, int64(42), ticket.TokenID)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
	assert.False(t, ticket.IsUsed)
	assert.False(t, ticket.IsListedForSale)

	// Addresses are stored lowercase.
	assert.Equal(t, "0xabcd000000000000000000000000000000000001", ticket.CurrentOwner)
	assert.Equal(t, ticket.CurrentOwner, ticket.OriginalOwner)

	// The mint is always history entry zero.
	require.Len(t, ticket.OwnershipHistory, 1)
	entry := ticket.OwnershipHistory[0]
	assert.Equal(t, ticket.CurrentOwner, entry.Owner)
	assert.Equal(t, "0xtx-mint", entry.TxRef)
	assert.True(t, entry.Price.Equal(decimal.NewFromInt(100)))
}

func TestListAtCapSucceeds(t *testing.T) {
	ticket := mintedTicket()

	err := tickets.List(ticket, decimal.NewFromInt(150), time.Now())

	require.NoError(t, err)
	assert.True(t, ticket.IsListedForSale)
	assert.Equal(t, models.TicketStatusListed, ticket.Status)
	assert.True(t, ticket.ListingPrice.Equal(decimal.NewFromInt(150)))
}

func TestListAboveCapFails(t *testing.T) {
	ticket := mintedTicket()

	err := tickets.List(ticket, decimal.RequireFromString("150.01"), time.Now())

	require.Error(t, err)
	assert.ErrorIs(t, err, tickets.ErrPriceExceedsCap)
	assert.False(t, ticket.IsListedForSale)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
}

func TestListUsedTicketFails(t *testing.T) {
	ticket := mintedTicket()
	require.NoError(t, tickets.MarkUsed(ticket, "0xAbCd000000000000000000000000000000000099", time.Now()))

	err := tickets.List(ticket, decimal.NewFromInt(120), time.Now())

	assert.ErrorIs(t, err, tickets.ErrAlreadyUsed)
}

func TestListCancelledTicketFails(t *testing.T) {
	ticket := mintedTicket()
	ticket.Status = models.TicketStatusCancelled

	err := tickets.List(ticket, decimal.NewFromInt(120), time.Now())

	assert.ErrorIs(t, err, tickets.ErrNotActive)
}

func TestUnlistClearsListing(t *testing.T) {
	ticket := mintedTicket()
	require.NoError(t, tickets.List(ticket, decimal.NewFromInt(120), time.Now()))

	err := tickets.Unlist(ticket, time.Now())

	require.NoError(t, err)
	assert.False(t, ticket.IsListedForSale)
	assert.True(t, ticket.ListingPrice.IsZero())
	assert.Equal(t, models.TicketStatusActive, ticket.Status)
}

func TestUnlistWithoutListingFails(t *testing.T) {
	ticket := mintedTicket()

	err := tickets.Unlist(ticket, time.Now())

	assert.ErrorIs(t, err, tickets.ErrNotListed)
}

func TestTransferAppendsHistoryAndClearsListing(t *testing.T) {
	ticket := mintedTicket()
	require.NoError(t, tickets.List(ticket, decimal.NewFromInt(150), time.Now()))

	buyer := "0xBeEf000000000000000000000000000000000002"
	err := tickets.Transfer(ticket, buyer, decimal.NewFromInt(150), "0xtx-sale", time.Now())

	require.NoError(t, err)
	assert.Equal(t, "0xbeef000000000000000000000000000000000002", ticket.CurrentOwner)
	assert.Equal(t, "0xabcd000000000000000000000000000000000001", ticket.OriginalOwner)
	assert.False(t, ticket.IsListedForSale)
	assert.Equal(t, models.TicketStatusActive, ticket.Status)

	require.Len(t, ticket.OwnershipHistory, 2)
	last := ticket.OwnershipHistory[1]
	assert.Equal(t, ticket.CurrentOwner, last.Owner)
	assert.Equal(t, "0xtx-sale", last.TxRef)
	assert.True(t, last.Price.Equal(decimal.NewFromInt(150)))
}

func TestTransferToSelfFails(t *testing.T) {
	ticket := mintedTicket()
	require.NoError(t, tickets.List(ticket, decimal.NewFromInt(120), time.Now()))

	// Same account, different case.
	err := tickets.Transfer(ticket, "0xABCD000000000000000000000000000000000001", decimal.NewFromInt(120), "0xtx", time.Now())

	assert.ErrorIs(t, err, tickets.ErrValidation)
	assert.Len(t, ticket.OwnershipHistory, 1)
}

func TestTransferUnlistedTicketFails(t *testing.T) {
	ticket := mintedTicket()

	err := tickets.Transfer(ticket, "0xBeEf000000000000000000000000000000000002", decimal.NewFromInt(120), "0xtx", time.Now())

	assert.ErrorIs(t, err, tickets.ErrNotListed)
}

func TestMarkUsedIsTerminal(t *testing.T) {
	ticket := mintedTicket()
	require.NoError(t, tickets.List(ticket, decimal.NewFromInt(120), time.Now()))

	usedAt := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)
	err := tickets.MarkUsed(ticket, "0xFaCe000000000000000000000000000000000003", usedAt)

	require.NoError(t, err)
	assert.True(t, ticket.IsUsed)
	assert.Equal(t, usedAt, ticket.UsedAt)
	assert.Equal(t, "0xface000000000000000000000000000000000003", ticket.ValidatedBy)
	assert.Equal(t, models.TicketStatusUsed, ticket.Status)
	// A used ticket can never stay on the market.
	assert.False(t, ticket.IsListedForSale)

	// Second redemption fails and the original timestamp survives.
	err = tickets.MarkUsed(ticket, "0xFaCe000000000000000000000000000000000004", time.Now())
	assert.ErrorIs(t, err, tickets.ErrAlreadyUsed)
	assert.Equal(t, usedAt, ticket.UsedAt)
	assert.Equal(t, "0xface000000000000000000000000000000000003", ticket.ValidatedBy)

	// And no listing or transfer afterwards either.
	assert.ErrorIs(t, tickets.List(ticket, decimal.NewFromInt(120), time.Now()), tickets.ErrAlreadyUsed)
	ticket.IsListedForSale = true
	assert.ErrorIs(t, tickets.Transfer(ticket, "0xBeEf000000000000000000000000000000000002", decimal.NewFromInt(120), "0xtx", time.Now()), tickets.ErrAlreadyUsed)
}

func TestRoyaltySplit(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		percent  int64
		royalty  string
		proceeds string
	}{
		{"face value", "100", 10, "10", "90"},
		{"resale at cap", "150", 10, "15", "135"},
		{"floor rounding", "99.99", 10, "9", "90.99"},
		{"zero royalty", "150", 0, "0", "150"},
		{"odd percent", "101", 7, "7", "94"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			royalty, proceeds := tickets.RoyaltySplit(decimal.RequireFromString(tc.price), tc.percent)

			assert.True(t, royalty.Equal(decimal.RequireFromString(tc.royalty)), "royalty %s", royalty)
			assert.True(t, proceeds.Equal(decimal.RequireFromString(tc.proceeds)), "proceeds %s", proceeds)
			// The split never creates or destroys money.
			assert.True(t, royalty.Add(proceeds).Equal(decimal.RequireFromString(tc.price)))
		})
	}
}
