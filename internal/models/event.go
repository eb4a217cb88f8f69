package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// Event statuses as stored in the mirror.
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusSoldOut   = "sold_out"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	EventID          int64           `bun:"event_id,pk" json:"event_id"`
	Name             string          `bun:"name,notnull" json:"name"`
	Description      string          `bun:"description" json:"description"`
	EventDate        time.Time       `bun:"event_date,notnull" json:"event_date"`
	Venue            string          `bun:"venue" json:"venue"`
	ImageURL         string          `bun:"image_url" json:"image_url"`
	OrganizerAddress string          `bun:"organizer_address" json:"organizer_address"`
	TicketPrice      decimal.Decimal `bun:"ticket_price,notnull" json:"ticket_price"`
	MaxResalePrice   decimal.Decimal `bun:"max_resale_price,notnull" json:"max_resale_price"`
	RoyaltyPercent   int64           `bun:"royalty_percentage,notnull" json:"royalty_percentage"`
	TotalTickets     int             `bun:"total_tickets,notnull" json:"total_tickets"`
	AvailableTickets int             `bun:"available_tickets,notnull" json:"available_tickets"`
	SoldTickets      int             `bun:"sold_tickets,notnull" json:"sold_tickets"`
	Status           string          `bun:"status" json:"status"`
	CreatedAt        time.Time       `bun:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `bun:"updated_at" json:"updated_at"`
}

// SoldOut reports whether the event has no remaining inventory.
func (e *Event) SoldOut() bool {
	return e.AvailableTickets <= 0
}

type EventRequest struct {
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	EventDate      time.Time       `json:"event_date"`
	Venue          string          `json:"venue"`
	ImageURL       string          `json:"image_url"`
	Organizer      string          `json:"organizer_address"`
	TicketPrice    decimal.Decimal `json:"ticket_price"`
	MaxResalePrice decimal.Decimal `json:"max_resale_price"`
	RoyaltyPercent int64           `json:"royalty_percentage"`
	TotalTickets   int             `json:"total_tickets"`
}
