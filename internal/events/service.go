package events

import (
	"context"
	"fmt"
	"time"

	"nft-ticketing/internal/models"
	"nft-ticketing/internal/tickets"

	"github.com/shopspring/decimal"
)

type EventDBLayer interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, eventID int64) (*models.Event, error)
	ListEvents(ctx context.Context, status string, upcoming bool) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, eventID int64) error
	NextEventID(ctx context.Context) (int64, error)
	SellTicket(ctx context.Context, eventID int64) error
}

type EventService struct {
	DB EventDBLayer
}

func NewEventService(db EventDBLayer) *EventService {
	return &EventService{DB: db}
}

// CreateEvent publishes a new event. Resale cap defaults to 1.5x the face
// price, royalty to 10%.
func (s *EventService) CreateEvent(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	if req.Name == "" || req.TotalTickets < 1 {
		return nil, fmt.Errorf("%w: name and total_tickets are required", tickets.ErrValidation)
	}
	if req.TicketPrice.IsNegative() {
		return nil, fmt.Errorf("%w: ticket price cannot be negative", tickets.ErrValidation)
	}
	if req.Organizer != "" && !models.ValidAddress(req.Organizer) {
		return nil, fmt.Errorf("%w: invalid organizer address", tickets.ErrValidation)
	}

	resaleCap := req.MaxResalePrice
	if resaleCap.IsZero() {
		resaleCap = req.TicketPrice.Mul(decimal.NewFromFloat(1.5))
	}
	if resaleCap.LessThan(req.TicketPrice) {
		return nil, fmt.Errorf("%w: max resale price below face price", tickets.ErrValidation)
	}

	royalty := req.RoyaltyPercent
	if royalty == 0 {
		royalty = 10
	}
	if royalty < 0 || royalty > 50 {
		return nil, fmt.Errorf("%w: royalty must be between 0 and 50", tickets.ErrValidation)
	}

	eventID, err := s.DB.NextEventID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate event id: %w", err)
	}

	now := time.Now()
	event := &models.Event{
		EventID:          eventID,
		Name:             req.Name,
		Description:      req.Description,
		EventDate:        req.EventDate,
		Venue:            req.Venue,
		ImageURL:         req.ImageURL,
		OrganizerAddress: models.NormalizeAddress(req.Organizer),
		TicketPrice:      req.TicketPrice,
		MaxResalePrice:   resaleCap,
		RoyaltyPercent:   royalty,
		TotalTickets:     req.TotalTickets,
		AvailableTickets: req.TotalTickets,
		SoldTickets:      0,
		Status:           models.EventStatusPublished,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID int64) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, eventID)
}

func (s *EventService) ListEvents(ctx context.Context, status string, upcoming bool) ([]models.Event, error) {
	return s.DB.ListEvents(ctx, status, upcoming)
}

// UpdateEvent applies the non-empty fields of req to an existing event.
// Pricing edits only affect tickets minted afterwards; every existing ticket
// carries the price cap and royalty it was minted with.
func (s *EventService) UpdateEvent(ctx context.Context, eventID int64, req models.EventRequest) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if !req.EventDate.IsZero() {
		event.EventDate = req.EventDate
	}
	if req.Venue != "" {
		event.Venue = req.Venue
	}
	if req.ImageURL != "" {
		event.ImageURL = req.ImageURL
	}
	if !req.TicketPrice.IsZero() {
		if req.TicketPrice.IsNegative() {
			return nil, fmt.Errorf("%w: ticket price cannot be negative", tickets.ErrValidation)
		}
		event.TicketPrice = req.TicketPrice
	}
	if !req.MaxResalePrice.IsZero() {
		event.MaxResalePrice = req.MaxResalePrice
	}
	if req.RoyaltyPercent != 0 {
		if req.RoyaltyPercent < 0 || req.RoyaltyPercent > 50 {
			return nil, fmt.Errorf("%w: royalty must be between 0 and 50", tickets.ErrValidation)
		}
		event.RoyaltyPercent = req.RoyaltyPercent
	}
	if event.MaxResalePrice.LessThan(event.TicketPrice) {
		return nil, fmt.Errorf("%w: max resale price below face price", tickets.ErrValidation)
	}

	if err := s.DB.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event that has sold nothing. Once a single ticket
// exists the event record backs live tokens and must stay.
func (s *EventService) DeleteEvent(ctx context.Context, eventID int64) error {
	event, err := s.DB.GetEventByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.SoldTickets > 0 {
		return fmt.Errorf("%w: event has %d sold tickets", tickets.ErrConflict, event.SoldTickets)
	}
	return s.DB.DeleteEvent(ctx, eventID)
}
