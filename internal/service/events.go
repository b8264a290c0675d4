package service

import (
	"context"
	"errors"
	"fmt"

	"ticketing-service/internal/models"
	"ticketing-service/internal/store"
	"ticketing-service/internal/util"

	"go.uber.org/zap"
)

// EventService manages the event catalog and its ticket types.
type EventService struct {
	stores    *store.Stores
	inventory *TicketInventory
	logger    *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(stores *store.Stores, inventory *TicketInventory) *EventService {
	return &EventService{
		stores:    stores,
		inventory: inventory,
		logger:    util.GetLogger(),
	}
}

// CreateEventRequest carries a new event and its ticket tiers.
type CreateEventRequest struct {
	Event       models.Event             `json:"event" binding:"required"`
	TicketTypes []models.EventTicketType `json:"ticket_types" binding:"required,min=1"`
}

// EventWithTicketTypes is an event joined with its tiers.
type EventWithTicketTypes struct {
	Event       models.Event             `json:"event"`
	TicketTypes []models.EventTicketType `json:"ticket_types"`
}

// CreateEvent creates an event with its ticket-type batch. Each tier starts
// with available equal to its allotment.
func (s *EventService) CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventWithTicketTypes, error) {
	if len(req.TicketTypes) == 0 {
		return nil, ErrNoTicketTypes
	}
	for _, tt := range req.TicketTypes {
		if tt.Price < 0 {
			return nil, fmt.Errorf("ticket type %q: price must be non-negative", tt.Description)
		}
		if tt.Quantity <= 0 {
			return nil, fmt.Errorf("ticket type %q: quantity must be positive", tt.Description)
		}
	}

	event := req.Event
	if event.Status == "" {
		event.Status = models.EventStatusDraft
	}
	if err := s.stores.Events.CreateEvent(ctx, &event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	types := make([]models.EventTicketType, len(req.TicketTypes))
	for i, tt := range req.TicketTypes {
		tt.EventID = event.ID
		tt.Available = tt.Quantity
		types[i] = tt
	}

	created, err := s.stores.TicketTypes.CreateTicketTypes(ctx, types)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket types: %w", err)
	}

	s.logger.Info("Event created",
		zap.Int64("event_id", event.ID),
		zap.Int("ticket_types", len(created)))

	return &EventWithTicketTypes{Event: event, TicketTypes: created}, nil
}

// PublishEvent moves an event to published and seeds the Redis inventory
// counters for its ticket types.
func (s *EventService) PublishEvent(ctx context.Context, eventID int64) error {
	if err := s.stores.Events.UpdateEventStatus(ctx, eventID, models.EventStatusPublished); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEventNotFound
		}
		return err
	}
	return s.inventory.SyncToRedis(ctx, eventID)
}

// GetEvent retrieves an event with its ticket types
func (s *EventService) GetEvent(ctx context.Context, eventID int64) (*EventWithTicketTypes, error) {
	event, err := s.stores.Events.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	types, err := s.stores.TicketTypes.GetTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return &EventWithTicketTypes{Event: *event, TicketTypes: types}, nil
}

// ListEvents retrieves events matching the filter
func (s *EventService) ListEvents(ctx context.Context, filter store.EventFilter) ([]models.Event, error) {
	return s.stores.Events.ListEvents(ctx, filter)
}
