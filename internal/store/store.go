package store

import (
	"context"
	"errors"

	"ticketing-service/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ErrInsufficientAvailable is returned by ReserveAvailable when the requested
// quantity exceeds the remaining count.
var ErrInsufficientAvailable = errors.New("insufficient available")

// EventStore persists events.
type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id int64) (*models.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, error)
	UpdateEventStatus(ctx context.Context, id int64, status string) error
}

// EventFilter narrows ListEvents. Zero values mean "any".
type EventFilter struct {
	Status      string
	Category    string
	OrganizerID int64
}

// TicketTypeStore persists event ticket types and carries the inventory
// counter. ReserveAvailable must perform the bound check and the decrement as
// one atomic unit; ReleaseAvailable must never push Available past Quantity.
type TicketTypeStore interface {
	CreateTicketTypes(ctx context.Context, types []models.EventTicketType) ([]models.EventTicketType, error)
	GetTicketTypeByID(ctx context.Context, id int64) (*models.EventTicketType, error)
	GetTicketTypesByEvent(ctx context.Context, eventID int64) ([]models.EventTicketType, error)
	ReserveAvailable(ctx context.Context, id int64, quantity int) (*models.EventTicketType, error)
	ReleaseAvailable(ctx context.Context, id int64, quantity int) (*models.EventTicketType, error)
}

// OrderStore persists orders.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int64, orderStatus, paymentStatus, transactionID string) (*models.Order, error)
}

// TicketStore persists tickets.
type TicketStore interface {
	CreateTicketBatch(ctx context.Context, tickets []models.Ticket) ([]models.Ticket, error)
	GetTicketsByOrderID(ctx context.Context, orderID int64) ([]models.Ticket, error)
	GetTicketByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error)
	UpdateTicketStatus(ctx context.Context, id int64, status string) (*models.Ticket, error)
	// MarkTicketUsed moves a ticket from active to used, setting validated_at.
	// It fails with ErrNotFound when the ticket is not in the active state, so
	// the transition is atomic with the state check.
	MarkTicketUsed(ctx context.Context, id int64) (*models.Ticket, error)
}

// ProcessedEventStore records consumed broker events for idempotency.
type ProcessedEventStore interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
}

// Stores bundles the per-entity interfaces for injection into services.
type Stores struct {
	Events      EventStore
	TicketTypes TicketTypeStore
	Orders      OrderStore
	Tickets     TicketStore
	Processed   ProcessedEventStore
}
