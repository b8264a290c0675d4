package models

import "time"

// Event types
const (
	EventTypeOrderCreated     = "ORDER_CREATED"
	EventTypeOrderCancelled   = "ORDER_CANCELLED"
	EventTypeTicketsIssued    = "TICKETS_ISSUED"
	EventTypePaymentCompleted = "PAYMENT_COMPLETED"
	EventTypePaymentFailed    = "PAYMENT_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLineData represents one cart line in events
type OrderLineData struct {
	EventTicketID int64 `json:"event_ticket_id"`
	Quantity      int   `json:"quantity"`
	UnitPrice     int64 `json:"unit_price"`
}

// OrderCreatedEvent published when an order and its tickets are created
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	EventRefID  int64           `json:"event_ref_id"`
	TotalAmount int64           `json:"total_amount"`
	Lines       []OrderLineData `json:"lines"`
}

// OrderCancelledEvent published when an order is cancelled and its inventory
// is released
type OrderCancelledEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	UserID  int64  `json:"user_id"`
	Reason  string `json:"reason"`
}

// TicketsIssuedEvent published with the batch of tickets for an order
type TicketsIssuedEvent struct {
	BaseEvent
	OrderID       int64    `json:"order_id"`
	TicketNumbers []string `json:"ticket_numbers"`
}

// PaymentCompletedEvent published when the payment provider accepts a charge
type PaymentCompletedEvent struct {
	BaseEvent
	OrderID       int64  `json:"order_id"`
	Amount        int64  `json:"amount"`
	TransactionID string `json:"transaction_id"`
}

// PaymentFailedEvent published when the payment provider declines a charge
type PaymentFailedEvent struct {
	BaseEvent
	OrderID int64  `json:"order_id"`
	Amount  int64  `json:"amount"`
	Reason  string `json:"reason"`
}
