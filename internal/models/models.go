package models

import "time"

// Event represents an event listing. Ticket types are stored separately and
// loaded on demand; only published events accept orders.
type Event struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Venue       string    `db:"venue" json:"venue"`
	Address     string    `db:"address" json:"address"`
	Category    string    `db:"category" json:"category"`
	StartsAt    time.Time `db:"starts_at" json:"starts_at"`
	OrganizerID int64     `db:"organizer_id" json:"organizer_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// EventTicketType is a priced admission tier ("General", "VIP"). Quantity is
// the original allotment and never changes after creation; Available is the
// remaining count and must stay within [0, Quantity].
type EventTicketType struct {
	ID             int64     `db:"id" json:"id"`
	EventID        int64     `db:"event_id" json:"event_id"`
	Description    string    `db:"description" json:"description"`
	Price          int64     `db:"price" json:"price"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Available      int       `db:"available" json:"available"`
	AvailableUntil time.Time `db:"available_until" json:"available_until"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Order is one checkout transaction for one user against one event.
type Order struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	EventID        int64     `db:"event_id" json:"event_id"`
	Quantity       int       `db:"quantity" json:"quantity"`
	TotalAmount    int64     `db:"total_amount" json:"total_amount"`
	Status         string    `db:"status" json:"status"`
	PaymentMethod  string    `db:"payment_method" json:"payment_method"`
	PaymentStatus  string    `db:"payment_status" json:"payment_status"`
	TransactionID  string    `db:"transaction_id" json:"transaction_id,omitempty"`
	IdempotencyKey string    `db:"idempotency_key" json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Ticket is one individually numbered admission unit issued against an order.
// Status only moves forward: active -> used | cancelled | expired.
type Ticket struct {
	ID            int64      `db:"id" json:"id"`
	EventID       int64      `db:"event_id" json:"event_id"`
	EventTicketID int64      `db:"event_ticket_id" json:"event_ticket_id"`
	OrderID       int64      `db:"order_id" json:"order_id"`
	TicketNumber  string     `db:"ticket_number" json:"ticket_number"`
	QRCode        string     `db:"qr_code" json:"qr_code"`
	Status        string     `db:"status" json:"status"`
	ValidatedAt   *time.Time `db:"validated_at" json:"validated_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Event statuses
const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Ticket statuses
const (
	TicketStatusActive    = "active"
	TicketStatusUsed      = "used"
	TicketStatusCancelled = "cancelled"
	TicketStatusExpired   = "expired"
)

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
