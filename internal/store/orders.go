package store

import (
	"context"
	"database/sql"
	"fmt"

	"ticketing-service/internal/models"
)

// CreateOrder inserts an order
func (p *Postgres) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, event_id, quantity, total_amount, status, payment_method, payment_status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return p.db.GetContext(ctx, order, query,
		order.UserID, order.EventID, order.Quantity, order.TotalAmount,
		order.Status, order.PaymentMethod, order.PaymentStatus, order.IdempotencyKey)
}

// GetOrderByID retrieves an order by ID
func (p *Postgres) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := p.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key. A nil order
// with a nil error means no order was placed with the key.
func (p *Postgres) GetOrderByIdempotencyKey(ctx context.Context, key string) (*models.Order, error) {
	var order models.Order
	err := p.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE idempotency_key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByUserID retrieves orders for a user, newest first
func (p *Postgres) GetOrdersByUserID(ctx context.Context, userID int64) ([]models.Order, error) {
	orders := []models.Order{}
	err := p.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// UpdateOrderStatus updates order status
func (p *Postgres) UpdateOrderStatus(ctx context.Context, id int64, status string) (*models.Order, error) {
	var order models.Order
	err := p.db.GetContext(ctx, &order,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *", status, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdatePaymentStatus records the payment outcome on an order
func (p *Postgres) UpdatePaymentStatus(ctx context.Context, id int64, orderStatus, paymentStatus, transactionID string) (*models.Order, error) {
	var order models.Order
	err := p.db.GetContext(ctx, &order, `
		UPDATE orders
		SET status = $1, payment_status = $2, transaction_id = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING *`, orderStatus, paymentStatus, transactionID, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateTicketBatch inserts the full batch of tickets for an order. The
// unique index on ticket_number makes a retried issuance fail instead of
// duplicating admission units.
func (p *Postgres) CreateTicketBatch(ctx context.Context, tickets []models.Ticket) ([]models.Ticket, error) {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tickets (event_id, event_ticket_id, order_id, ticket_number, qr_code, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	out := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		if err := tx.GetContext(ctx, &t, query,
			t.EventID, t.EventTicketID, t.OrderID, t.TicketNumber, t.QRCode, t.Status); err != nil {
			return nil, fmt.Errorf("failed to create ticket %s: %w", t.TicketNumber, err)
		}
		out[i] = t
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTicketsByOrderID retrieves all tickets for an order
func (p *Postgres) GetTicketsByOrderID(ctx context.Context, orderID int64) ([]models.Ticket, error) {
	tickets := []models.Ticket{}
	err := p.db.SelectContext(ctx, &tickets,
		"SELECT * FROM tickets WHERE order_id = $1 ORDER BY id", orderID)
	return tickets, err
}

// GetTicketByQRCode retrieves a ticket by its QR payload (unique index)
func (p *Postgres) GetTicketByQRCode(ctx context.Context, qrCode string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := p.db.GetContext(ctx, &ticket, "SELECT * FROM tickets WHERE qr_code = $1", qrCode)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// UpdateTicketStatus updates a ticket's status
func (p *Postgres) UpdateTicketStatus(ctx context.Context, id int64, status string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := p.db.GetContext(ctx, &ticket,
		"UPDATE tickets SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING *", status, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// MarkTicketUsed transitions a ticket active -> used in one statement, so a
// second validation of the same ticket cannot slip through between the check
// and the write.
func (p *Postgres) MarkTicketUsed(ctx context.Context, id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := p.db.GetContext(ctx, &ticket, `
		UPDATE tickets
		SET status = $1, validated_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND status = $3
		RETURNING *`, models.TicketStatusUsed, id, models.TicketStatusActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
