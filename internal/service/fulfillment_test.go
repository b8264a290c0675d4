package service

import (
	"context"
	"testing"

	"ticketing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_Success(t *testing.T) {
	f := newFixture(t)
	svc := f.orderService()

	result, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:  7,
		EventID: f.event.ID,
		Lines: []CartLine{
			{EventTicketID: f.general.ID, Quantity: 2},
			{EventTicketID: f.vip.ID, Quantity: 3},
		},
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, result.Order.Status)
	assert.Equal(t, models.PaymentStatusPending, result.Order.PaymentStatus)
	assert.Equal(t, 5, result.Order.Quantity)
	assert.Equal(t, int64(2*5000+3*20000), result.Order.TotalAmount)

	require.Len(t, result.Tickets, 5)
	seen := map[string]bool{}
	for _, ticket := range result.Tickets {
		assert.Equal(t, models.TicketStatusActive, ticket.Status)
		assert.False(t, seen[ticket.TicketNumber], "duplicate ticket number %s", ticket.TicketNumber)
		assert.False(t, seen[ticket.QRCode], "duplicate qr code %s", ticket.QRCode)
		seen[ticket.TicketNumber] = true
		seen[ticket.QRCode] = true
	}

	assert.Equal(t, 8, f.available(t, f.general.ID))
	assert.Equal(t, 0, f.available(t, f.vip.ID))
}

func TestCreateOrder_InsufficientInventoryHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	svc := f.orderService()

	// general fits, vip does not; nothing at all may be written
	_, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:  7,
		EventID: f.event.ID,
		Lines: []CartLine{
			{EventTicketID: f.general.ID, Quantity: 1},
			{EventTicketID: f.vip.ID, Quantity: 5},
		},
		PaymentMethod: "card",
	})
	require.ErrorIs(t, err, ErrInsufficientInventory)

	assert.Equal(t, 10, f.available(t, f.general.ID))
	assert.Equal(t, 3, f.available(t, f.vip.ID))

	orders, err := f.stores.Orders.GetOrdersByUserID(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCreateOrder_EventNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orderService().CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:        7,
		EventID:       9999,
		Lines:         []CartLine{{EventTicketID: f.general.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestCreateOrder_EventNotBookable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.stores.Events.UpdateEventStatus(context.Background(), f.event.ID, models.EventStatusDraft))

	_, err := f.orderService().CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:        7,
		EventID:       f.event.ID,
		Lines:         []CartLine{{EventTicketID: f.general.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, ErrEventNotBookable)
}

func TestCreateOrder_TicketTypeNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.orderService().CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:        7,
		EventID:       f.event.ID,
		Lines:         []CartLine{{EventTicketID: 424242, Quantity: 1}},
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
}

func TestCreateOrder_EmptyCart(t *testing.T) {
	f := newFixture(t)

	// non-positive lines are skipped, not rejected, so this cart sums to zero
	_, err := f.orderService().CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:  7,
		EventID: f.event.ID,
		Lines: []CartLine{
			{EventTicketID: f.general.ID, Quantity: 0},
			{EventTicketID: f.vip.ID, Quantity: -2},
		},
		PaymentMethod: "card",
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCreateOrder_NegativeLinesSkippedButValidLinesFulfilled(t *testing.T) {
	f := newFixture(t)

	result, err := f.orderService().CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:  7,
		EventID: f.event.ID,
		Lines: []CartLine{
			{EventTicketID: f.vip.ID, Quantity: -1},
			{EventTicketID: f.general.ID, Quantity: 2},
		},
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Order.Quantity)
	assert.Len(t, result.Tickets, 2)
	assert.Equal(t, 3, f.available(t, f.vip.ID))
}

func TestCreateOrder_IdempotencyKeyReturnsExistingOrder(t *testing.T) {
	f := newFixture(t)
	svc := f.orderService()

	req := &CreateOrderRequest{
		UserID:         7,
		EventID:        f.event.ID,
		Lines:          []CartLine{{EventTicketID: f.general.ID, Quantity: 2}},
		PaymentMethod:  "card",
		IdempotencyKey: "checkout-123",
	}

	first, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Order.ID, second.Order.ID)
	assert.Len(t, second.Tickets, 2)
	// inventory was only decremented once
	assert.Equal(t, 8, f.available(t, f.general.ID))
}

func TestGetOrderTickets_OwnershipEnforced(t *testing.T) {
	f := newFixture(t)
	svc := f.orderService()

	result, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:        7,
		EventID:       f.event.ID,
		Lines:         []CartLine{{EventTicketID: f.general.ID, Quantity: 1}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	tickets, err := svc.GetOrderTickets(context.Background(), result.Order.ID, 7)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	_, err = svc.GetOrderTickets(context.Background(), result.Order.ID, 8)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = svc.GetOrderTickets(context.Background(), 9999, 7)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
