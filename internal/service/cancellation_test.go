package service

import (
	"context"
	"testing"

	"ticketing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrder(t *testing.T, f *fixture, userID int64, qty int) *CreateOrderResult {
	t.Helper()
	result, err := f.orderService().CreateOrder(context.Background(), &CreateOrderRequest{
		UserID:        userID,
		EventID:       f.event.ID,
		Lines:         []CartLine{{EventTicketID: f.general.ID, Quantity: qty}},
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	return result
}

func TestCancelOrder_RestoresInventoryAndCancelsTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := placeOrder(t, f, 7, 3)
	require.Equal(t, 7, f.available(t, f.general.ID))

	order, err := f.cancellationService().CancelOrder(ctx, result.Order.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	assert.Equal(t, 10, f.available(t, f.general.ID))

	tickets, err := f.stores.Tickets.GetTicketsByOrderID(ctx, result.Order.ID)
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	for _, ticket := range tickets {
		assert.Equal(t, models.TicketStatusCancelled, ticket.Status)
	}
}

func TestCancelOrder_Unauthorized(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := placeOrder(t, f, 7, 3)

	_, err := f.cancellationService().CancelOrder(ctx, result.Order.ID, 8)
	require.ErrorIs(t, err, ErrNotOrderOwner)

	// no side effects
	order, err := f.stores.Orders.GetOrderByID(ctx, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, 7, f.available(t, f.general.ID))

	tickets, err := f.stores.Tickets.GetTicketsByOrderID(ctx, result.Order.ID)
	require.NoError(t, err)
	for _, ticket := range tickets {
		assert.Equal(t, models.TicketStatusActive, ticket.Status)
	}
}

func TestCancelOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.cancellationService().CancelOrder(context.Background(), 9999, 7)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCancelOrder_AlreadyCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := placeOrder(t, f, 7, 2)

	_, err := f.cancellationService().CancelOrder(ctx, result.Order.ID, 7)
	require.NoError(t, err)

	_, err = f.cancellationService().CancelOrder(ctx, result.Order.ID, 7)
	require.ErrorIs(t, err, ErrOrderAlreadyCancelled)

	// the second attempt must not inflate availability past the allotment
	assert.Equal(t, 10, f.available(t, f.general.ID))
}

func TestCancelOrder_RefundRequiredForPaidOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := placeOrder(t, f, 7, 2)
	_, err := f.stores.Orders.UpdatePaymentStatus(ctx, result.Order.ID,
		models.OrderStatusConfirmed, models.PaymentStatusCompleted, "TXN-abc")
	require.NoError(t, err)

	_, err = f.cancellationService().CancelOrder(ctx, result.Order.ID, 7)
	assert.ErrorIs(t, err, ErrRefundRequired)
	assert.Equal(t, 8, f.available(t, f.general.ID))
}

func TestCancelOrder_UsedTicketsAreNotReleased(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := placeOrder(t, f, 7, 3)

	// one attendee already went through the door
	_, err := f.stores.Tickets.MarkTicketUsed(ctx, result.Tickets[0].ID)
	require.NoError(t, err)

	_, err = f.cancellationService().CancelOrder(ctx, result.Order.ID, 7)
	require.NoError(t, err)

	// only the two unused tickets return to inventory
	assert.Equal(t, 9, f.available(t, f.general.ID))

	tickets, err := f.stores.Tickets.GetTicketsByOrderID(ctx, result.Order.ID)
	require.NoError(t, err)
	statuses := map[string]int{}
	for _, ticket := range tickets {
		statuses[ticket.Status]++
	}
	assert.Equal(t, 1, statuses[models.TicketStatusUsed])
	assert.Equal(t, 2, statuses[models.TicketStatusCancelled])
}
