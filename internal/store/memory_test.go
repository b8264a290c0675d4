package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"ticketing-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTicketType(t *testing.T, m *Memory, quantity int) models.EventTicketType {
	t.Helper()
	types, err := m.CreateTicketTypes(context.Background(), []models.EventTicketType{
		{EventID: 1, Description: "General", Price: 100, Quantity: quantity, Available: quantity},
	})
	require.NoError(t, err)
	return types[0]
}

func TestMemory_ReserveAvailableIsBoundChecked(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tt := seedTicketType(t, m, 2)

	got, err := m.ReserveAvailable(ctx, tt.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)

	_, err = m.ReserveAvailable(ctx, tt.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientAvailable)

	_, err = m.ReserveAvailable(ctx, 9999, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ReleaseAvailableClamps(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tt := seedTicketType(t, m, 5)

	_, err := m.ReserveAvailable(ctx, tt.ID, 3)
	require.NoError(t, err)

	got, err := m.ReleaseAvailable(ctx, tt.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Available)
}

func TestMemory_ConcurrentReserves(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	tt := seedTicketType(t, m, 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.ReserveAvailable(ctx, tt.ID, 1); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, granted)

	got, err := m.GetTicketTypeByID(ctx, tt.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)
}

func TestMemory_MarkTicketUsedIsSingleShot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	tickets, err := m.CreateTicketBatch(ctx, []models.Ticket{
		{EventID: 1, EventTicketID: 1, OrderID: 1, TicketNumber: "1-1-1", QRCode: "QR-1-1", Status: models.TicketStatusActive},
	})
	require.NoError(t, err)
	id := tickets[0].ID

	used, err := m.MarkTicketUsed(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusUsed, used.Status)
	require.NotNil(t, used.ValidatedAt)
	assert.WithinDuration(t, time.Now(), *used.ValidatedAt, time.Second)

	_, err = m.MarkTicketUsed(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_OrderLookups(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	order := models.Order{UserID: 7, EventID: 1, Quantity: 1, TotalAmount: 100,
		Status: models.OrderStatusPending, PaymentStatus: models.PaymentStatusPending,
		IdempotencyKey: "key-1"}
	require.NoError(t, m.CreateOrder(ctx, &order))

	byKey, err := m.GetOrderByIdempotencyKey(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, order.ID, byKey.ID)

	missing, err := m.GetOrderByIdempotencyKey(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, missing)

	byUser, err := m.GetOrdersByUserID(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	_, err = m.GetOrderByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_TicketLookups(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	tickets, err := m.CreateTicketBatch(ctx, []models.Ticket{
		{OrderID: 1, TicketNumber: "1-1-1", QRCode: "QR-1-1", Status: models.TicketStatusActive},
		{OrderID: 1, TicketNumber: "1-1-2", QRCode: "QR-1-2", Status: models.TicketStatusActive},
		{OrderID: 2, TicketNumber: "1-2-1", QRCode: "QR-2-1", Status: models.TicketStatusActive},
	})
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	byOrder, err := m.GetTicketsByOrderID(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, byOrder, 2)

	byQR, err := m.GetTicketByQRCode(ctx, "QR-2-1")
	require.NoError(t, err)
	assert.Equal(t, "1-2-1", byQR.TicketNumber)

	_, err = m.GetTicketByQRCode(ctx, "QR-nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ProcessedEvents(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	processed, err := m.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, m.MarkEventProcessed(ctx, "evt-1", "ORDER_CREATED"))

	processed, err = m.IsEventProcessed(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)
}
