package service

import (
	"context"
	"testing"
	"time"

	"ticketing-service/internal/models"
	"ticketing-service/internal/store"

	"github.com/stretchr/testify/require"
)

// fixture seeds a published event with two ticket types and returns the
// stores plus the seeded records.
type fixture struct {
	stores    *store.Stores
	inventory *TicketInventory
	event     models.Event
	general   models.EventTicketType
	vip       models.EventTicketType
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	mem := store.NewMemory()
	stores := mem.Stores()

	event := models.Event{
		Title:       "Go Conference",
		Venue:       "City Hall",
		Category:    "conference",
		StartsAt:    time.Now().Add(30 * 24 * time.Hour),
		OrganizerID: 1,
		Status:      models.EventStatusPublished,
	}
	require.NoError(t, stores.Events.CreateEvent(ctx, &event))

	types, err := stores.TicketTypes.CreateTicketTypes(ctx, []models.EventTicketType{
		{
			EventID:        event.ID,
			Description:    "General",
			Price:          5000,
			Quantity:       10,
			Available:      10,
			AvailableUntil: event.StartsAt,
		},
		{
			EventID:        event.ID,
			Description:    "VIP",
			Price:          20000,
			Quantity:       3,
			Available:      3,
			AvailableUntil: event.StartsAt,
		},
	})
	require.NoError(t, err)

	return &fixture{
		stores:    stores,
		inventory: NewTicketInventory(stores.TicketTypes, nil),
		event:     event,
		general:   types[0],
		vip:       types[1],
	}
}

func (f *fixture) orderService() *OrderService {
	return NewOrderService(f.stores, f.inventory, nil)
}

func (f *fixture) cancellationService() *CancellationService {
	return NewCancellationService(f.stores, f.inventory, nil)
}

func (f *fixture) available(t *testing.T, id int64) int {
	t.Helper()
	tt, err := f.stores.TicketTypes.GetTicketTypeByID(context.Background(), id)
	require.NoError(t, err)
	return tt.Available
}
