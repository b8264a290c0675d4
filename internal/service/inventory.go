package service

import (
	"context"
	"errors"
	"time"

	"ticketing-service/internal/models"
	"ticketing-service/internal/redisclient"
	"ticketing-service/internal/store"
	"ticketing-service/internal/util"

	"go.uber.org/zap"
)

// TicketInventory maintains the available counter per ticket type. The bound
// check and the decrement are one atomic unit in both paths: a Lua script in
// Redis, a conditional UPDATE in the database.
type TicketInventory struct {
	ticketTypes store.TicketTypeStore
	redis       *redisclient.Client // optional fast path; nil in tests
	logger      *zap.Logger
}

// NewTicketInventory creates the inventory ledger. redis may be nil, in which
// case every call goes straight to the store.
func NewTicketInventory(ticketTypes store.TicketTypeStore, redis *redisclient.Client) *TicketInventory {
	return &TicketInventory{
		ticketTypes: ticketTypes,
		redis:       redis,
		logger:      util.GetLogger(),
	}
}

// Reserve decrements the available count for a ticket type. Fails with
// ErrInsufficientInventory when the request exceeds the remaining count.
func (inv *TicketInventory) Reserve(ctx context.Context, ticketTypeID int64, quantity int) (*models.EventTicketType, error) {
	ctx, span := util.StartSpan(ctx, "TicketInventory.Reserve")
	defer span.End()

	start := time.Now()
	defer func() {
		util.InventoryReserveLatency.Observe(time.Since(start).Seconds())
	}()

	if inv.redis != nil {
		ok, err := inv.redis.ReserveAvailable(ctx, ticketTypeID, quantity)
		switch {
		case errors.Is(err, redisclient.ErrNotInitialized):
			// fall through to the database path
		case err != nil:
			inv.logger.Warn("Redis reservation failed, falling back to DB",
				zap.Int64("ticket_type_id", ticketTypeID),
				zap.Error(err))
		case !ok:
			util.InventoryReservationsFailed.WithLabelValues("insufficient").Inc()
			return nil, ErrInsufficientInventory
		}
	}

	tt, err := inv.ticketTypes.ReserveAvailable(ctx, ticketTypeID, quantity)
	if err != nil {
		// Undo a successful Redis decrement so the fast path stays aligned
		// with the authoritative count.
		if inv.redis != nil {
			if relErr := inv.redis.ReleaseAvailable(ctx, ticketTypeID, quantity); relErr != nil &&
				!errors.Is(relErr, redisclient.ErrNotInitialized) {
				inv.logger.Error("Failed to roll back Redis reservation",
					zap.Int64("ticket_type_id", ticketTypeID),
					zap.Error(relErr))
			}
		}
		if errors.Is(err, store.ErrInsufficientAvailable) {
			util.InventoryReservationsFailed.WithLabelValues("insufficient").Inc()
			return nil, ErrInsufficientInventory
		}
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		util.InventoryReservationsFailed.WithLabelValues("error").Inc()
		return nil, err
	}

	return tt, nil
}

// Release restores quantity units to a ticket type, clamped by the store to
// the original allotment.
func (inv *TicketInventory) Release(ctx context.Context, ticketTypeID int64, quantity int) (*models.EventTicketType, error) {
	ctx, span := util.StartSpan(ctx, "TicketInventory.Release")
	defer span.End()

	if inv.redis != nil {
		if err := inv.redis.ReleaseAvailable(ctx, ticketTypeID, quantity); err != nil &&
			!errors.Is(err, redisclient.ErrNotInitialized) {
			inv.logger.Error("Failed to release inventory in Redis",
				zap.Int64("ticket_type_id", ticketTypeID),
				zap.Error(err))
		}
	}

	tt, err := inv.ticketTypes.ReleaseAvailable(ctx, ticketTypeID, quantity)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTicketTypeNotFound
		}
		return nil, err
	}

	util.InventoryReleasedTotal.Add(float64(quantity))
	return tt, nil
}

// SyncToRedis seeds the Redis counters for every ticket type of an event.
func (inv *TicketInventory) SyncToRedis(ctx context.Context, eventID int64) error {
	if inv.redis == nil {
		return nil
	}

	types, err := inv.ticketTypes.GetTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	for _, tt := range types {
		if err := inv.redis.InitInventory(ctx, tt.ID, tt.Available, tt.Quantity); err != nil {
			inv.logger.Error("Failed to init Redis inventory",
				zap.Int64("ticket_type_id", tt.ID),
				zap.Error(err))
		}
	}

	inv.logger.Info("Inventory synced to Redis",
		zap.Int64("event_id", eventID),
		zap.Int("ticket_types", len(types)))
	return nil
}
