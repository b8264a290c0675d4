package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ticketing-service/internal/broker"
	"ticketing-service/internal/models"
	"ticketing-service/internal/store"
	"ticketing-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancellationService reverses a fulfillment: cancels the order, cancels its
// tickets and restores inventory per ticket type.
type CancellationService struct {
	stores         *store.Stores
	inventory      *TicketInventory
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewCancellationService creates a new cancellation service
func NewCancellationService(stores *store.Stores, inventory *TicketInventory, eventPublisher *broker.EventPublisher) *CancellationService {
	return &CancellationService{
		stores:         stores,
		inventory:      inventory,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CancelOrder cancels an order on behalf of the user who placed it. Confirmed
// and paid orders must go through the refund path instead. Only tickets that
// were still active count toward the inventory release, so a repeated
// cancellation cannot inflate availability.
func (s *CancellationService) CancelOrder(ctx context.Context, orderID, userID int64) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "CancellationService.CancelOrder")
	defer span.End()

	order, err := s.stores.Orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, ErrOrderAlreadyCancelled
	}
	if order.Status == models.OrderStatusConfirmed && order.PaymentStatus == models.PaymentStatusCompleted {
		return nil, ErrRefundRequired
	}

	updated, err := s.stores.Orders.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}

	tickets, err := s.stores.Tickets.GetTicketsByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	// Ticket status updates run as an unordered batch.
	var wg sync.WaitGroup
	released := make(map[int64]int)
	var mu sync.Mutex
	for _, ticket := range tickets {
		if ticket.Status != models.TicketStatusActive {
			continue
		}

		wg.Add(1)
		go func(t models.Ticket) {
			defer wg.Done()
			if _, err := s.stores.Tickets.UpdateTicketStatus(ctx, t.ID, models.TicketStatusCancelled); err != nil {
				s.logger.Error("Failed to cancel ticket",
					zap.Int64("ticket_id", t.ID),
					zap.Error(err))
				return
			}
			mu.Lock()
			released[t.EventTicketID]++
			mu.Unlock()
		}(ticket)
	}
	wg.Wait()

	for ticketTypeID, count := range released {
		if _, err := s.inventory.Release(ctx, ticketTypeID, count); err != nil {
			s.logger.Error("Failed to release inventory",
				zap.Int64("ticket_type_id", ticketTypeID),
				zap.Int("count", count),
				zap.Error(err))
		}
	}

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.Int64("order_id", orderID),
		zap.Int("tickets_cancelled", len(tickets)))

	if s.eventPublisher != nil {
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID: orderID,
			UserID:  userID,
			Reason:  "user_requested",
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	return updated, nil
}
