package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticketing-service/internal/broker"
	"ticketing-service/internal/models"
	"ticketing-service/internal/store"
	"ticketing-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService turns a validated cart into an order and its issued tickets,
// and answers order/ticket lookups.
type OrderService struct {
	stores         *store.Stores
	inventory      *TicketInventory
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(stores *store.Stores, inventory *TicketInventory, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		stores:         stores,
		inventory:      inventory,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrderRequest represents a checkout cart
type CreateOrderRequest struct {
	UserID         int64      `json:"user_id" binding:"required"`
	EventID        int64      `json:"event_id" binding:"required"`
	Lines          []CartLine `json:"lines" binding:"required,min=1"`
	PaymentMethod  string     `json:"payment_method" binding:"required"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
}

// CreateOrderResult carries the created order and its ticket batch
type CreateOrderResult struct {
	Order   *models.Order   `json:"order"`
	Tickets []models.Ticket `json:"tickets"`
}

// CreateOrder validates the cart against the event and its inventory, then
// creates the order, reserves inventory per line and issues the ticket batch.
// The whole validation pass runs before any write: a cart that fails on any
// line produces no order and no tickets.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*CreateOrderResult, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = uuid.New().String()
	}

	existing, err := s.stores.Orders.GetOrderByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		s.logger.Info("Duplicate order request detected",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", existing.ID))
		tickets, err := s.stores.Tickets.GetTicketsByOrderID(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		return &CreateOrderResult{Order: existing, Tickets: tickets}, nil
	}

	event, err := s.stores.Events.GetEventByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.OrdersFailedTotal.WithLabelValues("event_not_found").Inc()
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	if event.Status != models.EventStatusPublished {
		util.OrdersFailedTotal.WithLabelValues("event_not_bookable").Inc()
		return nil, ErrEventNotBookable
	}

	ticketTypes, err := s.stores.TicketTypes.GetTicketTypesByEvent(ctx, req.EventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticket types: %w", err)
	}
	if len(ticketTypes) == 0 {
		util.OrdersFailedTotal.WithLabelValues("no_ticket_types").Inc()
		return nil, ErrNoTicketTypes
	}

	typesByID := make(map[int64]*models.EventTicketType, len(ticketTypes))
	for i := range ticketTypes {
		typesByID[ticketTypes[i].ID] = &ticketTypes[i]
	}

	// Validation pass: all lines are checked before anything is written.
	totalQuantity := 0
	var totalAmount int64
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			continue
		}
		tt, ok := typesByID[line.EventTicketID]
		if !ok {
			util.OrdersFailedTotal.WithLabelValues("ticket_type_not_found").Inc()
			return nil, fmt.Errorf("%w: %d", ErrTicketTypeNotFound, line.EventTicketID)
		}
		if line.Quantity > tt.Available {
			util.OrdersFailedTotal.WithLabelValues("insufficient_inventory").Inc()
			return nil, fmt.Errorf("%w: %s", ErrInsufficientInventory, tt.Description)
		}
		totalQuantity += line.Quantity
		totalAmount += tt.Price * int64(line.Quantity)
	}
	if totalQuantity <= 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		UserID:         req.UserID,
		EventID:        req.EventID,
		Quantity:       totalQuantity,
		TotalAmount:    totalAmount,
		Status:         models.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  models.PaymentStatusPending,
		IdempotencyKey: req.IdempotencyKey,
	}

	if err := s.stores.Orders.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("event_id", req.EventID),
		zap.Int("quantity", totalQuantity))

	// Reservation pass, in cart order. A failure here (concurrent sellout,
	// write error) leaves the order pending with partial reservations; that
	// state is logged for reconciliation rather than silently dropped.
	lines := make([]models.OrderLineData, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			continue
		}
		tt := typesByID[line.EventTicketID]
		if _, err := s.inventory.Reserve(ctx, tt.ID, line.Quantity); err != nil {
			s.logger.Error("Reservation failed mid-fulfillment, order needs reconciliation",
				zap.Int64("order_id", order.ID),
				zap.Int64("ticket_type_id", tt.ID),
				zap.Error(err))
			return nil, fmt.Errorf("inventory reservation failed for order %d: %w", order.ID, err)
		}
		lines = append(lines, models.OrderLineData{
			EventTicketID: tt.ID,
			Quantity:      line.Quantity,
			UnitPrice:     tt.Price,
		})
	}

	tickets, err := s.stores.Tickets.CreateTicketBatch(ctx, IssueTicketBatch(req.EventID, order.ID, req.Lines))
	if err != nil {
		s.logger.Error("Ticket issuance failed mid-fulfillment, order needs reconciliation",
			zap.Int64("order_id", order.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to issue tickets for order %d: %w", order.ID, err)
	}

	util.TicketsIssuedTotal.Add(float64(len(tickets)))

	if s.eventPublisher != nil {
		created := &models.OrderCreatedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCreated,
				Timestamp: time.Now(),
			},
			OrderID:     order.ID,
			UserID:      order.UserID,
			EventRefID:  order.EventID,
			TotalAmount: order.TotalAmount,
			Lines:       lines,
		}
		if err := s.eventPublisher.PublishOrderCreated(ctx, created); err != nil {
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}

		numbers := make([]string, len(tickets))
		for i, t := range tickets {
			numbers[i] = t.TicketNumber
		}
		issued := &models.TicketsIssuedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeTicketsIssued,
				Timestamp: time.Now(),
			},
			OrderID:       order.ID,
			TicketNumbers: numbers,
		}
		if err := s.eventPublisher.PublishTicketsIssued(ctx, issued); err != nil {
			s.logger.Error("Failed to publish TicketsIssued event", zap.Error(err))
		}
	}

	return &CreateOrderResult{Order: order, Tickets: tickets}, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.stores.Orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// GetUserOrders retrieves a user's orders, newest first
func (s *OrderService) GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.stores.Orders.GetOrdersByUserID(ctx, userID)
}

// GetOrderTickets retrieves the tickets of an order after checking the
// requesting user owns it.
func (s *OrderService) GetOrderTickets(ctx context.Context, orderID, userID int64) ([]models.Ticket, error) {
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
	return s.stores.Tickets.GetTicketsByOrderID(ctx, orderID)
}
