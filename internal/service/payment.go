package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"ticketing-service/internal/broker"
	"ticketing-service/internal/models"
	"ticketing-service/internal/store"
	"ticketing-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChargeResult is the outcome of a payment-provider charge.
type ChargeResult struct {
	Success       bool
	TransactionID string
	Reason        string
}

// PaymentGateway is the external payment provider boundary.
type PaymentGateway interface {
	Charge(ctx context.Context, orderID int64, amount int64, description string) (*ChargeResult, error)
}

// MockGateway simulates a payment provider with a configurable success rate.
type MockGateway struct {
	SuccessRate float64
}

// NewMockGateway creates a provider stub that approves the given fraction of
// charges.
func NewMockGateway(successRate float64) *MockGateway {
	return &MockGateway{SuccessRate: successRate}
}

func (g *MockGateway) Charge(_ context.Context, orderID int64, amount int64, _ string) (*ChargeResult, error) {
	time.Sleep(time.Duration(50+rand.Intn(200)) * time.Millisecond)

	if rand.Float64() < g.SuccessRate {
		return &ChargeResult{
			Success:       true,
			TransactionID: fmt.Sprintf("TXN-%s", uuid.New().String()[:8]),
		}, nil
	}
	return &ChargeResult{Success: false, Reason: "payment_declined"}, nil
}

// PaymentService charges orders through the gateway and publishes the
// outcome.
type PaymentService struct {
	gateway        PaymentGateway
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(gateway PaymentGateway, eventPublisher *broker.EventPublisher) *PaymentService {
	return &PaymentService{
		gateway:        gateway,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// ProcessPayment charges an order and publishes PaymentCompleted or
// PaymentFailed.
func (ps *PaymentService) ProcessPayment(ctx context.Context, orderID int64, amount int64) error {
	ctx, span := util.StartSpan(ctx, "PaymentService.ProcessPayment")
	defer span.End()

	util.PaymentAttemptsTotal.Inc()

	ps.logger.Info("Processing payment",
		zap.Int64("order_id", orderID),
		zap.Int64("amount", amount))

	result, err := ps.gateway.Charge(ctx, orderID, amount, fmt.Sprintf("Order #%d tickets", orderID))
	if err != nil {
		return fmt.Errorf("payment gateway error: %w", err)
	}

	if result.Success {
		util.PaymentCompletedTotal.Inc()
		event := &models.PaymentCompletedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePaymentCompleted,
				Timestamp: time.Now(),
			},
			OrderID:       orderID,
			Amount:        amount,
			TransactionID: result.TransactionID,
		}
		if err := ps.eventPublisher.PublishPaymentCompleted(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentCompleted event", zap.Error(err))
		}
		return nil
	}

	util.PaymentFailedTotal.Inc()
	ps.logger.Warn("Payment declined",
		zap.Int64("order_id", orderID),
		zap.String("reason", result.Reason))

	event := &models.PaymentFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentFailed,
			Timestamp: time.Now(),
		},
		OrderID: orderID,
		Amount:  amount,
		Reason:  result.Reason,
	}
	if err := ps.eventPublisher.PublishPaymentFailed(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
	}
	return nil
}

// SettlementService applies payment outcomes to orders.
type SettlementService struct {
	stores *store.Stores
	logger *zap.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(stores *store.Stores) *SettlementService {
	return &SettlementService{
		stores: stores,
		logger: util.GetLogger(),
	}
}

// HandlePaymentCompleted confirms the order and records the provider
// transaction id. Idempotent per broker event.
func (ss *SettlementService) HandlePaymentCompleted(ctx context.Context, event *models.PaymentCompletedEvent) error {
	ctx, span := util.StartSpan(ctx, "SettlementService.HandlePaymentCompleted")
	defer span.End()

	processed, err := ss.stores.Processed.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ss.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if _, err := ss.stores.Orders.UpdatePaymentStatus(ctx, event.OrderID,
		models.OrderStatusConfirmed, models.PaymentStatusCompleted, event.TransactionID); err != nil {
		return fmt.Errorf("failed to confirm order: %w", err)
	}

	util.OrdersConfirmedTotal.Inc()

	if err := ss.stores.Processed.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		ss.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	ss.logger.Info("Order confirmed",
		zap.Int64("order_id", event.OrderID),
		zap.String("transaction_id", event.TransactionID))
	return nil
}

// HandlePaymentFailed marks the order's payment as failed. The order stays
// pending; the user can retry payment or cancel, which releases inventory.
func (ss *SettlementService) HandlePaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error {
	ctx, span := util.StartSpan(ctx, "SettlementService.HandlePaymentFailed")
	defer span.End()

	processed, err := ss.stores.Processed.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		ss.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if _, err := ss.stores.Orders.UpdatePaymentStatus(ctx, event.OrderID,
		models.OrderStatusPending, models.PaymentStatusFailed, ""); err != nil {
		return fmt.Errorf("failed to mark payment failed: %w", err)
	}

	if err := ss.stores.Processed.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		ss.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	ss.logger.Warn("Payment failed for order",
		zap.Int64("order_id", event.OrderID),
		zap.String("reason", event.Reason))
	return nil
}
