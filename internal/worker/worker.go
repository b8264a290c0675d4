package worker

import (
	"context"

	"ticketing-service/internal/broker"
	"ticketing-service/internal/models"
	"ticketing-service/internal/service"
	"ticketing-service/internal/util"
)

// PaymentWorker charges new orders: it consumes OrderCreated events and runs
// them through the payment service.
type PaymentWorker struct {
	consumer       *broker.Consumer
	eventHandler   *broker.EventHandler
	paymentService *service.PaymentService
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(consumer *broker.Consumer, paymentService *service.PaymentService) *PaymentWorker {
	eventHandler := broker.NewEventHandler()
	worker := &PaymentWorker{
		consumer:       consumer,
		eventHandler:   eventHandler,
		paymentService: paymentService,
	}

	eventHandler.OnOrderCreated(worker.handleOrderCreated)
	return worker
}

func (pw *PaymentWorker) handleOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return pw.paymentService.ProcessPayment(ctx, event.OrderID, event.TotalAmount)
}

// Start starts the payment worker
func (pw *PaymentWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting payment worker")
	return pw.consumer.StartConsuming(ctx, pw.eventHandler.HandleMessage)
}

// Stop stops the payment worker
func (pw *PaymentWorker) Stop() error {
	util.GetLogger().Info("Stopping payment worker")
	return pw.consumer.Close()
}

// SettlementWorker applies payment outcomes: it consumes PaymentCompleted and
// PaymentFailed events and updates the orders.
type SettlementWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewSettlementWorker creates a new settlement worker
func NewSettlementWorker(consumer *broker.Consumer, settlement *service.SettlementService) *SettlementWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnPaymentCompleted(settlement.HandlePaymentCompleted)
	eventHandler.OnPaymentFailed(settlement.HandlePaymentFailed)

	return &SettlementWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the settlement worker
func (sw *SettlementWorker) Start(ctx context.Context) error {
	util.GetLogger().Info("Starting settlement worker")
	return sw.consumer.StartConsuming(ctx, sw.eventHandler.HandleMessage)
}

// Stop stops the settlement worker
func (sw *SettlementWorker) Stop() error {
	util.GetLogger().Info("Stopping settlement worker")
	return sw.consumer.Close()
}
