package service

import "errors"

// Fulfillment guard failures
var (
	ErrEventNotFound         = errors.New("event not found")
	ErrEventNotBookable      = errors.New("event is not available for booking")
	ErrNoTicketTypes         = errors.New("no ticket types configured for this event")
	ErrTicketTypeNotFound    = errors.New("ticket type not found in event")
	ErrEmptyCart             = errors.New("total quantity must be greater than 0")
	ErrInsufficientInventory = errors.New("not enough tickets available")
)

// Cancellation guard failures
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrNotOrderOwner         = errors.New("not authorized for this order")
	ErrOrderAlreadyCancelled = errors.New("order is already cancelled")
	ErrRefundRequired        = errors.New("completed order requires a refund, not a cancellation")
)

// Validation guard failures
var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketAlreadyUsed = errors.New("ticket has already been used")
	ErrTicketCancelled   = errors.New("ticket has been cancelled")
	ErrTicketExpired     = errors.New("ticket has expired")
)
