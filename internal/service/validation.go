package service

import (
	"context"
	"errors"

	"ticketing-service/internal/models"
	"ticketing-service/internal/store"
	"ticketing-service/internal/util"

	"go.uber.org/zap"
)

// ValidationService transitions a ticket from active to used at the door,
// enforcing single use.
type ValidationService struct {
	tickets store.TicketStore
	logger  *zap.Logger
}

// NewValidationService creates a new validation service
func NewValidationService(tickets store.TicketStore) *ValidationService {
	return &ValidationService{
		tickets: tickets,
		logger:  util.GetLogger(),
	}
}

// ValidateTicket looks a ticket up by its QR payload and marks it used. The
// active -> used transition is atomic with the state check, so two scans of
// the same code admit exactly one person.
func (s *ValidationService) ValidateTicket(ctx context.Context, qrCode string) (*models.Ticket, error) {
	ctx, span := util.StartSpan(ctx, "ValidationService.ValidateTicket")
	defer span.End()

	ticket, err := s.tickets.GetTicketByQRCode(ctx, qrCode)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.TicketValidationsFailed.WithLabelValues("not_found").Inc()
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	switch ticket.Status {
	case models.TicketStatusUsed:
		util.TicketValidationsFailed.WithLabelValues("already_used").Inc()
		return nil, ErrTicketAlreadyUsed
	case models.TicketStatusCancelled:
		util.TicketValidationsFailed.WithLabelValues("cancelled").Inc()
		return nil, ErrTicketCancelled
	case models.TicketStatusExpired:
		util.TicketValidationsFailed.WithLabelValues("expired").Inc()
		return nil, ErrTicketExpired
	}

	validated, err := s.tickets.MarkTicketUsed(ctx, ticket.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Lost the race against a concurrent scan of the same code.
			util.TicketValidationsFailed.WithLabelValues("already_used").Inc()
			return nil, ErrTicketAlreadyUsed
		}
		return nil, err
	}

	util.TicketsValidatedTotal.Inc()
	s.logger.Info("Ticket validated",
		zap.Int64("ticket_id", validated.ID),
		zap.String("ticket_number", validated.TicketNumber))

	return validated, nil
}
