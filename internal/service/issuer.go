package service

import (
	"fmt"

	"ticketing-service/internal/models"
)

// CartLine is one requested ticket-type quantity in a checkout cart.
type CartLine struct {
	EventTicketID int64 `json:"event_ticket_id" binding:"required"`
	Quantity      int   `json:"quantity"`
}

// IssueTicketBatch synthesizes the ticket records for an order. Numbering is
// order-global: one counter starting at 1, incremented per ticket across all
// cart lines in cart order. Lines with non-positive quantity are skipped.
// Pure function, no side effects.
func IssueTicketBatch(eventID, orderID int64, lines []CartLine) []models.Ticket {
	var tickets []models.Ticket

	n := 1
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		for i := 0; i < line.Quantity; i++ {
			tickets = append(tickets, models.Ticket{
				EventID:       eventID,
				EventTicketID: line.EventTicketID,
				OrderID:       orderID,
				TicketNumber:  fmt.Sprintf("%d-%d-%d", eventID, orderID, n),
				QRCode:        fmt.Sprintf("QR-%d-%d", orderID, n),
				Status:        models.TicketStatusActive,
			})
			n++
		}
	}

	return tickets
}
