package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ticketing-service/internal/models"
)

// Memory is an in-memory implementation of every store interface, used by
// service tests in place of Postgres. All operations take one mutex, so the
// atomicity contracts of ReserveAvailable and MarkTicketUsed hold under
// concurrent callers.
type Memory struct {
	mu sync.Mutex

	events      map[int64]models.Event
	ticketTypes map[int64]models.EventTicketType
	orders      map[int64]models.Order
	tickets     map[int64]models.Ticket
	processed   map[string]string

	nextID int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		events:      make(map[int64]models.Event),
		ticketTypes: make(map[int64]models.EventTicketType),
		orders:      make(map[int64]models.Order),
		tickets:     make(map[int64]models.Ticket),
		processed:   make(map[string]string),
	}
}

// Stores returns the fake wired into the per-entity interfaces.
func (m *Memory) Stores() *Stores {
	return &Stores{
		Events:      m,
		TicketTypes: m,
		Orders:      m,
		Tickets:     m,
		Processed:   m,
	}
}

func (m *Memory) nextSeq() int64 {
	m.nextID++
	return m.nextID
}

func (m *Memory) CreateEvent(_ context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event.ID = m.nextSeq()
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	m.events[event.ID] = *event
	return nil
}

func (m *Memory) GetEventByID(_ context.Context, id int64) (*models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &event, nil
}

func (m *Memory) ListEvents(_ context.Context, filter EventFilter) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := []models.Event{}
	for _, event := range m.events {
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		if filter.Category != "" && event.Category != filter.Category {
			continue
		}
		if filter.OrganizerID != 0 && event.OrganizerID != filter.OrganizerID {
			continue
		}
		events = append(events, event)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartsAt.Before(events[j].StartsAt) })
	return events, nil
}

func (m *Memory) UpdateEventStatus(_ context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	event, ok := m.events[id]
	if !ok {
		return ErrNotFound
	}
	event.Status = status
	event.UpdatedAt = time.Now()
	m.events[id] = event
	return nil
}

func (m *Memory) CreateTicketTypes(_ context.Context, types []models.EventTicketType) ([]models.EventTicketType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.EventTicketType, len(types))
	for i, tt := range types {
		tt.ID = m.nextSeq()
		tt.CreatedAt = time.Now()
		tt.UpdatedAt = tt.CreatedAt
		m.ticketTypes[tt.ID] = tt
		out[i] = tt
	}
	return out, nil
}

func (m *Memory) GetTicketTypeByID(_ context.Context, id int64) (*models.EventTicketType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, ok := m.ticketTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tt, nil
}

func (m *Memory) GetTicketTypesByEvent(_ context.Context, eventID int64) ([]models.EventTicketType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	types := []models.EventTicketType{}
	for _, tt := range m.ticketTypes {
		if tt.EventID == eventID {
			types = append(types, tt)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].ID < types[j].ID })
	return types, nil
}

func (m *Memory) ReserveAvailable(_ context.Context, id int64, quantity int) (*models.EventTicketType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, ok := m.ticketTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	if tt.Available < quantity {
		return nil, ErrInsufficientAvailable
	}
	tt.Available -= quantity
	tt.UpdatedAt = time.Now()
	m.ticketTypes[id] = tt
	return &tt, nil
}

func (m *Memory) ReleaseAvailable(_ context.Context, id int64, quantity int) (*models.EventTicketType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tt, ok := m.ticketTypes[id]
	if !ok {
		return nil, ErrNotFound
	}
	tt.Available += quantity
	if tt.Available > tt.Quantity {
		tt.Available = tt.Quantity
	}
	tt.UpdatedAt = time.Now()
	m.ticketTypes[id] = tt
	return &tt, nil
}

func (m *Memory) CreateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	order.ID = m.nextSeq()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	m.orders[order.ID] = *order
	return nil
}

func (m *Memory) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (m *Memory) GetOrderByIdempotencyKey(_ context.Context, key string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if key == "" {
		return nil, nil
	}
	for _, order := range m.orders {
		if order.IdempotencyKey == key {
			o := order
			return &o, nil
		}
	}
	return nil, nil
}

func (m *Memory) GetOrdersByUserID(_ context.Context, userID int64) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	orders := []models.Order{}
	for _, order := range m.orders {
		if order.UserID == userID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func (m *Memory) UpdateOrderStatus(_ context.Context, id int64, status string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	m.orders[id] = order
	return &order, nil
}

func (m *Memory) UpdatePaymentStatus(_ context.Context, id int64, orderStatus, paymentStatus, transactionID string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	order.Status = orderStatus
	order.PaymentStatus = paymentStatus
	order.TransactionID = transactionID
	order.UpdatedAt = time.Now()
	m.orders[id] = order
	return &order, nil
}

func (m *Memory) CreateTicketBatch(_ context.Context, tickets []models.Ticket) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Ticket, len(tickets))
	for i, t := range tickets {
		t.ID = m.nextSeq()
		t.CreatedAt = time.Now()
		t.UpdatedAt = t.CreatedAt
		m.tickets[t.ID] = t
		out[i] = t
	}
	return out, nil
}

func (m *Memory) GetTicketsByOrderID(_ context.Context, orderID int64) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tickets := []models.Ticket{}
	for _, t := range m.tickets {
		if t.OrderID == orderID {
			tickets = append(tickets, t)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID < tickets[j].ID })
	return tickets, nil
}

func (m *Memory) GetTicketByQRCode(_ context.Context, qrCode string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tickets {
		if t.QRCode == qrCode {
			ticket := t
			return &ticket, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateTicketStatus(_ context.Context, id int64, status string) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	m.tickets[id] = t
	return &t, nil
}

func (m *Memory) MarkTicketUsed(_ context.Context, id int64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tickets[id]
	if !ok || t.Status != models.TicketStatusActive {
		return nil, ErrNotFound
	}
	now := time.Now()
	t.Status = models.TicketStatusUsed
	t.ValidatedAt = &now
	t.UpdatedAt = now
	m.tickets[id] = t
	return &t, nil
}

func (m *Memory) IsEventProcessed(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.processed[eventID]
	return ok, nil
}

func (m *Memory) MarkEventProcessed(_ context.Context, eventID, eventType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.processed[eventID] = eventType
	return nil
}
