package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ticketing-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Postgres implements every store interface over a single sqlx connection
// pool.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres connects to the database and returns the adapter.
func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{db: db}, nil
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Stores returns the adapter wired into the per-entity interfaces.
func (p *Postgres) Stores() *Stores {
	return &Stores{
		Events:      p,
		TicketTypes: p,
		Orders:      p,
		Tickets:     p,
		Processed:   p,
	}
}

// CreateEvent inserts an event
func (p *Postgres) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, venue, address, category, starts_at, organizer_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	return p.db.GetContext(ctx, event, query,
		event.Title, event.Description, event.Venue, event.Address,
		event.Category, event.StartsAt, event.OrganizerID, event.Status)
}

// GetEventByID retrieves an event by ID
func (p *Postgres) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := p.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents retrieves events matching the filter
func (p *Postgres) ListEvents(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	query := "SELECT * FROM events WHERE 1=1"
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.OrganizerID != 0 {
		args = append(args, filter.OrganizerID)
		query += fmt.Sprintf(" AND organizer_id = $%d", len(args))
	}
	query += " ORDER BY starts_at"

	events := []models.Event{}
	err := p.db.SelectContext(ctx, &events, query, args...)
	return events, err
}

// UpdateEventStatus updates an event's status
func (p *Postgres) UpdateEventStatus(ctx context.Context, id int64, status string) error {
	res, err := p.db.ExecContext(ctx,
		"UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2", status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTicketTypes inserts a batch of ticket types for an event
func (p *Postgres) CreateTicketTypes(ctx context.Context, types []models.EventTicketType) ([]models.EventTicketType, error) {
	query := `
		INSERT INTO event_ticket_types (event_id, description, price, quantity, available, available_until)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	out := make([]models.EventTicketType, len(types))
	for i, tt := range types {
		if err := p.db.GetContext(ctx, &tt, query,
			tt.EventID, tt.Description, tt.Price, tt.Quantity, tt.Available, tt.AvailableUntil); err != nil {
			return nil, fmt.Errorf("failed to create ticket type: %w", err)
		}
		out[i] = tt
	}
	return out, nil
}

// GetTicketTypeByID retrieves a ticket type by ID
func (p *Postgres) GetTicketTypeByID(ctx context.Context, id int64) (*models.EventTicketType, error) {
	var tt models.EventTicketType
	err := p.db.GetContext(ctx, &tt, "SELECT * FROM event_ticket_types WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// GetTicketTypesByEvent retrieves all ticket types for an event
func (p *Postgres) GetTicketTypesByEvent(ctx context.Context, eventID int64) ([]models.EventTicketType, error) {
	types := []models.EventTicketType{}
	err := p.db.SelectContext(ctx, &types,
		"SELECT * FROM event_ticket_types WHERE event_id = $1 ORDER BY id", eventID)
	return types, err
}

// ReserveAvailable decrements the available counter. The WHERE clause makes
// the bound check and the decrement a single atomic statement, so two
// concurrent reservations can never drive the counter negative.
func (p *Postgres) ReserveAvailable(ctx context.Context, id int64, quantity int) (*models.EventTicketType, error) {
	var tt models.EventTicketType
	err := p.db.GetContext(ctx, &tt, `
		UPDATE event_ticket_types
		SET available = available - $1, updated_at = NOW()
		WHERE id = $2 AND available >= $1
		RETURNING *`, quantity, id)
	if err == sql.ErrNoRows {
		if _, lookupErr := p.GetTicketTypeByID(ctx, id); lookupErr != nil {
			return nil, lookupErr
		}
		return nil, ErrInsufficientAvailable
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// ReleaseAvailable increments the available counter, clamped to the original
// allotment so repeated releases cannot exceed quantity.
func (p *Postgres) ReleaseAvailable(ctx context.Context, id int64, quantity int) (*models.EventTicketType, error) {
	var tt models.EventTicketType
	err := p.db.GetContext(ctx, &tt, `
		UPDATE event_ticket_types
		SET available = LEAST(available + $1, quantity), updated_at = NOW()
		WHERE id = $2
		RETURNING *`, quantity, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tt, nil
}

// IsEventProcessed checks if a broker event has been processed
func (p *Postgres) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := p.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks a broker event as processed
func (p *Postgres) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := p.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
