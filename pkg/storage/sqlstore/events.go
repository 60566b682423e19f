package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/platinummonkey/eventbook/pkg/storage"
)

const eventColumns = `id, name, description, category, date, venue, price, image, created_at, updated_at`

func scanEvent(row rowScanner) (*storage.Event, error) {
	var e storage.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Category, &e.Date,
		&e.Venue, &e.Price, &e.Image, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEvent returns an event by id
func (s *Store) GetEvent(ctx context.Context, id string) (*storage.Event, error) {
	query := s.q(`SELECT ` + eventColumns + ` FROM events WHERE id = $1`)
	event, err := scanEvent(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListEvents returns all events ordered by date
func (s *Store) ListEvents(ctx context.Context) ([]*storage.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*storage.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CreateEvent inserts an event
func (s *Store) CreateEvent(ctx context.Context, event *storage.Event) error {
	query := s.q(`
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`)
	_, err := s.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Description, event.Category, event.Date,
		event.Venue, event.Price, event.Image, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// UpdateEvent overwrites an existing event
func (s *Store) UpdateEvent(ctx context.Context, event *storage.Event) error {
	query := s.q(`
		UPDATE events
		SET name = $2, description = $3, category = $4, date = $5,
		    venue = $6, price = $7, image = $8, updated_at = $9
		WHERE id = $1
	`)
	result, err := s.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Description, event.Category, event.Date,
		event.Venue, event.Price, event.Image, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	return requireAffected(result, storage.ErrNotFound)
}

// DeleteEvent removes an event and its bookings
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM bookings WHERE event_id = $1`), id); err != nil {
			return fmt.Errorf("failed to delete event bookings: %w", err)
		}
		result, err := tx.ExecContext(ctx, s.q(`DELETE FROM events WHERE id = $1`), id)
		if err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return requireAffected(result, storage.ErrNotFound)
	})
}
