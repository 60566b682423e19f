package sqlstore

import (
	"context"
	"fmt"

	"github.com/platinummonkey/eventbook/pkg/storage"
)

// CreateBooking books an event. The (user, event) pair is unique.
func (s *Store) CreateBooking(ctx context.Context, booking *storage.Booking) error {
	if _, err := s.GetEvent(ctx, booking.EventID); err != nil {
		return err
	}

	query := s.q(`
		INSERT INTO bookings (id, user_id, event_id, created_at)
		VALUES ($1, $2, $3, $4)
	`)
	_, err := s.db.ExecContext(ctx, query, booking.ID, booking.UserID, booking.EventID, booking.CreatedAt)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return storage.ErrAlreadyBooked
		case isForeignKeyViolation(err):
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// ListUserBookings returns the user's bookings joined with their events, newest first
func (s *Store) ListUserBookings(ctx context.Context, userID string) ([]*storage.Booking, error) {
	query := s.q(`
		SELECT b.id, b.user_id, b.event_id, b.created_at,
		       e.id, e.name, e.description, e.category, e.date, e.venue, e.price, e.image, e.created_at, e.updated_at
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`)
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*storage.Booking, 0)
	for rows.Next() {
		var (
			b storage.Booking
			e storage.Event
		)
		err := rows.Scan(&b.ID, &b.UserID, &b.EventID, &b.CreatedAt,
			&e.ID, &e.Name, &e.Description, &e.Category, &e.Date, &e.Venue, &e.Price, &e.Image, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		b.Event = &e
		bookings = append(bookings, &b)
	}
	return bookings, rows.Err()
}

// DeleteBooking cancels a user's booking for an event
func (s *Store) DeleteBooking(ctx context.Context, userID, eventID string) error {
	result, err := s.db.ExecContext(ctx, s.q(`DELETE FROM bookings WHERE user_id = $1 AND event_id = $2`), userID, eventID)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return requireAffected(result, storage.ErrNotFound)
}
