// Package memory provides an in-process storage.Store for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// Store keeps users, events and bookings in maps guarded by a RWMutex.
// Returned records are copies; callers may mutate them freely.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*auth.User
	byEmail  map[string]string
	events   map[string]*storage.Event
	bookings map[string]*storage.Booking
}

var _ storage.Store = (*Store)(nil)

// New creates an empty store
func New() *Store {
	return &Store{
		users:    make(map[string]*auth.User),
		byEmail:  make(map[string]string),
		events:   make(map[string]*storage.Event),
		bookings: make(map[string]*storage.Booking),
	}
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	return &c
}

func copyEvent(e *storage.Event) *storage.Event {
	c := *e
	return &c
}

// GetUserByID returns the user with the given id
func (s *Store) GetUserByID(ctx context.Context, id string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetUserByEmail returns the user with the given email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return copyUser(s.users[id]), nil
}

// CreateUser inserts a user; the email must be unused
func (s *Store) CreateUser(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := auth.NormalizeEmail(user.Email)
	if _, exists := s.byEmail[email]; exists {
		return auth.ErrDuplicateAccount
	}
	if _, exists := s.users[user.ID]; exists {
		return auth.ErrDuplicateAccount
	}

	user.Email = email
	s.users[user.ID] = copyUser(user)
	s.byEmail[email] = user.ID
	return nil
}

// UpdateUser replaces a user record, keeping the email index consistent
func (s *Store) UpdateUser(ctx context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok {
		return auth.ErrUserNotFound
	}

	email := auth.NormalizeEmail(user.Email)
	if email != existing.Email {
		if _, taken := s.byEmail[email]; taken {
			return auth.ErrDuplicateAccount
		}
		delete(s.byEmail, existing.Email)
		s.byEmail[email] = user.ID
	}

	user.Email = email
	s.users[user.ID] = copyUser(user)
	return nil
}

// ListAdmins returns all users with the admin flag set, ordered by email
func (s *Store) ListAdmins(ctx context.Context) ([]*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	admins := make([]*auth.User, 0)
	for _, u := range s.users {
		if u.IsAdmin {
			admins = append(admins, copyUser(u))
		}
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].Email < admins[j].Email })
	return admins, nil
}

// DeleteUser removes a user and their bookings
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return auth.ErrUserNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)

	for key, b := range s.bookings {
		if b.UserID == id {
			delete(s.bookings, key)
		}
	}
	return nil
}

// GetEvent returns an event by id
func (s *Store) GetEvent(ctx context.Context, id string) (*storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyEvent(e), nil
}

// ListEvents returns all events ordered by date
func (s *Store) ListEvents(ctx context.Context) ([]*storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]*storage.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, copyEvent(e))
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// CreateEvent inserts an event
func (s *Store) CreateEvent(ctx context.Context, event *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events[event.ID] = copyEvent(event)
	return nil
}

// UpdateEvent replaces an existing event
func (s *Store) UpdateEvent(ctx context.Context, event *storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[event.ID]
	if !ok {
		return storage.ErrNotFound
	}
	event.CreatedAt = existing.CreatedAt
	s.events[event.ID] = copyEvent(event)
	return nil
}

// DeleteEvent removes an event and its bookings
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.events, id)

	for key, b := range s.bookings {
		if b.EventID == id {
			delete(s.bookings, key)
		}
	}
	return nil
}

func bookingKey(userID, eventID string) string {
	return userID + "/" + eventID
}

// CreateBooking books an event for a user
func (s *Store) CreateBooking(ctx context.Context, booking *storage.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[booking.EventID]; !ok {
		return storage.ErrNotFound
	}
	key := bookingKey(booking.UserID, booking.EventID)
	if _, exists := s.bookings[key]; exists {
		return storage.ErrAlreadyBooked
	}

	c := *booking
	c.Event = nil
	s.bookings[key] = &c
	return nil
}

// ListUserBookings returns the user's bookings with their events, newest first
func (s *Store) ListUserBookings(ctx context.Context, userID string) ([]*storage.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bookings := make([]*storage.Booking, 0)
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}
		c := *b
		if e, ok := s.events[b.EventID]; ok {
			c.Event = copyEvent(e)
		}
		bookings = append(bookings, &c)
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return bookings, nil
}

// DeleteBooking cancels a user's booking for an event
func (s *Store) DeleteBooking(ctx context.Context, userID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := bookingKey(userID, eventID)
	if _, ok := s.bookings[key]; !ok {
		return storage.ErrNotFound
	}
	delete(s.bookings, key)
	return nil
}

// HealthCheck always succeeds
func (s *Store) HealthCheck(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
