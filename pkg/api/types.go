package api

import (
	"time"

	"github.com/platinummonkey/eventbook/pkg/auth"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// CredentialsRequest is the body of register, login and admin create
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    auth.PublicUser `json:"user"`
}

// UserResponse wraps a single user
type UserResponse struct {
	User *auth.User `json:"user"`
}

// ProfileResponse is returned by GET /user
type ProfileResponse struct {
	User     *auth.User         `json:"user"`
	Bookings []*storage.Booking `json:"bookings"`
}

// EventRequest is the body of event create and update
type EventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Venue       string    `json:"venue"`
	Price       float64   `json:"price"`
	Image       string    `json:"image"`
}

// BookingRequest is the body of POST /bookings
type BookingRequest struct {
	EventID string `json:"eventId"`
}

// BookingResponse is returned by POST /bookings
type BookingResponse struct {
	Message string           `json:"message"`
	Booking *storage.Booking `json:"booking"`
}

// AdminUpdateRequest is the body of PUT /admin/{id}. Omitted fields are unchanged.
type AdminUpdateRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"isAdmin"`
}

// AdminResponse wraps the user touched by an admin operation
type AdminResponse struct {
	Message string     `json:"message"`
	Admin   *auth.User `json:"admin"`
}
