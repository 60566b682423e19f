package storage

import "errors"

var (
	// ErrNotFound indicates the event or booking does not exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyBooked indicates the user already holds a booking for the event
	ErrAlreadyBooked = errors.New("event already booked")
)
