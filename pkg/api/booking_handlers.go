package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/middleware"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// createBooking handles POST /bookings
func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	eventID := strings.TrimSpace(req.EventID)
	if !httputil.RequireNonEmpty(w, eventID, "eventId") {
		return
	}

	booking := &storage.Booking{
		ID:        uuid.NewString(),
		UserID:    middleware.GetIdentity(r).UserID,
		EventID:   eventID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateBooking(r.Context(), booking); err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyBooked):
			s.metrics.RecordBooking("create", "duplicate")
		case errors.Is(err, storage.ErrNotFound):
			s.metrics.RecordBooking("create", "unknown_event")
			httputil.WriteNotFound(w, msgEventNotFound)
			return
		default:
			s.metrics.RecordBooking("create", "error")
		}
		writeServiceError(w, r, err)
		return
	}

	s.metrics.RecordBooking("create", "success")
	_ = httputil.WriteCreated(w, BookingResponse{
		Message: "Booking created successfully",
		Booking: booking,
	})
}

// listBookings handles GET /bookings
func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.store.ListUserBookings(r.Context(), middleware.GetIdentity(r).UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []*storage.Booking{}
	}
	_ = httputil.WriteSuccess(w, bookings)
}

// deleteBooking handles DELETE /bookings/{eventId}. Only the caller's own
// booking can be cancelled.
func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	eventID, ok := httputil.ParsePathStringOrError(w, r, "eventId")
	if !ok {
		return
	}

	if err := s.store.DeleteBooking(r.Context(), middleware.GetIdentity(r).UserID, eventID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.metrics.RecordBooking("cancel", "not_found")
			httputil.WriteNotFound(w, msgBookingNotFound)
			return
		}
		s.metrics.RecordBooking("cancel", "error")
		writeServiceError(w, r, err)
		return
	}

	s.metrics.RecordBooking("cancel", "success")
	httputil.WriteMessage(w, "Booking canceled successfully")
}
