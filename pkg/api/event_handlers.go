package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/platinummonkey/eventbook/pkg/httputil"
	"github.com/platinummonkey/eventbook/pkg/observability"
	"github.com/platinummonkey/eventbook/pkg/storage"
)

// listEvents handles GET /events. An empty catalogue is an empty list.
func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []*storage.Event{}
	}
	_ = httputil.WriteSuccess(w, events)
}

// getEvent handles GET /events/{id}
func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, msgEventNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	_ = httputil.WriteSuccess(w, event)
}

// createEvent handles POST /events
func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req EventRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !validEventRequest(w, &req) {
		return
	}

	now := time.Now().UTC()
	event := &storage.Event{ID: uuid.NewString(), CreatedAt: now}
	applyEventRequest(event, &req, now)

	if err := s.store.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).WithField("event_id", event.ID).Info("event created")
	_ = httputil.WriteCreated(w, event)
}

// updateEvent handles PUT /events/{id}
func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req EventRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !validEventRequest(w, &req) {
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err == nil {
		applyEventRequest(event, &req, time.Now().UTC())
		err = s.store.UpdateEvent(r.Context(), event)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, msgEventNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	_ = httputil.WriteSuccess(w, event)
}

// deleteEvent handles DELETE /events/{id}. Bookings for the event go with it.
func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeleteEvent(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, msgEventNotFound)
			return
		}
		writeServiceError(w, r, err)
		return
	}

	httputil.WriteMessage(w, "Event deleted successfully")
}

func validEventRequest(w http.ResponseWriter, req *EventRequest) bool {
	req.Name = strings.TrimSpace(req.Name)
	if !httputil.RequireNonEmpty(w, req.Name, "name") {
		return false
	}
	if req.Date.IsZero() {
		httputil.WriteBadRequest(w, "date is required")
		return false
	}
	if req.Price < 0 {
		httputil.WriteBadRequest(w, "price must not be negative")
		return false
	}
	return true
}

func applyEventRequest(event *storage.Event, req *EventRequest, now time.Time) {
	event.Name = req.Name
	event.Description = req.Description
	event.Category = req.Category
	event.Date = req.Date.UTC()
	event.Venue = req.Venue
	event.Price = req.Price
	event.Image = req.Image
	event.UpdatedAt = now
}
