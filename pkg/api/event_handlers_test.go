package api

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/eventbook/pkg/storage"
)

func concert() EventRequest {
	return EventRequest{
		Name:        "Concert",
		Description: "Live music",
		Category:    "music",
		Date:        time.Date(2026, 12, 1, 20, 0, 0, 0, time.UTC),
		Venue:       "Hall A",
		Price:       42.5,
	}
}

func createTestEvent(t *testing.T, env *testEnv, adminToken string, req EventRequest) *storage.Event {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/events", adminToken, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var event storage.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &event))
	return &event
}

func TestListEvents_EmptyIsOK(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/events", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestEventCRUD(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken(t)

	event := createTestEvent(t, env, admin, concert())
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "Concert", event.Name)
	assert.Equal(t, 42.5, event.Price)

	rec := env.do(t, http.MethodGet, "/events/"+event.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/events", "", nil)
	var list []storage.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	update := concert()
	update.Name = "Concert (moved)"
	update.Venue = "Hall B"
	rec = env.do(t, http.MethodPut, "/events/"+event.ID, admin, update)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated storage.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Hall B", updated.Venue)
	assert.True(t, updated.CreatedAt.Equal(event.CreatedAt), "creation time survives updates")

	rec = env.do(t, http.MethodDelete, "/events/"+event.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Event deleted successfully", decodeMessage(t, rec))

	rec = env.do(t, http.MethodGet, "/events/"+event.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Event not found", decodeMessage(t, rec))
}

func TestEvent_NotFoundForWrites(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken(t)

	rec := env.do(t, http.MethodPut, "/events/missing", admin, concert())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/events/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateEvent_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	admin := env.adminToken(t)

	noName := concert()
	noName.Name = "  "
	rec := env.do(t, http.MethodPost, "/events", admin, noName)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", decodeMessage(t, rec))

	noDate := concert()
	noDate.Date = time.Time{}
	rec = env.do(t, http.MethodPost, "/events", admin, noDate)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "date is required", decodeMessage(t, rec))

	negative := concert()
	negative.Price = -1
	rec = env.do(t, http.MethodPost, "/events", admin, negative)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
