package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_Check(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	fail := func(ctx context.Context) error { return errors.New("down") }

	t.Run("no dependencies", func(t *testing.T) {
		status := NewHealthChecker("test").Check(context.Background())
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, "test", status.Version)
	})

	t.Run("optional failure degrades", func(t *testing.T) {
		h := NewHealthChecker("test")
		h.AddCheck("database", true, ok)
		h.AddCheck("redis", false, fail)

		status := h.Check(context.Background())
		assert.Equal(t, StatusDegraded, status.Status)
		assert.Equal(t, StatusDegraded, status.Dependencies["redis"].Status)
		assert.Equal(t, "down", status.Dependencies["redis"].Message)
	})

	t.Run("critical failure is unhealthy", func(t *testing.T) {
		h := NewHealthChecker("test")
		h.AddCheck("database", true, fail)
		h.AddCheck("redis", false, fail)

		status := h.Check(context.Background())
		assert.Equal(t, StatusUnhealthy, status.Status)
	})
}

func TestHealthChecker_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	h := NewHealthChecker("test")
	h.AddRedis(client)
	assert.Equal(t, StatusHealthy, h.Check(context.Background()).Status)

	mr.Close()
	assert.Equal(t, StatusDegraded, h.Check(context.Background()).Status)
}

func TestHealthRoutes(t *testing.T) {
	h := NewHealthChecker("test")
	h.AddCheck("database", true, func(ctx context.Context) error { return errors.New("down") })

	mux := http.NewServeMux()
	RegisterHealthRoutes(mux, h)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StatusUnhealthy, status.Status)
}
