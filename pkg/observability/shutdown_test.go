package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManager_ReverseOrder(t *testing.T) {
	sm := NewShutdownManager(NewLogger(InfoLevel, &bytes.Buffer{}), time.Second)

	var order []string
	sm.RegisterShutdownFunc("store", func(ctx context.Context) error {
		order = append(order, "store")
		return nil
	})
	sm.RegisterShutdownFunc("otel", func(ctx context.Context) error {
		order = append(order, "otel")
		return nil
	})
	sm.RegisterShutdownFunc("ignored", nil)

	require.NoError(t, sm.Shutdown(context.Background()))
	assert.Equal(t, []string{"otel", "store"}, order)
}

func TestShutdownManager_CollectsErrors(t *testing.T) {
	sm := NewShutdownManager(NewLogger(InfoLevel, &bytes.Buffer{}), time.Second)

	boom := errors.New("boom")
	ran := false
	sm.RegisterShutdownFunc("first", func(ctx context.Context) error {
		ran = true
		return nil
	})
	sm.RegisterShutdownFunc("second", func(ctx context.Context) error { return boom })

	err := sm.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, ran, "later failures must not stop earlier steps")
}

func TestShutdownManager_DrainsServers(t *testing.T) {
	ts := httptest.NewUnstartedServer(http.NotFoundHandler())
	ts.Start()
	defer ts.Close()

	sm := NewShutdownManager(nil, time.Second)
	sm.RegisterServer(ts.Config)

	require.NoError(t, sm.Shutdown(context.Background()))

	_, err := http.Get(ts.URL)
	assert.Error(t, err)
}

func TestShutdownManager_DefaultTimeout(t *testing.T) {
	sm := NewShutdownManager(nil, 0)
	assert.Equal(t, 30*time.Second, sm.timeout)
}
