package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestAndUserID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetUserID(ctx))

	ctx = WithRequestID(ctx, "req-1")
	ctx = WithUserID(ctx, "user-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "user-1", GetUserID(ctx))
}

func TestWithAuth(t *testing.T) {
	type identity struct{ id string }
	ctx := WithAuth(context.Background(), &identity{id: "u"})

	got, ok := ctx.Value(AuthKey).(*identity)
	assert.True(t, ok)
	assert.Equal(t, "u", got.id)
}
