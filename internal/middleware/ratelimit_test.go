package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottle_Check(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	th := NewThrottle(rdb, "production")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := th.Check(ctx, "create_reply", "user:1", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := th.Check(ctx, "create_reply", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// other callers are unaffected
	ok, err = th.Check(ctx, "create_reply", "user:2", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, err = th.Check(ctx, "create_reply", "user:1", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestThrottle_DisabledEnvironments(t *testing.T) {
	for _, env := range []string{"", "test", "development", "stress"} {
		th := NewThrottle(nil, env)
		ok, err := th.Check(context.Background(), "r", "id", 0, time.Minute)
		assert.NoError(t, err, env)
		assert.True(t, ok, env)
	}
}

func TestThrottle_NilStore(t *testing.T) {
	th := NewThrottle(nil, "production")
	ok, err := th.Check(context.Background(), "r", "id", 1, time.Minute)
	assert.ErrorIs(t, err, ErrNoStore)
	assert.False(t, ok)
}

func TestThrottleMiddleware(t *testing.T) {
	handler := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("FailOpen with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		app.Get("/test", NewThrottle(nil, "production").Limit("test", 1, time.Minute, FailOpen), handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("FailClosed with nil redis in production", func(t *testing.T) {
		app := fiber.New()
		app.Get("/sensitive", NewThrottle(nil, "production").Limit("test", 1, time.Minute, FailClosed), handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sensitive", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("second request is throttled", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer func() { _ = rdb.Close() }()

		app := fiber.New()
		app.Get("/once", NewThrottle(rdb, "production").Limit("once", 1, time.Minute, FailOpen), handler)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/once", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/once", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		_ = resp.Body.Close()
	})
}
