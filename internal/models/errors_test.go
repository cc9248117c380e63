package models

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("Topic", 1), fiber.StatusNotFound},
		{NewForbiddenError("no"), fiber.StatusForbidden},
		{NewRateLimitedError("slow down"), fiber.StatusTooManyRequests},
		{NewValidationError("bad"), fiber.StatusBadRequest},
		{NewConflictError("busy", nil), fiber.StatusConflict},
		{NewUnauthorizedError("who"), fiber.StatusUnauthorized},
		{NewUnavailableError("down", nil), fiber.StatusServiceUnavailable},
		{fmt.Errorf("wrapped: %w", NewForbiddenError("no")), fiber.StatusForbidden},
		{errors.New("plain"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestRespondWithError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewInternalError(errors.New("pq: password leaked")))
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, errors.New("dial tcp 10.0.0.1"))
	})

	for _, path := range []string{"/internal", "/plain"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
		assert.NotContains(t, string(body), "password")
		assert.NotContains(t, string(body), "10.0.0.1")
		assert.Contains(t, string(body), CodeInternal)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("serialization failure")
	err := NewConflictError("Vote could not be applied, please retry", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeConflict, ErrorCode(err))
	assert.True(t, IsCode(err, CodeConflict))
	assert.Equal(t, "", ErrorCode(cause))
}
