// Package middleware provides request-scoped Fiber middleware: logging, auth, throttling and tracing.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

func (p FailPolicy) String() string {
	if p == FailClosed {
		return "fail_closed"
	}
	return "fail_open"
}

// ErrNoStore is returned when throttling is requested without a Redis client.
var ErrNoStore = errors.New("rate limit store unavailable")

// Throttle limits bursts of write requests per caller. It guards request volume only;
// business quotas such as the daily vote allowance live in the service layer.
type Throttle struct {
	rdb redis.Cmdable
	// Disabled skips throttling entirely (development, test and stress runs).
	Disabled bool
}

// NewThrottle creates a Throttle. A nil client makes every check fail per policy.
func NewThrottle(rdb redis.Cmdable, env string) *Throttle {
	t := &Throttle{rdb: rdb}
	switch env {
	case "", "test", "development", "stress":
		t.Disabled = true
	}
	return t
}

// Check reports whether the caller identified by id may perform resource again in window.
func (t *Throttle) Check(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, error) {
	if t.Disabled {
		return true, nil
	}
	if t.rdb == nil {
		return false, ErrNoStore
	}

	key := fmt.Sprintf("rl:%s:%s", resource, id)

	cnt, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if cnt == 1 {
		t.rdb.Expire(ctx, key, window)
	}
	return cnt <= int64(limit), nil
}

// Limit returns a Fiber middleware enforcing `limit` requests per `window` under name.
// It keys by authenticated userID (if set in c.Locals("userID")) otherwise by remote IP.
func (t *Throttle) Limit(name string, limit int, window time.Duration, policy FailPolicy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id string
		if uid := c.Locals("userID"); uid != nil {
			id = fmt.Sprintf("user:%v", uid)
		} else {
			id = fmt.Sprintf("ip:%s", c.IP())
		}

		allowed, err := t.Check(c.UserContext(), name, id, limit, window)
		if err != nil {
			if policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "throttle fail-closed",
					slog.String("resource", name), slog.String("error", err.Error()))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "rate limit unavailable",
				})
			}
			return c.Next()
		}

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
				"code":  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
