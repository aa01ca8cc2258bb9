package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestContext tags every request with an X-Request-ID and bounds the
// user context handed to services by timeout.
func RequestContext(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("X-Request-ID", id)
		c.Locals("requestId", id)

		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)

		err := c.Next()
		if ctx.Err() == context.DeadlineExceeded {
			log.Printf("[REQ] id=%s %s %s exceeded %s", id, c.Method(), c.OriginalURL(), timeout)
		}
		return err
	}
}
