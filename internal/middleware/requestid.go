package middleware

import (
	"regexp"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// requestIDRe bounds client-supplied ids to a safe token.
var requestIDRe = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// NewRequestID assigns every request an id, reusing a well-formed incoming
// X-Request-ID and otherwise generating a UUID. The id is echoed on the response.
func NewRequestID() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !requestIDRe.MatchString(id) {
			id = uuid.NewString()
		}
		c.Locals(requestIDKey{}, id)
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

// RequestID returns the id assigned by NewRequestID, or "".
func RequestID(c fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey{}).(string)
	return id
}
