package http

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"resume-tailor/internal/adapter/repository"
	"resume-tailor/internal/domain"
	"resume-tailor/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	localUserID = "userID"
	localRateID = "rateID"
)

// TokenResolver maps a raw bearer token to a user identity.
type TokenResolver interface {
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
}

// NewAuth resolves the caller identity from the Authorization header. The
// identity only ever comes from this header, never from a request body, so
// a caller cannot write to an arbitrary user's profile.
func NewAuth(tokens TokenResolver, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			return unauthorized(c)
		}
		userID, err := tokens.Lookup(c.Context(), token)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return unauthorized(c)
			}
			log.Error().Err(err).Msg("token lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		}
		c.Locals(localUserID, userID)
		c.Locals(localRateID, ratelimit.Identify(token, c.IP()))
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": domain.ErrAuthenticationRequired.Error()})
}

// NewRateLimit gatekeeps the route with the given bucket space. Denied
// callers receive 429 with a retry-after duration and never reach the
// downstream handler.
func NewRateLimit(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := c.Locals(localRateID).(string)
		if id == "" {
			id = ratelimit.Identify("", c.IP())
		}
		d := limiter.Check(id)

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
		if !d.Admitted {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":             domain.ErrAdmissionDenied.Error(),
				"retryAfterSeconds": retry,
			})
		}
		return c.Next()
	}
}
