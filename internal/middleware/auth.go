package middleware

import (
	"context"

	"folio/internal/auth"
	"folio/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RequiredAuth returns middleware enforcing a valid bearer credential.
// On success the caller's user ID is stored in Locals("userID") and the
// request context; on failure the request is rejected with 401.
// When a Redis client is provided, tokens whose jti has been blacklisted
// (logout) are rejected as well.
func RequiredAuth(v *auth.Verifier, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, err := v.Verify(c.Get("Authorization"))
		if err != nil {
			return models.RespondError(c, err)
		}

		if rdb != nil {
			if jti := auth.ExtractJTI(c.Get("Authorization")); jti != "" {
				blacklisted, berr := rdb.Exists(c.Context(), "blacklist:"+jti).Result()
				if berr == nil && blacklisted > 0 {
					return models.RespondError(c,
						models.NewUnauthorizedError("Token has been revoked"))
				}
			}
		}

		storeIdentity(c, identity)
		return c.Next()
	}
}

// OptionalAuth returns middleware that extracts the caller identity when a
// valid credential is present but never rejects the request. Downstream
// handlers treat a missing identity as anonymous.
func OptionalAuth(v *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity, ok := v.VerifyOptional(c.Get("Authorization")); ok {
			storeIdentity(c, identity)
		}
		return c.Next()
	}
}

func storeIdentity(c *fiber.Ctx, identity *auth.Identity) {
	c.Locals("userID", identity.UserID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, identity.UserID)
	c.SetUserContext(ctx)
}

// CallerID extracts the authenticated user ID from Fiber locals.
// The second return is false for anonymous callers.
func CallerID(c *fiber.Ctx) (uint, bool) {
	uid, ok := c.Locals("userID").(uint)
	return uid, ok
}
