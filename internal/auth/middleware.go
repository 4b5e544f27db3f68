package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const driverIDLocal = "driver_id"

// JWTMiddleware validates bearer tokens and stores driver_id in locals.
func JWTMiddleware(secret string) fiber.Handler {
	secretBytes := []byte(secret)
	return func(c *fiber.Ctx) error {
		token := bearerFromHeader(c.Get("Authorization"))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims, err := parseToken(secretBytes, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(driverIDLocal, claims.DriverID)
		return c.Next()
	}
}

// RequireDriver rejects requests whose authenticated driver differs from the route parameter.
// Requests that did not pass through JWTMiddleware are let through unchanged.
func RequireDriver(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		driverID, ok := c.Locals(driverIDLocal).(string)
		if ok && driverID != c.Params(param) {
			return fiber.NewError(fiber.StatusForbidden, "token does not belong to this driver")
		}
		return c.Next()
	}
}

// DriverID returns the authenticated driver, if any.
func DriverID(c *fiber.Ctx) string {
	id, _ := c.Locals(driverIDLocal).(string)
	return id
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
