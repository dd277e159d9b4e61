package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const reporterLocal = "reporter_id"

// ReporterIdentity attributes submissions to a signed-in resident. The
// bearer token is optional: a missing or invalid token leaves the request
// anonymous instead of rejecting it.
func ReporterIdentity(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
			return c.Next()
		}

		token, err := jwt.Parse(strings.TrimSpace(raw[7:]), func(t *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err == nil && token.Valid {
			setReporter(c, token)
		}
		return c.Next()
	}
}

func setReporter(c *fiber.Ctx, token *jwt.Token) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		c.Locals(reporterLocal, sub)
	}
}

// GetReporterID returns the resident id set by ReporterIdentity, or "".
func GetReporterID(c *fiber.Ctx) string {
	id, _ := c.Locals(reporterLocal).(string)
	return id
}
