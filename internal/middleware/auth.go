package middleware

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTProtected verifies an HS256 bearer token issued by the identity
// provider and stores it under Locals("user").
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:  jwtware.SigningKey{JWTAlg: jwt.SigningMethodHS256.Alg(), Key: []byte(cfg.JWTSecret)},
		ContextKey:  "user",
		TokenLookup: "header:" + fiber.HeaderAuthorization,
		AuthScheme:  "Bearer",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Debug("rejected officer token", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}
