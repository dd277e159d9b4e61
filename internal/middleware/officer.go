package middleware

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// OfficerRequired admits requests whose JWT carries one of the configured
// officer roles in its "role" claim. It must run after JWTProtected.
func OfficerRequired(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok || token == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid claims",
			})
		}

		role, _ := claims["role"].(string)
		if hasRole(cfg.OfficerRoles, role) {
			c.Locals("role", role)
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Officer access required",
		})
	}
}

func hasRole(roles []string, role string) bool {
	role = strings.TrimSpace(role)
	if role == "" {
		return false
	}
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}
