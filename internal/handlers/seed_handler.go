package handlers

import (
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/incident-desk/internal/services"
	"github.com/gofiber/fiber/v2"
)

type SeedHandler struct {
	seeder services.DatabaseSeeder
}

func NewSeedHandler(seeder services.DatabaseSeeder) *SeedHandler {
	return &SeedHandler{seeder: seeder}
}

func (h *SeedHandler) Seed(c *fiber.Ctx) error {
	result, err := h.seeder.Seed(c.UserContext())
	if err != nil {
		captureException(c, err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.SeedResponse{
			Success: false, Message: err.Error(),
		})
	}
	return c.JSON(result)
}
